package events

import (
	"encoding/json"

	"github.com/iwa-store/user-service/internal/domain/entity"
)

// Kind is the closed set of event kinds carried on the store exchange.
type Kind int

const (
	KindUnknown Kind = iota
	KindAddToWishlist
	KindRemoveFromWishlist
	KindAddToCart
	KindRemoveFromCart
	KindCreateOrder
)

const (
	addToWishlist      = "ADD_TO_WISHLIST"
	removeFromWishlist = "REMOVE_FROM_WISHLIST"
	addToCart          = "ADD_TO_CART"
	removeFromCart     = "REMOVE_FROM_CART"
	createOrder        = "CREATE_ORDER"
)

// ParseKind maps the wire string to a Kind. Unrecognized strings map to
// KindUnknown; the dispatcher logs and drops those rather than failing the
// delivery.
func ParseKind(s string) Kind {
	switch s {
	case addToWishlist:
		return KindAddToWishlist
	case removeFromWishlist:
		return KindRemoveFromWishlist
	case addToCart:
		return KindAddToCart
	case removeFromCart:
		return KindRemoveFromCart
	case createOrder:
		return KindCreateOrder
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindAddToWishlist:
		return addToWishlist
	case KindRemoveFromWishlist:
		return removeFromWishlist
	case KindAddToCart:
		return addToCart
	case KindRemoveFromCart:
		return removeFromCart
	case KindCreateOrder:
		return createOrder
	default:
		return "UNKNOWN"
	}
}

// Product mirrors the denormalized product record other services embed in
// their events. A wishlist entry and a cart line are both built from it.
type Product struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"desc"`
	Price       float64 `json:"price"`
	Available   bool    `json:"available"`
	Banner      string  `json:"banner"`
}

func (p Product) wishlistItem() entity.WishlistItem {
	return entity.WishlistItem{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Available:   p.Available,
		Banner:      p.Banner,
	}
}

func (p Product) cartProduct() entity.CartProduct {
	return entity.CartProduct{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Banner:    p.Banner,
	}
}

// Payload is the data section of an inbound envelope.
type Payload struct {
	UserID  string        `json:"userId"`
	Product *Product      `json:"product,omitempty"`
	Order   *entity.Order `json:"order,omitempty"`
	Qty     int           `json:"qty,omitempty"`
}

// Envelope is the {event, data} wrapper carried over the bus.
type Envelope struct {
	Event string  `json:"event"`
	Data  Payload `json:"data"`
}

// Marshal encodes the envelope for publishing.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
