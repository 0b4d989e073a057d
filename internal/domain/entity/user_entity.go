package entity

import (
	"encoding/json"
	"time"
)

// User is the aggregate root for the account domain. The whole aggregate is
// persisted as one document: addresses, wishlist, cart and orders are owned
// value collections with no lifecycle of their own.
//
// Version guards whole-document re-saves (optimistic concurrency).
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Salt         string         `json:"-"`
	Phone        string         `json:"phone"`
	Addresses    []Address      `json:"address"`
	Wishlist     []WishlistItem `json:"wishlist"`
	Cart         []CartLine     `json:"cart"`
	Orders       []Order        `json:"orders"`
	Version      int64          `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Address is owned exclusively by one User and never deleted independently.
type Address struct {
	ID         string `json:"id"`
	Street     string `json:"street"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// WishlistItem carries a denormalized copy of the product record at the time
// it was wished for. The copy is never reconciled against the catalog.
type WishlistItem struct {
	ProductID   string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"desc"`
	Price       float64 `json:"price"`
	Available   bool    `json:"available"`
	Banner      string  `json:"banner"`
}

// CartProduct is the denormalized product slice stored inside a cart line.
type CartProduct struct {
	ProductID string  `json:"_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Banner    string  `json:"banner"`
}

// CartLine holds at most one entry per product; Unit is replaced, never summed.
type CartLine struct {
	Product CartProduct `json:"product"`
	Unit    int         `json:"unit"`
}

// Order is an opaque reference appended at checkout. Items stay raw so the
// service never depends on the shopping service's line schema.
type Order struct {
	ID     string          `json:"_id"`
	Amount float64         `json:"amount"`
	Status string          `json:"status"`
	Items  json.RawMessage `json:"items,omitempty"`
	Date   time.Time       `json:"date"`
}
