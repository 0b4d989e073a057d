package entity

// Collection mutators operate on an in-memory User snapshot; callers persist
// the whole document afterwards. All operations are direction-correct and
// membership-aware: a remove on a non-member is a no-op, a repeated add never
// flips into a remove. Lookups are explicit, never length-guard branches.

// WishlistContains reports whether the wishlist holds an entry for productID.
func (u *User) WishlistContains(productID string) bool {
	for i := range u.Wishlist {
		if u.Wishlist[i].ProductID == productID {
			return true
		}
	}
	return false
}

// CartLineFor returns the cart line for productID, if any.
func (u *User) CartLineFor(productID string) (*CartLine, bool) {
	for i := range u.Cart {
		if u.Cart[i].Product.ProductID == productID {
			return &u.Cart[i], true
		}
	}
	return nil, false
}

// AddWishlistItem appends item when absent. When the product is already
// wished for, the stored denormalized fields are refreshed instead; a repeat
// add is idempotent and never removes the entry.
func (u *User) AddWishlistItem(item WishlistItem) {
	for i := range u.Wishlist {
		if u.Wishlist[i].ProductID == item.ProductID {
			u.Wishlist[i] = item
			return
		}
	}
	u.Wishlist = append(u.Wishlist, item)
}

// RemoveWishlistItem removes the entry for productID. Returns false when the
// product was not wished for; the wishlist is left untouched in that case.
func (u *User) RemoveWishlistItem(productID string) bool {
	for i := range u.Wishlist {
		if u.Wishlist[i].ProductID == productID {
			u.Wishlist = append(u.Wishlist[:i], u.Wishlist[i+1:]...)
			return true
		}
	}
	return false
}

// SetCartQuantity upserts the line for product with the given unit count.
// An existing line has its quantity replaced, not summed.
func (u *User) SetCartQuantity(product CartProduct, qty int) {
	for i := range u.Cart {
		if u.Cart[i].Product.ProductID == product.ProductID {
			u.Cart[i].Product = product
			u.Cart[i].Unit = qty
			return
		}
	}
	u.Cart = append(u.Cart, CartLine{Product: product, Unit: qty})
}

// RemoveCartLine deletes the line for productID entirely. Returns false when
// no such line exists; nothing is appended.
func (u *User) RemoveCartLine(productID string) bool {
	for i := range u.Cart {
		if u.Cart[i].Product.ProductID == productID {
			u.Cart = append(u.Cart[:i], u.Cart[i+1:]...)
			return true
		}
	}
	return false
}

// AppendOrder appends order to the order sequence and clears the cart
// unconditionally (checkout semantics).
func (u *User) AppendOrder(order Order) {
	u.Orders = append(u.Orders, order)
	u.Cart = nil
}
