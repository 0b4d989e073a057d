package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wishItem(id string) WishlistItem {
	return WishlistItem{ProductID: id, Name: "item-" + id, Price: 9.99, Available: true}
}

func cartProduct(id string) CartProduct {
	return CartProduct{ProductID: id, Name: "item-" + id, Price: 9.99}
}

func TestAddWishlistItem(t *testing.T) {
	u := &User{}

	u.AddWishlistItem(wishItem("p1"))
	require.Len(t, u.Wishlist, 1)
	assert.True(t, u.WishlistContains("p1"))

	// repeat add is idempotent, never a removal
	u.AddWishlistItem(wishItem("p1"))
	require.Len(t, u.Wishlist, 1)
	assert.True(t, u.WishlistContains("p1"))
}

func TestAddWishlistItemRefreshesDenormalizedFields(t *testing.T) {
	u := &User{}
	u.AddWishlistItem(wishItem("p1"))

	updated := wishItem("p1")
	updated.Price = 19.99
	updated.Available = false
	u.AddWishlistItem(updated)

	require.Len(t, u.Wishlist, 1)
	assert.Equal(t, 19.99, u.Wishlist[0].Price)
	assert.False(t, u.Wishlist[0].Available)
}

func TestRemoveWishlistItem(t *testing.T) {
	u := &User{}
	u.AddWishlistItem(wishItem("p1"))
	u.AddWishlistItem(wishItem("p2"))

	require.True(t, u.RemoveWishlistItem("p1"))
	assert.False(t, u.WishlistContains("p1"))
	assert.True(t, u.WishlistContains("p2"))

	// remove on a non-member is a no-op, not an add
	require.False(t, u.RemoveWishlistItem("p1"))
	assert.Len(t, u.Wishlist, 1)
}

func TestWishlistAddRemoveRoundTrip(t *testing.T) {
	u := &User{}
	u.AddWishlistItem(wishItem("p1"))
	u.RemoveWishlistItem("p1")
	assert.Empty(t, u.Wishlist)
}

func TestSetCartQuantityReplacesNotSums(t *testing.T) {
	u := &User{}

	u.SetCartQuantity(cartProduct("p1"), 3)
	u.SetCartQuantity(cartProduct("p1"), 3)

	require.Len(t, u.Cart, 1)
	assert.Equal(t, 3, u.Cart[0].Unit)

	u.SetCartQuantity(cartProduct("p1"), 5)
	require.Len(t, u.Cart, 1)
	assert.Equal(t, 5, u.Cart[0].Unit)
}

func TestSetCartQuantityAppendsNewLine(t *testing.T) {
	u := &User{}
	u.SetCartQuantity(cartProduct("p1"), 1)
	u.SetCartQuantity(cartProduct("p2"), 2)

	require.Len(t, u.Cart, 2)
	line, ok := u.CartLineFor("p2")
	require.True(t, ok)
	assert.Equal(t, 2, line.Unit)
}

func TestRemoveCartLine(t *testing.T) {
	u := &User{}
	u.SetCartQuantity(cartProduct("p1"), 2)

	require.True(t, u.RemoveCartLine("p1"))
	assert.Empty(t, u.Cart)

	// removing an absent line must not append anything
	require.False(t, u.RemoveCartLine("p1"))
	assert.Empty(t, u.Cart)

	require.False(t, u.RemoveCartLine("never-added"))
	assert.Empty(t, u.Cart)
}

func TestAppendOrderClearsCart(t *testing.T) {
	u := &User{}
	u.SetCartQuantity(cartProduct("p1"), 2)
	u.SetCartQuantity(cartProduct("p2"), 1)

	order := Order{ID: "o1", Amount: 42.50, Status: "received", Date: time.Now()}
	u.AppendOrder(order)

	require.Len(t, u.Orders, 1)
	assert.Equal(t, "o1", u.Orders[0].ID)
	assert.Empty(t, u.Cart)

	// cart already empty: order still appended
	u.AppendOrder(Order{ID: "o2"})
	require.Len(t, u.Orders, 2)
	assert.Empty(t, u.Cart)
}
