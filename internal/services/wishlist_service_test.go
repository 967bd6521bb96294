// internal/services/wishlist_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistAddAndList(t *testing.T) {
	db := newTestDB(t)
	svc := NewWishlistService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Record Player", "220.00", 5)

	item, err := svc.Add(user.ID, &AddWishlistItemRequest{
		ProductID: product.ID,
		Notes:     "birthday idea",
	})
	require.NoError(t, err)
	assert.Equal(t, "birthday idea", item.Notes)

	items, total, err := svc.List(user.ID, defaultPagination())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, product.ID, items[0].ProductID)
}

func TestWishlistDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := NewWishlistService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Vinyl Crate", "48.00", 5)

	_, err := svc.Add(user.ID, &AddWishlistItemRequest{ProductID: product.ID})
	require.NoError(t, err)

	_, err = svc.Add(user.ID, &AddWishlistItemRequest{ProductID: product.ID})
	assert.True(t, errors.Is(err, ErrDuplicateWishlist))
}

func TestWishlistToggle(t *testing.T) {
	db := newTestDB(t)
	svc := NewWishlistService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Headphone Amp", "150.00", 5)

	added, err := svc.Toggle(user.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, added)

	contains, err := svc.Contains(user.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, contains)

	added, err = svc.Toggle(user.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, added)

	contains, err = svc.Contains(user.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, contains)

	// Toggling back on must not hit the unique pair constraint.
	added, err = svc.Toggle(user.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, added)
}

func TestWishlistRemoveUnknownItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewWishlistService(db)
	user := seedUser(t, db)

	err := svc.Remove(user.ID, user.ID)
	assert.True(t, errors.Is(err, ErrWishlistNotFound))
}

func TestWishlistIsPerUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewWishlistService(db)
	first := seedUser(t, db)
	second := seedUser(t, db)
	product := seedProduct(t, db, "Speaker Stand", "85.00", 5)

	_, err := svc.Add(first.ID, &AddWishlistItemRequest{ProductID: product.ID})
	require.NoError(t, err)

	_, total, err := svc.List(second.ID, defaultPagination())
	require.NoError(t, err)
	assert.Zero(t, total)

	// The same product in another user's wishlist is not a duplicate.
	_, err = svc.Add(second.ID, &AddWishlistItemRequest{ProductID: product.ID})
	require.NoError(t, err)
}
