// internal/services/user_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloop/shop-backend/internal/models"
)

func TestUpdateProfileCreatesWhenMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := seedUser(t, db)

	phone := "+1-555-0100"
	bio := "Plant collector"
	profile, err := svc.UpdateProfile(user.ID, &UpdateProfileRequest{Phone: &phone, Bio: &bio})
	require.NoError(t, err)

	assert.Equal(t, "+1-555-0100", profile.Phone)
	assert.Equal(t, "Plant collector", profile.Bio)

	// Partial updates leave other fields alone.
	newBio := "Plant collector and barista"
	profile, err = svc.UpdateProfile(user.ID, &UpdateProfileRequest{Bio: &newBio})
	require.NoError(t, err)
	assert.Equal(t, "+1-555-0100", profile.Phone)
	assert.Equal(t, newBio, profile.Bio)
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := seedUser(t, db)

	first, err := svc.CreateAddress(user.ID, &AddressRequest{
		Recipient: "Alex Smith",
		Line1:     "1 Main St",
		City:      "Springfield",
		Country:   "USA",
	})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := svc.CreateAddress(user.ID, &AddressRequest{
		Recipient: "Alex Smith",
		Line1:     "2 Oak Ave",
		City:      "Springfield",
		Country:   "USA",
	})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
}

func TestSetDefaultAddressStealsDefault(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := seedUser(t, db)

	first, err := svc.CreateAddress(user.ID, &AddressRequest{
		Recipient: "Sam Lee", Line1: "1 Main St", City: "Portland", Country: "USA",
	})
	require.NoError(t, err)

	second, err := svc.CreateAddress(user.ID, &AddressRequest{
		Recipient: "Sam Lee", Line1: "9 Elm St", City: "Portland", Country: "USA",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetDefaultAddress(user.ID, second.ID))

	addresses, err := svc.ListAddresses(user.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 2)

	// Default sorts first and there is exactly one.
	assert.Equal(t, second.ID, addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
	assert.Equal(t, first.ID, addresses[1].ID)
	assert.False(t, addresses[1].IsDefault)
}

func TestSetDefaultAddressOfOtherUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	owner := seedUser(t, db)
	stranger := seedUser(t, db)

	address, err := svc.CreateAddress(owner.ID, &AddressRequest{
		Recipient: "Kim Park", Line1: "4 Pine Rd", City: "Austin", Country: "USA",
	})
	require.NoError(t, err)

	err = svc.SetDefaultAddress(stranger.ID, address.ID)
	assert.True(t, errors.Is(err, ErrAddressNotFound))
}

func TestDeleteAddress(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := seedUser(t, db)

	address, err := svc.CreateAddress(user.ID, &AddressRequest{
		Recipient: "Jo March", Line1: "7 Orchard Ln", City: "Concord", Country: "USA",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAddress(user.ID, address.ID))

	addresses, err := svc.ListAddresses(user.ID)
	require.NoError(t, err)
	assert.Empty(t, addresses)
}

func TestListUsersSearch(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	seedUser(t, db)
	target := seedUser(t, db)

	params := defaultPagination()
	params.Search = target.Username

	users, total, err := svc.ListUsers(params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, target.ID, users[0].ID)
}

func TestUpdateUserStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := seedUser(t, db)

	updated, err := svc.UpdateUserStatus(user.ID, models.UserStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, updated.Status)

	_, err = svc.UpdateUserStatus(user.ID, models.UserStatus("frozen"))
	assert.Error(t, err)
}
