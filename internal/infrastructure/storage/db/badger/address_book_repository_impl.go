package dbbadger

import (
	"context"
	"errors"
	"time"

	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// addressBookEntry is the storage representation of a connected address,
// keyed by user id.
type addressBookEntry struct {
	UserID    string
	Address   string
	UpdatedAt int64
}

type addressBookRepositoryImpl struct {
	store *badgerhold.Store
}

// NewAddressBookRepositoryImpl initialize a badger implementation of the
// domain.AddressBookRepository.
func NewAddressBookRepositoryImpl(
	store *badgerhold.Store,
) domain.AddressBookRepository {
	return addressBookRepositoryImpl{store}
}

func (r addressBookRepositoryImpl) SetAddress(
	_ context.Context, userID, address string,
) error {
	return r.store.Upsert(userID, addressBookEntry{
		UserID:    userID,
		Address:   address,
		UpdatedAt: time.Now().Unix(),
	})
}

func (r addressBookRepositoryImpl) GetAddress(
	_ context.Context, userID string,
) (string, error) {
	var entry addressBookEntry
	if err := r.store.Get(userID, &entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", domain.ErrAddressNotConnected
		}
		return "", err
	}
	return entry.Address, nil
}
