package inmemory

import (
	"context"

	"github.com/stellrflow/anchord/internal/core/domain"
)

type addressBookRepositoryImpl struct {
	store *addressBookInmemoryStore
}

// NewAddressBookRepositoryImpl returns a new inmemory AddressBookRepository
// implementation.
func NewAddressBookRepositoryImpl(
	store *addressBookInmemoryStore,
) domain.AddressBookRepository {
	return &addressBookRepositoryImpl{store}
}

func (r *addressBookRepositoryImpl) SetAddress(
	_ context.Context, userID, address string,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.addresses[userID] = address
	return nil
}

func (r *addressBookRepositoryImpl) GetAddress(
	_ context.Context, userID string,
) (string, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	address, ok := r.store.addresses[userID]
	if !ok {
		return "", domain.ErrAddressNotConnected
	}
	return address, nil
}
