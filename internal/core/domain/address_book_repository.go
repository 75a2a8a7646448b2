package domain

import "context"

// AddressBookRepository keeps the ledger address each user connected, so
// that ramp operations can be requested without repeating it.
type AddressBookRepository interface {
	// SetAddress connects address to the user, replacing any previous one.
	SetAddress(ctx context.Context, userID, address string) error
	// GetAddress returns the address connected to the user or
	// ErrAddressNotConnected.
	GetAddress(ctx context.Context, userID string) (string, error)
}
