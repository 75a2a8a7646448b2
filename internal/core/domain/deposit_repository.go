package domain

import "context"

// DepositRepository is the abstraction for any kind of database intended to
// persist Deposits. Deposits are never deleted.
type DepositRepository interface {
	// AddDeposit stores a new deposit and appends it to the user index.
	AddDeposit(ctx context.Context, deposit *Deposit) error
	// GetDeposit returns the deposit with the given id or ErrDepositNotFound.
	GetDeposit(ctx context.Context, id string) (*Deposit, error)
	// GetDepositsForUser returns the deposits of the given user in creation
	// order. A nil page returns the whole list.
	GetDepositsForUser(
		ctx context.Context, userID string, page *Page,
	) ([]Deposit, error)
	// GetAllDeposits returns all deposits in creation order.
	GetAllDeposits(ctx context.Context, page *Page) ([]Deposit, error)
	// UpdateDeposit allows to commit multiple changes to the same deposit in a
	// transactional way.
	UpdateDeposit(
		ctx context.Context, id string,
		updateFn func(d *Deposit) (*Deposit, error),
	) error
}
