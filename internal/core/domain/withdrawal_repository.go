package domain

import "context"

// WithdrawalRepository is the abstraction for any kind of database intended
// to persist Withdrawals. Withdrawals are never deleted.
type WithdrawalRepository interface {
	// AddWithdrawal stores a new withdrawal and appends it to the user index.
	AddWithdrawal(ctx context.Context, withdrawal *Withdrawal) error
	// GetWithdrawal returns the withdrawal with the given id or
	// ErrWithdrawalNotFound.
	GetWithdrawal(ctx context.Context, id string) (*Withdrawal, error)
	// GetWithdrawalsForUser returns the withdrawals of the given user in
	// creation order. A nil page returns the whole list.
	GetWithdrawalsForUser(
		ctx context.Context, userID string, page *Page,
	) ([]Withdrawal, error)
	// GetAllWithdrawals returns all withdrawals in creation order.
	GetAllWithdrawals(ctx context.Context, page *Page) ([]Withdrawal, error)
	// UpdateWithdrawal allows to commit multiple changes to the same
	// withdrawal in a transactional way.
	UpdateWithdrawal(
		ctx context.Context, id string,
		updateFn func(w *Withdrawal) (*Withdrawal, error),
	) error
}
