package domain

import "errors"

var (
	// ErrInvalidAmount is returned when creating a record with a non-positive
	// amount.
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrMissingUserID ...
	ErrMissingUserID = errors.New("missing user id")
	// ErrMissingAddress is returned when confirming without an account
	// address to settle with.
	ErrMissingAddress = errors.New("missing ledger address")
	// ErrAddressNotConnected is returned when no ledger address has been
	// connected to the user.
	ErrAddressNotConnected = errors.New("no ledger address connected")
)

// Deposit errors
var (
	// ErrDepositNotFound ...
	ErrDepositNotFound = errors.New("deposit not found")
	// ErrDepositAlreadyCompleted ...
	ErrDepositAlreadyCompleted = errors.New("deposit already completed")
	// ErrDepositExpired ...
	ErrDepositExpired = errors.New("deposit has expired")
	// ErrDepositProcessing is returned when a deposit is already being
	// confirmed.
	ErrDepositProcessing = errors.New("deposit is already being processed")
	// ErrDepositNotProcessing ...
	ErrDepositNotProcessing = errors.New("deposit must be processing")
	// ErrDepositNotCancellable ...
	ErrDepositNotCancellable = errors.New("deposit can no longer be cancelled")
)

// Withdrawal errors
var (
	// ErrWithdrawalNotFound ...
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	// ErrWithdrawalAlreadyCompleted ...
	ErrWithdrawalAlreadyCompleted = errors.New("withdrawal already completed")
	// ErrWithdrawalCancelled ...
	ErrWithdrawalCancelled = errors.New("withdrawal has been cancelled")
	// ErrWithdrawalProcessing is returned when a withdrawal is already being
	// confirmed.
	ErrWithdrawalProcessing = errors.New("withdrawal is already being processed")
	// ErrWithdrawalNotProcessing ...
	ErrWithdrawalNotProcessing = errors.New("withdrawal must be processing")
	// ErrWithdrawalNotCancellable is returned when cancelling a withdrawal that
	// is not in created status.
	ErrWithdrawalNotCancellable = errors.New("withdrawal can be cancelled only before confirmation")
)
