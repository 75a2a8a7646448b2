package application

import (
	"errors"

	"github.com/stellrflow/anchord/internal/core/domain"
)

var (
	// ErrInvalidAmountFormat is returned when an amount does not parse as a
	// decimal number.
	ErrInvalidAmountFormat = errors.New("amount must be a number")
	// ErrUnsupportedCurrency is returned in strict currency mode only.
	ErrUnsupportedCurrency = errors.New("currency not supported")
	// ErrMissingTreasury is returned when debiting with direct custody and no
	// treasury address is configured.
	ErrMissingTreasury = errors.New("missing treasury address")
	// ErrSourceAccountNotFound ...
	ErrSourceAccountNotFound = errors.New("source account does not exist on ledger")
	// ErrInsufficientBalance is returned by the balance re-validation that
	// precedes every withdrawal debit.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrSettlementRejected is returned when the ledger client reports a
	// failed transfer.
	ErrSettlementRejected = errors.New("ledger rejected settlement")
	// ErrServiceUnavailable is returned when a dependency fails unexpectedly.
	ErrServiceUnavailable = errors.New("service is unavailable, try again later")
)

var (
	validationErrors = []error{
		domain.ErrInvalidAmount, domain.ErrMissingUserID, domain.ErrMissingAddress,
		domain.ErrAddressNotConnected,
		ErrInvalidAmountFormat, ErrUnsupportedCurrency, ErrMissingTreasury,
	}
	notFoundErrors = []error{
		domain.ErrDepositNotFound, domain.ErrWithdrawalNotFound,
	}
	invalidStateErrors = []error{
		domain.ErrDepositAlreadyCompleted, domain.ErrDepositExpired,
		domain.ErrDepositProcessing, domain.ErrDepositNotProcessing,
		domain.ErrDepositNotCancellable,
		domain.ErrWithdrawalAlreadyCompleted, domain.ErrWithdrawalCancelled,
		domain.ErrWithdrawalProcessing, domain.ErrWithdrawalNotProcessing,
		domain.ErrWithdrawalNotCancellable,
	}
)

// kindOf classifies an error. Anything unknown is reported as a settlement
// failure.
func kindOf(err error) FailureKind {
	for _, e := range notFoundErrors {
		if errors.Is(err, e) {
			return KindNotFound
		}
	}
	for _, e := range validationErrors {
		if errors.Is(err, e) {
			return KindValidationFailure
		}
	}
	for _, e := range invalidStateErrors {
		if errors.Is(err, e) {
			return KindInvalidState
		}
	}
	return KindSettlementFailure
}

// isBusinessError returns whether err is one of the known failures that
// must be turned into a result rather than propagated.
func isBusinessError(err error) bool {
	if kindOf(err) != KindSettlementFailure {
		return true
	}
	return errors.Is(err, ErrSettlementRejected) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrSourceAccountNotFound)
}
