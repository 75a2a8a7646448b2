package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal tracks the conversion of native value debited from a ledger
// account into a fiat payout (off-ramp).
type Withdrawal struct {
	ID                    string
	UserID                string
	RequestedValue        decimal.Decimal
	EstimatedFiatPayout   decimal.Decimal
	Currency              string
	FiatPerUnitRate       decimal.Decimal
	SourceAddress         string
	Status                Status
	LedgerReference       string
	FiatReference         string
	ActualFiatPayout      decimal.Decimal
	EstimatedTimeToSettle string
	FailureReason         string
	CreatedAt             int64
	UpdatedAt             int64
	CompletedAt           int64
}

// NewWithdrawal returns a withdrawal in created status. The fiat-per-unit
// rate is the reciprocal of the deposit rate of the same currency.
func NewWithdrawal(
	userID string, value decimal.Decimal, currency, source string,
) (*Withdrawal, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	value = RoundValue(value)
	if !value.IsPositive() {
		return nil, ErrInvalidAmount
	}

	currency = EffectiveCurrency(currency)
	now := time.Now().Unix()
	return &Withdrawal{
		ID:                    NewWithdrawalID(),
		UserID:                userID,
		RequestedValue:        value,
		EstimatedFiatPayout:   EstimateFiat(value, currency),
		Currency:              currency,
		FiatPerUnitRate:       WithdrawalRateFor(currency),
		SourceAddress:         source,
		Status:                StatusCreated,
		ActualFiatPayout:      decimal.Zero,
		EstimatedTimeToSettle: DefaultSettlementETA,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// StartProcessing brings a created or previously failed withdrawal to the
// processing status.
func (w *Withdrawal) StartProcessing(source string) error {
	switch w.Status {
	case StatusCompleted:
		return ErrWithdrawalAlreadyCompleted
	case StatusCancelled:
		return ErrWithdrawalCancelled
	case StatusProcessing:
		return ErrWithdrawalProcessing
	}

	if source == "" {
		source = w.SourceAddress
	}
	if source == "" {
		return ErrMissingAddress
	}

	w.SourceAddress = source
	w.FailureReason = ""
	w.Status = StatusProcessing
	w.UpdatedAt = time.Now().Unix()
	return nil
}

// IsDebited returns whether the value leg already happened on the ledger.
func (w *Withdrawal) IsDebited() bool {
	return w.LedgerReference != ""
}

// MarkDebited records the reference of the ledger debit of a processing
// withdrawal.
func (w *Withdrawal) MarkDebited(ledgerRef string) error {
	if w.Status != StatusProcessing {
		return ErrWithdrawalNotProcessing
	}

	w.LedgerReference = ledgerRef
	w.UpdatedAt = time.Now().Unix()
	return nil
}

// PayoutAmount is the fiat paid out on completion, computed from the rate
// snapshot taken at creation.
func (w *Withdrawal) PayoutAmount() decimal.Decimal {
	return RoundFiat(w.RequestedValue.Mul(w.FiatPerUnitRate))
}

// Complete brings a processing withdrawal to the completed status.
func (w *Withdrawal) Complete(payout decimal.Decimal, fiatRef string) error {
	if w.Status == StatusCompleted {
		return ErrWithdrawalAlreadyCompleted
	}
	if w.Status != StatusProcessing {
		return ErrWithdrawalNotProcessing
	}

	now := time.Now().Unix()
	w.ActualFiatPayout = RoundFiat(payout)
	w.FiatReference = fiatRef
	w.Status = StatusCompleted
	w.UpdatedAt = now
	w.CompletedAt = now
	return nil
}

// Fail marks a processing withdrawal as failed with the given reason.
func (w *Withdrawal) Fail(reason string) error {
	if w.Status != StatusProcessing {
		return ErrWithdrawalNotProcessing
	}

	w.FailureReason = reason
	w.Status = StatusFailed
	w.ActualFiatPayout = decimal.Zero
	w.UpdatedAt = time.Now().Unix()
	return nil
}

// Cancel is allowed only before confirmation, so that an in-flight debit is
// never raced.
func (w *Withdrawal) Cancel() error {
	if w.Status != StatusCreated {
		return ErrWithdrawalNotCancellable
	}

	w.Status = StatusCancelled
	w.UpdatedAt = time.Now().Unix()
	return nil
}

func (w *Withdrawal) IsCreated() bool {
	return w.Status == StatusCreated
}

func (w *Withdrawal) IsProcessing() bool {
	return w.Status == StatusProcessing
}

func (w *Withdrawal) IsCompleted() bool {
	return w.Status == StatusCompleted
}

func (w *Withdrawal) IsFailed() bool {
	return w.Status == StatusFailed
}

func (w *Withdrawal) IsCancelled() bool {
	return w.Status == StatusCancelled
}
