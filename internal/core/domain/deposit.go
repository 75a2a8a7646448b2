package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit tracks the conversion of a fiat amount into native value credited
// to a ledger account (on-ramp).
type Deposit struct {
	ID                  string
	UserID              string
	FiatAmount          decimal.Decimal
	Currency            string
	EstimatedValue      decimal.Decimal
	ExchangeRate        decimal.Decimal
	DestinationAddress  string
	Status              Status
	SettlementReference string
	FiatReference       string
	CreditedValue       decimal.Decimal
	FailureReason       string
	CreatedAt           int64
	UpdatedAt           int64
	CompletedAt         int64
}

// NewDeposit returns a deposit in created status with the exchange rate of
// the given currency snapshotted. The destination address is optional at this
// stage.
func NewDeposit(
	userID string, fiatAmount decimal.Decimal, currency, destination string,
) (*Deposit, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	// Quote and credit are both derived from the rounded amount.
	fiatAmount = RoundFiat(fiatAmount)
	if !fiatAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	currency = EffectiveCurrency(currency)
	now := time.Now().Unix()
	return &Deposit{
		ID:                 NewDepositID(),
		UserID:             userID,
		FiatAmount:         fiatAmount,
		Currency:           currency,
		EstimatedValue:     EstimateValue(fiatAmount, currency),
		ExchangeRate:       RateFor(currency),
		DestinationAddress: destination,
		Status:             StatusCreated,
		CreditedValue:      decimal.Zero,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// StartProcessing brings a created or previously failed deposit to the
// processing status.
func (d *Deposit) StartProcessing(destination string) error {
	switch d.Status {
	case StatusCompleted:
		return ErrDepositAlreadyCompleted
	case StatusExpired:
		return ErrDepositExpired
	case StatusProcessing:
		return ErrDepositProcessing
	}

	if destination == "" {
		destination = d.DestinationAddress
	}
	if destination == "" {
		return ErrMissingAddress
	}

	d.DestinationAddress = destination
	d.FailureReason = ""
	d.Status = StatusProcessing
	d.UpdatedAt = time.Now().Unix()
	return nil
}

// CreditAmount is the value credited on completion. It is computed from the
// rate snapshot taken at creation, never from the current rate table.
func (d *Deposit) CreditAmount() decimal.Decimal {
	return RoundValue(d.FiatAmount.Mul(d.ExchangeRate))
}

// Complete brings a processing deposit to the completed status.
func (d *Deposit) Complete(
	credited decimal.Decimal, settlementRef, fiatRef string,
) error {
	if d.Status == StatusCompleted {
		return ErrDepositAlreadyCompleted
	}
	if d.Status != StatusProcessing {
		return ErrDepositNotProcessing
	}

	now := time.Now().Unix()
	d.CreditedValue = RoundValue(credited)
	d.SettlementReference = settlementRef
	if fiatRef != "" {
		d.FiatReference = fiatRef
	}
	d.Status = StatusCompleted
	d.UpdatedAt = now
	d.CompletedAt = now
	return nil
}

// Fail marks a processing deposit as failed with the given reason.
func (d *Deposit) Fail(reason string) error {
	if d.Status != StatusProcessing {
		return ErrDepositNotProcessing
	}

	d.FailureReason = reason
	d.Status = StatusFailed
	d.CreditedValue = decimal.Zero
	d.UpdatedAt = time.Now().Unix()
	return nil
}

// Expire cancels the deposit. Only created or processing deposits can be
// expired.
func (d *Deposit) Expire() error {
	if d.Status != StatusCreated && d.Status != StatusProcessing {
		return ErrDepositNotCancellable
	}

	d.Status = StatusExpired
	d.UpdatedAt = time.Now().Unix()
	return nil
}

func (d *Deposit) IsCreated() bool {
	return d.Status == StatusCreated
}

func (d *Deposit) IsProcessing() bool {
	return d.Status == StatusProcessing
}

func (d *Deposit) IsCompleted() bool {
	return d.Status == StatusCompleted
}

func (d *Deposit) IsFailed() bool {
	return d.Status == StatusFailed
}

func (d *Deposit) IsExpired() bool {
	return d.Status == StatusExpired
}
