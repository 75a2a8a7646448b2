package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// FiatRail settles the fiat leg of a ramp operation.
type FiatRail interface {
	SimulateDeposit(
		ctx context.Context, fiatAmount decimal.Decimal, currency string,
	) (FiatReceipt, error)
	SimulateWithdrawal(
		ctx context.Context, value decimal.Decimal, currency string,
	) (FiatReceipt, error)
}

// FiatReceipt is the outcome of a fiat leg.
type FiatReceipt struct {
	Status         string
	CreditedValue  decimal.Decimal
	FiatPayout     decimal.Decimal
	Rate           decimal.Decimal
	ETA            string
	TransactionRef string
	InitiatedAt    int64
	CompletedAt    int64
}
