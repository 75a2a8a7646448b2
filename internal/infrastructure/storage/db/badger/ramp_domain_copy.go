package dbbadger

import (
	"github.com/shopspring/decimal"
	"github.com/stellrflow/anchord/internal/core/domain"
)

// deposit is the storage representation of domain.Deposit. Amounts are kept
// as strings so that their exact representation survives the encoding.
type deposit struct {
	ID                  string
	UserID              string `badgerhold:"index"`
	FiatAmount          string
	Currency            string
	EstimatedValue      string
	ExchangeRate        string
	DestinationAddress  string
	Status              string
	SettlementReference string
	FiatReference       string
	CreditedValue       string
	FailureReason       string
	CreatedAt           int64
	UpdatedAt           int64
	CompletedAt         int64
}

type withdrawal struct {
	ID                    string
	UserID                string `badgerhold:"index"`
	RequestedValue        string
	EstimatedFiatPayout   string
	Currency              string
	FiatPerUnitRate       string
	SourceAddress         string
	Status                string
	LedgerReference       string
	FiatReference         string
	ActualFiatPayout      string
	EstimatedTimeToSettle string
	FailureReason         string
	CreatedAt             int64
	UpdatedAt             int64
	CompletedAt           int64
}

func toDepositStorage(d *domain.Deposit) *deposit {
	return &deposit{
		ID:                  d.ID,
		UserID:              d.UserID,
		FiatAmount:          d.FiatAmount.String(),
		Currency:            d.Currency,
		EstimatedValue:      d.EstimatedValue.String(),
		ExchangeRate:        d.ExchangeRate.String(),
		DestinationAddress:  d.DestinationAddress,
		Status:              string(d.Status),
		SettlementReference: d.SettlementReference,
		FiatReference:       d.FiatReference,
		CreditedValue:       d.CreditedValue.String(),
		FailureReason:       d.FailureReason,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		CompletedAt:         d.CompletedAt,
	}
}

func (d deposit) toDomain() *domain.Deposit {
	return &domain.Deposit{
		ID:                  d.ID,
		UserID:              d.UserID,
		FiatAmount:          toDecimal(d.FiatAmount),
		Currency:            d.Currency,
		EstimatedValue:      toDecimal(d.EstimatedValue),
		ExchangeRate:        toDecimal(d.ExchangeRate),
		DestinationAddress:  d.DestinationAddress,
		Status:              domain.Status(d.Status),
		SettlementReference: d.SettlementReference,
		FiatReference:       d.FiatReference,
		CreditedValue:       toDecimal(d.CreditedValue),
		FailureReason:       d.FailureReason,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		CompletedAt:         d.CompletedAt,
	}
}

func toWithdrawalStorage(w *domain.Withdrawal) *withdrawal {
	return &withdrawal{
		ID:                    w.ID,
		UserID:                w.UserID,
		RequestedValue:        w.RequestedValue.String(),
		EstimatedFiatPayout:   w.EstimatedFiatPayout.String(),
		Currency:              w.Currency,
		FiatPerUnitRate:       w.FiatPerUnitRate.String(),
		SourceAddress:         w.SourceAddress,
		Status:                string(w.Status),
		LedgerReference:       w.LedgerReference,
		FiatReference:         w.FiatReference,
		ActualFiatPayout:      w.ActualFiatPayout.String(),
		EstimatedTimeToSettle: w.EstimatedTimeToSettle,
		FailureReason:         w.FailureReason,
		CreatedAt:             w.CreatedAt,
		UpdatedAt:             w.UpdatedAt,
		CompletedAt:           w.CompletedAt,
	}
}

func (w withdrawal) toDomain() *domain.Withdrawal {
	return &domain.Withdrawal{
		ID:                    w.ID,
		UserID:                w.UserID,
		RequestedValue:        toDecimal(w.RequestedValue),
		EstimatedFiatPayout:   toDecimal(w.EstimatedFiatPayout),
		Currency:              w.Currency,
		FiatPerUnitRate:       toDecimal(w.FiatPerUnitRate),
		SourceAddress:         w.SourceAddress,
		Status:                domain.Status(w.Status),
		LedgerReference:       w.LedgerReference,
		FiatReference:         w.FiatReference,
		ActualFiatPayout:      toDecimal(w.ActualFiatPayout),
		EstimatedTimeToSettle: w.EstimatedTimeToSettle,
		FailureReason:         w.FailureReason,
		CreatedAt:             w.CreatedAt,
		UpdatedAt:             w.UpdatedAt,
		CompletedAt:           w.CompletedAt,
	}
}

func toDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
