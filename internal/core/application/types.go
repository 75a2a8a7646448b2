package application

import (
	"github.com/shopspring/decimal"
	"github.com/stellrflow/anchord/internal/core/domain"
)

// DepositResult is the outcome of a deposit operation. Failures never come
// as errors, they are reported with Success false, a Kind and a Message.
type DepositResult struct {
	Success bool
	Deposit *domain.Deposit
	Kind    FailureKind
	Message string
}

func (r *DepositResult) DepositID() string {
	if r.Deposit == nil {
		return ""
	}
	return r.Deposit.ID
}

func (r *DepositResult) CreditedValue() decimal.Decimal {
	if r.Deposit == nil {
		return decimal.Zero
	}
	return r.Deposit.CreditedValue
}

func (r *DepositResult) SettlementReference() string {
	if r.Deposit == nil {
		return ""
	}
	return r.Deposit.SettlementReference
}

// WithdrawalResult is the outcome of a withdrawal operation.
type WithdrawalResult struct {
	Success    bool
	Withdrawal *domain.Withdrawal
	Kind       FailureKind
	Message    string
}

func (r *WithdrawalResult) WithdrawalID() string {
	if r.Withdrawal == nil {
		return ""
	}
	return r.Withdrawal.ID
}

// ValueDebited is the requested value once the ledger leg happened, zero
// otherwise.
func (r *WithdrawalResult) ValueDebited() decimal.Decimal {
	if r.Withdrawal == nil || !r.Withdrawal.IsDebited() {
		return decimal.Zero
	}
	return r.Withdrawal.RequestedValue
}

func (r *WithdrawalResult) FiatPayout() decimal.Decimal {
	if r.Withdrawal == nil {
		return decimal.Zero
	}
	return r.Withdrawal.ActualFiatPayout
}

func (r *WithdrawalResult) SettlementReference() string {
	if r.Withdrawal == nil {
		return ""
	}
	return r.Withdrawal.LedgerReference
}

// CancelResult is the outcome of a cancellation. Cancelling something that
// does not exist or can no longer be cancelled is not an error.
type CancelResult struct {
	Success bool
	Kind    FailureKind
	Message string
}

// DepositQuote is an estimate of a deposit that is not persisted.
type DepositQuote struct {
	FiatAmount     decimal.Decimal
	Currency       string
	Rate           decimal.Decimal
	EstimatedValue decimal.Decimal
}

// WithdrawalQuote is an estimate of a withdrawal that is not persisted.
type WithdrawalQuote struct {
	Value               decimal.Decimal
	Currency            string
	Rate                decimal.Decimal
	EstimatedFiatPayout decimal.Decimal
	ETA                 string
}

// QuoteResult wraps a quote with the coercion outcome of the request.
type QuoteResult struct {
	Success         bool
	DepositQuote    *DepositQuote
	WithdrawalQuote *WithdrawalQuote
	Kind            FailureKind
	Message         string
}

// AddressResult is the outcome of connecting or looking up the ledger
// address of a user.
type AddressResult struct {
	Success bool
	UserID  string
	Address string
	Kind    FailureKind
	Message string
}

// RateInfo reports both conversion directions for a currency.
type RateInfo struct {
	Currency    string
	FiatToValue decimal.Decimal
	ValueToFiat decimal.Decimal
}

// HistoryResult holds the records of a user in creation order.
type HistoryResult struct {
	Success     bool
	Deposits    []domain.Deposit
	Withdrawals []domain.Withdrawal
	Kind        FailureKind
	Message     string
}

// DepositRequest is the raw, caller-provided input of a deposit.
type DepositRequest struct {
	UserID             string
	Amount             string
	Currency           string
	DestinationAddress string
	// Credential, when not empty, selects direct custody settlement.
	Credential string
}

type ConfirmDepositRequest struct {
	DepositID          string
	DestinationAddress string
	Credential         string
}

// WithdrawalRequest is the raw, caller-provided input of a withdrawal.
type WithdrawalRequest struct {
	UserID        string
	Value         string
	Currency      string
	SourceAddress string
	// Credential, when not empty, selects direct custody settlement.
	Credential string
}

type ConfirmWithdrawalRequest struct {
	WithdrawalID    string
	SourceAddress   string
	Credential      string
	TreasuryAddress string
}
