package domain

import "github.com/shopspring/decimal"

const (
	// ValuePrecision is the number of decimal places of the ledger's native
	// unit.
	ValuePrecision = 7
	// FiatPrecision is the number of decimal places used for fiat amounts.
	FiatPrecision = 2

	// DefaultSettlementETA is the display string attached to every withdrawal.
	DefaultSettlementETA = "1-2 business days"

	DepositIDPrefix    = "DEP"
	WithdrawalIDPrefix = "WDR"
)

var (
	// DefaultMinReserve is the native balance that must remain on a source
	// account after a withdrawal debit.
	DefaultMinReserve = decimal.RequireFromString("1.5")
)
