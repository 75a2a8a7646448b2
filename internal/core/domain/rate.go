package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	USD = "USD"
	EUR = "EUR"
	INR = "INR"
	GBP = "GBP"

	// reciprocalPrecision is the precision used when inverting a deposit rate.
	reciprocalPrecision = 16
)

var (
	supportedCurrencies = []string{USD, EUR, INR, GBP}

	// valuePerFiatUnit holds how many native value units one unit of fiat buys.
	valuePerFiatUnit = map[string]decimal.Decimal{
		USD: decimal.NewFromInt(10),
		EUR: decimal.NewFromInt(11),
		INR: decimal.RequireFromString("0.12"),
		GBP: decimal.RequireFromString("12.5"),
	}
)

// RateFor returns the deposit-direction rate, value units per fiat unit, for
// the given currency. Unknown currencies get the USD rate.
func RateFor(currency string) decimal.Decimal {
	if rate, ok := valuePerFiatUnit[NormalizeCurrency(currency)]; ok {
		return rate
	}
	return valuePerFiatUnit[USD]
}

// WithdrawalRateFor returns the withdrawal-direction rate, fiat units per
// value unit. It is always the reciprocal of RateFor.
func WithdrawalRateFor(currency string) decimal.Decimal {
	return decimal.NewFromInt(1).DivRound(RateFor(currency), reciprocalPrecision)
}

// SupportedCurrencies returns the fixed, ordered list of currency codes.
func SupportedCurrencies() []string {
	list := make([]string, len(supportedCurrencies))
	copy(list, supportedCurrencies)
	return list
}

func IsSupportedCurrency(currency string) bool {
	_, ok := valuePerFiatUnit[NormalizeCurrency(currency)]
	return ok
}

// NormalizeCurrency trims and uppercases a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// EffectiveCurrency returns the code whose rate RateFor actually applies.
func EffectiveCurrency(currency string) string {
	c := NormalizeCurrency(currency)
	if _, ok := valuePerFiatUnit[c]; ok {
		return c
	}
	return USD
}

// RoundValue rounds an amount of native value to the ledger precision.
func RoundValue(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(ValuePrecision)
}

// RoundFiat rounds a fiat amount to cents.
func RoundFiat(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(FiatPrecision)
}

// EstimateValue returns the value credited for the given fiat amount. The
// amount is rounded to cents first, as it is when stored in a deposit.
func EstimateValue(fiatAmount decimal.Decimal, currency string) decimal.Decimal {
	return RoundValue(RoundFiat(fiatAmount).Mul(RateFor(currency)))
}

// EstimateFiat returns the fiat paid out for the given value amount. The
// amount is rounded to the ledger precision first, as it is when stored in a
// withdrawal.
func EstimateFiat(value decimal.Decimal, currency string) decimal.Decimal {
	return RoundFiat(RoundValue(value).Mul(WithdrawalRateFor(currency)))
}
