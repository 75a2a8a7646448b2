package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerClient is the capability to query balances and move native value on
// the underlying network. Transaction construction, fees and signing are
// entirely up to the implementation.
type LedgerClient interface {
	// GetBalance returns the balances of the given account. An account that
	// does not exist on the network is not an error, Exists is just false.
	GetBalance(ctx context.Context, address string) (Balance, error)
	// Transfer moves amount native units from source to destination, signing
	// with credential. The transfer is rejected if credential does not control
	// source. An empty source means the account controlled by credential.
	// Rejections by the network are reported in the outcome, errors are for
	// transport failures.
	Transfer(
		ctx context.Context, credential, source, destination string,
		amount decimal.Decimal,
	) (TransferOutcome, error)
	// FundViaFaucet funds the given account from the test network faucet.
	FundViaFaucet(ctx context.Context, address string) (TransferOutcome, error)
}

type Balance struct {
	Exists        bool
	NativeBalance decimal.Decimal
	OtherAssets   []AssetBalance
}

type AssetBalance struct {
	Code    string
	Issuer  string
	Balance decimal.Decimal
}

type TransferOutcome struct {
	Success   bool
	Reference string
	Error     string
}
