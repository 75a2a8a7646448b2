package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/ports"
	"github.com/thanhpk/randstr"
)

// Settlement is the strategy used to execute the value leg of a ramp
// operation on the ledger. Callers pick the variant explicitly.
type Settlement interface {
	Name() string
	// Credit sends amount to destination and returns the ledger reference.
	Credit(
		ctx context.Context, ledger ports.LedgerClient,
		destination string, amount decimal.Decimal,
	) (string, error)
	// Debit moves amount from source to treasury and returns the ledger
	// reference. The debited account is always source.
	Debit(
		ctx context.Context, ledger ports.LedgerClient,
		source, treasury string, amount decimal.Decimal,
	) (string, error)
}

// SettlementFor returns DirectCustody if a credential is given, ExternalCustody
// otherwise.
func SettlementFor(credential string) Settlement {
	if credential != "" {
		return DirectCustody{Credential: credential}
	}
	return ExternalCustody{}
}

// DirectCustody settles with a signing credential held by the daemon for the
// duration of the request.
type DirectCustody struct {
	Credential string
}

func (DirectCustody) Name() string {
	return "direct-custody"
}

func (s DirectCustody) Credit(
	ctx context.Context, ledger ports.LedgerClient,
	destination string, amount decimal.Decimal,
) (string, error) {
	outcome, err := ledger.Transfer(ctx, s.Credential, "", destination, amount)
	if err != nil {
		return "", err
	}
	return referenceOf(outcome)
}

func (s DirectCustody) Debit(
	ctx context.Context, ledger ports.LedgerClient,
	source, treasury string, amount decimal.Decimal,
) (string, error) {
	if treasury == "" {
		return "", ErrMissingTreasury
	}
	outcome, err := ledger.Transfer(ctx, s.Credential, source, treasury, amount)
	if err != nil {
		return "", err
	}
	return referenceOf(outcome)
}

// ExternalCustody is used when the account key is held outside the daemon,
// for example by a browser wallet. Credits are funded through the test network
// faucet and debits cannot be signed, so they are only simulated.
type ExternalCustody struct{}

func (ExternalCustody) Name() string {
	return "external-custody"
}

func (ExternalCustody) Credit(
	ctx context.Context, ledger ports.LedgerClient,
	destination string, _ decimal.Decimal,
) (string, error) {
	outcome, err := ledger.FundViaFaucet(ctx, destination)
	if err != nil {
		return "", err
	}
	return referenceOf(outcome)
}

func (ExternalCustody) Debit(
	_ context.Context, _ ports.LedgerClient,
	source, _ string, amount decimal.Decimal,
) (string, error) {
	log.Warnf(
		"external custody: debit of %s %s from %s simulated, it must be signed "+
			"by the account holder", amount, NativeAssetCode, source,
	)
	return simulatedDebitPrefix + randstr.Hex(16), nil
}

func referenceOf(outcome ports.TransferOutcome) (string, error) {
	if !outcome.Success {
		return "", fmt.Errorf("%w: %s", ErrSettlementRejected, outcome.Error)
	}
	return outcome.Reference, nil
}
