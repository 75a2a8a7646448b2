package simnet

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/internal/core/ports"
	"github.com/thanhpk/randstr"
)

// Rejection reasons reported in failed transfer outcomes.
const (
	ReasonInvalidCredential = "invalid credential"
	ReasonNotAuthorized     = "credential does not control source account"
	ReasonNoSource          = "source account does not exist"
	ReasonNoDestination     = "destination account does not exist"
	ReasonUnderfunded       = "source account is underfunded"
	ReasonInvalidAmount     = "amount must be positive"
)

var DefaultFaucetAmount = decimal.NewFromInt(10000)

// Ledger is an in-process ledger keeping native balances in memory. It is
// meant for development and tests, where no real network is available.
type Ledger struct {
	lock         *sync.RWMutex
	balances     map[string]decimal.Decimal
	credentials  map[string]string
	faucetAmount decimal.Decimal
}

// NewLedger returns an empty simulated ledger whose faucet credits the given
// amount. A non-positive amount falls back to DefaultFaucetAmount.
func NewLedger(faucetAmount decimal.Decimal) *Ledger {
	if !faucetAmount.IsPositive() {
		faucetAmount = DefaultFaucetAmount
	}
	return &Ledger{
		lock:         &sync.RWMutex{},
		balances:     make(map[string]decimal.Decimal),
		credentials:  make(map[string]string),
		faucetAmount: faucetAmount,
	}
}

var _ ports.LedgerClient = (*Ledger)(nil)

// AddAccount creates or overwrites the account with the given balance.
func (l *Ledger) AddAccount(address string, balance decimal.Decimal) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.balances[address] = domain.RoundValue(balance)
}

// AddCredential makes credential the signing key of address.
func (l *Ledger) AddCredential(credential, address string) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.credentials[credential] = address
}

func (l *Ledger) GetBalance(
	_ context.Context, address string,
) (ports.Balance, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	balance, ok := l.balances[address]
	if !ok {
		return ports.Balance{NativeBalance: decimal.Zero}, nil
	}
	return ports.Balance{Exists: true, NativeBalance: balance}, nil
}

func (l *Ledger) Transfer(
	_ context.Context, credential, source, destination string,
	amount decimal.Decimal,
) (ports.TransferOutcome, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if !amount.IsPositive() {
		return rejected(ReasonInvalidAmount), nil
	}
	signer, ok := l.credentials[credential]
	if !ok {
		return rejected(ReasonInvalidCredential), nil
	}
	if source == "" {
		source = signer
	}
	if source != signer {
		return rejected(ReasonNotAuthorized), nil
	}
	sourceBalance, ok := l.balances[source]
	if !ok {
		return rejected(ReasonNoSource), nil
	}
	destinationBalance, ok := l.balances[destination]
	if !ok {
		return rejected(ReasonNoDestination), nil
	}

	amount = domain.RoundValue(amount)
	if sourceBalance.LessThan(amount) {
		return rejected(ReasonUnderfunded), nil
	}

	if source != destination {
		l.balances[source] = sourceBalance.Sub(amount)
		l.balances[destination] = destinationBalance.Add(amount)
	}

	ref := newReference()
	log.Debugf(
		"simnet: transferred %s from %s to %s (%s)", amount, source, destination, ref,
	)
	return ports.TransferOutcome{Success: true, Reference: ref}, nil
}

// FundViaFaucet creates the account if missing and credits it with the faucet
// amount. Unlike public test network faucets, existing accounts are topped up.
func (l *Ledger) FundViaFaucet(
	_ context.Context, address string,
) (ports.TransferOutcome, error) {
	if address == "" {
		return rejected(ReasonNoDestination), nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	balance, ok := l.balances[address]
	if !ok {
		balance = decimal.Zero
	}
	l.balances[address] = balance.Add(l.faucetAmount)

	return ports.TransferOutcome{Success: true, Reference: newReference()}, nil
}

func rejected(reason string) ports.TransferOutcome {
	return ports.TransferOutcome{Error: reason}
}

func newReference() string {
	return randstr.Hex(32)
}
