package application_test

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stellrflow/anchord/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

type mockLedgerClient struct {
	mock.Mock
}

func (m *mockLedgerClient) GetBalance(
	ctx context.Context, address string,
) (ports.Balance, error) {
	args := m.Called(ctx, address)

	var res ports.Balance
	if a := args.Get(0); a != nil {
		res = a.(ports.Balance)
	}
	return res, args.Error(1)
}

func (m *mockLedgerClient) Transfer(
	ctx context.Context, credential, source, destination string,
	amount decimal.Decimal,
) (ports.TransferOutcome, error) {
	args := m.Called(ctx, credential, source, destination, amount)

	var res ports.TransferOutcome
	if a := args.Get(0); a != nil {
		res = a.(ports.TransferOutcome)
	}
	return res, args.Error(1)
}

func (m *mockLedgerClient) FundViaFaucet(
	ctx context.Context, address string,
) (ports.TransferOutcome, error) {
	args := m.Called(ctx, address)

	var res ports.TransferOutcome
	if a := args.Get(0); a != nil {
		res = a.(ports.TransferOutcome)
	}
	return res, args.Error(1)
}

type mockFiatRail struct {
	mock.Mock
}

func (m *mockFiatRail) SimulateDeposit(
	ctx context.Context, fiatAmount decimal.Decimal, currency string,
) (ports.FiatReceipt, error) {
	args := m.Called(ctx, fiatAmount, currency)

	var res ports.FiatReceipt
	if a := args.Get(0); a != nil {
		res = a.(ports.FiatReceipt)
	}
	return res, args.Error(1)
}

func (m *mockFiatRail) SimulateWithdrawal(
	ctx context.Context, value decimal.Decimal, currency string,
) (ports.FiatReceipt, error) {
	args := m.Called(ctx, value, currency)

	var res ports.FiatReceipt
	if a := args.Get(0); a != nil {
		res = a.(ports.FiatReceipt)
	}
	return res, args.Error(1)
}

// mockPublisher records published messages by topic.
type mockPublisher struct {
	lock     sync.Mutex
	messages map[string][]string
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{messages: make(map[string][]string)}
}

func (m *mockPublisher) Subscribe(_, _, _ string) (string, error) {
	return "", nil
}

func (m *mockPublisher) Unsubscribe(_ string) error {
	return nil
}

func (m *mockPublisher) ListSubscriptionsForTopic(
	_ string,
) []ports.Subscription {
	return nil
}

func (m *mockPublisher) Publish(topic, message string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.messages[topic] = append(m.messages[topic], message)
	return nil
}

func (m *mockPublisher) count(topic string) int {
	m.lock.Lock()
	defer m.lock.Unlock()

	return len(m.messages[topic])
}
