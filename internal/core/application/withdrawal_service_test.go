package application_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stellrflow/anchord/internal/core/application"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/internal/core/ports"
	fiatrail "github.com/stellrflow/anchord/internal/infrastructure/fiat-rail"
	"github.com/stellrflow/anchord/internal/infrastructure/ledger/simnet"
	"github.com/stellrflow/anchord/internal/infrastructure/storage/db/inmemory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	source    = "GSOURCE"
	sourceKey = "SSOURCE"
	treasury  = "GTREASURY"
)

func newWithdrawalService(
	t *testing.T, ledger ports.LedgerClient, fiatRail ports.FiatRail,
	publisher ports.Publisher, treasury string,
) application.WithdrawalService {
	t.Helper()

	svc, err := application.NewWithdrawalService(
		inmemory.NewRepoManager(), ledger, fiatRail, publisher,
		treasury, domain.DefaultMinReserve,
	)
	require.NoError(t, err)
	return svc
}

// newFundedLedger returns a simulated ledger where the source account holds
// the given balance and the treasury account exists.
func newFundedLedger(balance string) *simnet.Ledger {
	ledger := simnet.NewLedger(decimal.Zero)
	ledger.AddAccount(source, decimal.RequireFromString(balance))
	ledger.AddCredential(sourceKey, source)
	ledger.AddAccount(treasury, decimal.Zero)
	return ledger
}

func TestNewWithdrawalServiceFailing(t *testing.T) {
	svc, err := application.NewWithdrawalService(
		inmemory.NewRepoManager(), simnet.NewLedger(decimal.Zero),
		fiatrail.NewService(0), nil, treasury, decimal.NewFromInt(-1),
	)
	require.EqualError(t, err, "min reserve must not be negative")
	require.Nil(t, svc)

	svc, err = application.NewWithdrawalService(
		nil, simnet.NewLedger(decimal.Zero), fiatrail.NewService(0), nil,
		treasury, domain.DefaultMinReserve,
	)
	require.EqualError(t, err, "missing repo manager")
	require.Nil(t, svc)
}

func TestWithdrawalCreateAndEstimate(t *testing.T) {
	svc := newWithdrawalService(
		t, simnet.NewLedger(decimal.Zero), fiatrail.NewService(0), nil, treasury,
	)

	withdrawal, err := svc.Create(ctx, userID, decimal.NewFromInt(10), "USD", source)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCreated, withdrawal.Status)
	require.True(t, decimal.NewFromInt(1).Equal(withdrawal.EstimatedFiatPayout))
	require.True(t, withdrawal.ActualFiatPayout.IsZero())
	require.Equal(t, domain.DefaultSettlementETA, withdrawal.EstimatedTimeToSettle)

	quote := svc.Estimate(decimal.NewFromInt(125), "gbp")
	require.Equal(t, "GBP", quote.Currency)
	require.True(t, decimal.NewFromInt(10).Equal(quote.EstimatedFiatPayout))
	require.Equal(t, domain.DefaultSettlementETA, quote.ETA)
}

func TestWithdrawalQuickUnfundedSource(t *testing.T) {
	publisher := newMockPublisher()
	svc := newWithdrawalService(
		t, simnet.NewLedger(decimal.Zero), fiatrail.NewService(0), publisher,
		treasury,
	)

	result, err := svc.Quick(
		ctx, userID, decimal.NewFromInt(10), "USD", source,
		application.ExternalCustody{},
	)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.False(t, result.Success)
	require.Equal(t, application.KindSettlementFailure, result.Kind)
	require.Contains(t, result.Message, application.ErrSourceAccountNotFound.Error())
	require.Equal(t, domain.StatusFailed, result.Withdrawal.Status)
	require.True(t, result.FiatPayout().IsZero())
	require.True(t, result.ValueDebited().IsZero())

	require.Eventually(t, func() bool {
		return publisher.count(ports.WithdrawalFailedTopic) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestWithdrawalQuickWithoutSource(t *testing.T) {
	svc := newWithdrawalService(
		t, newFundedLedger("100"), fiatrail.NewService(0), nil, treasury,
	)

	result, err := svc.Quick(
		ctx, userID, decimal.NewFromInt(10), "USD", "",
		application.DirectCustody{Credential: sourceKey},
	)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, application.KindValidationFailure, result.Kind)
	require.Equal(t, "Withdrawal failed: missing ledger address", result.Message)
	require.Nil(t, result.Withdrawal)

	withdrawals, err := svc.GetForUser(ctx, userID, nil)
	require.NoError(t, err)
	require.Empty(t, withdrawals)
}

func TestWithdrawalBalanceRevalidation(t *testing.T) {
	tests := []struct {
		name            string
		balance         string
		expectedSuccess bool
	}{
		{"below reserve", "11", false},
		{"exactly reserve", "11.5", true},
		{"above reserve", "100", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := newWithdrawalService(
				t, newFundedLedger(tt.balance), fiatrail.NewService(0), nil,
				treasury,
			)

			result, err := svc.Quick(
				ctx, userID, decimal.NewFromInt(10), "USD", source, nil,
			)
			require.NoError(t, err)
			require.Equal(t, tt.expectedSuccess, result.Success)
			if !tt.expectedSuccess {
				require.Contains(
					t, result.Message, application.ErrInsufficientBalance.Error(),
				)
				require.Equal(t, domain.StatusFailed, result.Withdrawal.Status)
				return
			}
			require.Equal(t, domain.StatusCompleted, result.Withdrawal.Status)
			require.True(t, decimal.NewFromInt(1).Equal(result.FiatPayout()))
		})
	}
}

func TestWithdrawalConfirm(t *testing.T) {
	t.Run("external custody", func(t *testing.T) {
		ledger := newFundedLedger("100")
		publisher := newMockPublisher()
		svc := newWithdrawalService(
			t, ledger, fiatrail.NewService(0), publisher, treasury,
		)

		withdrawal, err := svc.Create(
			ctx, userID, decimal.NewFromInt(10), "USD", "",
		)
		require.NoError(t, err)

		result, err := svc.Confirm(ctx, withdrawal.ID, source, nil, "")
		require.NoError(t, err)
		require.True(t, result.Success)
		require.True(t, strings.HasPrefix(result.SettlementReference(), "SIM-"))
		require.True(t, decimal.NewFromInt(10).Equal(result.ValueDebited()))
		require.True(t, decimal.NewFromInt(1).Equal(result.FiatPayout()))
		require.NotEmpty(t, result.Withdrawal.FiatReference)

		// The debit is only simulated, balances are untouched.
		balance, err := ledger.GetBalance(ctx, source)
		require.NoError(t, err)
		require.True(t, decimal.NewFromInt(100).Equal(balance.NativeBalance))

		require.Eventually(t, func() bool {
			return publisher.count(ports.WithdrawalCompletedTopic) == 1
		}, time.Second, 10*time.Millisecond)

		result, err = svc.Confirm(ctx, withdrawal.ID, source, nil, "")
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Equal(t, application.KindInvalidState, result.Kind)
		require.Equal(t, "Withdrawal already completed", result.Message)
	})

	t.Run("direct custody", func(t *testing.T) {
		ledger := newFundedLedger("100")
		svc := newWithdrawalService(t, ledger, fiatrail.NewService(0), nil, treasury)

		withdrawal, err := svc.Create(
			ctx, userID, decimal.NewFromInt(10), "EUR", source,
		)
		require.NoError(t, err)

		result, err := svc.Confirm(
			ctx, withdrawal.ID, "", application.DirectCustody{Credential: sourceKey},
			"",
		)
		require.NoError(t, err)
		require.True(t, result.Success)
		require.False(t, strings.HasPrefix(result.SettlementReference(), "SIM-"))
		require.True(
			t, decimal.RequireFromString("0.91").Equal(result.FiatPayout()),
		)

		balance, err := ledger.GetBalance(ctx, source)
		require.NoError(t, err)
		require.True(t, decimal.NewFromInt(90).Equal(balance.NativeBalance))

		balance, err = ledger.GetBalance(ctx, treasury)
		require.NoError(t, err)
		require.True(t, decimal.NewFromInt(10).Equal(balance.NativeBalance))
	})

	t.Run("direct custody with treasury override", func(t *testing.T) {
		ledger := newFundedLedger("100")
		ledger.AddAccount("GOTHERTREASURY", decimal.Zero)
		svc := newWithdrawalService(t, ledger, fiatrail.NewService(0), nil, "")

		withdrawal, err := svc.Create(
			ctx, userID, decimal.NewFromInt(10), "USD", source,
		)
		require.NoError(t, err)

		result, err := svc.Confirm(
			ctx, withdrawal.ID, "", application.DirectCustody{Credential: sourceKey},
			"GOTHERTREASURY",
		)
		require.NoError(t, err)
		require.True(t, result.Success)

		balance, err := ledger.GetBalance(ctx, "GOTHERTREASURY")
		require.NoError(t, err)
		require.True(t, decimal.NewFromInt(10).Equal(balance.NativeBalance))
	})
}

func TestWithdrawalConfirmFailing(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc := newWithdrawalService(
			t, newFundedLedger("100"), fiatrail.NewService(0), nil, treasury,
		)

		result, err := svc.Confirm(ctx, "WDR-unknown", source, nil, "")
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Equal(t, application.KindNotFound, result.Kind)
		require.Equal(t, "Withdrawal not found", result.Message)
	})

	t.Run("missing treasury", func(t *testing.T) {
		svc := newWithdrawalService(
			t, newFundedLedger("100"), fiatrail.NewService(0), nil, "",
		)
		withdrawal, err := svc.Create(
			ctx, userID, decimal.NewFromInt(10), "USD", source,
		)
		require.NoError(t, err)

		result, err := svc.Confirm(
			ctx, withdrawal.ID, "", application.DirectCustody{Credential: sourceKey},
			"",
		)
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Equal(t, application.KindValidationFailure, result.Kind)

		stored, err := svc.Get(ctx, withdrawal.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusCreated, stored.Status)
	})

	t.Run("rejected debit", func(t *testing.T) {
		ledger := newFundedLedger("100")
		svc := newWithdrawalService(t, ledger, fiatrail.NewService(0), nil, treasury)

		result, err := svc.Quick(
			ctx, userID, decimal.NewFromInt(10), "USD", source,
			application.DirectCustody{Credential: "SWRONG"},
		)
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Equal(t, application.KindSettlementFailure, result.Kind)
		require.Contains(t, result.Message, simnet.ReasonInvalidCredential)
		require.Empty(t, result.SettlementReference())
	})

	t.Run("credential of another account", func(t *testing.T) {
		ledger := newFundedLedger("1000")
		ledger.AddAccount("GOTHER", decimal.NewFromInt(5))
		ledger.AddCredential("SOTHER", "GOTHER")
		svc := newWithdrawalService(t, ledger, fiatrail.NewService(0), nil, treasury)

		result, err := svc.Quick(
			ctx, userID, decimal.NewFromInt(4), "USD", source,
			application.DirectCustody{Credential: "SOTHER"},
		)
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Equal(t, application.KindSettlementFailure, result.Kind)
		require.Contains(t, result.Message, simnet.ReasonNotAuthorized)

		for address, expected := range map[string]int64{
			source: 1000, "GOTHER": 5, treasury: 0,
		} {
			balance, err := ledger.GetBalance(ctx, address)
			require.NoError(t, err)
			require.True(t, decimal.NewFromInt(expected).Equal(balance.NativeBalance))
		}
	})

	t.Run("retry after fiat failure does not debit twice", func(t *testing.T) {
		ledger := newFundedLedger("100")
		fiatRail := &mockFiatRail{}
		fiatRail.On("SimulateWithdrawal", mock.Anything, mock.Anything, "USD").
			Return(nil, errors.New("bank offline")).Once()
		fiatRail.On("SimulateWithdrawal", mock.Anything, mock.Anything, "USD").
			Return(ports.FiatReceipt{TransactionRef: "FIAT-1"}, nil).Once()
		svc := newWithdrawalService(t, ledger, fiatRail, nil, treasury)

		withdrawal, err := svc.Create(
			ctx, userID, decimal.NewFromInt(10), "USD", source,
		)
		require.NoError(t, err)
		settlement := application.DirectCustody{Credential: sourceKey}

		result, err := svc.Confirm(ctx, withdrawal.ID, "", settlement, "")
		require.Error(t, err)
		require.Nil(t, result)

		stored, err := svc.Get(ctx, withdrawal.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusFailed, stored.Status)
		require.True(t, stored.IsDebited())

		result, err = svc.Confirm(ctx, withdrawal.ID, "", settlement, "")
		require.NoError(t, err)
		require.True(t, result.Success)
		require.Equal(t, stored.LedgerReference, result.SettlementReference())
		require.Equal(t, "FIAT-1", result.Withdrawal.FiatReference)

		balance, err := ledger.GetBalance(ctx, source)
		require.NoError(t, err)
		require.True(t, decimal.NewFromInt(90).Equal(balance.NativeBalance))
		fiatRail.AssertExpectations(t)
	})
}

func TestWithdrawalConcurrentConfirm(t *testing.T) {
	ledger := newFundedLedger("100")
	svc := newWithdrawalService(
		t, ledger, fiatrail.NewService(20*time.Millisecond), nil, treasury,
	)

	withdrawal, err := svc.Create(ctx, userID, decimal.NewFromInt(10), "USD", source)
	require.NoError(t, err)
	settlement := application.DirectCustody{Credential: sourceKey}

	count := 10
	results := make(chan *application.WithdrawalResult, count)
	wg := &sync.WaitGroup{}
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Confirm(ctx, withdrawal.ID, "", settlement, "")
			require.NoError(t, err)
			results <- result
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for result := range results {
		if result.Success {
			succeeded++
		}
	}
	require.Equal(t, 1, succeeded)

	balance, err := ledger.GetBalance(ctx, source)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(90).Equal(balance.NativeBalance))
}

func TestWithdrawalCancel(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		publisher := newMockPublisher()
		svc := newWithdrawalService(
			t, newFundedLedger("100"), fiatrail.NewService(0), publisher, treasury,
		)
		withdrawal, err := svc.Create(
			ctx, userID, decimal.NewFromInt(10), "USD", source,
		)
		require.NoError(t, err)

		ok, err := svc.Cancel(ctx, withdrawal.ID)
		require.NoError(t, err)
		require.True(t, ok)

		require.Eventually(t, func() bool {
			return publisher.count(ports.WithdrawalCancelledTopic) == 1
		}, time.Second, 10*time.Millisecond)

		result, err := svc.Confirm(ctx, withdrawal.ID, "", nil, "")
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Equal(t, "Withdrawal has been cancelled", result.Message)

		ok, err = svc.Cancel(ctx, withdrawal.ID)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("not cancellable", func(t *testing.T) {
		svc := newWithdrawalService(
			t, newFundedLedger("100"), fiatrail.NewService(0), nil, treasury,
		)

		ok, err := svc.Cancel(ctx, "WDR-unknown")
		require.NoError(t, err)
		require.False(t, ok)

		result, err := svc.Quick(
			ctx, userID, decimal.NewFromInt(10), "USD", source, nil,
		)
		require.NoError(t, err)
		require.True(t, result.Success)

		ok, err = svc.Cancel(ctx, result.WithdrawalID())
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("processing", func(t *testing.T) {
		svc := newWithdrawalService(
			t, newFundedLedger("100"), fiatrail.NewService(300*time.Millisecond),
			nil, treasury,
		)
		withdrawal, err := svc.Create(
			ctx, userID, decimal.NewFromInt(10), "USD", source,
		)
		require.NoError(t, err)

		results := make(chan *application.WithdrawalResult, 1)
		go func() {
			result, _ := svc.Confirm(ctx, withdrawal.ID, "", nil, "")
			results <- result
		}()

		require.Eventually(t, func() bool {
			w, err := svc.Get(ctx, withdrawal.ID)
			return err == nil && w.IsProcessing()
		}, time.Second, 5*time.Millisecond)

		ok, err := svc.Cancel(ctx, withdrawal.ID)
		require.NoError(t, err)
		require.False(t, ok)

		result := <-results
		require.NotNil(t, result)
		require.True(t, result.Success)
	})
}
