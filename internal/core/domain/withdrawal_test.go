package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestNewWithdrawal(t *testing.T) {
	withdrawal, err := domain.NewWithdrawal("u1", decimal.NewFromInt(10), "EUR", testAddress)
	require.NoError(t, err)
	require.NotNil(t, withdrawal)
	require.Equal(t, domain.StatusCreated, withdrawal.Status)
	require.Equal(t, "EUR", withdrawal.Currency)
	require.Equal(t, "0.91", withdrawal.EstimatedFiatPayout.String())
	require.True(t, withdrawal.ActualFiatPayout.IsZero())
	require.Equal(t, domain.DefaultSettlementETA, withdrawal.EstimatedTimeToSettle)
	require.Equal(t, testAddress, withdrawal.SourceAddress)

	one := withdrawal.FiatPerUnitRate.Mul(domain.RateFor("EUR"))
	require.True(t, one.Sub(decimal.NewFromInt(1)).Abs().LessThan(decimal.New(1, -6)))
}

func TestWithdrawalQuoteMatchesPayout(t *testing.T) {
	withdrawal, err := domain.NewWithdrawal(
		"u1", decimal.RequireFromString("12.34567895"), "GBP", testAddress,
	)
	require.NoError(t, err)
	require.Equal(t, "12.345679", withdrawal.RequestedValue.String())
	require.True(
		t, withdrawal.EstimatedFiatPayout.Equal(withdrawal.PayoutAmount()),
	)
}

func TestFailingNewWithdrawal(t *testing.T) {
	withdrawal, err := domain.NewWithdrawal("u1", decimal.Zero, "USD", "")
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	require.Nil(t, withdrawal)

	withdrawal, err = domain.NewWithdrawal("", decimal.NewFromInt(1), "USD", "")
	require.ErrorIs(t, err, domain.ErrMissingUserID)
	require.Nil(t, withdrawal)
}

func TestWithdrawalLifecycle(t *testing.T) {
	withdrawal := newTestWithdrawal(t)

	require.NoError(t, withdrawal.StartProcessing(testAddress))
	require.ErrorIs(t, withdrawal.StartProcessing(testAddress), domain.ErrWithdrawalProcessing)
	require.ErrorIs(t, withdrawal.Cancel(), domain.ErrWithdrawalNotCancellable)

	require.False(t, withdrawal.IsDebited())
	require.NoError(t, withdrawal.MarkDebited("txhash"))
	require.True(t, withdrawal.IsDebited())

	require.NoError(t, withdrawal.Complete(withdrawal.PayoutAmount(), "FIAT-1"))
	require.True(t, withdrawal.IsCompleted())
	require.Equal(t, "1", withdrawal.ActualFiatPayout.String())
	require.NotZero(t, withdrawal.CompletedAt)

	require.ErrorIs(t, withdrawal.StartProcessing(testAddress), domain.ErrWithdrawalAlreadyCompleted)
	require.ErrorIs(t, withdrawal.Cancel(), domain.ErrWithdrawalNotCancellable)
}

func TestWithdrawalCancel(t *testing.T) {
	withdrawal := newTestWithdrawal(t)

	require.NoError(t, withdrawal.Cancel())
	require.True(t, withdrawal.IsCancelled())
	require.ErrorIs(t, withdrawal.StartProcessing(testAddress), domain.ErrWithdrawalCancelled)
	require.ErrorIs(t, withdrawal.Cancel(), domain.ErrWithdrawalNotCancellable)
}

func TestWithdrawalFail(t *testing.T) {
	withdrawal := newTestWithdrawal(t)

	require.ErrorIs(t, withdrawal.Fail("boom"), domain.ErrWithdrawalNotProcessing)
	require.ErrorIs(t, withdrawal.MarkDebited("tx"), domain.ErrWithdrawalNotProcessing)

	require.NoError(t, withdrawal.StartProcessing(testAddress))
	require.NoError(t, withdrawal.Fail("insufficient balance"))
	require.True(t, withdrawal.IsFailed())
	require.True(t, withdrawal.ActualFiatPayout.IsZero())
	require.ErrorIs(t, withdrawal.Cancel(), domain.ErrWithdrawalNotCancellable)
}

func newTestWithdrawal(t *testing.T) *domain.Withdrawal {
	withdrawal, err := domain.NewWithdrawal("u1", decimal.NewFromInt(10), "USD", "")
	require.NoError(t, err)
	return withdrawal
}
