package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stretchr/testify/require"
)

const testAddress = "GBRPYHIL2CI3FNQ4BXLFMNDLFJUNPU2HY3ZMFSHONUCEOASW7QC7OX2H"

func TestNewDeposit(t *testing.T) {
	deposit, err := domain.NewDeposit("u1", decimal.NewFromInt(100), "usd", "")
	require.NoError(t, err)
	require.NotNil(t, deposit)
	require.NotEmpty(t, deposit.ID)
	require.Equal(t, domain.StatusCreated, deposit.Status)
	require.Equal(t, "USD", deposit.Currency)
	require.Equal(t, "1000", deposit.EstimatedValue.String())
	require.Equal(t, "10", deposit.ExchangeRate.String())
	require.True(t, deposit.CreditedValue.IsZero())
	require.Empty(t, deposit.DestinationAddress)
	require.Zero(t, deposit.CompletedAt)
}

func TestDepositQuoteMatchesCredit(t *testing.T) {
	deposit, err := domain.NewDeposit(
		"u1", decimal.RequireFromString("100.005"), "USD", testAddress,
	)
	require.NoError(t, err)
	require.Equal(t, "100.01", deposit.FiatAmount.String())
	require.Equal(t, "1000.1", deposit.EstimatedValue.String())
	require.True(t, deposit.EstimatedValue.Equal(deposit.CreditAmount()))
}

func TestFailingNewDeposit(t *testing.T) {
	tests := []struct {
		name          string
		userID        string
		amount        decimal.Decimal
		expectedError error
	}{
		{"missing_user", "", decimal.NewFromInt(1), domain.ErrMissingUserID},
		{"zero_amount", "u1", decimal.Zero, domain.ErrInvalidAmount},
		{"negative_amount", "u1", decimal.NewFromInt(-5), domain.ErrInvalidAmount},
		{"sub_cent_amount", "u1", decimal.RequireFromString("0.004"), domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deposit, err := domain.NewDeposit(tt.userID, tt.amount, "USD", "")
			require.EqualError(t, err, tt.expectedError.Error())
			require.Nil(t, deposit)
		})
	}
}

func TestDepositLifecycle(t *testing.T) {
	deposit := newTestDeposit(t)

	err := deposit.StartProcessing(testAddress)
	require.NoError(t, err)
	require.True(t, deposit.IsProcessing())
	require.Equal(t, testAddress, deposit.DestinationAddress)

	err = deposit.StartProcessing(testAddress)
	require.ErrorIs(t, err, domain.ErrDepositProcessing)

	err = deposit.Complete(deposit.CreditAmount(), "txhash", "FIAT-1")
	require.NoError(t, err)
	require.True(t, deposit.IsCompleted())
	require.Equal(t, "500", deposit.CreditedValue.String())
	require.Equal(t, "txhash", deposit.SettlementReference)
	require.NotZero(t, deposit.CompletedAt)

	require.ErrorIs(t, deposit.StartProcessing(testAddress), domain.ErrDepositAlreadyCompleted)
	require.ErrorIs(t, deposit.Complete(decimal.NewFromInt(1), "", ""), domain.ErrDepositAlreadyCompleted)
	require.ErrorIs(t, deposit.Expire(), domain.ErrDepositNotCancellable)
	require.Equal(t, "500", deposit.CreditedValue.String())
}

func TestDepositFailAndRetry(t *testing.T) {
	deposit := newTestDeposit(t)

	require.ErrorIs(t, deposit.Fail("boom"), domain.ErrDepositNotProcessing)
	require.ErrorIs(t, deposit.StartProcessing(""), domain.ErrMissingAddress)

	require.NoError(t, deposit.StartProcessing(testAddress))
	require.NoError(t, deposit.Fail("ledger rejected transfer"))
	require.True(t, deposit.IsFailed())
	require.True(t, deposit.CreditedValue.IsZero())
	require.Equal(t, "ledger rejected transfer", deposit.FailureReason)

	// A failed deposit can be confirmed again, reusing its destination.
	require.NoError(t, deposit.StartProcessing(""))
	require.Empty(t, deposit.FailureReason)
	require.Equal(t, testAddress, deposit.DestinationAddress)
}

func TestDepositExpire(t *testing.T) {
	tests := []struct {
		name          string
		prepare       func(d *domain.Deposit)
		expectedError error
	}{
		{
			name:    "created",
			prepare: func(d *domain.Deposit) {},
		},
		{
			name: "processing",
			prepare: func(d *domain.Deposit) {
				d.StartProcessing(testAddress)
			},
		},
		{
			name: "failed",
			prepare: func(d *domain.Deposit) {
				d.StartProcessing(testAddress)
				d.Fail("boom")
			},
			expectedError: domain.ErrDepositNotCancellable,
		},
		{
			name: "expired",
			prepare: func(d *domain.Deposit) {
				d.Expire()
			},
			expectedError: domain.ErrDepositNotCancellable,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deposit := newTestDeposit(t)
			tt.prepare(deposit)

			err := deposit.Expire()
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			require.True(t, deposit.IsExpired())
			require.ErrorIs(t, deposit.StartProcessing(testAddress), domain.ErrDepositExpired)
		})
	}
}

func TestDepositRateSnapshot(t *testing.T) {
	deposit := newTestDeposit(t)
	deposit.ExchangeRate = decimal.NewFromInt(20)

	require.Equal(t, "1000", deposit.CreditAmount().String())
	require.Equal(t, "500", deposit.EstimatedValue.String())
}

func newTestDeposit(t *testing.T) *domain.Deposit {
	deposit, err := domain.NewDeposit("u1", decimal.NewFromInt(50), "USD", "")
	require.NoError(t, err)
	return deposit
}
