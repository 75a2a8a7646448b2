package db_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/internal/core/ports"
	dbbadger "github.com/stellrflow/anchord/internal/infrastructure/storage/db/badger"
	"github.com/stellrflow/anchord/internal/infrastructure/storage/db/inmemory"
	postgresdb "github.com/stellrflow/anchord/internal/infrastructure/storage/db/pg"
	"github.com/stretchr/testify/require"
	"github.com/thanhpk/randstr"
)

const (
	testAddress = "GBRPYHIL2CI3FNQ4BXLFMNDLFJUNPU2HY3ZMFSHONUCEOASW7QC7OX2H"
	// pgDataSourceEnv enables the postgres implementation in tests.
	pgDataSourceEnv = "ANCHORD_TEST_PG_URL"
)

type repoManager struct {
	Name    string
	Manager ports.RepoManager
}

// createRepoManagers returns fresh, empty repo managers for every storage
// implementation. The postgres one is included only if a data source is
// given through the environment. Since its tables are shared across test
// runs, each test uses random user ids.
func createRepoManagers(t *testing.T) []repoManager {
	inmemoryDBManager := inmemory.NewRepoManager()
	badgerDBManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(badgerDBManager.Close)

	managers := []repoManager{
		{Name: "inmemory", Manager: inmemoryDBManager},
		{Name: "badger", Manager: badgerDBManager},
	}

	if dataSource := os.Getenv(pgDataSourceEnv); dataSource != "" {
		pgDBManager, err := postgresdb.NewRepoManager(postgresdb.DbConfig{
			DataSourceURL: dataSource,
		})
		require.NoError(t, err)
		t.Cleanup(pgDBManager.Close)
		managers = append(managers, repoManager{Name: "postgres", Manager: pgDBManager})
	}
	return managers
}

func randomUserID() string {
	return fmt.Sprintf("user-%s", randstr.Hex(8))
}

func makeDeposits(t *testing.T, userID string, num int) []*domain.Deposit {
	deposits := make([]*domain.Deposit, 0, num)
	for i := 0; i < num; i++ {
		deposit, err := domain.NewDeposit(
			userID, decimal.NewFromInt(int64(10+i)), domain.EUR, testAddress,
		)
		require.NoError(t, err)
		deposits = append(deposits, deposit)
	}
	return deposits
}

func makeWithdrawals(t *testing.T, userID string, num int) []*domain.Withdrawal {
	withdrawals := make([]*domain.Withdrawal, 0, num)
	for i := 0; i < num; i++ {
		withdrawal, err := domain.NewWithdrawal(
			userID, decimal.NewFromInt(int64(5+i)), domain.GBP, testAddress,
		)
		require.NoError(t, err)
		withdrawals = append(withdrawals, withdrawal)
	}
	return withdrawals
}

// Stores may normalize the representation of decimals, so amounts are
// compared by value.
func requireEqualDeposit(t *testing.T, expected, got domain.Deposit) {
	require.Equal(t, expected.ID, got.ID)
	require.Equal(t, expected.UserID, got.UserID)
	require.Equal(t, expected.Currency, got.Currency)
	require.Equal(t, expected.DestinationAddress, got.DestinationAddress)
	require.Equal(t, expected.Status, got.Status)
	require.Equal(t, expected.SettlementReference, got.SettlementReference)
	require.Equal(t, expected.FiatReference, got.FiatReference)
	require.Equal(t, expected.FailureReason, got.FailureReason)
	require.Equal(t, expected.CreatedAt, got.CreatedAt)
	require.Equal(t, expected.CompletedAt, got.CompletedAt)
	require.True(t, expected.FiatAmount.Equal(got.FiatAmount))
	require.True(t, expected.EstimatedValue.Equal(got.EstimatedValue))
	require.True(t, expected.ExchangeRate.Equal(got.ExchangeRate))
	require.True(t, expected.CreditedValue.Equal(got.CreditedValue))
}

func requireEqualWithdrawal(t *testing.T, expected, got domain.Withdrawal) {
	require.Equal(t, expected.ID, got.ID)
	require.Equal(t, expected.UserID, got.UserID)
	require.Equal(t, expected.Currency, got.Currency)
	require.Equal(t, expected.SourceAddress, got.SourceAddress)
	require.Equal(t, expected.Status, got.Status)
	require.Equal(t, expected.LedgerReference, got.LedgerReference)
	require.Equal(t, expected.FiatReference, got.FiatReference)
	require.Equal(t, expected.EstimatedTimeToSettle, got.EstimatedTimeToSettle)
	require.Equal(t, expected.FailureReason, got.FailureReason)
	require.Equal(t, expected.CreatedAt, got.CreatedAt)
	require.Equal(t, expected.CompletedAt, got.CompletedAt)
	require.True(t, expected.RequestedValue.Equal(got.RequestedValue))
	require.True(t, expected.EstimatedFiatPayout.Equal(got.EstimatedFiatPayout))
	require.True(t, expected.FiatPerUnitRate.Equal(got.FiatPerUnitRate))
	require.True(t, expected.ActualFiatPayout.Equal(got.ActualFiatPayout))
}
