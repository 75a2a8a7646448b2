package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestDepositRepositoryImplementations(t *testing.T) {
	managers := createRepoManagers(t)

	for i := range managers {
		manager := managers[i]

		t.Run(manager.Name, func(t *testing.T) {
			repo := manager.Manager.DepositRepository()

			t.Run("add_and_get_deposits", func(t *testing.T) {
				testAddAndGetDeposits(t, repo)
			})
			t.Run("get_deposits_for_user", func(t *testing.T) {
				testGetDepositsForUser(t, repo)
			})
			t.Run("update_deposit", func(t *testing.T) {
				testUpdateDeposit(t, repo)
			})
		})
	}
}

func testAddAndGetDeposits(t *testing.T, repo domain.DepositRepository) {
	ctx := context.Background()
	deposit := makeDeposits(t, randomUserID(), 1)[0]

	_, err := repo.GetDeposit(ctx, deposit.ID)
	require.ErrorIs(t, err, domain.ErrDepositNotFound)

	err = repo.AddDeposit(ctx, deposit)
	require.NoError(t, err)

	got, err := repo.GetDeposit(ctx, deposit.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	requireEqualDeposit(t, *deposit, *got)

	err = repo.AddDeposit(ctx, deposit)
	require.Error(t, err)
}

func testGetDepositsForUser(t *testing.T, repo domain.DepositRepository) {
	ctx := context.Background()
	userID := randomUserID()
	deposits := makeDeposits(t, userID, 20)
	for _, d := range deposits {
		require.NoError(t, repo.AddDeposit(ctx, d))
	}
	otherDeposits := makeDeposits(t, randomUserID(), 3)
	for _, d := range otherDeposits {
		require.NoError(t, repo.AddDeposit(ctx, d))
	}

	userDeposits, err := repo.GetDepositsForUser(ctx, userID, nil)
	require.NoError(t, err)
	require.Len(t, userDeposits, len(deposits))
	for i, d := range userDeposits {
		requireEqualDeposit(t, *deposits[i], d)
	}

	// The concatenation of all pages must match the non-paginated list item
	// per item.
	allPagedDeposits := make([]domain.Deposit, 0)
	for i := 1; i <= 4; i++ {
		page := domain.NewPage(i, 5)
		pagedDeposits, err := repo.GetDepositsForUser(ctx, userID, &page)
		require.NoError(t, err)
		require.Len(t, pagedDeposits, 5)
		allPagedDeposits = append(allPagedDeposits, pagedDeposits...)
	}
	require.Equal(t, userDeposits, allPagedDeposits)

	page := domain.NewPage(5, 5)
	pagedDeposits, err := repo.GetDepositsForUser(ctx, userID, &page)
	require.NoError(t, err)
	require.Empty(t, pagedDeposits)

	userDeposits, err = repo.GetDepositsForUser(ctx, randomUserID(), nil)
	require.NoError(t, err)
	require.Empty(t, userDeposits)

	allDeposits, err := repo.GetAllDeposits(ctx, nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(allDeposits), len(deposits)+len(otherDeposits))
	for i := 1; i < len(allDeposits); i++ {
		require.Less(t, allDeposits[i-1].ID, allDeposits[i].ID)
	}
}

func testUpdateDeposit(t *testing.T, repo domain.DepositRepository) {
	ctx := context.Background()
	deposit := makeDeposits(t, randomUserID(), 1)[0]
	require.NoError(t, repo.AddDeposit(ctx, deposit))

	err := repo.UpdateDeposit(
		ctx, "DEP-missing", func(d *domain.Deposit) (*domain.Deposit, error) {
			return d, nil
		},
	)
	require.ErrorIs(t, err, domain.ErrDepositNotFound)

	errAbort := errors.New("abort")
	err = repo.UpdateDeposit(
		ctx, deposit.ID, func(d *domain.Deposit) (*domain.Deposit, error) {
			require.NoError(t, d.StartProcessing(""))
			return nil, errAbort
		},
	)
	require.ErrorIs(t, err, errAbort)

	got, err := repo.GetDeposit(ctx, deposit.ID)
	require.NoError(t, err)
	require.True(t, got.IsCreated())

	err = repo.UpdateDeposit(
		ctx, deposit.ID, func(d *domain.Deposit) (*domain.Deposit, error) {
			if err := d.StartProcessing(""); err != nil {
				return nil, err
			}
			if err := d.Complete(d.CreditAmount(), "ledger-ref", "FIAT-ref"); err != nil {
				return nil, err
			}
			return d, nil
		},
	)
	require.NoError(t, err)

	got, err = repo.GetDeposit(ctx, deposit.ID)
	require.NoError(t, err)
	require.True(t, got.IsCompleted())
	require.Equal(t, "ledger-ref", got.SettlementReference)
	require.Equal(t, "FIAT-ref", got.FiatReference)
	require.True(t, decimal.NewFromInt(110).Equal(got.CreditedValue))
	require.True(t, deposit.ExchangeRate.Equal(got.ExchangeRate))
}
