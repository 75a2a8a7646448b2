package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type depositRepositoryImpl struct {
	store *badgerhold.Store
}

// NewDepositRepositoryImpl initialize a badger implementation of the
// domain.DepositRepository.
func NewDepositRepositoryImpl(store *badgerhold.Store) domain.DepositRepository {
	return depositRepositoryImpl{store}
}

func (r depositRepositoryImpl) AddDeposit(
	_ context.Context, deposit *domain.Deposit,
) error {
	return r.store.Insert(deposit.ID, toDepositStorage(deposit))
}

func (r depositRepositoryImpl) GetDeposit(
	_ context.Context, id string,
) (*domain.Deposit, error) {
	var d deposit
	if err := r.store.Get(id, &d); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrDepositNotFound
		}
		return nil, err
	}
	return d.toDomain(), nil
}

func (r depositRepositoryImpl) GetDepositsForUser(
	_ context.Context, userID string, page *domain.Page,
) ([]domain.Deposit, error) {
	return r.findDeposits(userQuery(userID, page))
}

func (r depositRepositoryImpl) GetAllDeposits(
	_ context.Context, page *domain.Page,
) ([]domain.Deposit, error) {
	return r.findDeposits(allQuery(page))
}

func (r depositRepositoryImpl) UpdateDeposit(
	_ context.Context, id string,
	updateFn func(d *domain.Deposit) (*domain.Deposit, error),
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var d deposit
		if err := r.store.TxGet(tx, id, &d); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrDepositNotFound
			}
			return err
		}

		updatedDeposit, err := updateFn(d.toDomain())
		if err != nil {
			return err
		}

		return r.store.TxUpdate(tx, id, toDepositStorage(updatedDeposit))
	})
}

func (r depositRepositoryImpl) findDeposits(
	query *badgerhold.Query,
) ([]domain.Deposit, error) {
	var list []deposit
	if err := r.store.Find(&list, query); err != nil {
		return nil, err
	}

	deposits := make([]domain.Deposit, 0, len(list))
	for _, d := range list {
		deposits = append(deposits, *d.toDomain())
	}
	return deposits, nil
}
