package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type withdrawalRepositoryImpl struct {
	store *badgerhold.Store
}

// NewWithdrawalRepositoryImpl initialize a badger implementation of the
// domain.WithdrawalRepository.
func NewWithdrawalRepositoryImpl(
	store *badgerhold.Store,
) domain.WithdrawalRepository {
	return withdrawalRepositoryImpl{store}
}

func (r withdrawalRepositoryImpl) AddWithdrawal(
	_ context.Context, withdrawal *domain.Withdrawal,
) error {
	return r.store.Insert(withdrawal.ID, toWithdrawalStorage(withdrawal))
}

func (r withdrawalRepositoryImpl) GetWithdrawal(
	_ context.Context, id string,
) (*domain.Withdrawal, error) {
	var w withdrawal
	if err := r.store.Get(id, &w); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrWithdrawalNotFound
		}
		return nil, err
	}
	return w.toDomain(), nil
}

func (r withdrawalRepositoryImpl) GetWithdrawalsForUser(
	_ context.Context, userID string, page *domain.Page,
) ([]domain.Withdrawal, error) {
	return r.findWithdrawals(userQuery(userID, page))
}

func (r withdrawalRepositoryImpl) GetAllWithdrawals(
	_ context.Context, page *domain.Page,
) ([]domain.Withdrawal, error) {
	return r.findWithdrawals(allQuery(page))
}

func (r withdrawalRepositoryImpl) UpdateWithdrawal(
	_ context.Context, id string,
	updateFn func(w *domain.Withdrawal) (*domain.Withdrawal, error),
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var w withdrawal
		if err := r.store.TxGet(tx, id, &w); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrWithdrawalNotFound
			}
			return err
		}

		updatedWithdrawal, err := updateFn(w.toDomain())
		if err != nil {
			return err
		}

		return r.store.TxUpdate(
			tx, id, toWithdrawalStorage(updatedWithdrawal),
		)
	})
}

func (r withdrawalRepositoryImpl) findWithdrawals(
	query *badgerhold.Query,
) ([]domain.Withdrawal, error) {
	var list []withdrawal
	if err := r.store.Find(&list, query); err != nil {
		return nil, err
	}

	withdrawals := make([]domain.Withdrawal, 0, len(list))
	for _, w := range list {
		withdrawals = append(withdrawals, *w.toDomain())
	}
	return withdrawals, nil
}
