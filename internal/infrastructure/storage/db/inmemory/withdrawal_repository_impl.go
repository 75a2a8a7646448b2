package inmemory

import (
	"context"
	"fmt"

	"github.com/stellrflow/anchord/internal/core/domain"
)

type withdrawalRepositoryImpl struct {
	store *withdrawalInmemoryStore
}

// NewWithdrawalRepositoryImpl returns a new inmemory WithdrawalRepository
// implementation.
func NewWithdrawalRepositoryImpl(
	store *withdrawalInmemoryStore,
) domain.WithdrawalRepository {
	return &withdrawalRepositoryImpl{store}
}

func (r *withdrawalRepositoryImpl) AddWithdrawal(
	_ context.Context, withdrawal *domain.Withdrawal,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.withdrawals[withdrawal.ID]; ok {
		return fmt.Errorf("withdrawal with id %s already exists", withdrawal.ID)
	}

	r.store.withdrawals[withdrawal.ID] = *withdrawal
	r.store.order = append(r.store.order, withdrawal.ID)
	r.store.withdrawalsByUser[withdrawal.UserID] = append(
		r.store.withdrawalsByUser[withdrawal.UserID], withdrawal.ID,
	)
	return nil
}

func (r *withdrawalRepositoryImpl) GetWithdrawal(
	_ context.Context, id string,
) (*domain.Withdrawal, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	withdrawal, ok := r.store.withdrawals[id]
	if !ok {
		return nil, domain.ErrWithdrawalNotFound
	}
	return &withdrawal, nil
}

func (r *withdrawalRepositoryImpl) GetWithdrawalsForUser(
	_ context.Context, userID string, page *domain.Page,
) ([]domain.Withdrawal, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.getWithdrawals(paginate(r.store.withdrawalsByUser[userID], page)), nil
}

func (r *withdrawalRepositoryImpl) GetAllWithdrawals(
	_ context.Context, page *domain.Page,
) ([]domain.Withdrawal, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.getWithdrawals(paginate(r.store.order, page)), nil
}

func (r *withdrawalRepositoryImpl) UpdateWithdrawal(
	_ context.Context, id string,
	updateFn func(w *domain.Withdrawal) (*domain.Withdrawal, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	withdrawal, ok := r.store.withdrawals[id]
	if !ok {
		return domain.ErrWithdrawalNotFound
	}

	updatedWithdrawal, err := updateFn(&withdrawal)
	if err != nil {
		return err
	}

	r.store.withdrawals[id] = *updatedWithdrawal
	return nil
}

func (r *withdrawalRepositoryImpl) getWithdrawals(ids []string) []domain.Withdrawal {
	withdrawals := make([]domain.Withdrawal, 0, len(ids))
	for _, id := range ids {
		withdrawals = append(withdrawals, r.store.withdrawals[id])
	}
	return withdrawals
}
