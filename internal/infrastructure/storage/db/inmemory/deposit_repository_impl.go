package inmemory

import (
	"context"
	"fmt"

	"github.com/stellrflow/anchord/internal/core/domain"
)

type depositRepositoryImpl struct {
	store *depositInmemoryStore
}

// NewDepositRepositoryImpl returns a new inmemory DepositRepository
// implementation.
func NewDepositRepositoryImpl(
	store *depositInmemoryStore,
) domain.DepositRepository {
	return &depositRepositoryImpl{store}
}

func (r *depositRepositoryImpl) AddDeposit(
	_ context.Context, deposit *domain.Deposit,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.deposits[deposit.ID]; ok {
		return fmt.Errorf("deposit with id %s already exists", deposit.ID)
	}

	r.store.deposits[deposit.ID] = *deposit
	r.store.order = append(r.store.order, deposit.ID)
	r.store.depositsByUser[deposit.UserID] = append(
		r.store.depositsByUser[deposit.UserID], deposit.ID,
	)
	return nil
}

func (r *depositRepositoryImpl) GetDeposit(
	_ context.Context, id string,
) (*domain.Deposit, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	deposit, ok := r.store.deposits[id]
	if !ok {
		return nil, domain.ErrDepositNotFound
	}
	return &deposit, nil
}

func (r *depositRepositoryImpl) GetDepositsForUser(
	_ context.Context, userID string, page *domain.Page,
) ([]domain.Deposit, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.getDeposits(paginate(r.store.depositsByUser[userID], page)), nil
}

func (r *depositRepositoryImpl) GetAllDeposits(
	_ context.Context, page *domain.Page,
) ([]domain.Deposit, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.getDeposits(paginate(r.store.order, page)), nil
}

func (r *depositRepositoryImpl) UpdateDeposit(
	_ context.Context, id string,
	updateFn func(d *domain.Deposit) (*domain.Deposit, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	deposit, ok := r.store.deposits[id]
	if !ok {
		return domain.ErrDepositNotFound
	}

	updatedDeposit, err := updateFn(&deposit)
	if err != nil {
		return err
	}

	r.store.deposits[id] = *updatedDeposit
	return nil
}

func (r *depositRepositoryImpl) getDeposits(ids []string) []domain.Deposit {
	deposits := make([]domain.Deposit, 0, len(ids))
	for _, id := range ids {
		deposits = append(deposits, r.store.deposits[id])
	}
	return deposits
}
