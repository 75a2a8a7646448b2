package inmemory

import (
	"sync"

	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/internal/core/ports"
)

type depositInmemoryStore struct {
	deposits map[string]domain.Deposit
	// ids in creation order, globally and per user.
	order          []string
	depositsByUser map[string][]string
	locker         *sync.RWMutex
}

type withdrawalInmemoryStore struct {
	withdrawals       map[string]domain.Withdrawal
	order             []string
	withdrawalsByUser map[string][]string
	locker            *sync.RWMutex
}

type addressBookInmemoryStore struct {
	addresses map[string]string
	locker    *sync.RWMutex
}

type repoManager struct {
	depositRepository     domain.DepositRepository
	withdrawalRepository  domain.WithdrawalRepository
	addressBookRepository domain.AddressBookRepository
}

func NewRepoManager() ports.RepoManager {
	depositStore := &depositInmemoryStore{
		deposits:       map[string]domain.Deposit{},
		depositsByUser: map[string][]string{},
		locker:         &sync.RWMutex{},
	}
	withdrawalStore := &withdrawalInmemoryStore{
		withdrawals:       map[string]domain.Withdrawal{},
		withdrawalsByUser: map[string][]string{},
		locker:            &sync.RWMutex{},
	}

	addressBookStore := &addressBookInmemoryStore{
		addresses: map[string]string{},
		locker:    &sync.RWMutex{},
	}

	return &repoManager{
		depositRepository:     NewDepositRepositoryImpl(depositStore),
		withdrawalRepository:  NewWithdrawalRepositoryImpl(withdrawalStore),
		addressBookRepository: NewAddressBookRepositoryImpl(addressBookStore),
	}
}

func (r *repoManager) DepositRepository() domain.DepositRepository {
	return r.depositRepository
}

func (r *repoManager) WithdrawalRepository() domain.WithdrawalRepository {
	return r.withdrawalRepository
}

func (r *repoManager) AddressBookRepository() domain.AddressBookRepository {
	return r.addressBookRepository
}

func (r *repoManager) Close() {}

func paginate(ids []string, page *domain.Page) []string {
	if page == nil {
		return ids
	}
	from, to := page.Bounds(len(ids))
	return ids[from:to]
}
