package dbbadger

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const (
	depositsDir    = "deposits"
	withdrawalsDir = "withdrawals"
	addressBookDir = "addressbook"
)

type repoManager struct {
	depositStore     *badgerhold.Store
	withdrawalStore  *badgerhold.Store
	addressBookStore *badgerhold.Store

	depositRepository     domain.DepositRepository
	withdrawalRepository  domain.WithdrawalRepository
	addressBookRepository domain.AddressBookRepository
}

// NewRepoManager opens (or creates if not exists) the badger stores on disk.
// It expects a base data dir and an optional logger. If the data dir is
// empty the stores are kept in memory.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var depositDbDir, withdrawalDbDir, addressBookDbDir string
	if baseDbDir != "" {
		depositDbDir = filepath.Join(baseDbDir, depositsDir)
		withdrawalDbDir = filepath.Join(baseDbDir, withdrawalsDir)
		addressBookDbDir = filepath.Join(baseDbDir, addressBookDir)
	}

	depositStore, err := createDb(depositDbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening deposits db: %w", err)
	}

	withdrawalStore, err := createDb(withdrawalDbDir, logger)
	if err != nil {
		depositStore.Close()
		return nil, fmt.Errorf("opening withdrawals db: %w", err)
	}

	addressBookStore, err := createDb(addressBookDbDir, logger)
	if err != nil {
		depositStore.Close()
		withdrawalStore.Close()
		return nil, fmt.Errorf("opening address book db: %w", err)
	}

	return &repoManager{
		depositStore:          depositStore,
		withdrawalStore:       withdrawalStore,
		addressBookStore:      addressBookStore,
		depositRepository:     NewDepositRepositoryImpl(depositStore),
		withdrawalRepository:  NewWithdrawalRepositoryImpl(withdrawalStore),
		addressBookRepository: NewAddressBookRepositoryImpl(addressBookStore),
	}, nil
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

func (r *repoManager) Close() {
	if err := r.depositStore.Close(); err != nil {
		log.WithError(err).Warn("badger: failed to close deposits db")
	}
	if err := r.withdrawalStore.Close(); err != nil {
		log.WithError(err).Warn("badger: failed to close withdrawals db")
	}
	if err := r.addressBookStore.Close(); err != nil {
		log.WithError(err).Warn("badger: failed to close address book db")
	}
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}

func userQuery(userID string, page *domain.Page) *badgerhold.Query {
	return paginate(
		badgerhold.Where("UserID").Eq(userID).SortBy("ID"),
		page,
	)
}

func allQuery(page *domain.Page) *badgerhold.Query {
	return paginate((&badgerhold.Query{}).SortBy("ID"), page)
}

func paginate(query *badgerhold.Query, page *domain.Page) *badgerhold.Query {
	if page == nil {
		return query
	}
	from := page.Number*page.Size - page.Size
	return query.Skip(from).Limit(page.Size)
}
