package application

import (
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/internal/core/ports"
	dbbadger "github.com/stellrflow/anchord/internal/infrastructure/storage/db/badger"
	"github.com/stellrflow/anchord/internal/infrastructure/storage/db/inmemory"
	postgresdb "github.com/stellrflow/anchord/internal/infrastructure/storage/db/pg"
)

var (
	SupportedDBType = map[string]struct{}{
		DBInMemory: {},
		DBBadger:   {},
		DBPostgres: {},
	}
)

// Config lazily builds the application services. Every service is created
// once and shared by all the interfaces.
type Config struct {
	DBType string
	// DBConfig is the datadir for badger, the data source url for postgres,
	// and is ignored for inmemory.
	DBConfig interface{}

	LedgerClient ports.LedgerClient
	FiatRail     ports.FiatRail
	Publisher    ports.Publisher

	TreasuryAddress string
	// MinReserve defaults to domain.DefaultMinReserve if nil. Zero is a valid
	// reserve.
	MinReserve     *decimal.Decimal
	StrictCurrency bool

	repo        ports.RepoManager
	deposits    DepositService
	withdrawals WithdrawalService
	ramp        RampService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("db type %s not supported", c.DBType)
	}
	if c.LedgerClient == nil {
		return fmt.Errorf("missing ledger client")
	}
	if c.FiatRail == nil {
		return fmt.Errorf("missing fiat rail")
	}
	if c.MinReserve != nil && c.MinReserve.IsNegative() {
		return fmt.Errorf("min reserve must not be negative")
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	repo, _ := c.repoManager()
	return repo
}

func (c *Config) DepositService() DepositService {
	svc, _ := c.depositService()
	return svc
}

func (c *Config) WithdrawalService() WithdrawalService {
	svc, _ := c.withdrawalService()
	return svc
}

func (c *Config) RampService() RampService {
	svc, _ := c.rampService()
	return svc
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo != nil {
		return c.repo, nil
	}

	switch c.DBType {
	case DBInMemory:
		c.repo = inmemory.NewRepoManager()
	case DBBadger:
		datadir, _ := c.DBConfig.(string)
		repo, err := dbbadger.NewRepoManager(datadir, log.StandardLogger())
		if err != nil {
			return nil, err
		}
		c.repo = repo
	case DBPostgres:
		dataSource, _ := c.DBConfig.(string)
		repo, err := postgresdb.NewRepoManager(postgresdb.DbConfig{
			DataSourceURL: dataSource,
		})
		if err != nil {
			return nil, err
		}
		c.repo = repo
	default:
		return nil, fmt.Errorf("db type %s not supported", c.DBType)
	}
	return c.repo, nil
}

func (c *Config) depositService() (DepositService, error) {
	if c.deposits == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		svc, err := NewDepositService(
			repo, c.LedgerClient, c.FiatRail, c.Publisher,
		)
		if err != nil {
			return nil, err
		}
		c.deposits = svc
	}
	return c.deposits, nil
}

func (c *Config) withdrawalService() (WithdrawalService, error) {
	if c.withdrawals == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		minReserve := domain.DefaultMinReserve
		if c.MinReserve != nil {
			minReserve = *c.MinReserve
		}
		svc, err := NewWithdrawalService(
			repo, c.LedgerClient, c.FiatRail, c.Publisher,
			c.TreasuryAddress, minReserve,
		)
		if err != nil {
			return nil, err
		}
		c.withdrawals = svc
	}
	return c.withdrawals, nil
}

func (c *Config) rampService() (RampService, error) {
	if c.ramp == nil {
		deposits, err := c.depositService()
		if err != nil {
			return nil, err
		}
		withdrawals, err := c.withdrawalService()
		if err != nil {
			return nil, err
		}
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		svc, err := NewRampService(
			deposits, withdrawals, repo.AddressBookRepository(), c.StrictCurrency,
		)
		if err != nil {
			return nil, err
		}
		c.ramp = svc
	}
	return c.ramp, nil
}
