package postgresdb

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/internal/core/ports"
)

const (
	uniqueViolation = "23505"

	maxConns        = 10
	maxConnLifetime = time.Hour
	maxConnIdleTime = 30 * time.Minute
)

//go:embed migration/schema.sql
var schema string

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repoManager struct {
	pgxPool *pgxpool.Pool

	depositRepository     domain.DepositRepository
	withdrawalRepository  domain.WithdrawalRepository
	addressBookRepository domain.AddressBookRepository
}

type DbConfig struct {
	DataSourceURL string
}

// NewRepoManager connects to the given postgres instance and makes sure the
// schema exists.
func NewRepoManager(dbConfig DbConfig) (ports.RepoManager, error) {
	if dbConfig.DataSourceURL == "" {
		return nil, fmt.Errorf("missing data source url")
	}

	pgxPool, err := connect(dbConfig.DataSourceURL)
	if err != nil {
		return nil, err
	}

	if _, err := pgxPool.Exec(context.Background(), schema); err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	rm := &repoManager{pgxPool: pgxPool}
	rm.depositRepository = NewDepositRepositoryImpl(pgxPool, rm.execTx)
	rm.withdrawalRepository = NewWithdrawalRepositoryImpl(pgxPool, rm.execTx)
	rm.addressBookRepository = NewAddressBookRepositoryImpl(pgxPool)
	return rm, nil
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
	r.pgxPool.Close()
}

func (r *repoManager) execTx(
	ctx context.Context, txBody func(querier) error,
) error {
	tx, err := r.pgxPool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	// Rollback is a no-op if the tx has been committed already.
	defer func() {
		err := tx.Rollback(ctx)
		switch {
		case errors.Is(err, pgx.ErrTxClosed):
			return
		case err != nil:
			log.Errorf("unable to rollback db tx: %v", err)
		}
	}()

	if err := txBody(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func connect(dataSource string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dataSource)
	if err != nil {
		return nil, fmt.Errorf("unable to parse data source url: %w", err)
	}
	config.MaxConns = maxConns
	config.MaxConnLifetime = maxConnLifetime
	config.MaxConnIdleTime = maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return pool, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func pageBounds(page *domain.Page) (limit, offset any) {
	if page == nil {
		return nil, 0
	}
	return page.Size, page.Number*page.Size - page.Size
}
