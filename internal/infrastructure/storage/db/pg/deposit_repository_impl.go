package postgresdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stellrflow/anchord/internal/core/domain"
)

const (
	depositColumns = `id, user_id, fiat_amount::text, currency,
		estimated_value::text, exchange_rate::text, destination_address, status,
		settlement_reference, fiat_reference, credited_value::text,
		failure_reason, created_at, updated_at, completed_at`

	insertDepositQuery = `INSERT INTO deposit (id, user_id, fiat_amount,
		currency, estimated_value, exchange_rate, destination_address, status,
		settlement_reference, fiat_reference, credited_value, failure_reason,
		created_at, updated_at, completed_at)
		VALUES ($1, $2, $3::numeric, $4, $5::numeric, $6::numeric, $7, $8, $9,
		$10, $11::numeric, $12, $13, $14, $15)`

	updateDepositQuery = `UPDATE deposit SET destination_address = $2,
		status = $3, settlement_reference = $4, fiat_reference = $5,
		credited_value = $6::numeric, failure_reason = $7, updated_at = $8,
		completed_at = $9
		WHERE id = $1`
)

type depositRepositoryImpl struct {
	db     querier
	execTx func(ctx context.Context, txBody func(querier) error) error
}

func NewDepositRepositoryImpl(
	db querier, execTx func(context.Context, func(querier) error) error,
) domain.DepositRepository {
	return &depositRepositoryImpl{db, execTx}
}

func (r *depositRepositoryImpl) AddDeposit(
	ctx context.Context, d *domain.Deposit,
) error {
	if _, err := r.db.Exec(
		ctx, insertDepositQuery, d.ID, d.UserID, d.FiatAmount.String(),
		d.Currency, d.EstimatedValue.String(), d.ExchangeRate.String(),
		d.DestinationAddress, string(d.Status), d.SettlementReference,
		d.FiatReference, d.CreditedValue.String(), d.FailureReason,
		d.CreatedAt, d.UpdatedAt, d.CompletedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("deposit with id %s already exists", d.ID)
		}
		return err
	}
	return nil
}

func (r *depositRepositoryImpl) GetDeposit(
	ctx context.Context, id string,
) (*domain.Deposit, error) {
	return getDeposit(ctx, r.db, id, false)
}

func (r *depositRepositoryImpl) GetDepositsForUser(
	ctx context.Context, userID string, page *domain.Page,
) ([]domain.Deposit, error) {
	limit, offset := pageBounds(page)
	rows, err := r.db.Query(
		ctx,
		"SELECT "+depositColumns+" FROM deposit WHERE user_id = $1 "+
			"ORDER BY id LIMIT $2 OFFSET $3",
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectDeposits(rows)
}

func (r *depositRepositoryImpl) GetAllDeposits(
	ctx context.Context, page *domain.Page,
) ([]domain.Deposit, error) {
	limit, offset := pageBounds(page)
	rows, err := r.db.Query(
		ctx,
		"SELECT "+depositColumns+" FROM deposit ORDER BY id LIMIT $1 OFFSET $2",
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectDeposits(rows)
}

func (r *depositRepositoryImpl) UpdateDeposit(
	ctx context.Context, id string,
	updateFn func(d *domain.Deposit) (*domain.Deposit, error),
) error {
	return r.execTx(ctx, func(tx querier) error {
		deposit, err := getDeposit(ctx, tx, id, true)
		if err != nil {
			return err
		}

		updatedDeposit, err := updateFn(deposit)
		if err != nil {
			return err
		}

		d := updatedDeposit
		_, err = tx.Exec(
			ctx, updateDepositQuery, id, d.DestinationAddress, string(d.Status),
			d.SettlementReference, d.FiatReference, d.CreditedValue.String(),
			d.FailureReason, d.UpdatedAt, d.CompletedAt,
		)
		return err
	})
}

func getDeposit(
	ctx context.Context, db querier, id string, forUpdate bool,
) (*domain.Deposit, error) {
	query := "SELECT " + depositColumns + " FROM deposit WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}

	deposit, err := scanDeposit(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDepositNotFound
		}
		return nil, err
	}
	return deposit, nil
}

func collectDeposits(rows pgx.Rows) ([]domain.Deposit, error) {
	defer rows.Close()

	deposits := make([]domain.Deposit, 0)
	for rows.Next() {
		deposit, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, *deposit)
	}
	return deposits, rows.Err()
}

func scanDeposit(row pgx.Row) (*domain.Deposit, error) {
	var (
		d                                        domain.Deposit
		status                                   string
		fiatAmount, estimated, rate, creditedVal string
	)
	if err := row.Scan(
		&d.ID, &d.UserID, &fiatAmount, &d.Currency, &estimated, &rate,
		&d.DestinationAddress, &status, &d.SettlementReference, &d.FiatReference,
		&creditedVal, &d.FailureReason, &d.CreatedAt, &d.UpdatedAt,
		&d.CompletedAt,
	); err != nil {
		return nil, err
	}

	d.Status = domain.Status(status)
	d.FiatAmount = toDecimal(fiatAmount)
	d.EstimatedValue = toDecimal(estimated)
	d.ExchangeRate = toDecimal(rate)
	d.CreditedValue = toDecimal(creditedVal)
	return &d, nil
}

func toDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
