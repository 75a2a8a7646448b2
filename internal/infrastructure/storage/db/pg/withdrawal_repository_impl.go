package postgresdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stellrflow/anchord/internal/core/domain"
)

const (
	withdrawalColumns = `id, user_id, requested_value::text,
		estimated_fiat_payout::text, currency, fiat_per_unit_rate::text,
		source_address, status, ledger_reference, fiat_reference,
		actual_fiat_payout::text, estimated_time_to_settle, failure_reason,
		created_at, updated_at, completed_at`

	insertWithdrawalQuery = `INSERT INTO withdrawal (id, user_id,
		requested_value, estimated_fiat_payout, currency, fiat_per_unit_rate,
		source_address, status, ledger_reference, fiat_reference,
		actual_fiat_payout, estimated_time_to_settle, failure_reason,
		created_at, updated_at, completed_at)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6::numeric, $7, $8, $9,
		$10, $11::numeric, $12, $13, $14, $15, $16)`

	updateWithdrawalQuery = `UPDATE withdrawal SET source_address = $2,
		status = $3, ledger_reference = $4, fiat_reference = $5,
		actual_fiat_payout = $6::numeric, failure_reason = $7, updated_at = $8,
		completed_at = $9
		WHERE id = $1`
)

type withdrawalRepositoryImpl struct {
	db     querier
	execTx func(ctx context.Context, txBody func(querier) error) error
}

func NewWithdrawalRepositoryImpl(
	db querier, execTx func(context.Context, func(querier) error) error,
) domain.WithdrawalRepository {
	return &withdrawalRepositoryImpl{db, execTx}
}

func (r *withdrawalRepositoryImpl) AddWithdrawal(
	ctx context.Context, w *domain.Withdrawal,
) error {
	if _, err := r.db.Exec(
		ctx, insertWithdrawalQuery, w.ID, w.UserID, w.RequestedValue.String(),
		w.EstimatedFiatPayout.String(), w.Currency, w.FiatPerUnitRate.String(),
		w.SourceAddress, string(w.Status), w.LedgerReference, w.FiatReference,
		w.ActualFiatPayout.String(), w.EstimatedTimeToSettle, w.FailureReason,
		w.CreatedAt, w.UpdatedAt, w.CompletedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("withdrawal with id %s already exists", w.ID)
		}
		return err
	}
	return nil
}

func (r *withdrawalRepositoryImpl) GetWithdrawal(
	ctx context.Context, id string,
) (*domain.Withdrawal, error) {
	return getWithdrawal(ctx, r.db, id, false)
}

func (r *withdrawalRepositoryImpl) GetWithdrawalsForUser(
	ctx context.Context, userID string, page *domain.Page,
) ([]domain.Withdrawal, error) {
	limit, offset := pageBounds(page)
	rows, err := r.db.Query(
		ctx,
		"SELECT "+withdrawalColumns+" FROM withdrawal WHERE user_id = $1 "+
			"ORDER BY id LIMIT $2 OFFSET $3",
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectWithdrawals(rows)
}

func (r *withdrawalRepositoryImpl) GetAllWithdrawals(
	ctx context.Context, page *domain.Page,
) ([]domain.Withdrawal, error) {
	limit, offset := pageBounds(page)
	rows, err := r.db.Query(
		ctx,
		"SELECT "+withdrawalColumns+" FROM withdrawal ORDER BY id "+
			"LIMIT $1 OFFSET $2",
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectWithdrawals(rows)
}

func (r *withdrawalRepositoryImpl) UpdateWithdrawal(
	ctx context.Context, id string,
	updateFn func(w *domain.Withdrawal) (*domain.Withdrawal, error),
) error {
	return r.execTx(ctx, func(tx querier) error {
		withdrawal, err := getWithdrawal(ctx, tx, id, true)
		if err != nil {
			return err
		}

		updatedWithdrawal, err := updateFn(withdrawal)
		if err != nil {
			return err
		}

		w := updatedWithdrawal
		_, err = tx.Exec(
			ctx, updateWithdrawalQuery, id, w.SourceAddress, string(w.Status),
			w.LedgerReference, w.FiatReference, w.ActualFiatPayout.String(),
			w.FailureReason, w.UpdatedAt, w.CompletedAt,
		)
		return err
	})
}

func getWithdrawal(
	ctx context.Context, db querier, id string, forUpdate bool,
) (*domain.Withdrawal, error) {
	query := "SELECT " + withdrawalColumns + " FROM withdrawal WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}

	withdrawal, err := scanWithdrawal(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWithdrawalNotFound
		}
		return nil, err
	}
	return withdrawal, nil
}

func collectWithdrawals(rows pgx.Rows) ([]domain.Withdrawal, error) {
	defer rows.Close()

	withdrawals := make([]domain.Withdrawal, 0)
	for rows.Next() {
		withdrawal, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, *withdrawal)
	}
	return withdrawals, rows.Err()
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var (
		w                                  domain.Withdrawal
		status                             string
		requested, estimated, rate, payout string
	)
	if err := row.Scan(
		&w.ID, &w.UserID, &requested, &estimated, &w.Currency, &rate,
		&w.SourceAddress, &status, &w.LedgerReference, &w.FiatReference,
		&payout, &w.EstimatedTimeToSettle, &w.FailureReason, &w.CreatedAt,
		&w.UpdatedAt, &w.CompletedAt,
	); err != nil {
		return nil, err
	}

	w.Status = domain.Status(status)
	w.RequestedValue = toDecimal(requested)
	w.EstimatedFiatPayout = toDecimal(estimated)
	w.FiatPerUnitRate = toDecimal(rate)
	w.ActualFiatPayout = toDecimal(payout)
	return &w, nil
}
