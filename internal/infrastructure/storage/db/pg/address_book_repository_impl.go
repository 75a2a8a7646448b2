package postgresdb

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stellrflow/anchord/internal/core/domain"
)

const (
	upsertAddressQuery = `INSERT INTO address_book (user_id, address, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET address = EXCLUDED.address, updated_at = EXCLUDED.updated_at`

	selectAddressQuery = `SELECT address FROM address_book WHERE user_id = $1`
)

type addressBookRepositoryImpl struct {
	db querier
}

func NewAddressBookRepositoryImpl(db querier) domain.AddressBookRepository {
	return &addressBookRepositoryImpl{db}
}

func (r *addressBookRepositoryImpl) SetAddress(
	ctx context.Context, userID, address string,
) error {
	_, err := r.db.Exec(
		ctx, upsertAddressQuery, userID, address, time.Now().Unix(),
	)
	return err
}

func (r *addressBookRepositoryImpl) GetAddress(
	ctx context.Context, userID string,
) (string, error) {
	var address string
	if err := r.db.QueryRow(ctx, selectAddressQuery, userID).Scan(
		&address,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrAddressNotConnected
		}
		return "", err
	}
	return address, nil
}
