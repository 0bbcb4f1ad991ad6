package otps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fitlifeapp/fitlife/internal/common"
	"github.com/fitlifeapp/fitlife/internal/dbx"
	"github.com/fitlifeapp/fitlife/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, otp *models.ResetOTP) error {
	query :=
		`INSERT INTO reset_otps (email, code_hash, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE
		 SET code_hash = excluded.code_hash, expires_at = excluded.expires_at, created_at = now()
		 `

	_, err := r.db.ExecContext(ctx, query, otp.Email, otp.CodeHash, otp.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, email string) (*models.ResetOTP, error) {
	query :=
		`SELECT email, code_hash, expires_at, created_at FROM reset_otps
		 WHERE email = $1
		 `

	otp := &models.ResetOTP{}
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&otp.Email, &otp.CodeHash, &otp.ExpiresAt, &otp.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return otp, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reset_otps WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
