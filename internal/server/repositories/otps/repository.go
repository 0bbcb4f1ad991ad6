package otps

import (
	"context"

	"github.com/fitlifeapp/fitlife/internal/server/models"
)

type Repository interface {
	// Upsert replaces any pending code for the email.
	Upsert(ctx context.Context, otp *models.ResetOTP) error
	Get(ctx context.Context, email string) (*models.ResetOTP, error)
	Delete(ctx context.Context, email string) error
}
