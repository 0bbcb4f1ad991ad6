package repomanager

import (
	"context"
	"database/sql"

	"github.com/fitlifeapp/fitlife/internal/dbx"
	"github.com/fitlifeapp/fitlife/internal/server/repositories/otps"
	"github.com/fitlifeapp/fitlife/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	OTPs(db dbx.DBTX) otps.Repository
}
