package cli

import (
	"bufio"
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/fitlifeapp/fitlife/internal/client/api"
	"github.com/fitlifeapp/fitlife/internal/client/config"
	"github.com/fitlifeapp/fitlife/internal/client/profile"
	"github.com/fitlifeapp/fitlife/internal/client/session"
	"github.com/fitlifeapp/fitlife/internal/client/store"
	"github.com/fitlifeapp/fitlife/internal/filex"
	"github.com/fitlifeapp/fitlife/internal/logging"
)

// App ties the session container, the profile service, and the interactive
// prompt together.
type App struct {
	config  *config.Config
	session *session.Session
	profile *profile.Service
	db      *sql.DB
	log     logging.Logger
	reader  *bufio.Reader
}

// NewApp opens the local record database, builds the API client, and wires
// the session container. The session is not hydrated yet; Run does that.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewText(os.Stderr)

	dataDir := c.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = filex.EnsureSubDir("fitlife-data")
		if err != nil {
			return nil, err
		}
	}

	st, db, err := store.Open(ctx, filepath.Join(dataDir, "fitlife.db"))
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.APIBaseURL, c.RequestTimeout)
	if err := apiClient.Ping(ctx); err != nil {
		log.Warn(ctx, "server unreachable, cached data only", "url", c.APIBaseURL, "error", err)
	}

	return &App{
		config:  c,
		session: session.New(apiClient, st, log),
		profile: profile.NewService(st, apiClient, log),
		db:      db,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run hydrates the session and enters the REPL, blocking until the user
// exits.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	a.session.Hydrate(ctx)
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.session.CurrentUser() != nil
}

// status renders the prompt suffix: the signed-in email or "guest".
func (a *App) status() string {
	if user := a.session.CurrentUser(); user != nil {
		return user.Email
	}
	return "guest"
}
