package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	authinadapter "punchclock/internal/modules/auth/adapter/in"
	authoutadapter "punchclock/internal/modules/auth/adapter/out"
	authusecase "punchclock/internal/modules/auth/usecase"
	credentialoutadapter "punchclock/internal/modules/credential/adapter/out"
	credentialout "punchclock/internal/modules/credential/port/out"
	credentialusecase "punchclock/internal/modules/credential/usecase"
	userinadapter "punchclock/internal/modules/user/adapter/in"
	useroutadapter "punchclock/internal/modules/user/adapter/out"
	userusecase "punchclock/internal/modules/user/usecase"
	worksessioninadapter "punchclock/internal/modules/worksession/adapter/in"
	worksessionoutadapter "punchclock/internal/modules/worksession/adapter/out"
	worksessionout "punchclock/internal/modules/worksession/port/out"
	worksessionusecase "punchclock/internal/modules/worksession/usecase"
	"punchclock/internal/platform/clock"
	"punchclock/internal/platform/config"
	"punchclock/internal/platform/httpclient"
	"punchclock/internal/platform/id"
	"punchclock/internal/platform/logging"
	"punchclock/internal/platform/metrics"
	"punchclock/internal/platform/sqlitedb"
)

type App struct {
	AuthCLI    authinadapter.CLIHandler
	SessionCLI worksessioninadapter.CLIHandler
	UserCLI    userinadapter.CLIHandler
	Metrics    *metrics.Metrics
	Logger     *slog.Logger

	db *sql.DB
}

// New wires every module for cfg. The persisted session view is loaded
// before returning; the identity is not, callers decide when to Restore.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	m := metrics.New(prometheus.NewRegistry())

	var db *sql.DB
	if cfg.Storage == config.StorageSQLite {
		opened, err := sqlitedb.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		db = opened
	}

	kv, err := newCredentialStore(ctx, cfg, db)
	if err != nil {
		closeDB(db)
		return nil, err
	}
	tokens := credentialusecase.NewTokenManager(kv, logger)
	tokens.Load(ctx)

	client := httpclient.New(cfg.APIURL, &http.Client{Timeout: cfg.Timeout}, tokens, id.ULID{}, m, logger)

	var views worksessionout.ViewStore
	if db != nil {
		views, err = worksessionoutadapter.NewSQLiteViewStore(ctx, db)
		if err != nil {
			closeDB(db)
			return nil, fmt.Errorf("new session view store: %w", err)
		}
	}
	engine := worksessionusecase.NewEngine(
		worksessionoutadapter.NewHTTPGateway(client),
		views,
		worksessionoutadapter.NewMarkdownNoteWriter(),
		clock.SystemClock{},
		cfg.CacheWindow,
		m,
		logger,
	)
	engine.Restore(ctx)

	authUC := authusecase.NewManager(
		authoutadapter.NewHTTPGateway(client),
		tokens,
		authoutadapter.NewYAMLDirectory(cfg.DirectoryPath),
		engine,
		cfg.OfflineFallback,
		logger,
	)
	userUC := userusecase.NewInteractor(useroutadapter.NewHTTPGateway(client), authUC)

	return &App{
		AuthCLI:    authinadapter.NewCLIHandler(authUC),
		SessionCLI: worksessioninadapter.NewCLIHandler(engine),
		UserCLI:    userinadapter.NewCLIHandler(userUC),
		Metrics:    m,
		Logger:     logger,
		db:         db,
	}, nil
}

func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func newCredentialStore(ctx context.Context, cfg config.Config, db *sql.DB) (credentialout.KeyValueStore, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		store, err := credentialoutadapter.NewSQLiteStore(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("new credential store: %w", err)
		}
		return store, nil
	case config.StorageFile:
		return credentialoutadapter.NewFileStore(cfg.DataDir), nil
	case config.StorageMemory:
		return credentialoutadapter.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}
