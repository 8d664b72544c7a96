package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/garrettladley/pulse/internal/cache"
	"github.com/garrettladley/pulse/internal/callback"
	"github.com/garrettladley/pulse/internal/client/whoop"
	"github.com/garrettladley/pulse/internal/config"
	"github.com/garrettladley/pulse/internal/db"
	"github.com/garrettladley/pulse/internal/events"
	"github.com/garrettladley/pulse/internal/oauth"
	"github.com/garrettladley/pulse/internal/paths"
	"github.com/garrettladley/pulse/internal/readiness"
	"github.com/garrettladley/pulse/internal/redis"
	"github.com/garrettladley/pulse/internal/repository"
	"github.com/garrettladley/pulse/internal/settings"
	"github.com/garrettladley/pulse/internal/version"
	"github.com/garrettladley/pulse/internal/xslog"
	"github.com/garrettladley/pulse/internal/xsync"
)

const predictionCacheKey = "pulse:predictions"

type bus interface {
	events.Publisher
	events.Subscriber
}

// app holds every collaborator a command needs. Commands build one with
// newApp and release it with Close.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	logFile *os.File
	sqlDB   *sql.DB
	redis   *goredis.Client
	memory  *cache.Memory[readiness.Evaluation]

	repo       *repository.Repository
	bus        bus
	bridge     *events.RedisBridge
	tokens     *oauth.DBTokenSource
	authorizer *oauth.Authorizer
	client     *whoop.Client
	sync       *xsync.Service
	engine     *readiness.Engine
	settings   *settings.Surface
	receiver   *callback.Receiver

	cancel context.CancelFunc
}

func newApp(ctx context.Context) (a *app, err error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	a = &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := a.openLog(); err != nil {
		return nil, err
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		if dbPath, err = paths.DB(); err != nil {
			return nil, err
		}
	}
	if a.sqlDB, err = db.Open(ctx, dbPath); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.repo = repository.New(a.sqlDB)

	if a.redis, err = redis.Connect(ctx, cfg.RedisURL); err != nil {
		return nil, err
	}

	local := events.NewMemoryBus(events.WithLogger(a.logger))
	a.bus = local
	var predictions cache.Cache[readiness.Evaluation]
	if a.redis != nil {
		a.bridge = events.NewRedisBridge(local, a.redis, a.logger)
		a.bus = a.bridge
		predictions = cache.NewRedis[readiness.Evaluation](a.redis, predictionCacheKey, cfg.CacheTTL)
	} else {
		a.memory = cache.NewMemory[readiness.Evaluation](cfg.CacheTTL)
		predictions = a.memory
	}

	oauthCfg := oauth.NewConfig(cfg.Whoop)
	a.tokens = oauth.NewDBTokenSource(oauthCfg, a.repo.Tokens)
	a.authorizer = oauth.NewAuthorizer(oauthCfg, a.repo,
		oauth.WithLogger(a.logger),
		oauth.WithTokenSource(a.tokens),
	)
	a.client = whoop.New(a.tokens, whoop.WithLogger(a.logger))
	a.sync = xsync.NewService(a.client, a.repo, a.bus, a.logger)
	a.engine = readiness.NewEngine(a.repo, predictions, a.logger)

	a.settings = settings.New(settings.Deps{
		Authorizer: a.authorizer,
		Syncer:     a.sync,
		Cache:      predictions,
		Classifier: a.sync,
		Windows:    a.repo.Settings,
		Publisher:  a.bus,
	}, a.logger)
	if err := a.settings.Load(ctx); err != nil {
		return nil, err
	}

	a.receiver = callback.NewReceiver(cfg.URLScheme, cfg.Whoop.RedirectURL, a.authorizer, a.sync, a.logger)

	a.start(ctx)
	return a, nil
}

func (a *app) openLog() error {
	logPath, err := paths.Log()
	if err != nil {
		return err
	}
	a.logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	format := xslog.FormatJSON
	if a.cfg.Env.IsDevelopment() || version.IsDevelopment(version.Get()) {
		format = xslog.FormatText
	}
	a.logger = xslog.NewLogger(a.logFile, a.cfg.LogLevel, format).With(xslog.Version())
	return nil
}

// start runs the background relays that live as long as the app.
func (a *app) start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)

	go a.engine.Watch(ctx, a.bus)

	if a.bridge != nil {
		go func() {
			if err := a.bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.ErrorContext(ctx, "event bridge stopped", xslog.Error(err))
			}
		}()
	}
}

// requireCredentials fails commands that talk to WHOOP when the OAuth client
// is not configured.
func (a *app) requireCredentials() error {
	if !a.cfg.HasCredentials() {
		return errors.New("WHOOP_CLIENT_ID and WHOOP_CLIENT_SECRET must be set")
	}
	return nil
}

func (a *app) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.memory != nil {
		_ = a.memory.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.sqlDB != nil {
		_ = a.sqlDB.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
