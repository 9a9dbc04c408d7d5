// Package app wires the dashboard cache together: config, storage backend,
// local store, entity facade, remote client and the sync coordinator, plus
// the refresh/watch loop that keeps the cache warm.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/config"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/inventory"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/localstore"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/logging"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/remote/postgres"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/syncx"
)

// watchedTables are the collections refreshed on change notifications.
var watchedTables = []string{inventory.TableProducts, inventory.TableStockTransactions}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	remote      *postgres.Client
	coordinator *syncx.Coordinator
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	app := &App{config: cfg, logger: logger}

	backend, err := app.buildBackend(ctx)
	if err != nil {
		return nil, err
	}

	store := localstore.New(backend, localstore.WithLogger(logger))
	inv := inventory.New(store, logger)

	var (
		client   *postgres.Client
		notifier *postgres.Listener
	)
	if cfg.RemoteDSN != "" {
		client, err = postgres.New(ctx, cfg.RemoteDSN, logger)
		if err != nil {
			// The whole point of the cache is surviving an unreachable
			// backend; start offline instead of failing.
			logger.Warn(ctx, "remote backend unreachable, starting offline", "error", err)
			client = nil
		} else {
			notifier = postgres.NewListener(cfg.RemoteDSN, cfg.ChannelPrefix, logger)
		}
	}

	app.remote = client
	if client != nil {
		app.coordinator = syncx.New(inv, client, notifier, logger)
	} else {
		app.coordinator = syncx.New(inv, nil, nil, logger)
	}
	return app, nil
}

// buildBackend picks the cache medium: S3 when a bucket is configured,
// SQLite when a path is, process memory otherwise.
func (app *App) buildBackend(ctx context.Context) (localstore.Backend, error) {
	cfg := app.config

	if cfg.S3Bucket != "" {
		loadOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.S3Region),
		}
		if cfg.S3AccessKey != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("loading aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.S3Endpoint != "" {
				o.BaseEndpoint = &cfg.S3Endpoint
				o.UsePathStyle = true
			}
		})
		return localstore.NewS3Backend(client, cfg.S3Bucket, cfg.S3Prefix), nil
	}

	if cfg.SQLitePath != "" {
		db, backend, err := localstore.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		app.db = db
		return backend, nil
	}

	app.logger.Warn(ctx, "no durable medium configured, cache is in-memory only")
	return localstore.NewMemoryBackend(), nil
}

// Run warms the cache, then keeps it fresh from change notifications and a
// periodic re-pull until the process is signalled to stop.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.close()

	log := app.logger
	c := app.coordinator

	log.Info(ctx, "starting stock-wise cache", "online", c.Online())

	if err := c.RefreshAll(ctx); err != nil {
		log.Error(ctx, "initial refresh failed", "error", err)
	}

	var teardowns []func()
	for _, table := range watchedTables {
		table := table
		unsubscribe, err := c.Watch(ctx, table, func() {
			if err := app.refreshTable(ctx, table); err != nil {
				log.Warn(ctx, "change-triggered refresh failed", "table", table, "error", err)
			}
		})
		if err != nil {
			log.Warn(ctx, "subscription failed", "table", table, "error", err)
			continue
		}
		teardowns = append(teardowns, unsubscribe)
	}
	defer func() {
		for _, teardown := range teardowns {
			teardown()
		}
	}()

	ticker := time.NewTicker(app.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(context.Background(), "shutting down")
			return nil
		case <-ticker.C:
			if err := c.RefreshAll(ctx); err != nil {
				log.Warn(ctx, "periodic refresh failed", "error", err)
			}
		}
	}
}

func (app *App) refreshTable(ctx context.Context, table string) error {
	switch table {
	case inventory.TableProducts:
		_, err := app.coordinator.RefreshProducts(ctx)
		return err
	case inventory.TableStockTransactions:
		_, err := app.coordinator.RefreshStockTransactions(ctx)
		return err
	case inventory.TableSuppliers:
		_, err := app.coordinator.RefreshSuppliers(ctx)
		return err
	case inventory.TableCategories:
		_, err := app.coordinator.RefreshCategories(ctx)
		return err
	default:
		return nil
	}
}

func (app *App) close() {
	if app.remote != nil {
		_ = app.remote.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
