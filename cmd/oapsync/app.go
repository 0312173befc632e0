package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"oap_import/internal/config"
	"oap_import/internal/elements"
	"oap_import/internal/ezid"
	"oap_import/internal/identity"
	"oap_import/internal/logging"
	"oap_import/internal/publisher"
	"oap_import/internal/service"
	"oap_import/internal/storage/sqlstore"
)

// app holds what every command needs: configuration, logger and stores.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	db     *sqlx.DB
	items  *sqlstore.RawItemStore
	users  *sqlstore.UserStore
	assocs *sqlstore.AssociationStore
	tx     *sqlstore.TransactionManager
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, withCode(ExitConfigError, fmt.Errorf("load config: %w", err))
	}

	log, err := logging.NewWithWriter(os.Stderr, cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}

	db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := sqlstore.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug().Str("driver", cfg.Database.Driver).Msg("connected to database")

	return &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		items:  sqlstore.NewRawItemStore(db),
		users:  sqlstore.NewUserStore(db),
		assocs: sqlstore.NewAssociationStore(db),
		tx:     sqlstore.NewTransactionManager(db),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// syncService wires the remote clients into the pipeline. The returned
// function releases the publisher connection.
func (a *app) syncService() (*service.SyncService, func(), error) {
	if err := a.cfg.RequireRemote(); err != nil {
		return nil, nil, withCode(ExitConfigError, err)
	}

	minter := ezid.NewClient(ezid.Config{
		BaseURL:  a.cfg.EZID.BaseURL,
		Shoulder: a.cfg.EZID.Shoulder,
		Username: a.cfg.EZID.Username,
		Password: a.cfg.EZID.Password,
		Timeout:  a.cfg.EZID.Timeout,
	})
	resolver := identity.NewResolver(a.assocs, minter, a.log)

	remote := elements.NewClient(elements.Config{
		BaseURL:     a.cfg.Elements.BaseURL,
		Source:      a.cfg.Elements.Source,
		Username:    a.cfg.Elements.Username,
		Password:    a.cfg.Elements.Password,
		Timeout:     a.cfg.Elements.Timeout,
		MaxAttempts: a.cfg.Elements.Retry.MaxAttempts,
		RetryDelay:  a.cfg.Elements.Retry.Delay,
		RateLimit:   a.cfg.Elements.RateLimit,
		Campuses:    a.cfg.Sync.Campuses,
	}, a.log)

	var pub service.Publisher
	release := func() {}
	if a.cfg.RabbitMQ.Enabled() {
		rmq, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        a.cfg.RabbitMQ.URL,
			Exchange:   a.cfg.RabbitMQ.Exchange,
			RoutingKey: a.cfg.RabbitMQ.RoutingKey,
			QueueName:  a.cfg.RabbitMQ.QueueName,
		}, a.log)
		if err != nil {
			return nil, nil, err
		}
		pub = rmq
		release = func() {
			if err := rmq.Close(); err != nil {
				a.log.Warn().Err(err).Msg("failed to close rabbitmq connection")
			}
		}
	}

	svc := service.NewSyncService(a.items, a.users, resolver, a.assocs, remote, pub, a.log, a.cfg.Sync)
	return svc, release, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
