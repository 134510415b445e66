// Command etl publishes UNOSAT products changed since a start date to HDX.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/unosat-hdx-etl/internal/adapter/hdx"
	kafkaadapter "github.com/couchcryptid/unosat-hdx-etl/internal/adapter/kafka"
	"github.com/couchcryptid/unosat-hdx-etl/internal/adapter/sourcedb"
	"github.com/couchcryptid/unosat-hdx-etl/internal/alert"
	"github.com/couchcryptid/unosat-hdx-etl/internal/audit"
	"github.com/couchcryptid/unosat-hdx-etl/internal/config"
	"github.com/couchcryptid/unosat-hdx-etl/internal/domain"
	"github.com/couchcryptid/unosat-hdx-etl/internal/ledger"
	"github.com/couchcryptid/unosat-hdx-etl/internal/observability"
	"github.com/couchcryptid/unosat-hdx-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load(os.Args[1:], clockwork.NewRealClock())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	smtpCfg, err := config.LoadSMTPConfig(cfg.SMTPConfigPath)
	if err != nil {
		slog.Error("failed to load smtp config", "error", err)
		os.Exit(1)
	}
	var notifier observability.Notifier
	if smtpCfg != nil {
		mailer, err := alert.NewMailer(*smtpCfg)
		if err != nil {
			slog.Error("failed to set up failure mail", "error", err)
			os.Exit(1)
		}
		notifier = mailer
	}
	logger := observability.NewLogger(cfg, notifier)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	err = run(ctx, cfg, logger, metrics, openSourceDB)
	if cfg.PushgatewayURL != "" {
		if perr := metrics.Push(context.WithoutCancel(ctx), cfg.PushgatewayURL); perr != nil {
			logger.Warn("metrics push failed", "error", perr)
		}
	}
	if err != nil {
		logger.Error("run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// sourceConn is an open source database handle.
type sourceConn interface {
	pipeline.Source
	io.Closer
}

func openSourceDB(dsn string) (sourceConn, error) {
	store, err := sourcedb.Open(dsn)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics,
	openSource func(dsn string) (sourceConn, error)) error {
	defaults, err := config.LoadDatasetDefaults(cfg.DatasetStaticPath)
	if err != nil {
		return err
	}

	baseURL := cfg.HDXURL
	if baseURL == "" {
		if baseURL, err = hdx.SiteURL(cfg.HDXSite); err != nil {
			return err
		}
	}
	catalog := hdx.NewClient(baseURL, cfg.HDXKey, domain.ScriptName, defaults, cfg.HTTPTimeout, logger)

	var led pipeline.Ledger
	if cfg.LedgerEnabled() {
		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer store.Close()
		led = store
	}

	var announcer pipeline.Announcer
	if len(cfg.KafkaBrokers) > 0 {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		announcer = writer
	}

	logger.Info("connecting to source database", "db", cfg.DB.String(), "hdx", baseURL)
	source, err := openSource(cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("connect to source database: %w", err)
	}
	// Released on every return, including a failure part way through the rows.
	defer source.Close()

	p := pipeline.New(source, pipeline.NewTransformer(logger), catalog, audit.New(cfg.AuditLogPath), led, announcer, logger, metrics)
	_, err = p.Run(ctx, cfg.StartDate)
	return err
}
