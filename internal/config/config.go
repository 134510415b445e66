package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/araddon/dateparse"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/jonboulle/clockwork"
)

// DefaultLookback is how far back a run looks when no start date is given.
const DefaultLookback = 7 * 24 * time.Hour

// LedgerDisabled turns the publish-state ledger off when used as LEDGER_PATH.
const LedgerDisabled = "off"

// Config holds all run settings, populated from flags with environment fallbacks.
type Config struct {
	HDXKey  string
	HDXSite string
	HDXURL  string // overrides the site's base URL when set
	DB      DBParams

	StartDate time.Time

	LogLevel  string
	LogFormat string

	AuditLogPath      string
	LedgerPath        string
	SMTPConfigPath    string
	DatasetStaticPath string
	HTTPTimeout       time.Duration
	PushgatewayURL    string
	KafkaBrokers      []string
	KafkaTopic        string
}

// Load parses command-line arguments (without the program name). Unset flags
// fall back to environment variables, then to defaults. The clock supplies
// "now" for the default start date.
func Load(args []string, clock clockwork.Clock) (*Config, error) {
	fs := flag.NewFlagSet("unosat-hdx-etl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var hdxKey, hdxSite, hdxURL, dbParams, startDate string
	stringFlag(fs, &hdxKey, "hdx-key", "hk", sharedcfg.EnvOrDefault("HDX_KEY", ""), "HDX api key")
	stringFlag(fs, &hdxSite, "hdx-site", "hs", sharedcfg.EnvOrDefault("HDX_SITE", "feature"), "HDX site to use")
	fs.StringVar(&hdxURL, "hdx-url", sharedcfg.EnvOrDefault("HDX_URL", ""), "HDX base URL, overrides -hdx-site")
	stringFlag(fs, &dbParams, "db-params", "dp", sharedcfg.EnvOrDefault("DB_PARAMS", ""), "Database connection parameters")
	stringFlag(fs, &startDate, "start-date", "sd", sharedcfg.EnvOrDefault("START_DATE", ""),
		"Add any datasets created or updated after this date. Defaults to one week prior to current date.")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if dbParams == "" {
		return nil, errors.New("DB_PARAMS is required")
	}
	db, err := ParseDBParams(dbParams)
	if err != nil {
		return nil, err
	}

	start, err := parseStartDate(startDate, clock)
	if err != nil {
		return nil, err
	}

	httpTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("HTTP_TIMEOUT", "60s"))
	if err != nil || httpTimeout <= 0 {
		return nil, errors.New("invalid HTTP_TIMEOUT")
	}

	var brokers []string
	if v := sharedcfg.EnvOrDefault("KAFKA_BROKERS", ""); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HDXKey:    hdxKey,
		HDXSite:   hdxSite,
		HDXURL:    hdxURL,
		DB:        db,
		StartDate: start,

		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),

		AuditLogPath:      sharedcfg.EnvOrDefault("AUDIT_LOG_PATH", "publishlog.txt"),
		LedgerPath:        sharedcfg.EnvOrDefault("LEDGER_PATH", "publishstate.db"),
		SMTPConfigPath:    sharedcfg.EnvOrDefault("SMTP_CONFIG", "config/smtp_configuration.yml"),
		DatasetStaticPath: sharedcfg.EnvOrDefault("DATASET_STATIC_CONFIG", "config/hdx_dataset_static.yml"),
		HTTPTimeout:       httpTimeout,
		PushgatewayURL:    sharedcfg.EnvOrDefault("PUSHGATEWAY_URL", ""),
		KafkaBrokers:      brokers,
		KafkaTopic:        sharedcfg.EnvOrDefault("KAFKA_TOPIC", "catalog-publications"),
	}

	if cfg.HDXSite == "" && cfg.HDXURL == "" {
		return nil, errors.New("HDX_SITE or HDX_URL is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// LedgerEnabled reports whether publish states should be recorded.
func (c *Config) LedgerEnabled() bool {
	return c.LedgerPath != "" && c.LedgerPath != LedgerDisabled
}

// stringFlag registers a flag under a long and a short name.
func stringFlag(fs *flag.FlagSet, p *string, name, short, value, usage string) {
	fs.StringVar(p, name, value, usage)
	fs.StringVar(p, short, value, usage+" (shorthand)")
}

func parseStartDate(s string, clock clockwork.Clock) (time.Time, error) {
	if s == "" {
		return clock.Now().UTC().Add(-DefaultLookback), nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid START_DATE %q: %w", s, err)
	}
	return t, nil
}
