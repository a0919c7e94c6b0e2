package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/AntonStoeckl/bookshelf-viewmodel/shell/config"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

var (
	errNegativeAuthorID      = errors.New("author must not be negative")
	errReplayWithLoads       = errors.New("replay cannot be combined with -migrate, -books or -author")
	errJournalIsReplaySource = errors.New("journal and replay must be different files")
	errOTelLogsWithoutOTel   = errors.New("log format otel requires -otel-endpoint")
)

// Config holds the command line configuration. Environment settings are the flag defaults.
type Config struct {
	Driver       string
	DSN          string
	Migrate      bool
	LoadBooks    bool
	LoadAuthor   bool
	AuthorID     viewmodel.AuthorIDInt
	ShowState    bool
	LogFormat    string
	LogLevel     string
	MetricsAddr  string
	OTelEndpoint string
	JournalPath  string
	ReplayPath   string
}

// parseFlags parses args on top of the environment configuration and fills the DSN default
// for the final driver.
func parseFlags(fs *flag.FlagSet, args []string, envConfig config.Config) (Config, error) {
	var (
		driver       = fs.String("driver", envConfig.Driver, "Database driver: pgx, postgres, sqlx or sqlite")
		dsn          = fs.String("dsn", envConfig.DSN, "Database connection string, defaults per driver")
		migrate      = fs.Bool("migrate", false, "Apply schema migrations before loading")
		loadBooks    = fs.Bool("books", false, "Load all books after the authors")
		authorID     = fs.Int("author", 0, "Load the books of this author id")
		showState    = fs.Bool("show-state", false, "Print the view model as indented JSON")
		logFormat    = fs.String("log-format", envConfig.LogFormat, "Log format: json, text, zerolog or otel")
		logLevel     = fs.String("log-level", envConfig.LogLevel, "Log level: debug, info, warn or error")
		metricsAddr  = fs.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
		otelEndpoint = fs.String("otel-endpoint", "", "Export traces, logs and, without -metrics-addr, metrics via OTLP gRPC, e.g. localhost:4317")
		journalPath  = fs.String("journal", "", "Append every applied event envelope to this file")
		replayPath   = fs.String("replay", "", "Rebuild the view model from this journal instead of the database")
	)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Driver:       *driver,
		DSN:          *dsn,
		Migrate:      *migrate,
		LoadBooks:    *loadBooks,
		AuthorID:     *authorID,
		ShowState:    *showState,
		LogFormat:    *logFormat,
		LogLevel:     *logLevel,
		MetricsAddr:  *metricsAddr,
		OTelEndpoint: *otelEndpoint,
		JournalPath:  *journalPath,
		ReplayPath:   *replayPath,
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "author" {
			cfg.LoadAuthor = true
		}
	})

	resolved, err := cfg.envConfig().Resolve()
	if err != nil {
		return Config{}, err
	}
	cfg.DSN = resolved.DSN

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.AuthorID < 0 {
		return fmt.Errorf("%w: %d", errNegativeAuthorID, c.AuthorID)
	}

	if c.ReplayPath != "" && (c.Migrate || c.LoadBooks || c.LoadAuthor) {
		return errReplayWithLoads
	}

	if c.ReplayPath != "" && c.ReplayPath == c.JournalPath {
		return errJournalIsReplaySource
	}

	if c.LogFormat == config.LogFormatOTel && c.OTelEndpoint == "" {
		return errOTelLogsWithoutOTel
	}

	return nil
}

func (c Config) envConfig() config.Config {
	return config.Config{
		Driver:    c.Driver,
		DSN:       c.DSN,
		LogLevel:  c.LogLevel,
		LogFormat: c.LogFormat,
	}
}
