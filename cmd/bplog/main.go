// Command bplog keeps a personal blood-pressure log on local storage.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jinwsy/blood-pressure/internal/adapters/file"
	"github.com/jinwsy/blood-pressure/internal/adapters/memory"
	"github.com/jinwsy/blood-pressure/internal/adapters/sqlite"
	"github.com/jinwsy/blood-pressure/internal/domain"
	"github.com/jinwsy/blood-pressure/internal/store"
)

const (
	Version = "0.1.0"
	appName = "bplog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	config := loadConfig()

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Personal blood-pressure log",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(config.LogLevel)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&config.Storage, "storage", config.Storage, "Storage backend (file, sqlite, memory)")
	flags.StringVar(&config.DataDir, "data-dir", config.DataDir, "Directory holding the stored readings")
	flags.StringVar(&config.TimeZone, "tz", config.TimeZone, "IANA time zone used to read and display times")
	flags.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		addCmd(&config),
		editCmd(&config),
		deleteCmd(&config),
		clearCmd(&config),
		listCmd(&config),
		statsCmd(&config),
		exportCmd(&config),
		chartCmd(&config),
		serveCmd(&config),
		statusCmd(&config),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	return nil
}

// Config holds application configuration
type Config struct {
	Storage     string // "file" | "sqlite" | "memory"
	DataDir     string // directory for the JSON file or SQLite database
	TimeZone    string // IANA name, or "Local"
	LogLevel    string
	Addr        string // bridge listen/dial address
	MetricsAddr string // optional Prometheus listen address
	TLSCert     string // path to this process's certificate
	TLSKey      string // path to this process's private key
	TLSCA       string // path to the CA certificate
}

// loadConfig reads configuration from environment variables
func loadConfig() Config {
	return Config{
		Storage:     envOr("BPLOG_STORAGE", "file"),
		DataDir:     envOr("BPLOG_DATA_DIR", "./data"),
		TimeZone:    envOr("BPLOG_TZ", "Local"),
		LogLevel:    envOr("BPLOG_LOG_LEVEL", "warn"),
		Addr:        envOr("BPLOG_ADDR", "127.0.0.1:50061"),
		MetricsAddr: os.Getenv("BPLOG_METRICS_ADDR"),
		TLSCert:     os.Getenv("TLS_CERT"),
		TLSKey:      os.Getenv("TLS_KEY"),
		TLSCA:       os.Getenv("TLS_CA"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Location resolves the configured time zone
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || strings.EqualFold(c.TimeZone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// openSlot creates the configured storage backend. The returned closer is
// never nil.
func openSlot(config Config) (domain.Slot, func() error, error) {
	noop := func() error { return nil }

	switch config.Storage {
	case "memory":
		log.Debug().Msg("initialized in-memory slot")
		return memory.NewSlot(), noop, nil
	case "sqlite":
		if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		dbPath := filepath.Join(config.DataDir, "bp.db")
		s, err := sqlite.NewSlot(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		log.Debug().Str("db_path", dbPath).Msg("initialized SQLite slot")
		return s, s.Close, nil
	case "file", "":
		s, err := file.NewSlot(config.DataDir)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("dir", config.DataDir).Msg("initialized file slot")
		return s, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown storage %q (want file, sqlite or memory)", config.Storage)
}

// openStore opens the slot and loads the store from it. Corrupt stored data
// is reported and the store starts empty.
func openStore(ctx context.Context, config Config, opts ...store.Option) (*store.Store, func() error, error) {
	loc, err := config.Location()
	if err != nil {
		return nil, nil, err
	}

	slot, closeSlot, err := openSlot(config)
	if err != nil {
		return nil, nil, err
	}

	s := store.New(slot, append([]store.Option{store.WithLocation(loc)}, opts...)...)
	if err := s.Load(ctx); err != nil {
		if !errors.Is(err, domain.ErrPersistenceCorrupt) {
			_ = closeSlot()
			return nil, nil, err
		}
		log.Warn().Err(err).Msg("stored readings could not be read; continuing with an empty log")
	}
	return s, closeSlot, nil
}

// withStore runs fn against a freshly loaded store and closes the slot after
func withStore(cmd *cobra.Command, config *Config, fn func(ctx context.Context, s *store.Store) error) error {
	ctx := cmd.Context()
	s, closeSlot, err := openStore(ctx, *config)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSlot(); err != nil {
			log.Error().Err(err).Msg("failed to close storage")
		}
	}()
	return fn(ctx, s)
}
