// Package escrow parses escrow command flags and starts the HTTP API service.
package escrow

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	entrypoint "github.com/wolfedge/escrow/internal/platform/cmd"
	"github.com/wolfedge/escrow/internal/services/escrow/api/httpapi"
	"github.com/wolfedge/escrow/internal/services/escrow/service"
	"github.com/wolfedge/escrow/internal/services/escrow/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

// Config holds escrow command configuration.
type Config struct {
	Port        int           `env:"ESCROW_PORT" envDefault:"8080"`
	Addr        string        `env:"ESCROW_ADDR"`
	DBPath      string        `env:"ESCROW_DB_PATH" envDefault:"data/escrow.db"`
	LockTimeout time.Duration `env:"ESCROW_LOCK_TIMEOUT" envDefault:"5s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The escrow server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The escrow server listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the sqlite database")
	fs.DurationVar(&cfg.LockTimeout, "lock-timeout", cfg.LockTimeout, "Per-escrow submission lock timeout")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the escrow API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceEscrow, func(ctx context.Context) error {
		return serve(ctx, cfg)
	})
}

func serve(ctx context.Context, cfg Config) error {
	if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	svc := service.New(store, service.WithLockTimeout(cfg.LockTimeout))
	handler := httpapi.New(svc)

	addr := cfg.Addr
	if addr == "" {
		addr = fmt.Sprintf(":%d", cfg.Port)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("escrow api listening addr=%s db_path=%s", addr, cfg.DBPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
