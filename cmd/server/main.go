// Command server runs the yatube HTTP API.
//
// Configuration comes from a YAML file (-config, or $YATUBE_CONFIG, default
// config.yaml; a missing file is fine) overridden by environment variables.
// JWT_SECRET has no default and must be set one way or the other.
//
// All real work lives in internal/; main only reads configuration, builds
// the logger and hands both to the server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/yatube/internal/config"
	"github.com/sakif/yatube/internal/server"
)

func main() {
	defaultPath := "config.yaml"
	if env := os.Getenv("YATUBE_CONFIG"); env != "" {
		defaultPath = env
	}
	configPath := flag.String("config", defaultPath, "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := cfg.Logging.NewLogger(os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// mkdir -p for the database file's directory; the media directory is
	// created by the storage itself.
	if dbDir := filepath.Dir(cfg.Database.Path); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return fmt.Errorf("creating database directory %s: %w", dbDir, err)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until SIGINT/SIGTERM.
	return srv.Start()
}
