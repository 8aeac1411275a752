package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/Val0905/INEA/pkg/api"
	"github.com/Val0905/INEA/pkg/chassis"
	"github.com/Val0905/INEA/pkg/engine"
	"github.com/Val0905/INEA/pkg/source"
	"github.com/Val0905/INEA/pkg/upload"
)

const version = "1.0.0"

type config struct {
	Addr        string `yaml:"addr"`
	DatasetsDir string `yaml:"datasets_dir"`
	StorageDir  string `yaml:"storage_dir"`
	PublicDir   string `yaml:"public_dir"`
	LedgerPath  string `yaml:"ledger_path"`
	SourceURL   string `yaml:"source_url"` // remote fallback; empty = local storage only
	CertFile    string `yaml:"cert_file"`
	KeyFile     string `yaml:"key_file"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "inspect":
		cmdInspect(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: inea <command>\n\nCommands:\n  serve     Start the server\n  inspect   Probe an xlsx file against a dataset manifest\n")
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig(*cfgPath, logger)

	specs, err := engine.LoadSpecs(cfg.DatasetsDir)
	if err != nil {
		logger.Error("failed to load dataset manifests", "error", err)
		os.Exit(1)
	}
	logger.Info("dataset manifests loaded", "count", len(specs))

	var src engine.Source
	if cfg.SourceURL != "" {
		src = source.NewHTTP(cfg.SourceURL)
	} else {
		src = source.NewDir(cfg.StorageDir)
	}
	reg := engine.NewRegistry(specs, src, logger)

	ledger, err := upload.OpenLedger(cfg.LedgerPath)
	if err != nil {
		logger.Error("failed to open upload ledger", "error", err)
		os.Exit(1)
	}
	defer ledger.Close()

	prefixes := make([]string, 0, len(specs))
	for _, s := range specs {
		prefixes = append(prefixes, s.FilePrefix)
	}
	uploads := upload.NewService(cfg.StorageDir, prefixes, ledger, logger)

	// Router plus static front-end.
	router := api.NewRouter(reg, uploads, ledger, logger)
	mux := http.NewServeMux()
	mux.Handle("/v1/", router)
	mux.Handle("/upload", router)
	mux.Handle("/", http.FileServer(http.Dir(cfg.PublicDir)))

	mcpSrv := server.NewMCPServer("inea", version,
		server.WithToolCapabilities(false),
	)
	api.RegisterMCPTools(mcpSrv, reg)

	srv, err := chassis.New(chassis.Config{
		Addr:      cfg.Addr,
		CertFile:  cfg.CertFile,
		KeyFile:   cfg.KeyFile,
		Handler:   mux,
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("chassis init failed", "error", err)
		os.Exit(1)
	}

	// SIGHUP: drop cached datasets so the next query re-reads the files.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, resetting dataset cache")
			reg.Reset()
		}
	}()

	logger.Info("inea listening", "addr", cfg.Addr)
	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutting down")
	srv.Stop(context.Background())
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg := config{
		Addr:        ":8443",
		DatasetsDir: "datasets",
		StorageDir:  "XLSX",
		PublicDir:   "public",
		LedgerPath:  "uploads.db",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg
		}
		logger.Error("read config", "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}
	return cfg
}
