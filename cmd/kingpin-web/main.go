package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterkuimelis/kingpin/internal/config"
	"github.com/peterkuimelis/kingpin/internal/game"
	"github.com/peterkuimelis/kingpin/internal/session"
	"github.com/peterkuimelis/kingpin/internal/web"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "config/server.yaml", "path to configuration file")
	addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
	rulesFile  = flag.String("rules", "", "path to rules YAML (overrides config)")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.HTTPAddr = *addr
	}
	if *rulesFile != "" {
		cfg.Rules.File = *rulesFile
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting kingpin web server",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.String("rules", cfg.Rules.File),
	)

	rules, err := game.ParseRulesFile(cfg.Rules.File)
	if err != nil {
		logger.Fatal("failed to load rules", zap.Error(err))
	}
	logger.Info("rules loaded", zap.Int("catalog", len(rules.Catalog())))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	matches := session.NewManager(rules, logger)
	srv := web.NewServer(matches, logger)
	if err := srv.Run(ctx, cfg.Server.HTTPAddr, cfg.Server.ShutdownTimeout); err != nil {
		logger.Fatal("web server failed", zap.Error(err))
	}
}
