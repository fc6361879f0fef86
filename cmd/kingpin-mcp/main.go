package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/kingpin/internal/config"
	"github.com/peterkuimelis/kingpin/internal/game"
	kingpinmcp "github.com/peterkuimelis/kingpin/internal/mcp"
	"github.com/peterkuimelis/kingpin/internal/session"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	rulesFile := flag.String("rules", "", "path to rules YAML (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *rulesFile != "" {
		cfg.Rules.File = *rulesFile
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	rules, err := game.ParseRulesFile(cfg.Rules.File)
	if err != nil {
		logger.Fatal("failed to load rules", zap.Error(err))
	}

	s := server.NewMCPServer("kingpin", "1.0.0")
	kingpinmcp.NewTools(session.NewManager(rules, logger), logger).RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
