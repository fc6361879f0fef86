package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterkuimelis/kingpin/internal/bot"
	"github.com/peterkuimelis/kingpin/internal/config"
	"github.com/peterkuimelis/kingpin/internal/game"
	"github.com/peterkuimelis/kingpin/internal/log"
	kingpinnet "github.com/peterkuimelis/kingpin/internal/net"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "host":
		runHost(os.Args[2:])
	case "join":
		runJoin(os.Args[2:])
	case "sim":
		runSim(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  kingpin host [--config FILE] [--rules FILE] [--port P] [--seed S]")
	fmt.Println("  kingpin join [--addr ADDR]")
	fmt.Println("  kingpin sim  [--config FILE] [--rules FILE] [--games N] [--seed S] [--turns T] [--verbose]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host    Start a game server and play as P1")
	fmt.Println("  join    Connect to a game server and play as P2")
	fmt.Println("  sim     Play random bot games and print the outcomes")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// setup loads configuration and the card set. Flags override the file.
func setup(configPath, rulesFile string) (*config.Config, *game.Rules, *zap.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(err)
	}
	if rulesFile != "" {
		cfg.Rules.File = rulesFile
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fatal(err)
	}
	rules, err := game.ParseRulesFile(cfg.Rules.File)
	if err != nil {
		fatal(fmt.Errorf("load rules: %w", err))
	}
	return cfg, rules, logger
}

func runHost(args []string) {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	configPath := fs.String("config", "", "path to server configuration")
	rulesFile := fs.String("rules", "", "path to rules YAML (overrides config)")
	port := fs.String("port", "", "TCP port to listen on (overrides config)")
	seed := fs.Int64("seed", 0, "shuffle seed (0 uses config or rules seed)")
	fs.Parse(args)

	cfg, rules, logger := setup(*configPath, *rulesFile)
	defer logger.Sync()

	if *port == "" {
		*port = cfg.Server.TCPPort
	}
	if *seed == 0 {
		*seed = cfg.Rules.Seed
	}

	ctx, cancel := signalContext()
	defer cancel()

	srv := &kingpinnet.Server{
		Rules:  rules,
		Port:   *port,
		Seed:   *seed,
		Logger: logger,
	}
	if err := srv.Run(ctx); err != nil {
		fatal(err)
	}
}

func runJoin(args []string) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", "localhost:9999", "server address to connect to")
	fs.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()

	if err := kingpinnet.Connect(ctx, *addr); err != nil {
		fatal(err)
	}
}

func runSim(args []string) {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	configPath := fs.String("config", "", "path to server configuration")
	rulesFile := fs.String("rules", "", "path to rules YAML (overrides config)")
	games := fs.Int("games", 10, "number of games to play")
	seed := fs.Int64("seed", 1, "seed of the first game; game i uses seed+i")
	turns := fs.Int("turns", bot.DefaultTurnLimit, "turn limit per game")
	verbose := fs.Bool("verbose", false, "print every game event")
	fs.Parse(args)

	_, rules, logger := setup(*configPath, *rulesFile)
	defer logger.Sync()

	outcomes := make([]bot.Outcome, 0, *games)
	for i := 0; i < *games; i++ {
		var events log.EventLogger
		if *verbose {
			events = log.NewTextLogger(os.Stdout)
		}
		out, err := bot.PlayMatch(rules, *seed+int64(i), *turns, events)
		if err != nil {
			logger.Error("simulation failed", zap.Int64("seed", *seed+int64(i)), zap.Error(err))
			os.Exit(1)
		}
		fmt.Println(out)
		outcomes = append(outcomes, out)
	}

	s := bot.Summarize(outcomes)
	fmt.Printf("\n%d games: P1 %d, P2 %d, draws %d\n", s.Games, s.Wins[game.P1], s.Wins[game.P2], s.Draws)
	for _, reason := range []game.WinReason{game.WinBossKilled, game.WinEconomicCollapse} {
		fmt.Printf("  %-20s %d\n", reason, s.Reasons[reason])
	}
}
