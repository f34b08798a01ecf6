package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/config"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/console"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/engine"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/field"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/journal"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/logger"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/version"
)

func main() {
	// Command line flags
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		configFile  = flag.String("config", "", "Path to configuration file")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		noJournal   = flag.Bool("no-journal", false, "Disable the plan journal")

		// One-shot mode: compute once from flags, print, exit.
		riskFlag   = flag.String("risk", "", "Risk amount in USD")
		entryFlag  = flag.String("entry", "", "Entry price")
		stopFlag   = flag.String("stop", "", "Stop loss price")
		feeFlag    = flag.String("fee", "", "Taker fee percent")
		marginFlag = flag.String("margin", "", "Initial margin in USD")
		levFlag    = flag.String("lev", "", "Leverage override")
	)
	flag.Parse()

	// Handle version flag
	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Handle help flag
	if *showHelp {
		fmt.Printf("Crypto Position Calculator %s\n\n", version.Short())
		fmt.Println("Usage:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  calculator                      interactive prompt")
		fmt.Println("  calculator -risk 100 -entry 50000 -stop 49500 -fee 0.06 -margin 1000")
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Override log level from command line
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	// Initialize logger
	log := logger.NewRotating(cfg.Logging.Level, cfg.Logging.File)
	logger.SetDefault(log)

	oneShot := map[field.Name]string{
		field.RiskUSD:    *riskFlag,
		field.EntryPrice: *entryFlag,
		field.StopLoss:   *stopFlag,
		field.FeePercent: *feeFlag,
		field.Margin:     *marginFlag,
	}

	if err := run(cfg, log, oneShot, *levFlag, *noJournal); err != nil {
		log.Error("Application error", "error", err)
		os.Exit(1)
	}
}

// run wires the engine to either a one-shot computation or the
// interactive console.
func run(cfg *config.Config, log *logger.Logger, oneShot map[field.Name]string, lev string, noJournal bool) error {
	table, err := cfg.Table()
	if err != nil {
		return err
	}
	eng := engine.New(table, log)

	if hasValues(oneShot) || lev != "" {
		if err := applyFlags(eng, oneShot, lev); err != nil {
			return err
		}
		fmt.Print(console.New(eng, nil, log).Render())
		return nil
	}

	var jr *journal.Journal
	if !noJournal {
		jr, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			log.Warn("journal unavailable, save and history disabled",
				"path", cfg.Journal.Path, "error", err)
			jr = nil
		} else {
			defer func() { _ = jr.Close() }()
		}
	}

	log.Info("Starting calculator", "version", version.Short())

	// Graceful shutdown on Ctrl-C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	if err := console.New(eng, jr, log).Run(ctx); err != nil {
		return err
	}

	log.Info("Calculator stopped")
	return nil
}

func hasValues(vals map[field.Name]string) bool {
	for _, v := range vals {
		if v != "" {
			return true
		}
	}
	return false
}

// applyFlags feeds the one-shot values through the engine in input order,
// the leverage override last.
func applyFlags(eng *engine.Engine, vals map[field.Name]string, lev string) error {
	for _, name := range field.Inputs {
		if v := vals[name]; v != "" {
			if err := eng.SetField(name, v); err != nil {
				return err
			}
		}
	}
	if lev != "" {
		return eng.SetLeverage(lev)
	}
	return nil
}
