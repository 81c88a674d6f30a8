// Command canary runs one offline canary replay and prints the run as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"TreasureEngine/internal/domain/models"
	domrepo "TreasureEngine/internal/domain/repository"
	internalrepo "TreasureEngine/internal/repository"
	"TreasureEngine/internal/services/paper"
	"TreasureEngine/internal/usecase"
	"TreasureEngine/pkg/config"
	applogger "TreasureEngine/pkg/logger"
	"TreasureEngine/pkg/util"
)

const exitFatal = 2

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	runConfig  string
	replay     string
	fills      string
	overfit    string
	strategy   string
	archive    string
	symbol     string
	seed       string
	network    bool
	killSwitch bool
	logLevel   string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("canary", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.runConfig, "config", "", "run config YAML (defaults apply when empty)")
	fs.StringVar(&o.replay, "replay", "", "replay JSONL, one price tick per line")
	fs.StringVar(&o.fills, "fills", "", "historical fills JSONL")
	fs.StringVar(&o.overfit, "overfit", "", "overfit report JSON")
	fs.StringVar(&o.strategy, "strategy", "", "strategy name for the overfit lookup")
	fs.StringVar(&o.archive, "archive", "", "SQLite archive to store the run in")
	fs.StringVar(&o.symbol, "symbol", "", "only replay ticks of this symbol")
	fs.StringVar(&o.seed, "seed", "", "override the run config seed")
	fs.BoolVar(&o.network, "network", false, "grant the network capability")
	fs.BoolVar(&o.killSwitch, "kill-switch", true, "grant the kill switch capability")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.replay == "" {
		return o, fmt.Errorf("-replay is required")
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFatal
	}
	l, err := applogger.NewWithWriter(stderr, &applogger.Config{Level: o.logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFatal
	}

	cfg, err := config.Default()
	if err != nil {
		l.Error("default config", applogger.Error(err))
		return exitFatal
	}
	if o.runConfig != "" {
		if cfg.Canary, err = config.LoadRunConfig(o.runConfig); err != nil {
			l.Error("load run config", applogger.Error(err))
			return exitFatal
		}
	}
	if o.seed != "" {
		seed, ok := util.ParseUint32(o.seed)
		if !ok {
			l.Error("invalid seed", applogger.String("seed", o.seed))
			return exitFatal
		}
		cfg.Canary.Seed = seed
	}
	cfg.Capabilities.NetworkEnabled = o.network
	cfg.Capabilities.KillSwitchEnabled = o.killSwitch

	var (
		fills   domrepo.FillHistorySource
		overfit domrepo.OverfitReportSource
		store   domrepo.ReportStore
	)
	if o.fills != "" {
		fills = internalrepo.NewJSONLFillSource(o.fills)
	}
	if o.overfit != "" {
		overfit = internalrepo.NewJSONOverfitSource(o.overfit)
	}
	if o.archive != "" {
		a, err := internalrepo.OpenSQLiteReportArchive(ctx, o.archive)
		if err != nil {
			l.Error("open archive", applogger.Error(err))
			return exitFatal
		}
		defer a.Close()
		store = a
	}

	controller := usecase.NewCanaryController(paper.NewSession(paper.Config{
		InitialBalanceUSD: cfg.Paper.InitialBalanceUSD,
		BaseNotionalUSD:   cfg.Paper.BaseNotionalUSD,
		FeeBps:            cfg.Paper.FeeBps,
		MinTradeUSD:       cfg.Paper.MinTradeUSD,
	}))
	controller.SetLogger(l)
	svc := usecase.NewCanaryService(controller, internalrepo.NewJSONLReplaySource(o.replay), fills, overfit,
		store, nil, nil, cfg.Capabilities.Capabilities())
	svc.SetLogger(l)
	svc.SetDefaultConfig(cfg.Canary)

	req := svc.NewRequest()
	req.Strategy = o.strategy
	req.Query.Symbol = o.symbol

	result, err := svc.Execute(ctx, req)
	if err != nil {
		l.Error("canary run failed", applogger.String("code", models.CodeOf(err)), applogger.Error(err))
		return exitFatal
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		l.Error("encode run", applogger.Error(err))
		return exitFatal
	}
	return 0
}
