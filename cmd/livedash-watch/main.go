// Command livedash-watch is the terminal dashboard. It polls the livedash
// status API and renders the Twitch, YouTube and account panels.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zsiec/livedash/internal/config"
	"github.com/zsiec/livedash/internal/dashboard"
	"github.com/zsiec/livedash/internal/health"
	"github.com/zsiec/livedash/internal/logger"
	"github.com/zsiec/livedash/internal/poller"
	"github.com/zsiec/livedash/internal/tui"
	"github.com/zsiec/livedash/pkg/version"
)

const defaultLogFile = "logs/livedash-watch.log"

func main() {
	var (
		configPath  string
		addr        string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "configs/livedash.yaml", "Path to configuration file")
	flag.StringVar(&addr, "addr", "", "Base URL of the livedash server (overrides watch.base_url)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	if err := run(configPath, addr); err != nil {
		fmt.Fprintf(os.Stderr, "livedash-watch: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr != "" {
		cfg.Watch.BaseURL = addr
		if err := cfg.Watch.Validate(); err != nil {
			return fmt.Errorf("invalid -addr: %w", err)
		}
	}

	// The terminal belongs to bubbletea, so console logging goes to a file.
	if cfg.Logging.Output == "stdout" || cfg.Logging.Output == "stderr" {
		cfg.Logging.Output = defaultLogFile
	}
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.WithFields(logger.Fields{
		"version":  version.GetInfo().Short(),
		"base_url": cfg.Watch.BaseURL,
	}).Info("Starting livedash watch")

	fetcher, err := poller.NewHTTPFetcher(cfg.Watch.BaseURL, cfg.Watch.RequestTimeout)
	if err != nil {
		return err
	}

	layout := dashboard.DefaultLayout()
	board := layout.NewBoard()

	var program *tea.Program
	onError := func(name string, err error) {
		if program != nil {
			program.Send(tui.PollErrorMsg{Poller: name, Err: err})
		}
	}

	pollLog := logger.ForComponent(log, "poller")
	sampled := logger.NewPollLogger(pollLog)

	configs := poller.Configs(cfg.Watch)
	if len(configs) == 0 {
		return fmt.Errorf("no pollers enabled")
	}
	pollers := make([]*poller.Poller, 0, len(configs))
	for _, pc := range configs {
		p, err := poller.New(pc, fetcher, board, pollLog,
			poller.WithSampledLogger(sampled),
			poller.WithOnError(onError),
		)
		if err != nil {
			return err
		}
		pollers = append(pollers, p)
	}
	group := poller.NewGroup(pollers...)

	model, err := tui.New(layout, board,
		tui.WithTitle(version.GetInfo().Short()),
		tui.WithStatuses(group.Statuses),
		tui.WithFreshness(health.NewFreshnessChecker("dashboard", cfg.Watch.StaleAfter, board.LastUpdate)),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if err := group.Start(ctx); err != nil {
		return err
	}
	defer group.Stop()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	log.WithField("samplers", sampled.Stats()).Info("livedash watch stopped")
	return nil
}
