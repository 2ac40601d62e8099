package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/wkbadge/pkg/badge"
	"github.com/umputun/wkbadge/pkg/config"
	"github.com/umputun/wkbadge/pkg/desktop"
	"github.com/umputun/wkbadge/pkg/domain"
	"github.com/umputun/wkbadge/pkg/reactor"
	"github.com/umputun/wkbadge/pkg/repository"
	"github.com/umputun/wkbadge/pkg/scheduler"
	"github.com/umputun/wkbadge/pkg/store"
	"github.com/umputun/wkbadge/pkg/wanikani"
	"github.com/umputun/wkbadge/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"configuration file"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	setupLog(opts.Debug)

	log.Printf("[INFO] starting wkbadge version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run wires all components and blocks until ctx is canceled or a component fails
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if cfg.Defaults.APIKey != "" {
		setupLog(opts.Debug, cfg.Defaults.APIKey)
	}

	dbCfg := repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	}
	local, err := repository.NewRepositories(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}
	defer local.Close()

	params := store.Params{
		Local: local.Setting,
		Defaults: domain.Preferences{
			APIKey:         cfg.Defaults.APIKey,
			UpdateInterval: cfg.Defaults.UpdateInterval,
			Notifications:  cfg.Defaults.Notifications,
			NotifLife:      cfg.Defaults.NotifLife,
		},
	}
	if cfg.Database.SyncDSN != "" {
		dbCfg.DSN = cfg.Database.SyncDSN
		synced, syncErr := repository.NewRepositories(ctx, dbCfg)
		if syncErr != nil {
			return fmt.Errorf("failed to open sync database: %w", syncErr)
		}
		defer synced.Close()
		params.Sync = synced.Setting
		log.Printf("[INFO] sync tier enabled")
	}

	st, err := store.Open(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	fetcher := wanikani.NewFetcher(st, wanikani.Config{
		BaseURL:  cfg.API.BaseURL,
		Revision: cfg.API.Revision,
		Cooldown: cfg.API.Cooldown,
		Timeout:  cfg.API.Timeout,
	})

	sched := scheduler.NewScheduler(st, scheduler.Config{})
	defer sched.Stop()

	presenter := badge.NewPresenter(st, sched, badge.Config{Lang: cfg.Locale.Lang, Location: cfg.Location()})

	rct := reactor.New(reactor.Params{
		Store:      st,
		Fetcher:    fetcher,
		Presenter:  presenter,
		Scheduler:  sched,
		Browser:    desktop.NewBrowser(cfg.Desktop.OpenCmd, cfg.Desktop.WindowsCmd, desktop.ExecRunner),
		Notifier:   desktop.NewNotifier(cfg.Desktop.NotifyCmd, desktop.ExecRunner),
		SiteURL:    cfg.Site.URL,
		OptionsURL: optionsURL(cfg),
	})

	srv := server.New(server.Deps{Config: cfg, Store: st, Fetcher: fetcher, Presenter: presenter, Reactor: rct, DB: local},
		revision, opts.Debug)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := rct.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("reactor failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// optionsURL returns the configured options page or the local options endpoint
func optionsURL(cfg *config.Config) string {
	if cfg.Desktop.OptionsURL != "" {
		return cfg.Desktop.OptionsURL
	}
	host, port, err := net.SplitHostPort(cfg.Server.Listen)
	if err != nil {
		return ""
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/api/v1/options"
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
