// Package main provides the travel binary: a one-shot CLI host for the
// travel plugin and a Telnet host serving it to many players.
//
// Usage:
//
//	travel [-config path] roll
//	travel [-config path] mounted on|off
//	travel [-config path] settings
//	travel [-config path] serve
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/travel/internal/config"
	"github.com/cory-johannsen/travel/internal/frontend/telnet"
	"github.com/cory-johannsen/travel/internal/game/dice"
	"github.com/cory-johannsen/travel/internal/game/travel"
	"github.com/cory-johannsen/travel/internal/observability"
	"github.com/cory-johannsen/travel/internal/plugin"
	"github.com/cory-johannsen/travel/internal/server"
	"github.com/cory-johannsen/travel/internal/storage/file"
	"github.com/cory-johannsen/travel/internal/storage/memory"
	"github.com/cory-johannsen/travel/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and TRAVEL_ env vars")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] roll|mounted on|off|settings|serve\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if err := run(context.Background(), cfg, logger, dice.NewCryptoSource(), flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		logger.Fatal("travel", zap.Error(err))
	}
}

var errUsage = errors.New("usage")

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

// run executes one subcommand against a freshly loaded plugin.
func run(ctx context.Context, cfg config.Config, logger *zap.Logger, src dice.Source, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := newPlugin(cfg, store, src, logger)
	if err != nil {
		return err
	}
	reg := plugin.NewRegistry()
	if err := p.Load(ctx, reg); err != nil {
		return err
	}
	defer p.Unload()

	notifier := plugin.NotifierFunc(func(_ context.Context, msg string) error {
		_, err := fmt.Fprintln(out, msg)
		return err
	})

	switch args[0] {
	case "roll":
		a, ok := reg.Action(plugin.ActionID)
		if !ok {
			return fmt.Errorf("action %q not registered", plugin.ActionID)
		}
		return a.Run(ctx, notifier)
	case "mounted":
		if len(args) != 2 {
			return errUsage
		}
		on, err := parseOnOff(args[1])
		if err != nil {
			return err
		}
		tg, ok := reg.FindToggle(plugin.MountedToggle)
		if !ok {
			return fmt.Errorf("setting %q not registered", plugin.MountedToggle)
		}
		if err := tg.OnChange(ctx, on); err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s: %v\n", tg.Name, tg.Value())
		return err
	case "settings":
		_, err := fmt.Fprintln(out, telnet.StripANSI(telnet.RenderSettings(reg.SettingTabs())))
		return err
	case "serve":
		return serve(ctx, cfg, reg, logger)
	}
	return errUsage
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

// openStore returns the configured settings backend and its release func.
func openStore(ctx context.Context, cfg config.Config) (plugin.SettingsStore, func(), error) {
	switch cfg.Settings.Backend {
	case config.BackendFile:
		return file.NewStore(cfg.Settings.Path), func() {}, nil
	case config.BackendMemory:
		return memory.NewStore(), func() {}, nil
	case config.BackendPostgres:
		dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		pool, err := postgres.NewPool(dialCtx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		return postgres.NewSettingsRepository(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown settings backend %q", cfg.Settings.Backend)
}

// loadTable returns the YAML table at cfg.TablePath, or the built-in table.
func loadTable(cfg config.TravelConfig) (travel.Table, error) {
	if cfg.TablePath != "" {
		return travel.LoadTable(cfg.TablePath)
	}
	if cfg.Fallback {
		return travel.HardenedTable(), nil
	}
	return travel.DefaultTable(), nil
}

func newPlugin(cfg config.Config, store plugin.SettingsStore, src dice.Source, logger *zap.Logger) (*plugin.Plugin, error) {
	expr, err := dice.Parse(cfg.Travel.Dice)
	if err != nil {
		return nil, err
	}
	table, err := loadTable(cfg.Travel)
	if err != nil {
		return nil, err
	}
	roller := dice.NewRoller(expr, src, logger.Named("dice"))
	return plugin.New(cfg.Settings.Key, store, table, roller, logger.Named("plugin"))
}

// serve runs the Telnet host until interrupted.
func serve(ctx context.Context, cfg config.Config, reg *plugin.Registry, logger *zap.Logger) error {
	acceptor := telnet.NewAcceptor(cfg.Telnet, telnet.NewHost(reg, logger.Named("telnet")), logger.Named("telnet"))

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})
	logger.Info("travel host initialized",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("settings_backend", cfg.Settings.Backend),
	)
	return lifecycle.Run(ctx)
}
