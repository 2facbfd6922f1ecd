package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	configloader "github.com/foxseedlab/chanharvest/external/config"
	promptimpl "github.com/foxseedlab/chanharvest/external/prompt"
	repositoryimpl "github.com/foxseedlab/chanharvest/external/repository"
	spreadsheetimpl "github.com/foxseedlab/chanharvest/external/spreadsheet"
	telegramimpl "github.com/foxseedlab/chanharvest/external/telegram"
	webhookimpl "github.com/foxseedlab/chanharvest/external/webhook"
	"github.com/foxseedlab/chanharvest/internal/api"
	"github.com/foxseedlab/chanharvest/internal/config"
	"github.com/foxseedlab/chanharvest/internal/harvest"
	"github.com/foxseedlab/chanharvest/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chanharvest",
		Short:         "Export Telegram channel participants to spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSlice("env-file", nil, "dotenv files to load (default .env)")
	root.AddCommand(serveCmd(), harvestCmd(), loginCmd(), historyCmd())
	return root
}

// bootstrap loads configuration, installs the logger and builds the
// dependency graph. Interactive commands also get the terminal prompter
// for first-time sign in.
func bootstrap(cmd *cobra.Command, interactive bool) (*config.Config, do.Injector, error) {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	slog.Info("startup: loading configuration")
	cfg, err := configloader.Load(envFiles...)
	if err != nil {
		return nil, nil, err
	}
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	return cfg, setupDI(cfg, interactive), nil
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config, interactive bool) do.Injector {
	injector := do.New()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	do.ProvideValue(injector, cfg)
	do.ProvideValue[prometheus.Gatherer](injector, reg)
	do.ProvideValue(injector, metrics.New(reg))

	repositoryimpl.RegisterDI(injector)
	spreadsheetimpl.RegisterDI(injector)
	telegramimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	if interactive {
		promptimpl.RegisterDI(injector)
	}
	harvest.RegisterDI(injector)
	api.RegisterDI(injector)

	return injector
}

func shutdown(injector do.Injector) {
	if report := injector.Shutdown(); report != nil && !report.Succeed {
		slog.Error("shutdown reported errors", "error", report.Error())
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
