// Package main is the entry point for the fragcheck CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aotpy/fragcheck/internal/checker"
	"github.com/aotpy/fragcheck/internal/config"
	"github.com/aotpy/fragcheck/internal/cron"
	"github.com/aotpy/fragcheck/internal/fragment"
	"github.com/aotpy/fragcheck/internal/gateway"
	"github.com/aotpy/fragcheck/internal/identity"
	"github.com/aotpy/fragcheck/internal/telegram"
	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fragcheck",
		Short:         "Telegram username status checker backed by Fragment and t.me probes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), serveCmd(), checkCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("fragcheck %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the optional username watch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadStack(cmd)
			if err != nil {
				return err
			}

			engine := buildEngine(cfg, logger)

			gw := gateway.New(gateway.Config{
				Bind:            cfg.Server.Bind,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				AllowedOrigins:  cfg.Server.AllowedOrigins,
				Version:         version,
			}, engine, logger)

			if err := gw.Start(); err != nil {
				return err
			}

			var scheduler *cron.Scheduler
			if cfg.Watch.Enabled && len(cfg.Watch.Usernames) > 0 {
				scheduler = cron.NewScheduler(logger)
				job := &cron.WatchJob{
					Usernames:    cfg.Watch.Usernames,
					Checker:      engine,
					Logger:       logger,
					ScheduleExpr: cfg.Watch.Schedule,
				}
				if err := scheduler.RegisterJob(job); err != nil {
					return err
				}
				if err := scheduler.Start(); err != nil {
					return err
				}
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if scheduler != nil {
				_ = scheduler.Stop(ctx)
			}
			return gw.Stop(ctx)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <username>",
		Short: "Check a single username and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadStack(cmd)
			if err != nil {
				return err
			}

			engine := buildEngine(cfg, logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), 90*time.Second)
			defer cancel()

			res, err := engine.Check(ctx, args[0])
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

// loadStack resolves the config file, loads and validates it, and builds the
// logger. Missing config is not an error: defaults serve the common case.
func loadStack(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		cfgPath = resolveConfigPath()
	}

	var cfg *config.Config
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
		cfg.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	return cfg, logger, nil
}

// buildEngine wires the probes into a status-resolution engine. One client
// identity is constructed per process and shared read-only by every probe.
func buildEngine(cfg *config.Config, logger *slog.Logger) *checker.Engine {
	id := identity.New(cfg.Fragment.BaseURL + "/")

	market := fragment.New(fragment.Options{
		BaseURL:    cfg.Fragment.BaseURL,
		Timeout:    cfg.Fragment.Timeout,
		Attempts:   cfg.Fragment.Attempts,
		RetryDelay: cfg.Fragment.RetryDelay,
		Identity:   id,
		Logger:     logger,
	})

	directory := telegram.New(telegram.Options{
		BaseURL:  cfg.Telegram.BaseURL,
		Timeout:  cfg.Telegram.Timeout,
		Identity: id,
		Logger:   logger,
	})

	return checker.New(market, market, directory, cfg.Fragment.BaseURL, logger)
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// resolveConfigPath searches standard locations for a config file.
// Search order: $XDG_CONFIG_HOME/fragcheck/fragcheck.yaml, then ./fragcheck.yaml.
// Empty means "run on defaults".
func resolveConfigPath() string {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "fragcheck", "fragcheck.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "fragcheck", "fragcheck.yaml"))
	}

	candidates = append(candidates, "fragcheck.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
