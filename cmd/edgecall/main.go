// ABOUTME: Entry point for the edgecall command line client
// ABOUTME: Loads config, sets up logging and initializes the shared client before each command

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/edgecall/internal/apierr"
	"github.com/2389/edgecall/internal/app"
	"github.com/2389/edgecall/internal/config"
)

// Exit codes.
const (
	exitError   = 1
	exitSession = 2
)

type globalFlags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	JSON       bool
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:           "edgecall",
	Short:         "Authenticated client for the edge function backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flags.ConfigPath)
		if err != nil {
			return err
		}
		if flags.LogLevel != "" {
			cfg.Logging.Level = flags.LogLevel
		}
		if flags.LogFormat != "" {
			cfg.Logging.Format = flags.LogFormat
		}

		logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
		slog.SetDefault(logger)

		if _, err := app.Init(cfg, logger); err != nil {
			return fmt.Errorf("initializing client: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return app.Reset()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "config file (default: $EDGECALL_CONFIG or ~/.config/edgecall/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", "", "log format: text|json")
	rootCmd.PersistentFlags().BoolVar(&flags.JSON, "json", false, "print raw JSON only")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(sessionCmd)
}

func main() {
	err := rootCmd.Execute()
	_ = app.Reset()
	if err == nil {
		return
	}

	if errors.Is(err, errCallFailed) {
		os.Exit(exitError)
	}

	red := color.New(color.FgRed, color.Bold)
	if apierr.IsSessionRequired(err) {
		red.Fprint(os.Stderr, "session required: ")
		fmt.Fprintf(os.Stderr, "%v\n", err)
		fmt.Fprintln(os.Stderr, "sign in again and store the new token with `edgecall session set <token>`")
		os.Exit(exitSession)
	}
	red.Fprint(os.Stderr, "error: ")
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(exitError)
}

// loadConfig reads the explicit path, then the default path when a file
// exists there, then falls back to environment variables.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	if def := config.DefaultPath(); def != "" {
		if _, err := os.Stat(def); err == nil {
			cfg, err := config.Load(def)
			if err != nil {
				return nil, fmt.Errorf("loading config %s: %w", def, err)
			}
			return cfg, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checking config %s: %w", def, err)
		}
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}
	return cfg, nil
}

// setupLogger writes to stderr so stdout carries only command output.
func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
