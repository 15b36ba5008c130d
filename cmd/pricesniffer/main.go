package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dillkhalifa/price-sniffer/internal/cli"
	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/dillkhalifa/price-sniffer/internal/config"
	"github.com/dillkhalifa/price-sniffer/internal/dispatch"
)

var (
	cfgFile string
	version = "dev"
	logFile io.Closer
	rootCmd = &cobra.Command{
		Use:   "pricesniffer",
		Short: "🏷️  Compare prices across merchants",
		Long: `pricesniffer: search for a product by name or photo and compare
what merchants are charging for it.

Run without a command to open the interactive search.`,
		RunE:         runTUI,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentPreRunE = initConfig

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/pricesniffer/config.yaml)")
	rootCmd.PersistentFlags().String("base-url", config.DefaultBaseURL, "price service base URL")
	rootCmd.PersistentFlags().Duration("timeout", 0, "request timeout (0 waits indefinitely)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file")

	// Bind flags to viper
	_ = viper.BindPFlag(config.KeyBaseURL, rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag(config.KeyTimeout, rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyLogFile, rootCmd.PersistentFlags().Lookup("log-file"))

	// Add commands
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(fixtureServerCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel() // Always cleanup

	if logFile != nil {
		_ = logFile.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	config.SetDefaults(viper.GetViper())

	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(config.ExpandPath(cfgFile))
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(filepath.Join(home, ".config", "pricesniffer"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables, e.g. PRICESNIFFER_API_BASE_URL
	viper.SetEnvPrefix("PRICESNIFFER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	// Set up logging
	if err := setupLogging(ownsTerminal(cmd)); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	common.LogDebug("Configuration loaded", common.Fields{
		"config_file": viper.ConfigFileUsed(),
		"base_url":    viper.GetString(config.KeyBaseURL),
		"command":     cmd.Name(),
	})

	return nil
}

// ownsTerminal reports whether cmd runs the full-screen UI.
func ownsTerminal(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd.Name() == "tui"
}

// setupLogging installs the default logger. The interactive UI owns the
// terminal, so its logs go to the log file or nowhere.
func setupLogging(interactive bool) error {
	level, err := common.ParseLevel(viper.GetString(config.KeyLogLevel))
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	if path := config.ExpandPath(viper.GetString(config.KeyLogFile)); path != "" {
		f, err := openLogFile(path)
		if err != nil {
			return err
		}
		logFile = f
		w = f
	} else if interactive {
		w = io.Discard
	}

	return common.SetupLogger(w, level, viper.GetString(config.KeyLogFormat))
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // operator supplied log path
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// newClient builds the service client from the loaded configuration.
func newClient(ctx context.Context) (*dispatch.Client, config.Client, error) {
	cfg, err := config.LoadClient(viper.GetViper())
	if err != nil {
		return nil, config.Client{}, err
	}

	client, err := dispatch.NewClient(dispatch.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Logger:  common.LoggerFrom(ctx),
	})
	if err != nil {
		return nil, config.Client{}, err
	}
	return client, cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pricesniffer %s\n", version)
		},
	}
}
