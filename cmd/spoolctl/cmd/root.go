// Package cmd implements the spoolctl command line client.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"filament-inventory-api/internal/client"
	"filament-inventory-api/internal/logger"
	"filament-inventory-api/internal/state"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"
)

const (
	keyServer    = "server"
	keyStateFile = "state_file"
	keyTimeout   = "timeout"
)

var (
	cfgFile    string
	debug      bool
	jsonOutput bool

	log   *slog.Logger
	ctrl  *state.Controller
	store *state.FileStore
)

var rootCmd = &cobra.Command{
	Use:   "spoolctl",
	Short: "spoolctl manages a filament spool inventory",
	Long: `spoolctl lists, adds, edits and removes filament spools kept by the
inventory API.

Reading the inventory is public. Changes need the edit passcode, which
"spoolctl login" verifies and saves for later runs.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(_ *cobra.Command, _ []string) error {
	if err := loadConfig(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log = logger.Discard()
	if debug {
		log = logger.NewWithWriter(logger.EnvDevelopment, os.Stderr)
	}

	statePath, err := resolveStatePath(viper.GetString(keyStateFile))
	if err != nil {
		return err
	}
	store = state.NewFileStore(statePath)

	api := client.New(viper.GetString(keyServer),
		client.WithLogger(log),
		client.WithHTTPClient(&http.Client{Timeout: viper.GetDuration(keyTimeout)}),
	)
	ctrl = state.NewController(api, store, store, log)

	log.Debug("spoolctl ready",
		slog.String("server", viper.GetString(keyServer)),
		slog.String("state_file", statePath),
	)
	return nil
}

func loadConfig() error {
	viper.SetDefault(keyServer, "http://localhost:8080")
	viper.SetDefault(keyStateFile, "")
	viper.SetDefault(keyTimeout, 30*time.Second)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".spoolctl"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SPOOLCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

// resolveStatePath defaults to ~/.spoolctl/state.json.
func resolveStatePath(p string) (string, error) {
	if p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".spoolctl", "state.json"), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.spoolctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log requests to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")
	rootCmd.PersistentFlags().String("server", "", "inventory API base URL")
	rootCmd.PersistentFlags().String("state-file", "", "where the passcode and preferences are kept")

	_ = viper.BindPFlag(keyServer, rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag(keyStateFile, rootCmd.PersistentFlags().Lookup("state-file"))

	rootCmd.AddCommand(listCmd, loginCmd, logoutCmd, addCmd, editCmd, rmCmd)
}
