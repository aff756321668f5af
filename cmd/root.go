package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/shuindub/oracle-session/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configPath  string
	backendName string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oracle-session",
	Short: "Marketplace analytics chat with durable session history",
	Long: `Oracle chat assistant for marketplace-seller analytics, with conversation
history persisted to a hierarchical object store (Google Drive or a local
SQLite database).

On startup the most recent session is restored and its trailing steps are
replayed for context; every completed exchange is appended as a new step.
Persistence is best-effort: storage failures never block the conversation.

Quick Start:
  oracle-session chat                   # Start or resume a conversation
  oracle-session sessions               # List stored sessions
  oracle-session show <session-name>    # Replay one session's steps
  oracle-session status                 # Check store connectivity`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.oracle-session.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Storage backend override (drive or sqlite)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig loads the config file and applies command-line overrides.
func loadConfig() (*internal.Config, error) {
	path := configPath
	if path == "" {
		path = internal.DefaultConfigPath()
	}
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if backendName != "" {
		cfg.Backend = backendName
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openStore builds the configured store. A missing bearer token is reported
// but returns a nil store so callers degrade to in-memory mode.
func openStore(cfg *internal.Config) internal.ObjectStore {
	store, err := internal.NewStoreFromConfig(cfg)
	if err != nil {
		if errors.Is(err, internal.ErrAuthUnavailable) {
			internal.LogWarn("No bearer token available, history will not be persisted")
		} else {
			internal.LogWarn("Storage backend unavailable: %v", err)
		}
		return nil
	}
	return store
}
