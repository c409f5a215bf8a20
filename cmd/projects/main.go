// Command projects lists and browses the project catalog served by the
// projects API.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/projecthubv3/projecthub-backend/config"
	"github.com/projecthubv3/projecthub-backend/internal/logging"
	"github.com/projecthubv3/projecthub-backend/internal/projectclient"
)

var (
	// Global flags
	apiURL   string
	timeout  time.Duration
	debounce time.Duration
	verbose  bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "projects",
	Short:         "Query the project catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("api") {
			cfg.Client.BaseURL = apiURL
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Client.Timeout = timeout
		}
		if cmd.Flags().Changed("debounce") {
			cfg.Client.Debounce = debounce
		}

		level := "warn"
		if verbose {
			level = "debug"
		}
		logger, err = logging.New("production", level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Projects API base URL (default PROJECTS_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "Per-fetch timeout")
	rootCmd.PersistentFlags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "Quiet period before a fetch is issued")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(newCreateCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient() *projectclient.Client {
	return projectclient.NewFromConfig(cfg.Client, logger.Named("client"))
}
