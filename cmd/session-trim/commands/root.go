package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strrl/session-trim/internal/config"
	"github.com/strrl/session-trim/internal/db"
	"github.com/strrl/session-trim/internal/logging"
	"github.com/strrl/session-trim/internal/pipeline"
	"github.com/strrl/session-trim/internal/report"
	"github.com/strrl/session-trim/internal/sessions"
)

var (
	configPath string
	logLevel   string
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "session-trim",
		Short: "Trim session logs to SessionId, ItemId, Time",
		Long: `session-trim prepares session-based recommendation datasets.
For every configured job (train and test by default) it keeps columns 0, 3
and 4 of the input table, renames them SessionId, ItemId and Time, and writes
a comma-separated file with a header row.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runJobs,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (defaults to $CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	rootCmd.AddCommand(NewTrimCommand())
	rootCmd.AddCommand(NewShowCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func newRunner(verify bool, logger *zap.Logger) (*pipeline.Runner, error) {
	if !verify {
		return pipeline.NewRunner(logger, nil), nil
	}
	database, err := db.GetDB()
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(logger, sessions.NewVerifier(database)), nil
}

func runJobs(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	runner, err := newRunner(cfg.Verify, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	summaries, err := runner.Run(ctx, pipeline.JobsFromConfig(cfg))
	if len(summaries) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), report.RenderSummary(summaries))
	}
	return err
}
