package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/strrl/session-trim/internal/config"
	"github.com/strrl/session-trim/internal/pipeline"
	"github.com/strrl/session-trim/internal/report"
	"github.com/strrl/session-trim/internal/transform"
)

type trimFlags struct {
	delimiter       string
	outputDelimiter string
	columns         []int
	header          []string
	overwrite       string
	verify          bool
}

// NewTrimCommand creates the trim command
func NewTrimCommand() *cobra.Command {
	var flags trimFlags
	def := transform.DefaultProjection()

	cmd := &cobra.Command{
		Use:   "trim <input> <output>",
		Short: "Trim a single session log outside the configured jobs",
		Long: `Trim a single delimited session log.
Keeps the selected columns (default 0,3,4), writes them under the given header
(default SessionId,ItemId,Time) and replaces the output atomically.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrim(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.delimiter, "delimiter", "d", ",", `Input delimiter ("tab" or a single character)`)
	cmd.Flags().StringVar(&flags.outputDelimiter, "output-delimiter", ",", "Output delimiter")
	cmd.Flags().IntSliceVarP(&flags.columns, "columns", "c", def.Columns, "Zero-based input columns to keep")
	cmd.Flags().StringSliceVar(&flags.header, "header", def.Header, "Output header names")
	cmd.Flags().StringVar(&flags.overwrite, "overwrite", string(transform.OverwriteReplace), "What to do when output exists (replace, fail)")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "Re-read the output with DuckDB and check the row count")

	return cmd
}

func runTrim(cmd *cobra.Command, input, output string, flags trimFlags) error {
	if filepath.Clean(input) == filepath.Clean(output) {
		return fmt.Errorf("output %s would overwrite input", output)
	}

	_, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	inDelim, err := config.ParseDelimiter(flags.delimiter)
	if err != nil {
		return fmt.Errorf("invalid --delimiter: %w", err)
	}
	outDelim, err := config.ParseDelimiter(flags.outputDelimiter)
	if err != nil {
		return fmt.Errorf("invalid --output-delimiter: %w", err)
	}
	policy, err := transform.ParseOverwritePolicy(flags.overwrite)
	if err != nil {
		return fmt.Errorf("invalid --overwrite: %w", err)
	}

	job := pipeline.Job{
		Name:       "trim",
		Input:      input,
		Output:     output,
		Projection: transform.Projection{Columns: flags.columns, Header: flags.header},
		Options: transform.Options{
			InputDelimiter:  inDelim,
			OutputDelimiter: outDelim,
			Overwrite:       policy,
		},
	}

	runner, err := newRunner(flags.verify, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	summaries, err := runner.Run(ctx, []pipeline.Job{job})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.RenderSummary(summaries))
	return nil
}
