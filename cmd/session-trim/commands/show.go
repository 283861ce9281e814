package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/strrl/session-trim/internal/config"
	"github.com/strrl/session-trim/internal/db"
	"github.com/strrl/session-trim/internal/report"
	"github.com/strrl/session-trim/internal/sessions"
)

const defaultSampleSize = 5

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	var delimiter string

	cmd := &cobra.Command{
		Use:   "show <file> [limit]",
		Short: "Show stats and the first records of a trimmed file",
		Long: `Show events, sessions and items of a trimmed session log.
With limit: also prints that many records from the top of the file (default 5).`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args, delimiter)
		},
	}
	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", ",", "Delimiter of the file")

	return cmd
}

func runShow(cmd *cobra.Command, args []string, delimiter string) error {
	path := args[0]
	limit := defaultSampleSize
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("limit must be a positive number, got %q", args[1])
		}
		limit = n
	}

	delim, err := config.ParseDelimiter(delimiter)
	if err != nil {
		return fmt.Errorf("invalid --delimiter: %w", err)
	}

	fields, err := showFields()
	if err != nil {
		return err
	}

	database, err := db.GetDB()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := sessions.CollectStats(ctx, database, path, delim, fields)
	if err != nil {
		return err
	}
	records, err := sessions.SampleRecords(ctx, database, path, delim, fields, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.RenderStats(stats))
	fmt.Fprint(out, report.RenderRecords(records))
	return nil
}

// showFields takes column names from the configured header, or the default
// header when the config does not load.
func showFields() (sessions.Fields, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return sessions.DefaultFields(), nil
	}
	fields, ok := sessions.FieldsFromHeader(cfg.Header)
	if !ok {
		return sessions.Fields{}, fmt.Errorf("show needs a three-column header, configured %v", cfg.Header)
	}
	return fields, nil
}
