package sessions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/strrl/session-trim/internal/transform"
	"github.com/strrl/session-trim/pkg/models"
)

// Verifier re-reads finished outputs through DuckDB
type Verifier struct {
	db *sql.DB
}

// NewVerifier creates a verifier backed by database
func NewVerifier(database *sql.DB) *Verifier {
	return &Verifier{db: database}
}

// Verify checks that output holds exactly wantRows data rows. Outputs with
// a session/item/time header also get their dataset stats collected.
func (v *Verifier) Verify(ctx context.Context, output string, p transform.Projection, opts transform.Options, wantRows int) (*models.DatasetStats, error) {
	delim := opts.OutputDelimiter

	if fields, ok := FieldsFromHeader(p.Header); ok {
		stats, err := CollectStats(ctx, v.db, output, delim, fields)
		if err != nil {
			return nil, err
		}
		if stats.Events != int64(wantRows) {
			return &stats, fmt.Errorf("%s: wrote %d rows but found %d", output, wantRows, stats.Events)
		}
		return &stats, nil
	}

	n, err := CountRows(ctx, v.db, output, delim)
	if err != nil {
		return nil, err
	}
	if n != int64(wantRows) {
		return nil, fmt.Errorf("%s: wrote %d rows but found %d", output, wantRows, n)
	}
	return &models.DatasetStats{Path: output, Events: n}, nil
}
