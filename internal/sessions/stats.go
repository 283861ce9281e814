package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/strrl/session-trim/internal/db"
	"github.com/strrl/session-trim/pkg/models"
)

const queryTimeout = 30 * time.Second

// Fields names the session, item and time columns of a trimmed file.
type Fields struct {
	Session string
	Item    string
	Time    string
}

// DefaultFields matches the header written by the transform
func DefaultFields() Fields {
	return Fields{Session: "SessionId", Item: "ItemId", Time: "Time"}
}

// FieldsFromHeader maps a three-column header onto session, item and time.
func FieldsFromHeader(header []string) (Fields, bool) {
	if len(header) != 3 {
		return Fields{}, false
	}
	return Fields{Session: header[0], Item: header[1], Time: header[2]}, true
}

// csvSource renders a read_csv_auto call that keeps every value as text, so
// identifiers and timestamps are compared exactly as written.
func csvSource(path string, delim rune) string {
	if delim == 0 {
		delim = ','
	}
	return fmt.Sprintf("read_csv_auto(%s, header = true, all_varchar = true, delim = %s)",
		db.QuoteLiteral(path), db.QuoteLiteral(string(delim)))
}

// CollectStats summarizes the events, sessions and items of a trimmed file
func CollectStats(ctx context.Context, database *sql.DB, path string, delim rune, fields Fields) (models.DatasetStats, error) {
	stats := models.DatasetStats{Path: path}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS events,
			COUNT(DISTINCT %[1]s) AS sessions,
			COUNT(DISTINCT %[2]s) AS items,
			MIN(%[3]s) AS min_time,
			MAX(%[3]s) AS max_time
		FROM %[4]s
	`, db.QuoteIdent(fields.Session), db.QuoteIdent(fields.Item), db.QuoteIdent(fields.Time), csvSource(path, delim))

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var minTime, maxTime sql.NullString
	err := database.QueryRowContext(queryCtx, query).Scan(&stats.Events, &stats.Sessions, &stats.Items, &minTime, &maxTime)
	if err != nil {
		return stats, fmt.Errorf("failed to collect stats for %s: %w", path, err)
	}
	stats.MinTime = minTime.String
	stats.MaxTime = maxTime.String

	return stats, nil
}

// CountRows returns the number of data rows of a delimited file with a header
func CountRows(ctx context.Context, database *sql.DB, path string, delim rune) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var n int64
	query := "SELECT COUNT(*) FROM " + csvSource(path, delim)
	if err := database.QueryRowContext(queryCtx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", path, err)
	}
	return n, nil
}

// SampleRecords returns the first limit records of a trimmed file in file order
func SampleRecords(ctx context.Context, database *sql.DB, path string, delim rune, fields Fields, limit int) ([]models.SessionRecord, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		LIMIT %d
	`, db.QuoteIdent(fields.Session), db.QuoteIdent(fields.Item), db.QuoteIdent(fields.Time), csvSource(path, delim), limit)

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := database.QueryContext(queryCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s: %w", path, err)
	}
	defer rows.Close()

	var records []models.SessionRecord
	for rows.Next() {
		var rec models.SessionRecord
		var sessionID, itemID, ts sql.NullString
		if err := rows.Scan(&sessionID, &itemID, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.SessionID = sessionID.String
		rec.ItemID = itemID.String
		rec.Time = ts.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return records, nil
}
