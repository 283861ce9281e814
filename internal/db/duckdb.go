package db

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	dbInstance *sql.DB
	dbOnce     sync.Once
	dbErr      error
)

// GetDB returns a singleton in-memory DuckDB connection
func GetDB() (*sql.DB, error) {
	dbOnce.Do(func() {
		dbInstance, dbErr = initializeDuckDB()
	})
	return dbInstance, dbErr
}

func initializeDuckDB() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	db.SetMaxOpenConns(1) // DuckDB works best with single connection
	db.SetMaxIdleConns(1)

	// Row order of read_csv results must follow the file
	if _, err := db.Exec("SET preserve_insertion_order = true"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure DuckDB: %w", err)
	}

	return db, nil
}

// QuoteLiteral renders s as a SQL string literal. Table functions such as
// read_csv_auto take their file argument as a literal, not a parameter.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteIdent renders s as a quoted SQL identifier
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
