package models

import "time"

// SessionRecord is one interaction event of a session as it appears in a
// trimmed dataset. Values are kept as the raw text found in the file.
type SessionRecord struct {
	SessionID string
	ItemID    string
	Time      string
}

// DatasetStats summarizes a trimmed dataset split
type DatasetStats struct {
	Path     string
	Events   int64
	Sessions int64
	Items    int64
	MinTime  string // Lexicographic minimum of the raw Time column
	MaxTime  string
}

// JobSummary is what the CLI prints for one finished transform
type JobSummary struct {
	Name     string
	Input    string
	Output   string
	Rows     int
	Duration time.Duration
	Stats    *DatasetStats // Nil unless verification ran
}
