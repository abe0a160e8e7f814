package ingest

import (
	"time"
)

// Run summarises one import.
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Subjects   []string
	Fetched    int
	Added      int
	Duplicates int
	Skipped    int
}
