package domain

import (
	"strings"
	"time"
)

// MovementSource tags where a movement row came from.
type MovementSource string

const (
	SourceDatajud MovementSource = "datajud"
	SourceManual  MovementSource = "manual"
)

// MovementRecord is a movement as reported by the judicial API.
type MovementRecord struct {
	Code        int
	Name        string
	Timestamp   string
	Complements []byte
}

// Movement is a persisted movement row.
type Movement struct {
	ID          int64
	ProcessID   int64
	WorkspaceID int64
	Code        int
	Name        string
	OccurredAt  string
	Complements string
	Source      MovementSource
	Read        bool
	CreatedAt   time.Time

	// ProcessNumber is filled by queries that join the process row.
	ProcessNumber string
}

// SaveReport summarizes one dedup batch.
type SaveReport struct {
	Inserted   int
	Duplicates int
	NewRecords []Movement
	// Alerts holds the in-app alerts committed with NewRecords.
	Alerts []Alert
}

// StoredLayout is the wall-clock layout used for movement timestamps at rest.
const StoredLayout = "2006-01-02 15:04:05"

var movementLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	StoredLayout,
	"2006-01-02",
}

// ParseMovementTime parses the ISO 8601 variants reported by courts. Zoneless
// values are read as UTC wall clock.
func ParseMovementTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range movementLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeMovementTime renders raw in StoredLayout using the timestamp's own
// wall clock. Unparseable input keeps its first 19 characters; empty input
// falls back to now.
func NormalizeMovementTime(raw string, now time.Time) string {
	if strings.TrimSpace(raw) == "" {
		return now.Format(StoredLayout)
	}
	if t, ok := ParseMovementTime(raw); ok {
		return t.Format(StoredLayout)
	}
	if len(raw) > 19 {
		return raw[:19]
	}
	return raw
}
