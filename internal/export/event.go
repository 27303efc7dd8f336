// Package export hands finished briefings to downstream consumers
// (the risk-review workflow, archival) through configurable sinks,
// off the request path.
package export

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/intelfuse-ai/intelfuse/internal/aggregate"
)

// Event is the canonical briefing export payload.
type Event struct {
	Version    string              `json:"version"`
	Timestamp  time.Time           `json:"timestamp"`
	BriefingID string              `json:"briefing_id"`
	Incidents  int                 `json:"incidents"`
	Aggregate  aggregate.Aggregate `json:"aggregate"`
	Statements []string            `json:"statements"`
	Warnings   []string            `json:"warnings,omitempty"`
	DurationMs float64             `json:"duration_ms"`
}

// NewEvent stamps a fresh briefing event with an opaque id.
func NewEvent(agg aggregate.Aggregate, statements, warnings []string, durMs float64) *Event {
	return &Event{
		Version:    "1",
		Timestamp:  time.Now().UTC(),
		BriefingID: newID(),
		Incidents:  agg.Incidents,
		Aggregate:  agg,
		Statements: statements,
		Warnings:   warnings,
		DurationMs: durMs,
	}
}

func newID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "brief-unknown"
	}
	return "brief-" + hex.EncodeToString(b)
}
