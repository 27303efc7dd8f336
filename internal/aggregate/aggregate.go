// Package aggregate computes corpus-level statistics and the narrative
// risk statements derived from them. Everything here is a pure function
// of the record list; nothing is persisted or incrementally updated.
package aggregate

import (
	"fmt"

	"github.com/intelfuse-ai/intelfuse/internal/report"
)

// Aggregate is the derived, ephemeral corpus summary.
type Aggregate struct {
	Incidents     int     `json:"incidents"`
	AvgSeverity   string  `json:"avgSeverity"`
	AvgConfidence float64 `json:"avgConfidence"`
	TopActor      string  `json:"topActor"`
	TopIndustry   string  `json:"topIndustry"`
}

// Compute derives the aggregate from the current record list. An empty
// list yields zero means and N/A modal values, never an error.
func Compute(records []report.Record) Aggregate {
	agg := Aggregate{
		Incidents:   len(records),
		AvgSeverity: "0.00",
		TopActor:    report.NotAvailable,
		TopIndustry: report.NotAvailable,
	}
	if len(records) == 0 {
		return agg
	}

	var totalSeverity int
	var totalConfidence float64
	actors := make([]string, 0, len(records))
	industries := make([]string, 0, len(records))
	for _, rec := range records {
		totalSeverity += rec.Severity
		totalConfidence += rec.Confidence
		actors = append(actors, rec.ThreatActor)
		industries = append(industries, rec.Industry)
	}

	agg.AvgSeverity = fmt.Sprintf("%.2f", float64(totalSeverity)/float64(len(records)))
	agg.AvgConfidence = totalConfidence / float64(len(records))
	agg.TopActor = modal(actors)
	agg.TopIndustry = modal(industries)
	return agg
}

// modal returns the most frequent value. Ties break on first
// occurrence in input order, recorded explicitly rather than relying
// on map iteration order, so output is deterministic.
func modal(values []string) string {
	counts := make(map[string]int, len(values))
	firstSeen := make(map[string]int, len(values))
	for i, v := range values {
		if _, ok := firstSeen[v]; !ok {
			firstSeen[v] = i
		}
		counts[v]++
	}

	best := ""
	for v := range counts {
		if best == "" {
			best = v
			continue
		}
		if counts[v] > counts[best] || (counts[v] == counts[best] && firstSeen[v] < firstSeen[best]) {
			best = v
		}
	}
	if best == "" {
		return report.NotAvailable
	}
	return best
}
