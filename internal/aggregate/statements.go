package aggregate

import (
	"fmt"
	"math"

	"github.com/intelfuse-ai/intelfuse/internal/report"
)

// highSeverityFloor marks a record as high severity in statement 3.
const highSeverityFloor = 4

// strongConfidenceFloor marks a record as actionable in statement 4.
const strongConfidenceFloor = 0.70

// Statements synthesizes the four fixed-order narrative risk
// statements. The first is always the overview. Given identical
// records and aggregate the output is byte-identical.
func Statements(records []report.Record, agg Aggregate) []string {
	var highSeverity, strongConfidence int
	for _, rec := range records {
		if rec.Severity >= highSeverityFloor {
			highSeverity++
		}
		if rec.Confidence >= strongConfidenceFloor {
			strongConfidence++
		}
	}

	return []string{
		fmt.Sprintf("The merged corpus produced %d incidents with average severity %s/5 and confidence %s. Risk exposure is elevated and requires ongoing executive oversight.",
			agg.Incidents, agg.AvgSeverity, toPercent(agg.AvgConfidence)),
		fmt.Sprintf("The most repeated actor is %s; prioritize detection logic and hunt playbooks aligned to this actor profile.",
			agg.TopActor),
		fmt.Sprintf("%d incidents are high severity (4-5), indicating potential for disruptive business impact if controls are not hardened quickly.",
			highSeverity),
		fmt.Sprintf("%d incidents have at least 70%% confidence, giving enough evidence to action mitigation plans in %s.",
			strongConfidence, agg.TopIndustry),
	}
}

func toPercent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}
