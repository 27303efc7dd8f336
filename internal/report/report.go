// Package report defines the canonical incident record and the
// normalization/validation rules every input source must pass through.
package report

// Sentinel values used when a field cannot be determined from the source.
const (
	UnknownActor = "Unknown actor"
	CrossSector  = "Cross-sector"
	NotAvailable = "N/A"
)

// DefaultIncident fills the incident field when a structured record omits it.
const DefaultIncident = "Threat activity observed"

// Record is the canonical incident record. Every record that leaves
// Normalize or a passing Validate call has severity in [1,5] and
// confidence in [0,1]; downstream consumers do not re-check ranges.
// Records are never mutated after creation.
type Record struct {
	Source      string  `json:"source"`
	Incident    string  `json:"incident"`
	ThreatActor string  `json:"threatActor"`
	Industry    string  `json:"industry"`
	Severity    int     `json:"severity"`
	Confidence  float64 `json:"confidence"`
}

// Raw is a partially specified record as supplied by structured input.
// Severity and confidence are pointers so Validate can tell an absent
// field from a zero value.
type Raw struct {
	Source      string   `json:"source"`
	Incident    string   `json:"incident"`
	ThreatActor string   `json:"threatActor"`
	Industry    string   `json:"industry"`
	Severity    *float64 `json:"severity"`
	Confidence  *float64 `json:"confidence"`
}

// Normalize fills missing descriptive fields with defaults and produces
// a canonical record. Severity and confidence pass through unchanged:
// range checking is Validate's job for structured input and the
// classifier's guarantee for unstructured input.
func Normalize(raw Raw, fallbackSource string) Record {
	rec := Record{
		Source:      raw.Source,
		Incident:    raw.Incident,
		ThreatActor: raw.ThreatActor,
		Industry:    raw.Industry,
	}
	if rec.Source == "" {
		rec.Source = fallbackSource
	}
	if rec.Incident == "" {
		rec.Incident = DefaultIncident
	}
	if rec.ThreatActor == "" {
		rec.ThreatActor = UnknownActor
	}
	if rec.Industry == "" {
		rec.Industry = CrossSector
	}
	if raw.Severity != nil {
		rec.Severity = int(*raw.Severity)
	}
	if raw.Confidence != nil {
		rec.Confidence = *raw.Confidence
	}
	return rec
}

// Validate enforces schema constraints on one structured record.
// index is the 0-based position in the input batch; errors report it
// 1-based for user feedback.
func Validate(raw Raw, index int) error {
	if raw.Severity == nil {
		return &MissingFieldError{Index: index + 1, Field: "severity"}
	}
	if raw.Confidence == nil {
		return &MissingFieldError{Index: index + 1, Field: "confidence"}
	}
	sev := *raw.Severity
	if sev < 1 || sev > 5 || sev != float64(int(sev)) {
		return &InvalidSeverityError{Index: index + 1}
	}
	if *raw.Confidence < 0 || *raw.Confidence > 1 {
		return &InvalidConfidenceError{Index: index + 1}
	}
	return nil
}
