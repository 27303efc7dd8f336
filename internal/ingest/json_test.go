package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/intelfuse-ai/intelfuse/internal/report"
)

func TestParseReportsValidBatch(t *testing.T) {
	input := `[
		{"source":"ISAO Weekly Bulletin","incident":"Credential phishing campaign","threatActor":"Silent Lynx","industry":"Financial Services","severity":4,"confidence":0.85},
		{"severity":5,"confidence":0.9}
	]`

	records, err := ParseReports(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	if records[0].ThreatActor != "Silent Lynx" {
		t.Errorf("record 0 actor = %q", records[0].ThreatActor)
	}
	if records[1].Source != jsonFallbackSource {
		t.Errorf("record 1 source = %q, want fallback", records[1].Source)
	}
	if records[1].ThreatActor != report.UnknownActor {
		t.Errorf("record 1 actor = %q, want sentinel", records[1].ThreatActor)
	}
	if records[1].Severity != 5 || records[1].Confidence != 0.9 {
		t.Errorf("record 1 numbers altered: %+v", records[1])
	}
}

func TestParseReportsEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t\n"} {
		records, err := ParseReports(input)
		if err != nil {
			t.Fatalf("ParseReports(%q) error: %v", input, err)
		}
		if len(records) != 0 {
			t.Fatalf("ParseReports(%q) = %d records, want 0", input, len(records))
		}
	}
}

func TestParseReportsNotAnArray(t *testing.T) {
	for _, input := range []string{`{"severity":5,"confidence":0.9}`, `"text"`, `not json`} {
		_, err := ParseReports(input)
		var malformed *report.MalformedInputError
		if !errors.As(err, &malformed) {
			t.Fatalf("ParseReports(%q): expected MalformedInputError, got %v", input, err)
		}
	}
}

func TestParseReportsBadElementAbortsBatch(t *testing.T) {
	// Valid first element must not be admitted when a later one fails.
	input := `[{"severity":5,"confidence":0.9},{"severity":5}]`

	records, err := ParseReports(input)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(records) != 0 {
		t.Fatalf("expected zero records from failed batch, got %d", len(records))
	}

	var missing *report.MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %T", err)
	}
	if missing.Index != 2 || missing.Field != "confidence" {
		t.Errorf("error = %+v, want index 2 field confidence", missing)
	}
	if !strings.Contains(err.Error(), "confidence") {
		t.Errorf("message should name the field: %q", err.Error())
	}
}

func TestParseReportsNonNumericSeverity(t *testing.T) {
	_, err := ParseReports(`[{"severity":"high","confidence":0.9}]`)

	var invalid *report.InvalidSeverityError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidSeverityError, got %v", err)
	}
	if invalid.Index != 1 {
		t.Errorf("index = %d, want 1", invalid.Index)
	}
}

func TestParseReportsOutOfRange(t *testing.T) {
	cases := []struct {
		name  string
		input string
		as    any
	}{
		{"severity", `[{"severity":9,"confidence":0.9}]`, new(*report.InvalidSeverityError)},
		{"confidence", `[{"severity":3,"confidence":1.5}]`, new(*report.InvalidConfidenceError)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseReports(tc.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.As(err, tc.as) {
				t.Fatalf("wrong error type: %v", err)
			}
		})
	}
}
