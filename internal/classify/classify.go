// Package classify infers incident attributes from free text using
// ordered rule tables. Matching is case-insensitive substring matching,
// a deliberate precision/recall tradeoff for noisy source material.
package classify

import (
	"regexp"
	"strings"

	"github.com/intelfuse-ai/intelfuse/internal/report"
)

// maxIncidentLen bounds the inferred incident summary.
const maxIncidentLen = 180

// minSentenceLen is the shortest sentence worth using as a summary.
const minSentenceLen = 20

// Result carries the five independent inferences for one text.
// There is no cross-field consistency check: a Cross-sector industry
// can coexist with any severity or actor inference.
type Result struct {
	Severity    int
	Confidence  float64
	ThreatActor string
	Industry    string
	Incident    string
}

// Classify runs all inferences over the same input text. Safe for
// concurrent use; the rule tables are read-only after init.
func Classify(text string) Result {
	return Result{
		Severity:    inferSeverity(text),
		Confidence:  inferConfidence(text),
		ThreatActor: inferActor(text),
		Industry:    inferIndustry(text),
		Incident:    inferIncident(text),
	}
}

func inferSeverity(text string) int {
	for _, r := range severityRules {
		if r.re.MatchString(text) {
			return r.value
		}
	}
	return defaultSeverity
}

func inferConfidence(text string) float64 {
	for _, r := range confidenceRules {
		if r.re.MatchString(text) {
			return r.value
		}
	}
	return defaultConfidence
}

func inferActor(text string) string {
	if m := actorPattern.FindString(text); m != "" {
		return m
	}
	return report.UnknownActor
}

func inferIndustry(text string) string {
	lower := strings.ToLower(text)
	for _, industry := range knownIndustries {
		if strings.Contains(lower, strings.ToLower(industry)) {
			return industry
		}
	}
	return report.CrossSector
}

func inferIncident(text string) string {
	for _, sentence := range splitSentences(CleanText(text)) {
		if len([]rune(sentence)) > minSentenceLen {
			return truncate(sentence, maxIncidentLen)
		}
	}
	return fallbackIncident
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText collapses all whitespace runs to single spaces and trims.
func CleanText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// splitSentences breaks text after terminal punctuation followed by a
// space. The punctuation stays attached to its sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		if (text[i] == '.' || text[i] == '!' || text[i] == '?') && text[i+1] == ' ' {
			out = append(out, text[start:i+1])
			start = i + 2
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
