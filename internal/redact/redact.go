// Package redact masks personal data in extracted source text before
// it reaches classification or leaves the process in an export event.
package redact

import "regexp"

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\-\s]{7,}\d`)
)

// Scrub replaces email addresses and phone numbers with fixed markers.
// Everything else passes through untouched so classification still sees
// the surrounding language.
func Scrub(s string) string {
	if s == "" {
		return s
	}
	out := emailRe.ReplaceAllString(s, "[REDACTED_EMAIL]")
	out = phoneRe.ReplaceAllString(out, "[REDACTED_PHONE]")
	return out
}
