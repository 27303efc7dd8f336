package classify

import "regexp"

// severityRule maps a case-insensitive pattern to a severity score.
// Rules are evaluated in declaration order and the first match wins,
// so higher-severity patterns must stay at the top.
type severityRule struct {
	re    *regexp.Regexp
	value int
}

var severityRules = []severityRule{
	{regexp.MustCompile(`(?i)(critical|ransomware|data exfiltration|wiper)`), 5},
	{regexp.MustCompile(`(?i)(privilege escalation|active exploitation|supply chain)`), 4},
	{regexp.MustCompile(`(?i)(phishing|credential theft|malware|remote access trojan)`), 3},
	{regexp.MustCompile(`(?i)(scanning|reconnaissance|probe)`), 2},
}

const defaultSeverity = 3

// confidenceRule maps hedging language to a confidence score,
// first match wins.
type confidenceRule struct {
	re    *regexp.Regexp
	value float64
}

var confidenceRules = []confidenceRule{
	{regexp.MustCompile(`(?i)confirmed|verified|observed`), 0.85},
	{regexp.MustCompile(`(?i)likely|probable|suggests`), 0.70},
	{regexp.MustCompile(`(?i)possible|suspected|unconfirmed`), 0.55},
}

// defaultConfidence applies when no hedging language matched. It is
// deliberately distinct from the "unconfirmed" score: absence of
// hedging is weak-but-nonzero evidence, not indeterminate.
const defaultConfidence = 0.65

// actorPattern catalogues known actor names plus a generic APT-number
// form. Only the first match is ever extracted.
var actorPattern = regexp.MustCompile(`(?i)\b(?:APT\s?\d+|Lazarus|FIN\d+|Volt Typhoon|Silent Lynx|Night Coil)\b`)

// knownIndustries is the enumerated industry set, searched as
// case-insensitive substrings in declaration order.
var knownIndustries = []string{
	"Healthcare",
	"Financial Services",
	"Manufacturing",
	"Retail",
	"Government",
	"Energy",
	"Education",
}

// fallbackIncident is returned when no sentence qualifies as a summary.
const fallbackIncident = "Threat activity observed across source material"
