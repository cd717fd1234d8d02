package extract

import "strings"

const (
	maxNameLen     = 80
	maxTitleLen    = 140
	minAboutLen    = 40
	maxCompanyLen  = 100
	maxLocationLen = 100
)

// boilerplateTokens are navigational fragments that disqualify a name
// candidate. Page chrome frequently leaks into broad selectors when the
// site's markup shifts.
var boilerplateTokens = []string{
	"linkedin",
	"sign in",
	"sign up",
	"join now",
	"log in",
	"notifications",
	"my network",
	"skip to",
	"search",
	"cookie",
}

func containsBoilerplate(s string) bool {
	lower := strings.ToLower(s)
	for _, tok := range boilerplateTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// plausibleName rejects navigational boilerplate and over-long candidates.
func plausibleName(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxNameLen {
		return false
	}
	if strings.ContainsRune(s, '\n') {
		return false
	}
	return !containsBoilerplate(s)
}

// plausibleTitle accepts headline-like strings within a length bound.
func plausibleTitle(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) <= maxTitleLen && !containsBoilerplate(s)
}

// plausibleAbout requires enough text to be a real summary rather than a
// truncated fragment or stray label.
func plausibleAbout(s string) bool {
	return len(strings.TrimSpace(s)) >= minAboutLen
}

func plausibleCompany(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) <= maxCompanyLen && !containsBoilerplate(s)
}

func plausibleLocation(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) <= maxLocationLen && !containsBoilerplate(s)
}
