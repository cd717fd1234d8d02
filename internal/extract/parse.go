package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/prospector/internal/model"
)

// employmentTypeRe strips the " · Full-time" style suffix the experience
// section appends to company lines.
var employmentTypeRe = regexp.MustCompile(`(?i)\s*[·•]\s*(full[- ]time|part[- ]time|contract|internship|freelance|self[- ]employed|temporary).*$`)

// durationRe recognizes a duration line like "Jan 2020 - Present · 4 yrs".
var durationRe = regexp.MustCompile(`(?i)\b(\d{4}|present|yrs?|mos?)\b`)

// blockLines splits a section block's text into trimmed, de-duplicated
// lines. Rendered list items frequently repeat each line in a
// visually-hidden span, so consecutive duplicates collapse.
func blockLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(lines) > 0 && lines[len(lines)-1] == line {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// parseExperienceBlock reads one experience list item: title line first,
// then company, then a duration line when present.
func parseExperienceBlock(block string) model.Experience {
	lines := blockLines(block)
	var entry model.Experience
	for _, line := range lines {
		switch {
		case entry.Title == "":
			entry.Title = line
		case entry.Company == "" && !durationRe.MatchString(line):
			entry.Company = strings.TrimSpace(employmentTypeRe.ReplaceAllString(line, ""))
		case entry.Duration == "" && durationRe.MatchString(line):
			entry.Duration = line
		}
	}
	return entry
}

// parseEducationBlock reads one education list item: school first, then
// degree, then a years line.
func parseEducationBlock(block string) model.Education {
	lines := blockLines(block)
	var entry model.Education
	for _, line := range lines {
		switch {
		case entry.School == "":
			entry.School = line
		case entry.Degree == "" && !durationRe.MatchString(line):
			entry.Degree = line
		case entry.Years == "" && durationRe.MatchString(line):
			entry.Years = line
		}
	}
	return entry
}
