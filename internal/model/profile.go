// Package model defines the data types shared across the capture and
// import pipeline.
package model

import "time"

// ProfileSource tags where an extracted profile came from.
const ProfileSource = "prospector"

// NameUnresolved is the sentinel used when no name candidate survives
// the fallback chain. A profile never carries a silently empty name.
const NameUnresolved = "Unknown"

// Bounds on the repeated profile sections. Anything past the cap is
// dropped at extraction time.
const (
	MaxExperienceEntries = 5
	MaxEducationEntries  = 3
	MaxSkillEntries      = 10
)

// Experience is one entry from the experience section of a profile page.
type Experience struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Duration string `json:"duration,omitempty"`
}

// Education is one entry from the education section of a profile page.
type Education struct {
	School string `json:"school"`
	Degree string `json:"degree,omitempty"`
	Years  string `json:"years,omitempty"`
}

// ExtractedProfile is the raw, best-effort result of reading a profile
// page. It is created fresh on every extraction; a later extraction of
// the same page overwrites, never merges.
type ExtractedProfile struct {
	Name        string       `json:"name"`
	JobTitle    string       `json:"job_title,omitempty"`
	Company     string       `json:"company,omitempty"`
	Location    string       `json:"location,omitempty"`
	About       string       `json:"about,omitempty"`
	Experience  []Experience `json:"experience,omitempty"`
	Education   []Education  `json:"education,omitempty"`
	Skills      []string     `json:"skills,omitempty"`
	Email       string       `json:"email,omitempty"`
	ProfileURL  string       `json:"profile_url"`
	ExtractedAt time.Time    `json:"extracted_at"`
	Source      string       `json:"source"`
}

// HasIdentity reports whether the profile carries enough to be imported:
// a resolved name or a profile URL.
func (p *ExtractedProfile) HasIdentity() bool {
	return (p.Name != "" && p.Name != NameUnresolved) || p.ProfileURL != ""
}

// DisplayName returns the best human-readable label for the profile,
// used to key per-item errors in bulk imports.
func (p *ExtractedProfile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return NameUnresolved
}
