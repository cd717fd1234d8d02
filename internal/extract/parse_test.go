package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockLines(t *testing.T) {
	// Rendered list items repeat each line in a visually-hidden span.
	block := "VP Sales\nVP Sales\n\nAcme Corp\n  Acme Corp  \nJan 2020 - Present"
	assert.Equal(t,
		[]string{"VP Sales", "Acme Corp", "Jan 2020 - Present"},
		blockLines(block),
	)
}

func TestParseExperienceBlock(t *testing.T) {
	tests := []struct {
		name  string
		block string
		title string
		co    string
		dur   string
	}{
		{
			"full entry",
			"VP Sales\nAcme Corp · Full-time\nJan 2020 - Present · 4 yrs",
			"VP Sales", "Acme Corp", "Jan 2020 - Present · 4 yrs",
		},
		{
			"no duration",
			"Engineer\nInitech",
			"Engineer", "Initech", "",
		},
		{
			"title only",
			"Consultant",
			"Consultant", "", "",
		},
		{
			"employment type stripped",
			"Designer\nStudio X · Part-time · Remote\n2019 - 2021",
			"Designer", "Studio X", "2019 - 2021",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := parseExperienceBlock(tt.block)
			assert.Equal(t, tt.title, entry.Title)
			assert.Equal(t, tt.co, entry.Company)
			assert.Equal(t, tt.dur, entry.Duration)
		})
	}
}

func TestParseEducationBlock(t *testing.T) {
	entry := parseEducationBlock("State University\nBS Computer Science\n2002 - 2006")
	assert.Equal(t, "State University", entry.School)
	assert.Equal(t, "BS Computer Science", entry.Degree)
	assert.Equal(t, "2002 - 2006", entry.Years)
}

func TestLoadSelectors_Defaults(t *testing.T) {
	s, err := LoadSelectors("")
	assert.NoError(t, err)
	assert.NotEmpty(t, s.Name)
	assert.NotEmpty(t, s.Experience)
}
