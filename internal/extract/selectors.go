package extract

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultSelectorYAML []byte

// SelectorSet holds the ordered CSS selector lists per field. Profile
// markup changes frequently, so the set is data rather than code: the
// embedded defaults can be overridden from a YAML file without a rebuild.
type SelectorSet struct {
	Name       []string `yaml:"name"`
	JobTitle   []string `yaml:"job_title"`
	Location   []string `yaml:"location"`
	About      []string `yaml:"about"`
	Experience string   `yaml:"experience"`
	Education  string   `yaml:"education"`
	Skills     string   `yaml:"skills"`
}

// DefaultSelectors parses the embedded selector defaults.
func DefaultSelectors() (*SelectorSet, error) {
	var s SelectorSet
	if err := yaml.Unmarshal(defaultSelectorYAML, &s); err != nil {
		return nil, eris.Wrap(err, "extract: parse embedded selectors")
	}
	return &s, nil
}

// LoadSelectors reads a selector set from a YAML file, falling back to
// the embedded defaults for any field the file leaves empty.
func LoadSelectors(path string) (*SelectorSet, error) {
	defaults, err := DefaultSelectors()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read selector file %s", path)
	}
	var s SelectorSet
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, eris.Wrapf(err, "extract: parse selector file %s", path)
	}

	if len(s.Name) == 0 {
		s.Name = defaults.Name
	}
	if len(s.JobTitle) == 0 {
		s.JobTitle = defaults.JobTitle
	}
	if len(s.Location) == 0 {
		s.Location = defaults.Location
	}
	if len(s.About) == 0 {
		s.About = defaults.About
	}
	if s.Experience == "" {
		s.Experience = defaults.Experience
	}
	if s.Education == "" {
		s.Education = defaults.Education
	}
	if s.Skills == "" {
		s.Skills = defaults.Skills
	}
	return &s, nil
}
