// Package mapper converts raw extracted profiles into normalized CRM
// records. All transforms are pure: no I/O, no invented data, and every
// optional source field may be absent.
package mapper

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/prospector/internal/model"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// cleanField collapses internal whitespace and trims a raw extracted value.
func cleanField(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeName fixes the common all-caps page artifact without touching
// mixed-case names.
func normalizeName(name string) string {
	name = cleanField(name)
	if name != "" && name == strings.ToUpper(name) && name != strings.ToLower(name) {
		return titleCaser.String(strings.ToLower(name))
	}
	return name
}

// ProfileToContact maps an extracted profile to a Contact. Optional
// fields stay empty when the source did not provide them.
func ProfileToContact(p *model.ExtractedProfile, ownerID string) model.Contact {
	c := model.Contact{
		Name:       normalizeName(p.Name),
		JobTitle:   cleanField(p.JobTitle),
		Location:   cleanField(p.Location),
		About:      strings.TrimSpace(p.About),
		Email:      strings.TrimSpace(p.Email),
		ProfileURL: strings.TrimSpace(p.ProfileURL),
		OwnerID:    ownerID,
		LeadSource: model.ProfileSource,
	}
	if c.JobTitle == "" && len(p.Experience) > 0 {
		c.JobTitle = cleanField(p.Experience[0].Title)
	}
	return c
}

// ProfileToLeadCompany maps the company portion of a profile to a
// LeadCompany, or returns nil when no company name is present.
func ProfileToLeadCompany(p *model.ExtractedProfile, ownerID string) *model.LeadCompany {
	name := cleanField(p.Company)
	if name == "" {
		return nil
	}
	return &model.LeadCompany{
		Name:       name,
		Location:   cleanField(p.Location),
		SourceURL:  strings.TrimSpace(p.ProfileURL),
		OwnerID:    ownerID,
		LeadSource: model.ProfileSource,
	}
}

// ValidateContact returns the field-level errors that block creation.
// An empty list means the contact is valid.
func ValidateContact(c model.Contact) []model.FieldError {
	var errs []model.FieldError
	if strings.TrimSpace(c.Name) == "" || c.Name == model.NameUnresolved {
		errs = append(errs, model.FieldError{Field: "name", Message: "name is required"})
	}
	if strings.TrimSpace(c.ProfileURL) == "" {
		errs = append(errs, model.FieldError{Field: "profile_url", Message: "profile URL is required"})
	}
	return errs
}

// ValidateLeadCompany returns the field-level errors that block creation.
func ValidateLeadCompany(l model.LeadCompany) []model.FieldError {
	var errs []model.FieldError
	if strings.TrimSpace(l.Name) == "" {
		errs = append(errs, model.FieldError{Field: "name", Message: "company name is required"})
	}
	return errs
}
