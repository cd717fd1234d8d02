package crm

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
)

// CreateLeadCompany creates an Account for the lead company and returns
// the new CRM id.
func CreateLeadCompany(ctx context.Context, c Client, company model.LeadCompany) (string, error) {
	if company.Name == "" {
		return "", eris.New("crm: company name is required")
	}

	fields := map[string]any{
		"Name": company.Name,
	}
	setIfPresent(fields, "BillingCity", company.Location)
	setIfPresent(fields, "Source_URL__c", company.SourceURL)
	setIfPresent(fields, "LeadSource", company.LeadSource)
	setIfPresent(fields, "OwnerId", company.OwnerID)

	id, err := c.InsertOne(ctx, "Account", fields)
	if err != nil {
		return "", eris.Wrap(err, "crm: create lead company")
	}
	return id, nil
}

// CreateContact creates a Contact, linking the company account when a
// non-empty id is given, and returns the new CRM id.
func CreateContact(ctx context.Context, c Client, contact model.Contact) (string, error) {
	if contact.Name == "" {
		return "", eris.New("crm: contact name is required")
	}
	if contact.ProfileURL == "" {
		return "", eris.New("crm: contact profile url is required")
	}

	first, last := splitName(contact.Name)
	fields := map[string]any{
		"LastName":       last,
		"Profile_URL__c": contact.ProfileURL,
	}
	setIfPresent(fields, "FirstName", first)
	setIfPresent(fields, "Title", contact.JobTitle)
	setIfPresent(fields, "Email", contact.Email)
	setIfPresent(fields, "Description", contact.About)
	setIfPresent(fields, "MailingCity", contact.Location)
	setIfPresent(fields, "AccountId", contact.CompanyID)
	setIfPresent(fields, "LeadSource", contact.LeadSource)
	setIfPresent(fields, "OwnerId", contact.OwnerID)

	id, err := c.InsertOne(ctx, "Contact", fields)
	if err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("crm: create contact %s", contact.Name))
	}
	return id, nil
}

func setIfPresent(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

// splitName separates a display name into first and last for the CRM's
// split name fields. A single token becomes the last name.
func splitName(name string) (first, last string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}
