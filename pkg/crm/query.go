package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// ContactRecord is the CRM shape of a Contact.
type ContactRecord struct {
	ID         string `json:"Id"`
	Name       string `json:"Name"`
	Email      string `json:"Email"`
	Title      string `json:"Title"`
	ProfileURL string `json:"Profile_URL__c"`
	AccountID  string `json:"AccountId"`
	LeadSource string `json:"LeadSource"`
	OwnerID    string `json:"OwnerId"`
}

// AccountRecord is the CRM shape of a lead company.
type AccountRecord struct {
	ID         string `json:"Id"`
	Name       string `json:"Name"`
	SourceURL  string `json:"Source_URL__c"`
	LeadSource string `json:"LeadSource"`
	OwnerID    string `json:"OwnerId"`
}

var contactFields = []string{
	"Id", "Name", "Email", "Title", "Profile_URL__c", "AccountId", "LeadSource", "OwnerId",
}

var accountFields = []string{
	"Id", "Name", "Source_URL__c", "LeadSource", "OwnerId",
}

// FindContactByProfileURL queries the CRM for a Contact matching the
// external profile URL. Returns nil if none exists.
func FindContactByProfileURL(ctx context.Context, c Client, profileURL string) (*ContactRecord, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Contact WHERE Profile_URL__c = '%s' LIMIT 1",
		strings.Join(contactFields, ", "),
		escapeSoql(profileURL),
	)

	var contacts []ContactRecord
	if err := c.Query(ctx, soql, &contacts); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("crm: find contact by url %s", profileURL))
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	return &contacts[0], nil
}

// FindContactByEmail queries the CRM for a Contact by email address.
// Returns nil if none exists.
func FindContactByEmail(ctx context.Context, c Client, email string) (*ContactRecord, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Contact WHERE Email = '%s' LIMIT 1",
		strings.Join(contactFields, ", "),
		escapeSoql(email),
	)

	var contacts []ContactRecord
	if err := c.Query(ctx, soql, &contacts); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("crm: find contact by email %s", email))
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	return &contacts[0], nil
}

// FindAccountBySourceURL queries the CRM for a lead company matching the
// external source URL. Company dedup is keyed on the external URL only;
// names are not matched.
func FindAccountBySourceURL(ctx context.Context, c Client, sourceURL string) (*AccountRecord, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Account WHERE Source_URL__c = '%s' LIMIT 1",
		strings.Join(accountFields, ", "),
		escapeSoql(sourceURL),
	)

	var accounts []AccountRecord
	if err := c.Query(ctx, soql, &accounts); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("crm: find account by url %s", sourceURL))
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return &accounts[0], nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
