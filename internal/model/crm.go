package model

// LeadCompany is an unconfirmed, extraction-sourced company record
// pending CRM review. CRMID is assigned by the remote system on create.
type LeadCompany struct {
	CRMID      string `json:"crm_id,omitempty"`
	Name       string `json:"name"`
	Location   string `json:"location,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
	OwnerID    string `json:"owner_id,omitempty"`
	LeadSource string `json:"lead_source,omitempty"`
}

// Contact is a normalized person record ready for CRM creation.
// CompanyID is a weak reference to a LeadCompany CRM id: relation only,
// a contact is still created when no company could be.
type Contact struct {
	CRMID      string `json:"crm_id,omitempty"`
	Name       string `json:"name"`
	JobTitle   string `json:"job_title,omitempty"`
	Location   string `json:"location,omitempty"`
	About      string `json:"about,omitempty"`
	Email      string `json:"email,omitempty"`
	ProfileURL string `json:"profile_url"`
	CompanyID  string `json:"company_id,omitempty"`
	OwnerID    string `json:"owner_id,omitempty"`
	LeadSource string `json:"lead_source,omitempty"`
}

// FieldError describes a single invalid or missing field on a mapped record.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}
