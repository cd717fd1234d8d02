package model

import "time"

// RecordType distinguishes what kind of CRM record an ImportRecord refers to.
type RecordType string

const (
	RecordContact RecordType = "contact"
	RecordCompany RecordType = "company"
)

// ImportStatus is the terminal outcome of a single import attempt.
type ImportStatus string

const (
	ImportSucceeded ImportStatus = "succeeded"
	ImportFailed    ImportStatus = "failed"
	ImportDuplicate ImportStatus = "duplicate"
)

// MaxImportRecords caps the local import history. The list is
// append-and-trim: the oldest entries beyond the cap are dropped.
const MaxImportRecords = 50

// ImportRecord is an append-only local history entry. Its lifecycle is
// independent from the CRM record it references; it is kept even if the
// remote record is later deleted.
type ImportRecord struct {
	ID        string       `json:"id"`
	Type      RecordType   `json:"type"`
	Name      string       `json:"name"`
	Timestamp time.Time    `json:"timestamp"`
	Status    ImportStatus `json:"status"`
	CRMID     string       `json:"crm_id,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// BulkItemError ties a failed bulk item to its display name.
type BulkItemError struct {
	Item  string `json:"item"`
	Error string `json:"error"`
}

// BulkResult reports the mixed outcome of a bulk import. Partial success
// is a first-class outcome: SuccessCount and ErrorCount are reported
// side by side and total failure is declared only when every item failed.
type BulkResult struct {
	SuccessCount int             `json:"success_count"`
	ErrorCount   int             `json:"error_count"`
	Results      []ImportRecord  `json:"results"`
	Errors       []BulkItemError `json:"errors"`
}

// TotalFailure reports whether nothing in the batch succeeded.
func (r *BulkResult) TotalFailure() bool {
	return r.SuccessCount == 0 && r.ErrorCount > 0
}
