package model

// Preferences are user import settings persisted across sessions.
type Preferences struct {
	AutoAssignOwner   bool   `json:"auto_assign_owner"`
	DefaultOwnerID    string `json:"default_owner_id,omitempty"`
	DuplicateChecking bool   `json:"duplicate_checking"`
	Notifications     bool   `json:"notifications"`
}

// DefaultPreferences returns the out-of-the-box import settings.
func DefaultPreferences() Preferences {
	return Preferences{
		AutoAssignOwner:   true,
		DuplicateChecking: true,
		Notifications:     true,
	}
}
