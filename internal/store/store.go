// Package store persists the session-local state that survives page
// loads: the last extraction, import history, preferences, and the auth
// session snapshot.
package store

import (
	"context"
	"time"

	"github.com/sells-group/prospector/internal/model"
)

// Store defines the local persistence interface for the capture pipeline.
type Store interface {
	// Last extraction. Save overwrites; results never merge.
	SaveLastProfile(ctx context.Context, p *model.ExtractedProfile) error
	LastProfile(ctx context.Context) (*model.ExtractedProfile, error)

	// Import history: append-and-trim to model.MaxImportRecords,
	// newest first on read.
	AppendImportRecord(ctx context.Context, rec model.ImportRecord) error
	ListImportRecords(ctx context.Context, limit int) ([]model.ImportRecord, error)

	// Preferences.
	Preferences(ctx context.Context) (model.Preferences, error)
	SavePreferences(ctx context.Context, prefs model.Preferences) error

	// Auth session snapshot.
	SaveAuthSession(ctx context.Context, token string, expiry time.Time) error
	AuthSession(ctx context.Context) (token string, expiry time.Time, err error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
