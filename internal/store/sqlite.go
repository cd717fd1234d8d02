package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospector/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS last_extraction (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	profile      TEXT NOT NULL,
	page_url     TEXT NOT NULL,
	extracted_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS import_records (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	name       TEXT NOT NULL,
	status     TEXT NOT NULL,
	crm_id     TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS preferences (
	id    INTEGER PRIMARY KEY CHECK (id = 1),
	prefs TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS auth_session (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	token      TEXT NOT NULL,
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_import_records_created_at ON import_records(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveLastProfile(ctx context.Context, p *model.ExtractedProfile) error {
	profileJSON, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal profile")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO last_extraction (id, profile, page_url, extracted_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET profile = excluded.profile,
		   page_url = excluded.page_url, extracted_at = excluded.extracted_at`,
		string(profileJSON), p.ProfileURL, p.ExtractedAt,
	)
	return eris.Wrap(err, "sqlite: save last profile")
}

func (s *SQLiteStore) LastProfile(ctx context.Context) (*model.ExtractedProfile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT profile FROM last_extraction WHERE id = 1`)

	var profileJSON string
	err := row.Scan(&profileJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get last profile")
	}

	var p model.ExtractedProfile
	if err := json.Unmarshal([]byte(profileJSON), &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal last profile")
	}
	return &p, nil
}

// AppendImportRecord inserts a history entry and trims the table to the
// most recent model.MaxImportRecords rows. Single writer.
func (s *SQLiteStore) AppendImportRecord(ctx context.Context, rec model.ImportRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin append record")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO import_records (id, type, name, status, crm_id, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Type), rec.Name, string(rec.Status),
		nullable(rec.CRMID), nullable(rec.Error), rec.Timestamp,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert import record")
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM import_records WHERE id NOT IN (
			SELECT id FROM import_records ORDER BY created_at DESC, id LIMIT ?
		)`,
		model.MaxImportRecords,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: trim import records")
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit append record")
}

func (s *SQLiteStore) ListImportRecords(ctx context.Context, limit int) ([]model.ImportRecord, error) {
	if limit <= 0 || limit > model.MaxImportRecords {
		limit = model.MaxImportRecords
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, name, status, crm_id, error, created_at
		 FROM import_records ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list import records")
	}
	defer rows.Close()

	var records []model.ImportRecord
	for rows.Next() {
		var rec model.ImportRecord
		var crmID, recErr sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Name, &rec.Status, &crmID, &recErr, &rec.Timestamp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan import record")
		}
		rec.CRMID = crmID.String
		rec.Error = recErr.String
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list import records iterate")
}

func (s *SQLiteStore) Preferences(ctx context.Context) (model.Preferences, error) {
	row := s.db.QueryRowContext(ctx, `SELECT prefs FROM preferences WHERE id = 1`)

	var prefsJSON string
	err := row.Scan(&prefsJSON)
	if err == sql.ErrNoRows {
		return model.DefaultPreferences(), nil
	}
	if err != nil {
		return model.Preferences{}, eris.Wrap(err, "sqlite: get preferences")
	}

	var prefs model.Preferences
	if err := json.Unmarshal([]byte(prefsJSON), &prefs); err != nil {
		return model.Preferences{}, eris.Wrap(err, "sqlite: unmarshal preferences")
	}
	return prefs, nil
}

func (s *SQLiteStore) SavePreferences(ctx context.Context, prefs model.Preferences) error {
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal preferences")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO preferences (id, prefs) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET prefs = excluded.prefs`,
		string(prefsJSON),
	)
	return eris.Wrap(err, "sqlite: save preferences")
}

func (s *SQLiteStore) SaveAuthSession(ctx context.Context, token string, expiry time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_session (id, token, expires_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET token = excluded.token, expires_at = excluded.expires_at`,
		token, expiry.UTC(),
	)
	return eris.Wrap(err, "sqlite: save auth session")
}

func (s *SQLiteStore) AuthSession(ctx context.Context) (string, time.Time, error) {
	row := s.db.QueryRowContext(ctx, `SELECT token, expires_at FROM auth_session WHERE id = 1`)

	var token string
	var expiry time.Time
	err := row.Scan(&token, &expiry)
	if err == sql.ErrNoRows {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, eris.Wrap(err, "sqlite: get auth session")
	}
	return token, expiry, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
