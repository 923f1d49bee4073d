package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mailpilot/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveCollection replaces the persisted collection for an account in a
// single transaction.
func (s *SQLiteStore) SaveCollection(
	ctx context.Context,
	account string,
	emails []model.Email,
	lastRefresh time.Time,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM emails WHERE account = ?", account); err != nil {
		return fmt.Errorf("clearing collection for %s: %w", account, err)
	}

	const query = `
		INSERT INTO emails (
			account, id, message_id, thread_id,
			subject, sender, sender_email, sender_image_url,
			recipients, content, attachments, labels,
			is_read, is_starred, is_trash, is_archived,
			priority, requires_action, suggested_action,
			timestamp, version, last_modified, sync_status
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?, ?
		)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range emails {
		recipients, err := json.Marshal(e.Recipients)
		if err != nil {
			return fmt.Errorf("marshaling recipients for %s: %w", e.ID, err)
		}
		attachments, err := json.Marshal(e.Attachments)
		if err != nil {
			return fmt.Errorf("marshaling attachments for %s: %w", e.ID, err)
		}
		labels, err := json.Marshal(e.Labels)
		if err != nil {
			return fmt.Errorf("marshaling labels for %s: %w", e.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			account, e.ID, e.MessageID, e.ThreadID,
			e.Subject, e.Sender, e.SenderEmail, e.SenderProfileImageURL,
			string(recipients), e.Content, string(attachments), string(labels),
			boolToInt(e.IsRead), boolToInt(e.IsStarred),
			boolToInt(e.IsTrash), boolToInt(e.IsArchived),
			int(e.Priority), boolToInt(e.RequiresAction), string(e.SuggestedAction),
			e.Timestamp.UTC(), e.Version, e.LastModified.UTC(), string(e.SyncStatus),
		)
		if err != nil {
			return fmt.Errorf("inserting email %s: %w", e.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (account, last_refresh, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET
			last_refresh = excluded.last_refresh,
			updated_at = excluded.updated_at`,
		account, lastRefresh.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting account %s: %w", account, err)
	}

	return tx.Commit()
}

// LoadCollection returns the persisted collection for an account,
// ordered by timestamp descending, along with its last refresh
// checkpoint.
func (s *SQLiteStore) LoadCollection(
	ctx context.Context,
	account string,
) ([]model.Email, time.Time, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT * FROM emails
		WHERE account = ?
		ORDER BY timestamp DESC`,
		account,
	)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("querying collection for %s: %w", account, err)
	}
	defer rows.Close()

	var emails []model.Email
	for rows.Next() {
		email, err := scanEmail(rows)
		if err != nil {
			return nil, time.Time{}, err
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("scanning collection for %s: %w", account, err)
	}

	var lastRefresh sql.NullTime
	err = s.db.GetContext(ctx, &lastRefresh,
		"SELECT last_refresh FROM accounts WHERE account = ?", account,
	)
	if err != nil && err != sql.ErrNoRows {
		return nil, time.Time{}, fmt.Errorf("reading checkpoint for %s: %w", account, err)
	}

	checkpoint := time.Time{}
	if lastRefresh.Valid {
		checkpoint = lastRefresh.Time
	}

	return emails, checkpoint, nil
}

// DeleteCollection removes an account's persisted collection and its
// checkpoint.
func (s *SQLiteStore) DeleteCollection(ctx context.Context, account string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM emails WHERE account = ?", account); err != nil {
		return fmt.Errorf("deleting collection for %s: %w", account, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE account = ?", account); err != nil {
		return fmt.Errorf("deleting account %s: %w", account, err)
	}

	return tx.Commit()
}

// Accounts lists the accounts with persisted collections.
func (s *SQLiteStore) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	err := s.db.SelectContext(ctx, &accounts, "SELECT account FROM accounts ORDER BY account")
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	return accounts, nil
}

// emailRow mirrors the emails table layout for scanning.
type emailRow struct {
	Account         string    `db:"account"`
	ID              string    `db:"id"`
	MessageID       string    `db:"message_id"`
	ThreadID        string    `db:"thread_id"`
	Subject         string    `db:"subject"`
	Sender          string    `db:"sender"`
	SenderEmail     string    `db:"sender_email"`
	SenderImageURL  string    `db:"sender_image_url"`
	Recipients      string    `db:"recipients"`
	Content         string    `db:"content"`
	Attachments     string    `db:"attachments"`
	Labels          string    `db:"labels"`
	IsRead          int       `db:"is_read"`
	IsStarred       int       `db:"is_starred"`
	IsTrash         int       `db:"is_trash"`
	IsArchived      int       `db:"is_archived"`
	Priority        int       `db:"priority"`
	RequiresAction  int       `db:"requires_action"`
	SuggestedAction string    `db:"suggested_action"`
	Timestamp       time.Time `db:"timestamp"`
	Version         int       `db:"version"`
	LastModified    time.Time `db:"last_modified"`
	SyncStatus      string    `db:"sync_status"`
}

// scanEmail converts one row into an Email record.
func scanEmail(rows *sqlx.Rows) (model.Email, error) {
	var row emailRow
	if err := rows.StructScan(&row); err != nil {
		return model.Email{}, fmt.Errorf("scanning email row: %w", err)
	}

	var recipients []string
	if err := json.Unmarshal([]byte(row.Recipients), &recipients); err != nil {
		return model.Email{}, fmt.Errorf("unmarshaling recipients for %s: %w", row.ID, err)
	}
	var attachments []model.Attachment
	if err := json.Unmarshal([]byte(row.Attachments), &attachments); err != nil {
		return model.Email{}, fmt.Errorf("unmarshaling attachments for %s: %w", row.ID, err)
	}
	var labels []string
	if err := json.Unmarshal([]byte(row.Labels), &labels); err != nil {
		return model.Email{}, fmt.Errorf("unmarshaling labels for %s: %w", row.ID, err)
	}

	return model.Email{
		ID:                    row.ID,
		MessageID:             row.MessageID,
		ThreadID:              row.ThreadID,
		Subject:               row.Subject,
		Sender:                row.Sender,
		SenderEmail:           row.SenderEmail,
		SenderProfileImageURL: row.SenderImageURL,
		Recipients:            recipients,
		Content:               row.Content,
		Attachments:           attachments,
		Labels:                labels,
		IsRead:                row.IsRead != 0,
		IsStarred:             row.IsStarred != 0,
		IsTrash:               row.IsTrash != 0,
		IsArchived:            row.IsArchived != 0,
		Priority:              model.Priority(row.Priority),
		RequiresAction:        row.RequiresAction != 0,
		SuggestedAction:       model.Action(row.SuggestedAction),
		Timestamp:             row.Timestamp,
		Version:               row.Version,
		LastModified:          row.LastModified,
		SyncStatus:            model.SyncStatus(row.SyncStatus),
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
