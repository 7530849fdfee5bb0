package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rl1809/inventory/internal/core/domain"
)

const createJournalTable = `
CREATE TABLE IF NOT EXISTS journal (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	verb        TEXT NOT NULL,
	item_id     TEXT NOT NULL,
	quantity    INTEGER NOT NULL,
	result_qty  INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_journal_session ON journal(session_id, created_at);`

// SQLiteJournal appends acknowledged quantity changes to a local database.
type SQLiteJournal struct {
	db *sql.DB
}

func OpenSQLiteJournal(ctx context.Context, path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createJournalTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal table: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) Append(ctx context.Context, entry domain.JournalEntry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO journal (id, session_id, verb, item_id, quantity, result_qty, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.SessionID, string(entry.Verb), entry.ItemID,
		int64(entry.Quantity), int64(entry.ResultQty), entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Entries returns a session's entries oldest first.
func (j *SQLiteJournal) Entries(ctx context.Context, sessionID string) ([]domain.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, verb, item_id, quantity, result_qty, created_at
		FROM journal WHERE session_id = ?
		ORDER BY created_at, rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			e         domain.JournalEntry
			verb      string
			qty       int64
			resultQty int64
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &verb, &e.ItemID, &qty, &resultQty, &createdAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Verb = domain.Verb(verb)
		e.Quantity = uint16(qty)
		e.ResultQty = uint16(resultQty)
		e.CreatedAt = time.Unix(0, createdAt)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Sessions lists every session id with at least one entry, oldest first.
func (j *SQLiteJournal) Sessions(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session_id FROM journal
		GROUP BY session_id
		ORDER BY MIN(created_at)`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
