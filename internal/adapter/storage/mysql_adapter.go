package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/inventory/internal/core/domain"
)

const createInventoryTable = `
CREATE TABLE IF NOT EXISTS inventory (
	item_id     VARCHAR(15) NOT NULL PRIMARY KEY,
	description VARCHAR(30) NOT NULL DEFAULT '',
	stock       INT UNSIGNED NOT NULL DEFAULT 0,
	version     INT NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// MySQLAdapter mirrors saved records into the inventory table.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createInventoryTable); err != nil {
		return fmt.Errorf("create inventory table: %w", err)
	}
	return nil
}

// Mirror upserts every record in one transaction, bumping version on each row.
func (m *MySQLAdapter) Mirror(ctx context.Context, records []domain.Record) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO inventory (item_id, description, stock, version, created_at, updated_at)
		VALUES (?, ?, ?, 0, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			description = VALUES(description),
			stock = VALUES(stock),
			version = version + 1,
			updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Description, rec.Quantity); err != nil {
			return fmt.Errorf("upsert %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// GetInventory returns the mirrored record and its version, or nil when the
// item has never been mirrored.
func (m *MySQLAdapter) GetInventory(ctx context.Context, itemID string) (*domain.Record, int, error) {
	var (
		rec     domain.Record
		version int
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT item_id, description, stock, version
		FROM inventory WHERE item_id = ?`, itemID,
	).Scan(&rec.ID, &rec.Description, &rec.Quantity, &version)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("query inventory: %w", err)
	}

	return &rec, version, nil
}
