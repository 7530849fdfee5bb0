package port

import (
	"context"

	"github.com/rl1809/inventory/internal/core/domain"
)

type RecordRepository interface {
	// Load returns every record in stored order
	Load(ctx context.Context) ([]domain.Record, error)

	// Save replaces the stored records; a failed save leaves the previous copy intact
	Save(ctx context.Context, records []domain.Record) error
}
