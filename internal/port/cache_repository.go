package port

import (
	"context"

	"github.com/rl1809/inventory/internal/core/domain"
)

type SnapshotMirror interface {
	// Mirror copies the saved records to a secondary store
	Mirror(ctx context.Context, records []domain.Record) error
}
