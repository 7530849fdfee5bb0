package port

import (
	"context"

	"github.com/rl1809/inventory/internal/core/domain"
)

type Journal interface {
	// Append records an acknowledged quantity change
	Append(ctx context.Context, entry domain.JournalEntry) error
}
