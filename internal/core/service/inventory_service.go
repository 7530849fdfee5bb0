package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/port"
)

var (
	ErrUnknownItem          = errors.New("unknown item")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrQuantityOverflow     = errors.New("quantity overflow")
)

type Option func(*InventoryService)

// WithMirrors registers secondary stores that receive a copy of the records
// after every successful save.
func WithMirrors(mirrors ...port.SnapshotMirror) Option {
	return func(s *InventoryService) {
		s.mirrors = append(s.mirrors, mirrors...)
	}
}

func WithJournal(journal port.Journal) Option {
	return func(s *InventoryService) {
		s.journal = journal
	}
}

func WithSessionID(id string) Option {
	return func(s *InventoryService) {
		s.sessionID = id
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *InventoryService) {
		s.logger = logger
	}
}

type InventoryService struct {
	store     *Store
	repo      port.RecordRepository
	mirrors   []port.SnapshotMirror
	journal   port.Journal
	sessionID string
	logger    *zap.Logger
	now       func() time.Time
}

// NewInventoryService loads every record from repo into a fresh Store.
func NewInventoryService(ctx context.Context, repo port.RecordRepository, opts ...Option) (*InventoryService, error) {
	s := &InventoryService{
		repo:   repo,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessionID == "" {
		s.sessionID = uuid.NewString()
	}

	records, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	s.store, err = NewStore(records)
	if err != nil {
		return nil, fmt.Errorf("build store: %w", err)
	}

	s.logger.Info("inventory loaded", zap.Int("records", s.store.Len()))
	return s, nil
}

func (s *InventoryService) Store() *Store {
	return s.store
}

func (s *InventoryService) SessionID() string {
	return s.sessionID
}

func (s *InventoryService) Add(ctx context.Context, itemID string, quantity uint16) error {
	rec := s.store.Find(itemID)
	if rec == nil {
		return ErrUnknownItem
	}
	if !s.store.CanAdd(rec, quantity) {
		return fmt.Errorf("%w: %d + %d exceeds %d", ErrQuantityOverflow, rec.Quantity, quantity, domain.MaxQuantity)
	}

	s.store.AddQuantity(rec, quantity)
	s.record(ctx, domain.VerbAdd, rec, quantity)
	return nil
}

func (s *InventoryService) Remove(ctx context.Context, itemID string, quantity uint16) error {
	rec := s.store.Find(itemID)
	if rec == nil {
		return fmt.Errorf("%w: %w", ErrInsufficientQuantity, ErrUnknownItem)
	}
	if !s.store.CanRemove(rec, quantity) {
		return ErrInsufficientQuantity
	}

	s.store.RemoveQuantity(rec, quantity)
	s.record(ctx, domain.VerbRemove, rec, quantity)
	return nil
}

func (s *InventoryService) Print(w io.Writer) error {
	return s.store.Render(w)
}

// Save persists the records through the repository, then copies them to
// every mirror. Mirror failures are logged and do not fail the save.
func (s *InventoryService) Save(ctx context.Context) error {
	records := s.store.Records()

	if err := s.repo.Save(ctx, records); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	s.logger.Info("inventory saved", zap.Int("records", len(records)))

	for _, m := range s.mirrors {
		if err := m.Mirror(ctx, records); err != nil {
			s.logger.Warn("mirror failed", zap.String("mirror", fmt.Sprintf("%T", m)), zap.Error(err))
		}
	}

	return nil
}

func (s *InventoryService) record(ctx context.Context, verb domain.Verb, rec *domain.Record, quantity uint16) {
	if s.journal == nil {
		return
	}

	entry := domain.JournalEntry{
		ID:        uuid.NewString(),
		SessionID: s.sessionID,
		Verb:      verb,
		ItemID:    rec.ID,
		Quantity:  quantity,
		ResultQty: rec.Quantity,
		CreatedAt: s.now(),
	}
	if err := s.journal.Append(ctx, entry); err != nil {
		s.logger.Warn("journal append failed", zap.String("item_id", rec.ID), zap.Error(err))
	}
}
