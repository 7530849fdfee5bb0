package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/rl1809/inventory/internal/core/domain"
)

const tableRule = "------------------------------  -------  -----------"

// Store is the ordered, in-memory record list for one session.
type Store struct {
	records []domain.Record
}

// NewStore builds a store in the given order. It rejects invalid records and
// duplicate ids; the flat file parser already reports these by line number,
// this check covers every other RecordRepository.
func NewStore(records []domain.Record) (*Store, error) {
	seen := make(map[string]struct{}, len(records))
	owned := make([]domain.Record, 0, len(records))

	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if _, ok := seen[rec.ID]; ok {
			return nil, fmt.Errorf("record %d: %w: %q", i+1, domain.ErrDuplicateID, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		owned = append(owned, rec)
	}

	return &Store{records: owned}, nil
}

func (s *Store) Len() int {
	return len(s.records)
}

// Find returns the first record whose id matches exactly, or nil.
func (s *Store) Find(id string) *domain.Record {
	for i := range s.records {
		if s.records[i].ID == id {
			return &s.records[i]
		}
	}
	return nil
}

func (s *Store) CanAdd(rec *domain.Record, amount uint16) bool {
	return int(rec.Quantity)+int(amount) <= domain.MaxQuantity
}

// AddQuantity adds unconditionally. Callers check CanAdd first.
func (s *Store) AddQuantity(rec *domain.Record, amount uint16) {
	rec.Quantity += amount
}

func (s *Store) CanRemove(rec *domain.Record, amount uint16) bool {
	return rec.Quantity >= amount
}

// RemoveQuantity subtracts unconditionally. Callers check CanRemove first;
// skipping the check wraps the quantity.
func (s *Store) RemoveQuantity(rec *domain.Record, amount uint16) {
	rec.Quantity -= amount
}

// Records returns a copy of the records in current order.
func (s *Store) Records() []domain.Record {
	out := make([]domain.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Render writes the inventory table: a header, a rule, then one row per
// record in current order.
func (s *Store) Render(w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%6s %30s %10s\n", "DESC", "QTY", "ID")
	sb.WriteString(tableRule)
	sb.WriteString("\n")
	for _, rec := range s.records {
		fmt.Fprintf(&sb, "%-30.30s %7d %12.16s\n", rec.Description, rec.Quantity, rec.ID)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
