package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory/internal/core/domain"
)

func sampleRecords() []domain.Record {
	return []domain.Record{
		{ID: "A1", Quantity: 10, Description: "Widget"},
		{ID: "A2", Quantity: 5, Description: "Gadget"},
		{ID: "B7", Quantity: 0, Description: "Sprocket, large"},
	}
}

func TestNewStore_PreservesOrder(t *testing.T) {
	store, err := NewStore(sampleRecords())
	require.NoError(t, err)

	if diff := cmp.Diff(sampleRecords(), store.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestNewStore_RejectsDuplicateID(t *testing.T) {
	records := append(sampleRecords(), domain.Record{ID: "A1", Quantity: 1, Description: "again"})

	_, err := NewStore(records)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestNewStore_RejectsInvalidRecord(t *testing.T) {
	_, err := NewStore([]domain.Record{{ID: strings.Repeat("x", 16), Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrIDTooLong)
}

func TestFind(t *testing.T) {
	store, err := NewStore(sampleRecords())
	require.NoError(t, err)

	rec := store.Find("A2")
	require.NotNil(t, rec)
	assert.Equal(t, "Gadget", rec.Description)

	assert.Nil(t, store.Find("a2"), "lookup is case-sensitive")
	assert.Nil(t, store.Find("A"), "lookup needs an exact match")
}

func TestFind_ReturnsReferenceIntoStore(t *testing.T) {
	store, err := NewStore(sampleRecords())
	require.NoError(t, err)

	store.AddQuantity(store.Find("A1"), 5)
	assert.Equal(t, uint16(15), store.Find("A1").Quantity)
}

func TestQuantityChecks(t *testing.T) {
	store, err := NewStore([]domain.Record{{ID: "A1", Quantity: 65530}})
	require.NoError(t, err)
	rec := store.Find("A1")

	assert.True(t, store.CanAdd(rec, 5))
	assert.False(t, store.CanAdd(rec, 6))
	assert.True(t, store.CanRemove(rec, 65530))
	assert.False(t, store.CanRemove(rec, 65531))

	store.RemoveQuantity(rec, 30)
	assert.Equal(t, uint16(65500), rec.Quantity)
}

func TestRecords_ReturnsCopy(t *testing.T) {
	store, err := NewStore(sampleRecords())
	require.NoError(t, err)

	snapshot := store.Records()
	snapshot[0].Quantity = 999

	assert.Equal(t, uint16(10), store.Find("A1").Quantity)
}

func TestRender(t *testing.T) {
	store, err := NewStore([]domain.Record{
		{ID: "A1", Quantity: 15, Description: "Widget"},
		{ID: "A2", Quantity: 2, Description: "Gadget"},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.Render(&buf))

	want := "  DESC                            QTY         ID\n" +
		"------------------------------  -------  -----------\n" +
		"Widget                              15           A1\n" +
		"Gadget                               2           A2\n"
	assert.Equal(t, want, buf.String())
}

func TestRender_EmptyStoreHasHeaderOnly(t *testing.T) {
	store, err := NewStore(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.Render(&buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
}
