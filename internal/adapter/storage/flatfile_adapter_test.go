package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory/internal/core/domain"
)

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inv.dat")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFlatFileLoad_PreservesFileOrder(t *testing.T) {
	path := writeDataFile(t, "A1:10:Widget\nA2:5:Gadget\nC3:0:Cog: metric, 12mm\n")

	records, err := NewFlatFileAdapter(path).Load(context.Background())
	require.NoError(t, err)

	want := []domain.Record{
		{ID: "A1", Quantity: 10, Description: "Widget"},
		{ID: "A2", Quantity: 5, Description: "Gadget"},
		{ID: "C3", Quantity: 0, Description: "Cog: metric, 12mm"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatFileLoad_NotFound(t *testing.T) {
	adapter := NewFlatFileAdapter(filepath.Join(t.TempDir(), "missing.dat"))

	_, err := adapter.Load(context.Background())
	assert.ErrorIs(t, err, ErrDataFileNotFound)
}

func TestFlatFileLoad_EmptyFile(t *testing.T) {
	records, err := NewFlatFileAdapter(writeDataFile(t, "")).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFlatFileLoad_MissingFinalNewline(t *testing.T) {
	records, err := NewFlatFileAdapter(writeDataFile(t, "A1:10:Widget\nA2:5:Gadget")).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseRecords_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
		wantErr error
	}{
		{"missing description field", "A1:10:Widget\nA2:5\n", 2, domain.ErrMalformedRecordLine},
		{"non-numeric quantity", "A1:ten:Widget\n", 1, domain.ErrMalformedRecordLine},
		{"negative quantity", "A1:-1:Widget\n", 1, domain.ErrMalformedRecordLine},
		{"quantity out of range", "A1:65536:Widget\n", 1, domain.ErrMalformedRecordLine},
		{"empty line", "A1:10:Widget\n\nA2:5:Gadget\n", 2, domain.ErrMalformedRecordLine},
		{"empty id", ":10:Widget\n", 1, domain.ErrEmptyID},
		{"id too long", strings.Repeat("I", 16) + ":1:Widget\n", 1, domain.ErrIDTooLong},
		{"description too long", "A1:1:" + strings.Repeat("d", 31) + "\n", 1, domain.ErrDescriptionTooLong},
		{"duplicate id", "A1:1:Widget\nA2:2:Gadget\nA1:3:Other\n", 3, domain.ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecords(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var perr *domain.ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestParseRecords_CRLFLineEndings(t *testing.T) {
	desc := strings.Repeat("d", 30)
	content := "A1:10:" + desc + "\r\nA2:5:Gadget\r\n"

	records, err := ParseRecords(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, desc, records[0].Description)
	assert.Equal(t, "Gadget", records[1].Description)
}

func TestParseRecords_BoundaryValues(t *testing.T) {
	content := strings.Repeat("I", 15) + ":65535:" + strings.Repeat("d", 30) + "\n" +
		"Z:0:\n"

	records, err := ParseRecords(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint16(65535), records[0].Quantity)
	assert.Equal(t, "", records[1].Description)
}

func TestFlatFileSave_RoundTripIsByteIdentical(t *testing.T) {
	content := "A1:10:Widget\nA2:5:Gadget\nC3:0:Cog: metric, 12mm\nZ9:65535:\n"
	path := writeDataFile(t, content)
	adapter := NewFlatFileAdapter(path)
	ctx := context.Background()

	records, err := adapter.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, adapter.Save(ctx, records))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestFlatFileSave_ReplacesContent(t *testing.T) {
	path := writeDataFile(t, "A1:10:Widget\nA2:5:Gadget\n")
	adapter := NewFlatFileAdapter(path)

	err := adapter.Save(context.Background(), []domain.Record{
		{ID: "A1", Quantity: 15, Description: "Widget"},
		{ID: "A2", Quantity: 2, Description: "Gadget"},
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A1:15:Widget\nA2:2:Gadget\n", string(got))
}

func TestFlatFileSave_LeavesNoTempFiles(t *testing.T) {
	path := writeDataFile(t, "A1:10:Widget\n")
	adapter := NewFlatFileAdapter(path)

	require.NoError(t, adapter.Save(context.Background(), []domain.Record{{ID: "A1", Quantity: 1, Description: "Widget"}}))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "inv.dat", entries[0].Name())
}

func TestFlatFileSave_PreservesFileMode(t *testing.T) {
	path := writeDataFile(t, "A1:10:Widget\n")
	require.NoError(t, os.Chmod(path, 0o640))

	require.NoError(t, NewFlatFileAdapter(path).Save(context.Background(), nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestFlatFileSave_FailedRenameCleansUp(t *testing.T) {
	dir := t.TempDir()

	// A directory in the data file's place makes the final rename fail.
	target := filepath.Join(dir, "inv.dat")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o644))

	err := NewFlatFileAdapter(target).Save(context.Background(), []domain.Record{{ID: "A1", Quantity: 99}})
	require.Error(t, err)

	kept, err := os.ReadFile(filepath.Join(target, "keep"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(kept))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be removed after a failed save")
}

func TestFlatFileSave_MissingDirectory(t *testing.T) {
	adapter := NewFlatFileAdapter(filepath.Join(t.TempDir(), "nope", "inv.dat"))

	err := adapter.Save(context.Background(), nil)
	assert.Error(t, err)
}

func TestFlatFile_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	adapter := NewFlatFileAdapter(writeDataFile(t, "A1:10:Widget\n"))

	_, err := adapter.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, adapter.Save(ctx, nil), context.Canceled)
}
