package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rl1809/inventory/internal/core/domain"
)

const (
	fieldSeparator  = ":"
	defaultFileMode = 0o644
	tempFilePattern = ".inventory-*.tmp"
)

var ErrDataFileNotFound = errors.New("data file not found")

// FlatFileAdapter stores records as ID:QTY:DESC lines in a single text file.
type FlatFileAdapter struct {
	path string
}

func NewFlatFileAdapter(path string) *FlatFileAdapter {
	return &FlatFileAdapter{path: path}
}

func (f *FlatFileAdapter) Path() string {
	return f.path
}

func (f *FlatFileAdapter) Load(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDataFileNotFound, f.path)
	}
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	return ParseRecords(file)
}

// ParseRecords reads ID:QTY:DESC lines. Everything after the second colon is
// the description verbatim.
func ParseRecords(r io.Reader) ([]domain.Record, error) {
	var records []domain.Record
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		rec, err := parseLine(scanner.Text())
		if err != nil {
			return nil, &domain.ParseError{Line: lineNo, Err: err}
		}
		if _, ok := seen[rec.ID]; ok {
			return nil, &domain.ParseError{Line: lineNo, Err: fmt.Errorf("%w: %q", domain.ErrDuplicateID, rec.ID)}
		}
		seen[rec.ID] = struct{}{}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	return records, nil
}

func parseLine(line string) (domain.Record, error) {
	parts := strings.SplitN(line, fieldSeparator, 3)
	if len(parts) != 3 {
		return domain.Record{}, fmt.Errorf("%w: want ID:QTY:DESC", domain.ErrMalformedRecordLine)
	}

	qty, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: quantity %q: %w", domain.ErrMalformedRecordLine, parts[1], err)
	}

	rec := domain.Record{
		ID:          parts[0],
		Quantity:    uint16(qty),
		Description: parts[2],
	}
	if err := rec.Validate(); err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

// FormatRecords writes one ID:QTY:DESC line per record.
func FormatRecords(w io.Writer, records []domain.Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, "%s:%d:%s\n", rec.ID, rec.Quantity, rec.Description); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes to a temp file next to the data file and renames it into
// place, so readers see either the old file or the complete new one.
func (f *FlatFileAdapter) Save(ctx context.Context, records []domain.Record) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	mode := fs.FileMode(defaultFileMode)
	if info, statErr := os.Stat(f.path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err = FormatRecords(tmp, records); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}

	return nil
}
