package domain

import (
	"errors"
	"fmt"
	"math"
)

const (
	MaxIDLen          = 15
	MaxDescriptionLen = 30
	MaxQuantity       = math.MaxUint16
)

var (
	ErrEmptyID             = errors.New("empty id")
	ErrIDTooLong           = errors.New("id too long")
	ErrDescriptionTooLong  = errors.New("description too long")
	ErrDuplicateID         = errors.New("duplicate id")
	ErrMalformedRecordLine = errors.New("malformed record line")
)

// Record is one inventory line item. ID is the unique key and is never
// changed after the record is created.
type Record struct {
	ID          string
	Quantity    uint16
	Description string
}

func (r Record) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if len(r.ID) > MaxIDLen {
		return fmt.Errorf("%w: %q is %d bytes, max %d", ErrIDTooLong, r.ID, len(r.ID), MaxIDLen)
	}
	if len(r.Description) > MaxDescriptionLen {
		return fmt.Errorf("%w: %d bytes, max %d", ErrDescriptionTooLong, len(r.Description), MaxDescriptionLen)
	}
	return nil
}

// ParseError reports a bad line in a data file.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
