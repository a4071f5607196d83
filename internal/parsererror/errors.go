// Package parsererror defines the error taxonomy of statement imports and
// category mapping files.
package parsererror

import (
	"errors"
	"fmt"
)

// Causes of a FatalImportError.
var (
	ErrUnreadableFile      = errors.New("file cannot be read")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	ErrUndecodable         = errors.New("bytes cannot be decoded with the configured encoding")
	ErrEmptyFile           = errors.New("no header row found")
	ErrMissingColumn       = errors.New("required column missing from header")
)

// ErrMissingMappingKey is the cause of a MappingFormatError when the
// category_mapping key or the keyword/category columns are absent.
var ErrMissingMappingKey = errors.New("required key or column missing")

// FatalImportError aborts an import before any row is processed. No ledger
// writes happen once it is returned.
type FatalImportError struct {
	FilePath string
	Reason   string
	Err      error
}

func (e *FatalImportError) Error() string {
	if e.FilePath == "" {
		return fmt.Sprintf("import failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("import of '%s' failed: %s: %v", e.FilePath, e.Reason, e.Err)
}

func (e *FatalImportError) Unwrap() error {
	return e.Err
}

// RowParseError reports one statement row that could not be converted. The
// row is skipped and counted; the batch continues.
type RowParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("line %d: failed to parse %s='%s': %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *RowParseError) Unwrap() error {
	return e.Err
}

// MappingFormatError reports a malformed mapping file. The in-memory mapping
// is left untouched when it is returned.
type MappingFormatError struct {
	FilePath string
	Format   string
	Msg      string
	Err      error
}

func (e *MappingFormatError) Error() string {
	return fmt.Sprintf("invalid %s mapping file '%s': %s: %v", e.Format, e.FilePath, e.Msg, e.Err)
}

func (e *MappingFormatError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed ledger write.
type PersistenceError struct {
	Operation string
	Line      int
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ledger %s failed for line %d: %v", e.Operation, e.Line, e.Err)
	}
	return fmt.Sprintf("ledger %s failed: %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err aborts a whole import.
func IsFatal(err error) bool {
	var fatal *FatalImportError
	return errors.As(err, &fatal)
}
