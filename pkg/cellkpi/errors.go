package cellkpi

import (
	"errors"
	"fmt"

	"github.com/blctm/gigagreen/pkg/cellkpi/kpi"
	"github.com/blctm/gigagreen/pkg/cellkpi/normalize"
	"github.com/blctm/gigagreen/pkg/cellkpi/parser"
)

// Re-exported sentinels for callers that only import this package.
var (
	ErrNotTabular    = parser.ErrNotTabular
	ErrSheetNotFound = parser.ErrSheetNotFound
	ErrEmptyTable    = normalize.ErrEmptyTable
	ErrEmptyFilename = kpi.ErrEmptyFilename
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageRead       Stage = "read"
	StageNormalize  Stage = "normalize"
	StageExtract    Stage = "extract"
	StageAccumulate Stage = "accumulate"
)

// FileError represents a failure to process one file.
type FileError struct {
	File  string
	Stage Stage
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.File, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError creates a new FileError.
func NewFileError(file string, stage Stage, err error) *FileError {
	return &FileError{
		File:  file,
		Stage: stage,
		Err:   err,
	}
}

// IsDataError reports whether err is a per-file data problem after which a
// batch continues with the next file. Other errors abort a batch.
func IsDataError(err error) bool {
	var (
		missing   *normalize.MissingColumnError
		coercion  *normalize.TypeCoercionError
		shortRows *kpi.InsufficientRowsError
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &coercion), errors.As(err, &shortRows):
		return true
	case errors.Is(err, ErrSheetNotFound), errors.Is(err, ErrEmptyTable), errors.Is(err, ErrEmptyFilename):
		return true
	}
	return false
}
