package grid

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the workbook does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrSheetNotFound indicates the requested sheet position is not in the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrUnsupportedFormat indicates the file is neither xlsx nor xls.
var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// LoadError represents a failure to load one sheet of a workbook.
type LoadError struct {
	Path  string
	Sheet int
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load sheet %d of %q: %v", e.Sheet, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
