package normalize

import "fmt"

// MissingColumnError reports a required source column absent from the table.
type MissingColumnError struct {
	Schema string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s report: required column %q not found", e.Schema, e.Column)
}
