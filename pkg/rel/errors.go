package rel

import (
	"fmt"
	"strings"
)

// SchemaError reports a reference to a column that is not visible in the
// output schema of the relation an operator was applied to.
type SchemaError struct {
	// Op is the operator that rejected the reference (e.g., "select", "filter").
	Op string

	// Column is the missing or conflicting column name.
	Column string

	// Available lists the columns that were visible when the reference failed.
	Available []string

	// Message overrides the default formatting when set (ambiguity, duplicates).
	Message string
}

func (e *SchemaError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: unknown column %q (visible columns: %s)",
		e.Op, e.Column, strings.Join(e.Available, ", "))
}

func unknownColumn(op, column string, available []string) *SchemaError {
	return &SchemaError{Op: op, Column: column, Available: available}
}
