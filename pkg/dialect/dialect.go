// Package dialect describes the syntax variations of supported SQL backends:
// identifier and string quoting, placeholder style, join support, and the
// mapping from logical function names to dialect spellings. Concrete dialects
// register themselves in the package registry (see builtin.go).
package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (DuckDB, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
)

// FuncKind classifies a mapped function.
type FuncKind int

const (
	// FuncScalar is a plain scalar function.
	FuncScalar FuncKind = iota
	// FuncAggregate collapses many rows to one value.
	FuncAggregate
)

// Function maps a logical function name to its dialect spelling.
type Function struct {
	// SQLName is the dialect spelling (e.g., mean -> AVG).
	SQLName string

	// Kind classifies the function.
	Kind FuncKind

	// Prefix is emitted before the first argument (DISTINCT for n_distinct).
	Prefix string
}

// Dialect holds the static configuration for one SQL backend.
type Dialect struct {
	// Name is the dialect identifier (e.g., "duckdb", "postgres").
	Name string

	// IdentQuote is the identifier quote character (").
	IdentQuote string

	// StringQuote is the string literal quote character (').
	StringQuote string

	// DefaultSchema is the schema used for unqualified names
	// ("main" for DuckDB and SQLite, "public" for Postgres).
	DefaultSchema string

	// Placeholder defines how query parameters are formatted.
	Placeholder PlaceholderStyle

	// SupportsFullJoin reports whether FULL JOIN compiles for this dialect.
	SupportsFullJoin bool

	// SupportsSemiAntiJoin reports whether the dialect has native SEMI JOIN
	// and ANTI JOIN syntax. Without it, semi and anti joins compile to
	// EXISTS / NOT EXISTS predicates.
	SupportsSemiAntiJoin bool

	// SupportsHavingAlias reports whether HAVING may reference SELECT-list
	// aliases (DuckDB, SQLite). Without it, HAVING predicates re-expand the
	// alias to its defining expression (PostgreSQL).
	SupportsHavingAlias bool

	// Functions maps logical names to dialect spellings. Logical names not
	// present here are unsupported for the dialect.
	Functions map[string]Function

	// Reserved lists keywords that force identifier quoting (lowercase).
	Reserved []string
}

// FunctionFor looks up the dialect spelling of a logical function name.
func (d *Dialect) FunctionFor(logical string) (Function, bool) {
	f, ok := d.Functions[strings.ToLower(logical)]
	return f, ok
}

// QuoteIdent quotes an identifier only when it needs quoting: anything that
// is not a plain lowercase identifier, or that is a reserved word.
func (d *Dialect) QuoteIdent(name string) string {
	if d.identNeedsQuoting(name) {
		escaped := strings.ReplaceAll(name, d.IdentQuote, d.IdentQuote+d.IdentQuote)
		return d.IdentQuote + escaped + d.IdentQuote
	}
	return name
}

// QuoteString quotes a string literal, doubling embedded quote characters.
func (d *Dialect) QuoteString(s string) string {
	escaped := strings.ReplaceAll(s, d.StringQuote, d.StringQuote+d.StringQuote)
	return d.StringQuote + escaped + d.StringQuote
}

// FormatPlaceholder returns the parameter placeholder for 1-based index n.
func (d *Dialect) FormatPlaceholder(n int) string {
	if d.Placeholder == PlaceholderDollar {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// WithFunctions returns a copy of the dialect with the given logical-name
// mappings merged in. The receiver is not modified.
func (d *Dialect) WithFunctions(fns map[string]Function) *Dialect {
	out := *d
	out.Functions = make(map[string]Function, len(d.Functions)+len(fns))
	for k, v := range d.Functions {
		out.Functions[k] = v
	}
	for k, v := range fns {
		out.Functions[strings.ToLower(k)] = v
	}
	return &out
}

func (d *Dialect) identNeedsQuoting(name string) bool {
	if name == "" {
		return true
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return true
			}
		default:
			return true
		}
	}
	for _, w := range d.Reserved {
		if name == w {
			return true
		}
	}
	return false
}

// UnsupportedOperationError reports an operation that has no translation for
// the requested dialect.
type UnsupportedOperationError struct {
	Operation string
	Dialect   string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s is not supported in %s dialect", e.Operation, e.Dialect)
}
