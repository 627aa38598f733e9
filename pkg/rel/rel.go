// Package rel provides the lazy relation builder: an immutable chain of
// relational operators (select, mutate, filter, group_by/summarize, arrange,
// joins) over a named source table. Operators validate column references
// against the current output schema and extend the chain without executing
// anything; compilation to SQL lives in pkg/compile and execution in
// pkg/bridge.
package rel

// OpKind discriminates relation nodes.
type OpKind int

// OpKind constants for relational operators.
const (
	OpTable OpKind = iota
	OpSelect
	OpMutate
	OpRename
	OpRelocate
	OpFilter
	OpGroupBy
	OpSummarize
	OpArrange
	OpJoin
)

// JoinKind identifies a join variant.
type JoinKind int

// JoinKind constants for the supported join variants.
const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinFull
	JoinSemi
	JoinAnti
)

// String returns the SQL keyword spelling of the join kind.
func (k JoinKind) String() string {
	switch k {
	case JoinInner:
		return "INNER"
	case JoinLeft:
		return "LEFT"
	case JoinFull:
		return "FULL"
	case JoinSemi:
		return "SEMI"
	case JoinAnti:
		return "ANTI"
	default:
		return "UNKNOWN"
	}
}

// Assignment binds an output column name to its defining expression.
type Assignment struct {
	Name string
	Expr *Expr
}

// As builds an Assignment for Mutate and Summarize.
func As(name string, e *Expr) Assignment {
	return Assignment{Name: name, Expr: e}
}

// SortKey names an ordering column and direction for Arrange.
type SortKey struct {
	Column string
	Desc   bool
}

// Asc sorts ascending on a column.
func Asc(column string) SortKey { return SortKey{Column: column} }

// Desc sorts descending on a column.
func Desc(column string) SortKey { return SortKey{Column: column, Desc: true} }

// RenamePair maps a new output column name to an existing column.
type RenamePair struct {
	New string
	Old string
}

// To builds a RenamePair for Rename.
func To(newName, oldName string) RenamePair {
	return RenamePair{New: newName, Old: oldName}
}

// JoinSpec describes a join against another relation using shared key
// columns (USING semantics).
type JoinSpec struct {
	Kind  JoinKind
	Other *Relation
	Using []string
}

// Relation is one node in a lazy relational expression. Relations are
// immutable: every operator returns a new Relation wrapping the receiver as
// its source. A Relation carries its own output schema so operators can
// validate references without touching a database.
type Relation struct {
	op     OpKind
	source *Relation

	table   string       // OpTable
	cols    []Assignment // OpSelect, OpMutate, OpSummarize
	renames []RenamePair // OpRename
	order   []string     // OpRelocate
	pred    *Expr        // OpFilter
	keys    []string     // OpGroupBy
	sort    []SortKey    // OpArrange
	join    *JoinSpec    // OpJoin

	schema  []string
	grouped bool // group keys set, summarize not yet applied
}

// Table returns a root relation over a named table with the given output
// columns. The column list is the schema every downstream operator validates
// against; pkg/bridge can discover it from the database instead.
func Table(name string, columns ...string) *Relation {
	return &Relation{
		op:     OpTable,
		table:  name,
		schema: append([]string(nil), columns...),
	}
}

// Schema returns the relation's output column names in order.
func (r *Relation) Schema() []string {
	return append([]string(nil), r.schema...)
}

// ---------- Accessors (used by the compiler) ----------

// Op returns the operator this node represents.
func (r *Relation) Op() OpKind { return r.op }

// Source returns the relation this node was built from (nil for OpTable).
func (r *Relation) Source() *Relation { return r.source }

// TableName returns the source table name for OpTable nodes.
func (r *Relation) TableName() string { return r.table }

// Columns returns the output column assignments for OpSelect, OpMutate and
// OpSummarize nodes. Callers must not modify the slice.
func (r *Relation) Columns() []Assignment { return r.cols }

// Renames returns the rename pairs for OpRename nodes.
func (r *Relation) Renames() []RenamePair { return r.renames }

// RelocateOrder returns the requested front columns for OpRelocate nodes.
func (r *Relation) RelocateOrder() []string { return r.order }

// Predicate returns the filter predicate for OpFilter nodes.
func (r *Relation) Predicate() *Expr { return r.pred }

// GroupKeys returns the grouping keys for OpGroupBy and OpSummarize nodes.
func (r *Relation) GroupKeys() []string { return r.keys }

// SortKeys returns the ordering keys for OpArrange nodes.
func (r *Relation) SortKeys() []SortKey { return r.sort }

// Join returns the join specification for OpJoin nodes.
func (r *Relation) Join() *JoinSpec { return r.join }

// Grouped reports whether the relation has pending group keys awaiting a
// Summarize.
func (r *Relation) Grouped() bool { return r.grouped }

func (r *Relation) hasColumn(name string) bool {
	for _, c := range r.schema {
		if c == name {
			return true
		}
	}
	return false
}
