// Package compile turns a lazy relation graph into a single SQL SELECT
// statement. Clauses are emitted in fixed order (SELECT, FROM, WHERE,
// GROUP BY, HAVING, ORDER BY) and the compiler flattens into one SELECT
// level whenever it can; a subquery is introduced only when a clause would
// otherwise reference a column that is not yet defined at that level.
package compile

import (
	"fmt"

	"github.com/leapstack-labs/lazyrel/pkg/dialect"
	"github.com/leapstack-labs/lazyrel/pkg/rel"
)

// Query is the result of compiling a relation: the SQL text plus the ordered
// output column names. A Query is built per compile call and never cached.
type Query struct {
	SQL     string
	Columns []string
}

// Compile walks the relation graph and emits one SELECT statement for the
// given dialect. Compiling the same graph twice yields byte-identical SQL.
func Compile(r *rel.Relation, d *dialect.Dialect) (*Query, error) {
	if r == nil {
		return nil, fmt.Errorf("compile: relation is required")
	}
	if d == nil {
		return nil, fmt.Errorf("compile: dialect is required")
	}
	c := &compiler{dialect: d}
	s, err := c.build(r)
	if err != nil {
		return nil, err
	}
	sql, err := c.render(s)
	if err != nil {
		return nil, err
	}
	return &Query{SQL: sql, Columns: r.Schema()}, nil
}

// colDef is one entry of a level's SELECT list. A nil expr is a plain
// passthrough of the column; a bare column ref with a different name is an
// aliased passthrough; anything else is computed.
type colDef struct {
	name string
	expr *rel.Expr
}

func (d colDef) computed() bool {
	if d.expr == nil {
		return false
	}
	return d.expr.Kind() != rel.ExprColumn
}

func (d colDef) aliased() bool {
	return d.expr != nil && d.expr.Kind() == rel.ExprColumn && d.expr.Name() != d.name
}

// underlying returns the source column a passthrough def reads from.
func (d colDef) underlying() string {
	if d.expr != nil && d.expr.Kind() == rel.ExprColumn {
		return d.expr.Name()
	}
	return d.name
}

type joinClause struct {
	kind  rel.JoinKind
	table string // bare right-side table, or
	sub   *level // wrapped right side
	alias string
	using []string
}

// level is one SELECT/FROM nesting level under construction.
type level struct {
	fromTable string
	fromSub   *level
	alias     string

	joins []joinClause

	// columns nil means every schema column passes through untouched.
	columns []colDef

	where      []*rel.Expr
	rawWhere   []string // EXISTS rewrites for semi/anti joins
	groupBy    []string
	having     []*rel.Expr
	orderBy    []rel.SortKey
	aggregated bool

	schema []string
}

type compiler struct {
	dialect *dialect.Dialect
	aliasN  int
}

func (c *compiler) nextAlias() string {
	c.aliasN++
	return fmt.Sprintf("q%02d", c.aliasN)
}

// wrap pushes the current level into a FROM subquery so that its SELECT-list
// definitions become plain columns for the new outer level.
func (c *compiler) wrap(s *level) *level {
	return &level{
		fromSub: s,
		alias:   c.nextAlias(),
		schema:  append([]string(nil), s.schema...),
	}
}

func (c *compiler) build(r *rel.Relation) (*level, error) {
	if r.Op() == rel.OpTable {
		return &level{fromTable: r.TableName(), schema: r.Schema()}, nil
	}
	if r.Op() == rel.OpGroupBy {
		return nil, fmt.Errorf("compile: relation has a pending group_by without summarize")
	}

	s, err := c.build(r.Source())
	if err != nil {
		return nil, err
	}

	switch r.Op() {
	case rel.OpSelect:
		return c.applySelect(s, r)
	case rel.OpMutate:
		return c.applyMutate(s, r)
	case rel.OpRename:
		return c.applyRename(s, r)
	case rel.OpRelocate:
		return c.applyRelocate(s, r)
	case rel.OpFilter:
		return c.applyFilter(s, r)
	case rel.OpSummarize:
		return c.applySummarize(s, r)
	case rel.OpArrange:
		return c.applyArrange(s, r)
	case rel.OpJoin:
		return c.applyJoin(s, r)
	default:
		return nil, fmt.Errorf("compile: unhandled relational operator %d", r.Op())
	}
}

// defs materializes the level's SELECT list, expanding a nil column list into
// plain passthrough defs. The returned slice is a copy.
func (s *level) defs() []colDef {
	if s.columns != nil {
		return append([]colDef(nil), s.columns...)
	}
	out := make([]colDef, len(s.schema))
	for i, name := range s.schema {
		out[i] = colDef{name: name}
	}
	return out
}

func (s *level) defFor(name string) (colDef, bool) {
	for _, d := range s.defs() {
		if d.name == name {
			return d, true
		}
	}
	return colDef{}, false
}

// refersToComputed reports whether any referenced column is defined by a
// computed expression at this level, which would make an in-level reference
// a forward reference under SQL clause ordering.
func (s *level) refersToComputed(refs []string) bool {
	for _, ref := range refs {
		if d, ok := s.defFor(ref); ok && d.computed() {
			return true
		}
	}
	return false
}

// orderByReferences reports whether a pending ORDER BY at this level names
// the column.
func (s *level) orderByReferences(name string) bool {
	for _, k := range s.orderBy {
		if k.Column == name {
			return true
		}
	}
	return false
}

// resolve rewrites column references through aliased passthrough defs so a
// predicate or definition can live at the same level as a rename.
func (s *level) resolve(e *rel.Expr) *rel.Expr {
	subst := map[string]string{}
	for _, d := range s.defs() {
		if d.aliased() {
			subst[d.name] = d.underlying()
		}
	}
	if len(subst) == 0 {
		return e
	}
	return rewriteColumns(e, subst)
}

func (c *compiler) applySelect(s *level, r *rel.Relation) (*level, error) {
	// Dropping a column that ORDER BY or HAVING still references would leave
	// the clause dangling, so wrap first.
	if len(s.orderBy) > 0 || len(s.having) > 0 {
		kept := map[string]bool{}
		for _, a := range r.Columns() {
			kept[a.Name] = true
		}
		wrap := false
		for _, k := range s.orderBy {
			d, ok := s.defFor(k.Column)
			if ok && d.computed() && !kept[k.Column] {
				wrap = true
				break
			}
		}
		for _, h := range s.having {
			for _, ref := range h.Columns() {
				if !kept[ref] {
					wrap = true
					break
				}
			}
		}
		if wrap {
			s = c.wrap(s)
		}
	}
	defs := make([]colDef, 0, len(r.Columns()))
	for _, a := range r.Columns() {
		d, ok := s.defFor(a.Name)
		if !ok {
			return nil, fmt.Errorf("compile: select references unknown column %q", a.Name)
		}
		defs = append(defs, d)
	}
	out := *s
	out.columns = defs
	out.schema = r.Schema()
	return &out, nil
}

func (c *compiler) applyMutate(s *level, r *rel.Relation) (*level, error) {
	for _, a := range r.Columns() {
		// Shadowing a column a pending ORDER BY names would retarget the sort
		// to the new definition, since ORDER BY resolves output aliases first.
		if s.refersToComputed(a.Expr.Columns()) || s.aggregated || s.orderByReferences(a.Name) {
			s = c.wrap(s)
		}
		expr := s.resolve(a.Expr)
		defs := s.defs()
		replaced := false
		for i, d := range defs {
			if d.name == a.Name {
				defs[i] = colDef{name: a.Name, expr: expr}
				replaced = true
				break
			}
		}
		if !replaced {
			defs = append(defs, colDef{name: a.Name, expr: expr})
		}
		out := *s
		out.columns = defs
		out.schema = schemaOf(defs)
		s = &out
	}
	out := *s
	out.schema = r.Schema()
	return &out, nil
}

func (c *compiler) applyRename(s *level, r *rel.Relation) (*level, error) {
	defs := s.defs()
	for _, p := range r.Renames() {
		for i, d := range defs {
			if d.name == p.Old {
				expr := d.expr
				if expr == nil {
					expr = rel.Col(p.Old)
				}
				defs[i] = colDef{name: p.New, expr: expr}
				break
			}
		}
	}
	out := *s
	out.columns = defs
	out.schema = r.Schema()
	return &out, nil
}

func (c *compiler) applyRelocate(s *level, r *rel.Relation) (*level, error) {
	defs := s.defs()
	reordered := make([]colDef, 0, len(defs))
	for _, name := range r.Schema() {
		for _, d := range defs {
			if d.name == name {
				reordered = append(reordered, d)
				break
			}
		}
	}
	out := *s
	out.columns = reordered
	out.schema = r.Schema()
	return &out, nil
}

func (c *compiler) applyFilter(s *level, r *rel.Relation) (*level, error) {
	pred := r.Predicate()
	if s.aggregated {
		// The predicate can only reference group keys and aggregate aliases
		// at this level, which is exactly what HAVING resolves. Dialects that
		// do not resolve SELECT aliases in HAVING get the aliases re-expanded
		// to their defining expressions.
		if !c.dialect.SupportsHavingAlias {
			subst := map[string]*rel.Expr{}
			for _, d := range s.defs() {
				if d.computed() || d.aliased() {
					subst[d.name] = d.expr
				}
			}
			pred = rewriteExprs(pred, subst)
		}
		out := *s
		out.having = append(append([]*rel.Expr(nil), s.having...), pred)
		return &out, nil
	}
	if s.refersToComputed(pred.Columns()) {
		s = c.wrap(s)
	}
	out := *s
	out.where = append(append([]*rel.Expr(nil), s.where...), s.resolve(pred))
	return &out, nil
}

func (c *compiler) applySummarize(s *level, r *rel.Relation) (*level, error) {
	needsWrap := s.aggregated || len(s.orderBy) > 0
	if !needsWrap {
		for _, key := range r.GroupKeys() {
			if d, ok := s.defFor(key); ok && d.computed() {
				needsWrap = true
				break
			}
		}
	}
	if !needsWrap {
		for _, a := range r.Columns() {
			if s.refersToComputed(a.Expr.Columns()) {
				needsWrap = true
				break
			}
		}
	}
	if needsWrap {
		s = c.wrap(s)
	}

	defs := make([]colDef, 0, len(r.GroupKeys())+len(r.Columns()))
	for _, key := range r.GroupKeys() {
		if d, ok := s.defFor(key); ok {
			defs = append(defs, d)
		} else {
			defs = append(defs, colDef{name: key})
		}
	}
	for _, a := range r.Columns() {
		defs = append(defs, colDef{name: a.Name, expr: s.resolve(a.Expr)})
	}

	out := *s
	out.columns = defs
	out.groupBy = append([]string(nil), r.GroupKeys()...)
	out.having = nil
	out.orderBy = nil
	out.aggregated = true
	out.schema = r.Schema()
	return &out, nil
}

func (c *compiler) applyArrange(s *level, r *rel.Relation) (*level, error) {
	out := *s
	out.orderBy = append([]rel.SortKey(nil), r.SortKeys()...)
	return &out, nil
}

func (c *compiler) applyJoin(s *level, r *rel.Relation) (*level, error) {
	j := r.Join()

	if j.Kind == rel.JoinFull && !c.dialect.SupportsFullJoin {
		return nil, &dialect.UnsupportedOperationError{Operation: "FULL JOIN", Dialect: c.dialect.Name}
	}

	right, err := c.build(j.Other)
	if err != nil {
		return nil, err
	}

	if (j.Kind == rel.JoinSemi || j.Kind == rel.JoinAnti) && !c.dialect.SupportsSemiAntiJoin {
		return c.applyExistsJoin(s, right, j)
	}

	if !s.bare() {
		s = c.wrap(s)
	}

	jc := joinClause{kind: j.Kind, using: append([]string(nil), j.Using...)}
	if right.bare() {
		jc.table = right.fromTable
	} else {
		jc.sub = right
		jc.alias = c.nextAlias()
	}

	out := &level{
		fromTable: s.fromTable,
		fromSub:   s.fromSub,
		alias:     s.alias,
		joins:     []joinClause{jc},
		schema:    r.Schema(),
	}
	return out, nil
}

// applyExistsJoin rewrites a semi or anti join as an EXISTS / NOT EXISTS
// predicate for dialects without native SEMI/ANTI syntax.
func (c *compiler) applyExistsJoin(s *level, right *level, j *rel.JoinSpec) (*level, error) {
	if !s.bare() {
		s = c.wrap(s)
	}
	leftName := s.fromTable
	if leftName == "" {
		leftName = s.alias
	}
	rightAlias := c.nextAlias()

	var rightFrom string
	if right.bare() {
		rightFrom = c.dialect.QuoteIdent(right.fromTable)
	} else {
		sub, err := c.render(right)
		if err != nil {
			return nil, err
		}
		rightFrom = "(" + sub + ")"
	}

	cond := ""
	for i, key := range j.Using {
		if i > 0 {
			cond += " AND "
		}
		cond += fmt.Sprintf("%s.%s = %s.%s",
			rightAlias, c.dialect.QuoteIdent(key),
			c.dialect.QuoteIdent(leftName), c.dialect.QuoteIdent(key))
	}

	keyword := "EXISTS"
	if j.Kind == rel.JoinAnti {
		keyword = "NOT EXISTS"
	}
	raw := fmt.Sprintf("%s (SELECT 1 FROM %s AS %s WHERE %s)", keyword, rightFrom, rightAlias, cond)

	out := *s
	out.rawWhere = append(append([]string(nil), s.rawWhere...), raw)
	return &out, nil
}

// bare reports whether the level is nothing but a table scan and can stay
// inline as a join side.
func (s *level) bare() bool {
	return s.fromTable != "" &&
		len(s.joins) == 0 && s.columns == nil &&
		len(s.where) == 0 && len(s.rawWhere) == 0 &&
		len(s.groupBy) == 0 && len(s.having) == 0 &&
		len(s.orderBy) == 0 && !s.aggregated
}

func schemaOf(defs []colDef) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.name
	}
	return out
}

// rewriteColumns returns a copy of the tree with column references renamed
// per subst. Nodes without substitutions are shared, not copied.
func rewriteColumns(e *rel.Expr, subst map[string]string) *rel.Expr {
	exprs := make(map[string]*rel.Expr, len(subst))
	for from, to := range subst {
		exprs[from] = rel.Col(to)
	}
	return rewriteExprs(e, exprs)
}

// rewriteExprs returns a copy of the tree with column references replaced by
// whole expressions per subst. Nodes without substitutions are shared, not
// copied.
func rewriteExprs(e *rel.Expr, subst map[string]*rel.Expr) *rel.Expr {
	if e == nil {
		return nil
	}
	if e.Kind() == rel.ExprColumn {
		if to, ok := subst[e.Name()]; ok {
			return to
		}
		return e
	}
	args := e.Args()
	changed := false
	newArgs := make([]*rel.Expr, len(args))
	for i, a := range args {
		newArgs[i] = rewriteExprs(a, subst)
		if newArgs[i] != a {
			changed = true
		}
	}
	if !changed {
		return e
	}
	return rel.Rebuild(e, newArgs)
}
