package rel

import "fmt"

// ops.go - relational operators; each validates against the source schema
// and returns a new Relation without executing anything.

// Select keeps only the named columns, in the given order.
func (r *Relation) Select(columns ...string) (*Relation, error) {
	if err := r.requireUngrouped("select"); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	cols := make([]Assignment, 0, len(columns))
	for _, name := range columns {
		if !r.hasColumn(name) {
			return nil, unknownColumn("select", name, r.schema)
		}
		if seen[name] {
			return nil, &SchemaError{Op: "select", Column: name,
				Message: fmt.Sprintf("column %q selected twice", name)}
		}
		seen[name] = true
		cols = append(cols, Assignment{Name: name, Expr: Col(name)})
	}
	return &Relation{
		op:     OpSelect,
		source: r,
		cols:   cols,
		schema: append([]string(nil), columns...),
	}, nil
}

// Mutate adds computed columns. A definition may reference columns of the
// source and names defined earlier in the same call; redefining an existing
// name shadows it in place, new names are appended to the schema.
func (r *Relation) Mutate(assignments ...Assignment) (*Relation, error) {
	if err := r.requireUngrouped("mutate"); err != nil {
		return nil, err
	}
	visible := append([]string(nil), r.schema...)
	for _, a := range assignments {
		if a.Expr == nil {
			return nil, fmt.Errorf("mutate: column %q has no defining expression", a.Name)
		}
		if a.Expr.ContainsAggregate() {
			return nil, fmt.Errorf("mutate: column %q uses an aggregate; aggregates are only valid in summarize", a.Name)
		}
		for _, ref := range a.Expr.Columns() {
			if !contains(visible, ref) {
				return nil, unknownColumn("mutate", ref, visible)
			}
		}
		if !contains(visible, a.Name) {
			visible = append(visible, a.Name)
		}
	}
	return &Relation{
		op:     OpMutate,
		source: r,
		cols:   append([]Assignment(nil), assignments...),
		schema: visible,
	}, nil
}

// Rename gives existing columns new names. Later operators must use the new
// name; the old one is no longer visible.
func (r *Relation) Rename(pairs ...RenamePair) (*Relation, error) {
	if err := r.requireUngrouped("rename"); err != nil {
		return nil, err
	}
	schema := append([]string(nil), r.schema...)
	for _, p := range pairs {
		idx := indexOf(schema, p.Old)
		if idx < 0 {
			return nil, unknownColumn("rename", p.Old, r.schema)
		}
		if contains(schema, p.New) {
			return nil, &SchemaError{Op: "rename", Column: p.New,
				Message: fmt.Sprintf("renaming %q to %q collides with an existing column", p.Old, p.New)}
		}
		schema[idx] = p.New
	}
	return &Relation{
		op:      OpRename,
		source:  r,
		renames: append([]RenamePair(nil), pairs...),
		schema:  schema,
	}, nil
}

// Relocate moves the named columns to the front, in the given order; the
// remaining columns keep their relative order.
func (r *Relation) Relocate(columns ...string) (*Relation, error) {
	if err := r.requireUngrouped("relocate"); err != nil {
		return nil, err
	}
	front := make([]string, 0, len(columns))
	for _, name := range columns {
		if !r.hasColumn(name) {
			return nil, unknownColumn("relocate", name, r.schema)
		}
		if contains(front, name) {
			return nil, &SchemaError{Op: "relocate", Column: name,
				Message: fmt.Sprintf("column %q listed twice", name)}
		}
		front = append(front, name)
	}
	schema := append([]string(nil), front...)
	for _, name := range r.schema {
		if !contains(front, name) {
			schema = append(schema, name)
		}
	}
	return &Relation{
		op:     OpRelocate,
		source: r,
		order:  front,
		schema: schema,
	}, nil
}

// Filter keeps rows matching the predicate. The predicate may reference any
// column visible in the source's output schema, including summarize outputs.
func (r *Relation) Filter(pred *Expr) (*Relation, error) {
	if err := r.requireUngrouped("filter"); err != nil {
		return nil, err
	}
	if pred == nil {
		return nil, fmt.Errorf("filter: predicate is required")
	}
	if pred.ContainsAggregate() {
		return nil, fmt.Errorf("filter: predicate uses an aggregate; summarize first and filter on its output column")
	}
	for _, ref := range pred.Columns() {
		if !r.hasColumn(ref) {
			return nil, unknownColumn("filter", ref, r.schema)
		}
	}
	return &Relation{
		op:     OpFilter,
		source: r,
		pred:   pred,
		schema: append([]string(nil), r.schema...),
	}, nil
}

// GroupBy sets the grouping keys for a following Summarize. Grouping again
// before summarizing replaces the keys.
func (r *Relation) GroupBy(keys ...string) (*Relation, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("group_by: at least one key is required")
	}
	base := r
	if r.grouped {
		base = r.source
	}
	for _, key := range keys {
		if !base.hasColumn(key) {
			return nil, unknownColumn("group_by", key, base.schema)
		}
	}
	return &Relation{
		op:      OpGroupBy,
		source:  base,
		keys:    append([]string(nil), keys...),
		schema:  base.Schema(),
		grouped: true,
	}, nil
}

// Summarize collapses the relation to one row per group (or a single row when
// no GroupBy precedes it). The output schema is the group keys followed by
// the aggregate names, in order.
func (r *Relation) Summarize(aggregates ...Assignment) (*Relation, error) {
	if len(aggregates) == 0 {
		return nil, fmt.Errorf("summarize: at least one aggregate is required")
	}
	var keys []string
	base := r
	if r.grouped {
		keys = r.keys
		base = r.source
	}
	schema := append([]string(nil), keys...)
	for _, a := range aggregates {
		if a.Expr == nil {
			return nil, fmt.Errorf("summarize: column %q has no defining expression", a.Name)
		}
		for _, ref := range a.Expr.Columns() {
			if !base.hasColumn(ref) {
				return nil, unknownColumn("summarize", ref, base.schema)
			}
		}
		if contains(schema, a.Name) {
			return nil, &SchemaError{Op: "summarize", Column: a.Name,
				Message: fmt.Sprintf("output column %q defined twice", a.Name)}
		}
		schema = append(schema, a.Name)
	}
	return &Relation{
		op:     OpSummarize,
		source: base,
		keys:   append([]string(nil), keys...),
		cols:   append([]Assignment(nil), aggregates...),
		schema: schema,
	}, nil
}

// Arrange orders rows by the given keys. A later Arrange replaces an earlier
// one at compile time.
func (r *Relation) Arrange(keys ...SortKey) (*Relation, error) {
	if err := r.requireUngrouped("arrange"); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("arrange: at least one sort key is required")
	}
	for _, k := range keys {
		if !r.hasColumn(k.Column) {
			return nil, unknownColumn("arrange", k.Column, r.schema)
		}
	}
	return &Relation{
		op:     OpArrange,
		source: r,
		sort:   append([]SortKey(nil), keys...),
		schema: append([]string(nil), r.schema...),
	}, nil
}

// InnerJoin joins on shared key columns, keeping rows with matches on both
// sides.
func (r *Relation) InnerJoin(other *Relation, using ...string) (*Relation, error) {
	return r.joinWith(JoinInner, other, using)
}

// LeftJoin joins on shared key columns, keeping every left row.
func (r *Relation) LeftJoin(other *Relation, using ...string) (*Relation, error) {
	return r.joinWith(JoinLeft, other, using)
}

// FullJoin joins on shared key columns, keeping every row from both sides.
// Dialects without FULL JOIN support reject this at compile time.
func (r *Relation) FullJoin(other *Relation, using ...string) (*Relation, error) {
	return r.joinWith(JoinFull, other, using)
}

// SemiJoin keeps left rows that have a match on the right; the output schema
// is the left schema only.
func (r *Relation) SemiJoin(other *Relation, using ...string) (*Relation, error) {
	return r.joinWith(JoinSemi, other, using)
}

// AntiJoin keeps left rows that have no match on the right; the output schema
// is the left schema only.
func (r *Relation) AntiJoin(other *Relation, using ...string) (*Relation, error) {
	return r.joinWith(JoinAnti, other, using)
}

func (r *Relation) joinWith(kind JoinKind, other *Relation, using []string) (*Relation, error) {
	op := "join"
	if err := r.requireUngrouped(op); err != nil {
		return nil, err
	}
	if other == nil {
		return nil, fmt.Errorf("%s: other relation is required", op)
	}
	if other.grouped {
		return nil, fmt.Errorf("%s: other relation has a pending group_by without summarize", op)
	}
	if len(using) == 0 {
		return nil, fmt.Errorf("%s: at least one key column is required", op)
	}
	for _, key := range using {
		if !r.hasColumn(key) {
			return nil, unknownColumn(op, key, r.schema)
		}
		if !other.hasColumn(key) {
			return nil, unknownColumn(op, key, other.schema)
		}
	}

	schema := r.Schema()
	if kind == JoinInner || kind == JoinLeft || kind == JoinFull {
		for _, name := range other.schema {
			if contains(using, name) {
				continue
			}
			if contains(schema, name) {
				return nil, &SchemaError{Op: op, Column: name,
					Message: fmt.Sprintf("column %q exists on both sides and is not a join key", name)}
			}
			schema = append(schema, name)
		}
	}

	return &Relation{
		op:     OpJoin,
		source: r,
		join:   &JoinSpec{Kind: kind, Other: other, Using: append([]string(nil), using...)},
		schema: schema,
	}, nil
}

func (r *Relation) requireUngrouped(op string) error {
	if r.grouped {
		return fmt.Errorf("%s: relation has a pending group_by; call Summarize first", op)
	}
	return nil
}

func contains(list []string, s string) bool {
	return indexOf(list, s) >= 0
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
