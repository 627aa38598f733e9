package rel

// ---------- Expression Types ----------

// ExprKind discriminates expression tree nodes.
type ExprKind int

// ExprKind constants for expression node types.
const (
	ExprColumn ExprKind = iota
	ExprLiteral
	ExprBinary
	ExprUnary
	ExprCall
	ExprCase
)

// LiteralKind discriminates literal values.
type LiteralKind int

// LiteralKind constants for literal value types.
const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitNull
)

// Expr is an immutable scalar or aggregate expression tree. Expressions are
// built with the package constructors (Col, Int, Float, Str, ...) and the
// fluent comparison/arithmetic methods; they are never mutated after
// construction.
type Expr struct {
	kind ExprKind

	// column reference or logical function name
	name string

	// literal payload
	lit      LiteralKind
	intVal   int64
	floatVal float64
	strVal   string
	boolVal  bool

	// binary/unary operator (SQL spelling: "+", ">=", "AND", "NOT", ...)
	op string

	// operands: binary uses args[0], args[1]; unary args[0];
	// case uses cond, then, else in order
	args []*Expr

	// aggregate function call (count, sum, mean, ...)
	aggregate bool

	// count(*) has no arguments
	star bool
}

// Col returns a reference to a column of the immediate source relation.
func Col(name string) *Expr {
	return &Expr{kind: ExprColumn, name: name}
}

// Int returns an integer literal. It renders without a decimal point.
func Int(v int64) *Expr {
	return &Expr{kind: ExprLiteral, lit: LitInt, intVal: v}
}

// Float returns a fractional literal. It always renders with a decimal
// point so the target database does not fall into integer division.
func Float(v float64) *Expr {
	return &Expr{kind: ExprLiteral, lit: LitFloat, floatVal: v}
}

// Str returns a string literal.
func Str(v string) *Expr {
	return &Expr{kind: ExprLiteral, lit: LitString, strVal: v}
}

// Bool returns a boolean literal.
func Bool(v bool) *Expr {
	return &Expr{kind: ExprLiteral, lit: LitBool, boolVal: v}
}

// Null returns the SQL NULL literal.
func Null() *Expr {
	return &Expr{kind: ExprLiteral, lit: LitNull}
}

// Call returns a scalar function call by logical name. The dialect maps the
// logical name to its SQL spelling at compile time.
func Call(name string, args ...*Expr) *Expr {
	return &Expr{kind: ExprCall, name: name, args: args}
}

// If returns a conditional expression (CASE WHEN cond THEN then ELSE els END).
func If(cond, then, els *Expr) *Expr {
	return &Expr{kind: ExprCase, args: []*Expr{cond, then, els}}
}

// ---------- Aggregates ----------

func aggCall(name string, args ...*Expr) *Expr {
	return &Expr{kind: ExprCall, name: name, args: args, aggregate: true}
}

// Count returns the count(*) aggregate.
func Count() *Expr {
	e := aggCall("count")
	e.star = true
	return e
}

// Sum returns the sum aggregate over an expression.
func Sum(e *Expr) *Expr { return aggCall("sum", e) }

// Mean returns the arithmetic mean aggregate over an expression.
func Mean(e *Expr) *Expr { return aggCall("mean", e) }

// Min returns the minimum aggregate over an expression.
func Min(e *Expr) *Expr { return aggCall("min", e) }

// Max returns the maximum aggregate over an expression.
func Max(e *Expr) *Expr { return aggCall("max", e) }

// NDistinct returns the distinct-count aggregate over an expression.
func NDistinct(e *Expr) *Expr { return aggCall("n_distinct", e) }

// Stddev returns the sample standard deviation aggregate over an expression.
func Stddev(e *Expr) *Expr { return aggCall("stddev", e) }

// ---------- Operators ----------

func binary(op string, l, r *Expr) *Expr {
	return &Expr{kind: ExprBinary, op: op, args: []*Expr{l, r}}
}

// Add returns e + o.
func (e *Expr) Add(o *Expr) *Expr { return binary("+", e, o) }

// Sub returns e - o.
func (e *Expr) Sub(o *Expr) *Expr { return binary("-", e, o) }

// Mul returns e * o.
func (e *Expr) Mul(o *Expr) *Expr { return binary("*", e, o) }

// Div returns e / o.
func (e *Expr) Div(o *Expr) *Expr { return binary("/", e, o) }

// Eq returns e = o.
func (e *Expr) Eq(o *Expr) *Expr { return binary("=", e, o) }

// Neq returns e <> o.
func (e *Expr) Neq(o *Expr) *Expr { return binary("<>", e, o) }

// Gt returns e > o.
func (e *Expr) Gt(o *Expr) *Expr { return binary(">", e, o) }

// Gte returns e >= o.
func (e *Expr) Gte(o *Expr) *Expr { return binary(">=", e, o) }

// Lt returns e < o.
func (e *Expr) Lt(o *Expr) *Expr { return binary("<", e, o) }

// Lte returns e <= o.
func (e *Expr) Lte(o *Expr) *Expr { return binary("<=", e, o) }

// And returns e AND o.
func (e *Expr) And(o *Expr) *Expr { return binary("AND", e, o) }

// Or returns e OR o.
func (e *Expr) Or(o *Expr) *Expr { return binary("OR", e, o) }

// IsNull returns e IS NULL.
func (e *Expr) IsNull() *Expr {
	return &Expr{kind: ExprUnary, op: "IS NULL", args: []*Expr{e}}
}

// Not returns NOT e.
func Not(e *Expr) *Expr {
	return &Expr{kind: ExprUnary, op: "NOT", args: []*Expr{e}}
}

// ---------- Accessors (used by the compiler) ----------

// Kind returns the node kind.
func (e *Expr) Kind() ExprKind { return e.kind }

// Name returns the column name (ExprColumn) or logical function name (ExprCall).
func (e *Expr) Name() string { return e.name }

// Op returns the operator spelling for binary and unary nodes.
func (e *Expr) Op() string { return e.op }

// Args returns the operand list. Callers must not modify it.
func (e *Expr) Args() []*Expr { return e.args }

// LiteralKind returns the literal kind for ExprLiteral nodes.
func (e *Expr) LiteralKind() LiteralKind { return e.lit }

// IntValue returns the payload of a LitInt literal.
func (e *Expr) IntValue() int64 { return e.intVal }

// FloatValue returns the payload of a LitFloat literal.
func (e *Expr) FloatValue() float64 { return e.floatVal }

// StringValue returns the payload of a LitString literal.
func (e *Expr) StringValue() string { return e.strVal }

// BoolValue returns the payload of a LitBool literal.
func (e *Expr) BoolValue() bool { return e.boolVal }

// IsAggregate reports whether the node is an aggregate function call.
func (e *Expr) IsAggregate() bool { return e.aggregate }

// IsStar reports whether the call takes no arguments (count(*)).
func (e *Expr) IsStar() bool { return e.star }

// Columns returns every column name referenced anywhere in the tree,
// in first-appearance order.
func (e *Expr) Columns() []string {
	var out []string
	seen := map[string]bool{}
	e.walkColumns(func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	})
	return out
}

// ContainsAggregate reports whether any node in the tree is an aggregate call.
func (e *Expr) ContainsAggregate() bool {
	if e == nil {
		return false
	}
	if e.aggregate {
		return true
	}
	for _, a := range e.args {
		if a.ContainsAggregate() {
			return true
		}
	}
	return false
}

// Rebuild returns a copy of e with its operand list replaced. It exists for
// tree rewrites in the compiler; the receiver is not modified.
func Rebuild(e *Expr, args []*Expr) *Expr {
	out := *e
	out.args = args
	return &out
}

func (e *Expr) walkColumns(fn func(string)) {
	if e == nil {
		return
	}
	if e.kind == ExprColumn {
		fn(e.name)
	}
	for _, a := range e.args {
		a.walkColumns(fn)
	}
}
