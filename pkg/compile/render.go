package compile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/lazyrel/pkg/dialect"
	"github.com/leapstack-labs/lazyrel/pkg/rel"
)

// render.go - SQL text generation for a finished level tree.

func (c *compiler) render(s *level) (string, error) {
	var b strings.Builder

	b.WriteString("SELECT ")
	for i, d := range s.defs() {
		if i > 0 {
			b.WriteString(", ")
		}
		switch {
		case d.expr == nil:
			b.WriteString(c.dialect.QuoteIdent(d.name))
		case !d.computed() && d.underlying() == d.name:
			b.WriteString(c.dialect.QuoteIdent(d.name))
		default:
			sql, err := c.renderExpr(d.expr)
			if err != nil {
				return "", err
			}
			b.WriteString(sql)
			b.WriteString(" AS ")
			b.WriteString(c.dialect.QuoteIdent(d.name))
		}
	}

	b.WriteString(" FROM ")
	if s.fromSub != nil {
		sub, err := c.render(s.fromSub)
		if err != nil {
			return "", err
		}
		b.WriteString("(")
		b.WriteString(sub)
		b.WriteString(") AS ")
		b.WriteString(c.dialect.QuoteIdent(s.alias))
	} else {
		b.WriteString(c.dialect.QuoteIdent(s.fromTable))
	}

	for _, j := range s.joins {
		b.WriteString(" ")
		b.WriteString(j.kind.String())
		b.WriteString(" JOIN ")
		if j.sub != nil {
			sub, err := c.render(j.sub)
			if err != nil {
				return "", err
			}
			b.WriteString("(")
			b.WriteString(sub)
			b.WriteString(") AS ")
			b.WriteString(c.dialect.QuoteIdent(j.alias))
		} else {
			b.WriteString(c.dialect.QuoteIdent(j.table))
		}
		b.WriteString(" USING (")
		for i, key := range j.using {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.dialect.QuoteIdent(key))
		}
		b.WriteString(")")
	}

	if len(s.where) > 0 || len(s.rawWhere) > 0 {
		conds, err := c.renderConds(s.where, s.rawWhere)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(conds)
	}

	if len(s.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		for i, key := range s.groupBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.dialect.QuoteIdent(key))
		}
	}

	if len(s.having) > 0 {
		conds, err := c.renderConds(s.having, nil)
		if err != nil {
			return "", err
		}
		b.WriteString(" HAVING ")
		b.WriteString(conds)
	}

	if len(s.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		for i, k := range s.orderBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.dialect.QuoteIdent(k.Column))
			if k.Desc {
				b.WriteString(" DESC")
			}
		}
	}

	return b.String(), nil
}

func (c *compiler) renderConds(exprs []*rel.Expr, raws []string) (string, error) {
	conds := make([]string, 0, len(exprs)+len(raws))
	for _, e := range exprs {
		sql, err := c.renderExpr(e)
		if err != nil {
			return "", err
		}
		conds = append(conds, sql)
	}
	conds = append(conds, raws...)
	if len(conds) == 1 {
		return conds[0], nil
	}
	for i, cond := range conds {
		conds[i] = "(" + cond + ")"
	}
	return strings.Join(conds, " AND "), nil
}

// Operator precedence for parenthesization; higher binds tighter.
func opPrecedence(op string) int {
	switch op {
	case "OR":
		return 1
	case "AND":
		return 2
	case "NOT":
		return 3
	case "=", "<>", "<", "<=", ">", ">=", "IS NULL":
		return 4
	case "+", "-":
		return 5
	case "*", "/":
		return 6
	default:
		return 7
	}
}

func exprPrecedence(e *rel.Expr) int {
	switch e.Kind() {
	case rel.ExprBinary, rel.ExprUnary:
		return opPrecedence(e.Op())
	default:
		return 8
	}
}

func (c *compiler) renderExpr(e *rel.Expr) (string, error) {
	switch e.Kind() {
	case rel.ExprColumn:
		return c.dialect.QuoteIdent(e.Name()), nil

	case rel.ExprLiteral:
		return c.renderLiteral(e), nil

	case rel.ExprBinary:
		prec := opPrecedence(e.Op())
		left, err := c.renderOperand(e.Args()[0], prec, false)
		if err != nil {
			return "", err
		}
		right, err := c.renderOperand(e.Args()[1], prec, true)
		if err != nil {
			return "", err
		}
		return left + " " + e.Op() + " " + right, nil

	case rel.ExprUnary:
		operand, err := c.renderOperand(e.Args()[0], opPrecedence(e.Op()), false)
		if err != nil {
			return "", err
		}
		if e.Op() == "IS NULL" {
			return operand + " IS NULL", nil
		}
		return e.Op() + " " + operand, nil

	case rel.ExprCall:
		return c.renderCall(e)

	case rel.ExprCase:
		args := e.Args()
		cond, err := c.renderExpr(args[0])
		if err != nil {
			return "", err
		}
		then, err := c.renderExpr(args[1])
		if err != nil {
			return "", err
		}
		els, err := c.renderExpr(args[2])
		if err != nil {
			return "", err
		}
		return "CASE WHEN " + cond + " THEN " + then + " ELSE " + els + " END", nil

	default:
		return "", fmt.Errorf("compile: unhandled expression kind %d", e.Kind())
	}
}

func (c *compiler) renderOperand(e *rel.Expr, parentPrec int, right bool) (string, error) {
	sql, err := c.renderExpr(e)
	if err != nil {
		return "", err
	}
	prec := exprPrecedence(e)
	if prec < parentPrec || (right && prec == parentPrec) {
		return "(" + sql + ")", nil
	}
	return sql, nil
}

func (c *compiler) renderLiteral(e *rel.Expr) string {
	switch e.LiteralKind() {
	case rel.LitInt:
		return strconv.FormatInt(e.IntValue(), 10)
	case rel.LitFloat:
		// Fractional literals always carry a decimal point so the target
		// database does not perform integer division.
		s := strconv.FormatFloat(e.FloatValue(), 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case rel.LitString:
		return c.dialect.QuoteString(e.StringValue())
	case rel.LitBool:
		if e.BoolValue() {
			return "TRUE"
		}
		return "FALSE"
	default:
		return "NULL"
	}
}

func (c *compiler) renderCall(e *rel.Expr) (string, error) {
	f, ok := c.dialect.FunctionFor(e.Name())
	if !ok {
		return "", &dialect.UnsupportedOperationError{
			Operation: fmt.Sprintf("function %s", e.Name()),
			Dialect:   c.dialect.Name,
		}
	}

	if e.IsStar() {
		return f.SQLName + "(*)", nil
	}

	args := make([]string, 0, len(e.Args()))
	for _, a := range e.Args() {
		sql, err := c.renderExpr(a)
		if err != nil {
			return "", err
		}
		args = append(args, sql)
	}

	inner := strings.Join(args, ", ")
	if f.Prefix != "" {
		inner = f.Prefix + " " + inner
	}
	return f.SQLName + "(" + inner + ")", nil
}
