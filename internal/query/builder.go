// Package query builds dynamic WHERE and SET clauses for the admin API's
// search and update endpoints. Every appended fragment is paired with its
// parameter values at the moment it is added, so caller-controlled strings
// never reach the statement text.
package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoFields is returned when an update carries no columns to change.
var ErrNoFields = errors.New("no fields to update")

// Builder accumulates optional predicates for a WHERE clause. Fragments use
// '?' markers which are rewritten to PostgreSQL $n placeholders as they are
// appended, keeping clause text and the positional argument list in lockstep.
type Builder struct {
	conds []string
	args  []any
}

// NewBuilder returns a Builder whose clause starts from an always-true base.
func NewBuilder() *Builder {
	return &Builder{}
}

// And appends a predicate fragment and its values. The fragment must contain
// exactly one '?' per value; a mismatch is a programming error.
func (b *Builder) And(fragment string, values ...any) *Builder {
	if strings.Count(fragment, "?") != len(values) {
		panic(fmt.Sprintf("query: fragment %q expects %d values, got %d",
			fragment, strings.Count(fragment, "?"), len(values)))
	}
	var sb strings.Builder
	for _, r := range fragment {
		if r == '?' {
			b.args = append(b.args, values[0])
			values = values[1:]
			fmt.Fprintf(&sb, "$%d", len(b.args))
			continue
		}
		sb.WriteRune(r)
	}
	b.conds = append(b.conds, sb.String())
	return b
}

// Clause renders the accumulated predicates. With no predicates it yields
// the always-true base so callers can interpolate it unconditionally.
func (b *Builder) Clause() string {
	if len(b.conds) == 0 {
		return "1=1"
	}
	return "1=1 AND " + strings.Join(b.conds, " AND ")
}

// Args returns the positional parameters matching Clause.
func (b *Builder) Args() []any {
	return b.args
}

// Next returns the next free placeholder index, for LIMIT/OFFSET and other
// trailing parameters the caller appends after the predicate set.
func (b *Builder) Next() int {
	return len(b.args) + 1
}

// UpdateBuilder collects `column = $n` assignments from optionally-present
// request fields. Column names are handler-owned literals; only values are
// parameterized.
type UpdateBuilder struct {
	sets []string
	args []any
}

// NewUpdate returns an empty UpdateBuilder.
func NewUpdate() *UpdateBuilder {
	return &UpdateBuilder{}
}

// Set records an assignment for column.
func (u *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	u.args = append(u.args, value)
	u.sets = append(u.sets, fmt.Sprintf("%s = $%d", column, len(u.args)))
	return u
}

// SetExpr records an assignment whose right-hand side is a fixed SQL
// expression (e.g. COALESCE over the supplied value). The expression must
// contain exactly one '?' per value.
func (u *UpdateBuilder) SetExpr(column, expr string, values ...any) *UpdateBuilder {
	if strings.Count(expr, "?") != len(values) {
		panic(fmt.Sprintf("query: expr %q expects %d values, got %d",
			expr, strings.Count(expr, "?"), len(values)))
	}
	var sb strings.Builder
	for _, r := range expr {
		if r == '?' {
			u.args = append(u.args, values[0])
			values = values[1:]
			fmt.Fprintf(&sb, "$%d", len(u.args))
			continue
		}
		sb.WriteRune(r)
	}
	u.sets = append(u.sets, column+" = "+sb.String())
	return u
}

// Empty reports whether no assignments were recorded.
func (u *UpdateBuilder) Empty() bool {
	return len(u.sets) == 0
}

// Clause renders the SET list with an updated_at stamp appended. It fails
// with ErrNoFields when the request supplied nothing to change, so handlers
// reject the call instead of issuing a no-op statement.
func (u *UpdateBuilder) Clause() (string, error) {
	if len(u.sets) == 0 {
		return "", ErrNoFields
	}
	return strings.Join(u.sets, ", ") + ", updated_at = NOW()", nil
}

// Args returns the positional parameters matching Clause.
func (u *UpdateBuilder) Args() []any {
	return u.args
}

// Next returns the next free placeholder index, typically used for the
// primary-key value in the WHERE clause.
func (u *UpdateBuilder) Next() int {
	return len(u.args) + 1
}
