package filter

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/simp-lee/gamestore/internal/domain"
)

// Accessor reads one field of a record. It returns nil for absent values.
type Accessor[T any] func(T) any

// Accessors maps whitelisted field names to typed readers.
type Accessors[T any] map[string]Accessor[T]

// Predicate is a compiled filter over records of type T.
type Predicate[T any] func(T) bool

// MatchAll accepts every record.
func MatchAll[T any](T) bool { return true }

// CompilePredicate compiles g into an in-memory predicate. An empty group
// compiles to MatchAll. Every field referenced by g must be whitelisted in e
// and have an accessor.
func CompilePredicate[T any](e *Entity, acc Accessors[T], g *domain.FilterGroup) (Predicate[T], error) {
	b, err := bind(e, g)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return MatchAll[T], nil
	}
	return compileGroup(acc, *b)
}

func compileGroup[T any](acc Accessors[T], g group) (Predicate[T], error) {
	parts := make([]Predicate[T], 0, len(g.conditions)+len(g.groups))
	for _, c := range g.conditions {
		p, err := compileCondition(acc, c)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	for _, sub := range g.groups {
		p, err := compileGroup(acc, sub)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}

	or := g.logic == domain.LogicOr
	not := g.not
	return func(rec T) bool {
		result := !or
		for _, p := range parts {
			if p(rec) == or {
				result = or
				break
			}
		}
		return result != not
	}, nil
}

func compileCondition[T any](acc Accessors[T], c condition) (Predicate[T], error) {
	get, ok := acc[c.field.Name]
	if !ok {
		return nil, fmt.Errorf("filter: no accessor for field %q", c.field.Name)
	}
	t := c.field.Type
	read := func(rec T) (any, bool) {
		raw := get(rec)
		if raw == nil {
			return nil, false
		}
		v, ok := coerce(t, raw)
		return v, ok
	}

	switch c.op {
	case domain.OpIsNull:
		return func(rec T) bool { return get(rec) == nil }, nil
	case domain.OpIsNotNull:
		return func(rec T) bool { return get(rec) != nil }, nil

	case domain.OpEquals, domain.OpNotEquals:
		want := normalize(t, c.value)
		equals := c.op == domain.OpEquals
		return func(rec T) bool {
			v, ok := read(rec)
			if !ok {
				return !equals
			}
			return (compare(t, normalize(t, v), want) == 0) == equals
		}, nil

	case domain.OpContains, domain.OpStartsWith, domain.OpEndsWith:
		needle := fold(c.value.(string))
		var match func(s, sub string) bool
		switch c.op {
		case domain.OpContains:
			match = strings.Contains
		case domain.OpStartsWith:
			match = strings.HasPrefix
		default:
			match = strings.HasSuffix
		}
		return func(rec T) bool {
			v, ok := read(rec)
			return ok && match(fold(v.(string)), needle)
		}, nil

	case domain.OpGreaterThan, domain.OpGreaterThanOrEqual, domain.OpLessThan, domain.OpLessThanOrEqual:
		want := c.value
		accept := orderingTest(c.op)
		return func(rec T) bool {
			v, ok := read(rec)
			return ok && accept(compare(t, v, want))
		}, nil

	case domain.OpIn:
		set := make([]any, len(c.values))
		for i, v := range c.values {
			set[i] = normalize(t, v)
		}
		return func(rec T) bool {
			v, ok := read(rec)
			if !ok {
				return false
			}
			v = normalize(t, v)
			return slices.ContainsFunc(set, func(m any) bool { return compare(t, v, m) == 0 })
		}, nil

	case domain.OpBetween:
		low, high := c.low, c.high
		return func(rec T) bool {
			v, ok := read(rec)
			return ok && compare(t, v, low) >= 0 && compare(t, v, high) <= 0
		}, nil
	}
	return nil, domain.NewInvalidFilterSyntaxError(fmt.Sprintf("unsupported operator %q", c.op), nil)
}

func orderingTest(op domain.Operator) func(int) bool {
	switch op {
	case domain.OpGreaterThan:
		return func(c int) bool { return c > 0 }
	case domain.OpGreaterThanOrEqual:
		return func(c int) bool { return c >= 0 }
	case domain.OpLessThan:
		return func(c int) bool { return c < 0 }
	default:
		return func(c int) bool { return c <= 0 }
	}
}

// normalize folds text so that equality and membership ignore case.
func normalize(t domain.FieldType, v any) any {
	if t == domain.FieldString {
		return fold(v.(string))
	}
	return v
}

// fold applies Unicode case folding. A Caser is not safe for concurrent use,
// so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// compare orders two coerced values of type t.
func compare(t domain.FieldType, a, b any) int {
	switch t {
	case domain.FieldString:
		return strings.Compare(a.(string), b.(string))
	case domain.FieldDecimal:
		return a.(decimal.Decimal).Cmp(b.(decimal.Decimal))
	case domain.FieldInteger:
		return cmp.Compare(a.(int64), b.(int64))
	case domain.FieldIdentifier:
		x, y := a.(uuid.UUID), b.(uuid.UUID)
		return bytes.Compare(x[:], y[:])
	case domain.FieldDateTime:
		return a.(time.Time).Compare(b.(time.Time))
	case domain.FieldBoolean:
		return cmp.Compare(boolRank(a.(bool)), boolRank(b.(bool)))
	}
	return -1
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
