package filter

import (
	"fmt"
	"strings"

	"github.com/simp-lee/gamestore/internal/domain"
)

// condition is a FilterCondition whose field has been resolved against the
// whitelist and whose values have been coerced to the field's type.
type condition struct {
	field  Field
	op     domain.Operator
	value  any
	values []any
	low    any
	high   any
}

// group is the bound form of a non-empty FilterGroup.
type group struct {
	logic      domain.Logic
	not        bool
	conditions []condition
	groups     []group
}

// bind validates g against e. It returns nil when g applies no filtering.
func bind(e *Entity, g *domain.FilterGroup) (*group, error) {
	if g.IsEmpty() {
		return nil, nil
	}
	out := &group{logic: g.EffectiveLogic(), not: g.Not}
	for _, c := range g.Conditions {
		bc, err := bindCondition(e, c)
		if err != nil {
			return nil, err
		}
		out.conditions = append(out.conditions, bc)
	}
	for i := range g.Groups {
		sub, err := bind(e, &g.Groups[i])
		if err != nil {
			return nil, err
		}
		if sub != nil {
			out.groups = append(out.groups, *sub)
		}
	}
	return out, nil
}

func bindCondition(e *Entity, c domain.FilterCondition) (condition, error) {
	f, err := e.Resolve(c.Field)
	if err != nil {
		return condition{}, err
	}
	bc := condition{field: f, op: c.Operator}

	switch c.Operator {
	case domain.OpIsNull, domain.OpIsNotNull:
		return bc, nil

	case domain.OpEquals, domain.OpNotEquals:
		if c.Value == nil {
			if c.Operator == domain.OpEquals {
				bc.op = domain.OpIsNull
			} else {
				bc.op = domain.OpIsNotNull
			}
			return bc, nil
		}
		bc.value, err = Coerce(f, c.Value)
		return bc, err

	case domain.OpContains, domain.OpStartsWith, domain.OpEndsWith:
		if f.Type != domain.FieldString || c.Value == nil {
			return condition{}, domain.NewInvalidFilterValueError(f.Name, rawString(c.Value))
		}
		bc.value, err = Coerce(f, c.Value)
		return bc, err

	case domain.OpGreaterThan, domain.OpGreaterThanOrEqual, domain.OpLessThan, domain.OpLessThanOrEqual:
		if c.Value == nil {
			return condition{}, domain.NewInvalidFilterValueError(f.Name, rawString(c.Value))
		}
		bc.value, err = Coerce(f, c.Value)
		return bc, err

	case domain.OpIn:
		if c.Value == nil {
			return condition{}, domain.NewInvalidFilterValueError(f.Name, rawString(c.Value))
		}
		for _, raw := range listElements(c.Value) {
			if raw == nil {
				return condition{}, domain.NewInvalidFilterValueError(f.Name, rawString(raw))
			}
			v, err := Coerce(f, raw)
			if err != nil {
				return condition{}, err
			}
			bc.values = append(bc.values, v)
		}
		return bc, nil

	case domain.OpBetween:
		if c.Value == nil || c.Value2 == nil {
			return condition{}, domain.NewInvalidFilterValueError(f.Name,
				fmt.Sprintf("between %s and %s", rawString(c.Value), rawString(c.Value2)))
		}
		if bc.low, err = Coerce(f, c.Value); err != nil {
			return condition{}, err
		}
		if bc.high, err = Coerce(f, c.Value2); err != nil {
			return condition{}, err
		}
		return bc, nil
	}

	return condition{}, domain.NewInvalidFilterSyntaxError(fmt.Sprintf("unsupported operator %q", c.Operator), nil)
}

// listElements expands an In value: a list, or a comma separated string.
// Blank elements of a comma separated string are skipped.
func listElements(v any) []any {
	switch list := v.(type) {
	case []any:
		return list
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out
	case string:
		var out []any
		for _, part := range strings.Split(list, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return []any{v}
}
