package domain

import (
	"fmt"
	"strings"
)

// FieldType is the declared type of a filterable field.
type FieldType string

const (
	FieldString     FieldType = "String"
	FieldDecimal    FieldType = "Decimal"
	FieldInteger    FieldType = "Integer"
	FieldIdentifier FieldType = "Identifier"
	FieldDateTime   FieldType = "DateTime"
	FieldBoolean    FieldType = "Boolean"
)

var fieldTypes = []FieldType{FieldString, FieldDecimal, FieldInteger, FieldIdentifier, FieldDateTime, FieldBoolean}

// UnmarshalText accepts the type name case-insensitively.
// An empty name leaves the type unset; the whitelist supplies it.
func (t *FieldType) UnmarshalText(b []byte) error {
	if strings.TrimSpace(string(b)) == "" {
		*t = ""
		return nil
	}
	v, ok := matchName(string(b), fieldTypes)
	if !ok {
		return fmt.Errorf("unknown field type %q", string(b))
	}
	*t = v
	return nil
}

// Operator is a comparison applied by a FilterCondition.
type Operator string

const (
	OpEquals             Operator = "Equals"
	OpNotEquals          Operator = "NotEquals"
	OpContains           Operator = "Contains"
	OpStartsWith         Operator = "StartsWith"
	OpEndsWith           Operator = "EndsWith"
	OpGreaterThan        Operator = "GreaterThan"
	OpGreaterThanOrEqual Operator = "GreaterThanOrEqual"
	OpLessThan           Operator = "LessThan"
	OpLessThanOrEqual    Operator = "LessThanOrEqual"
	OpIn                 Operator = "In"
	OpBetween            Operator = "Between"
	OpIsNull             Operator = "IsNull"
	OpIsNotNull          Operator = "IsNotNull"
)

var operators = []Operator{
	OpEquals, OpNotEquals, OpContains, OpStartsWith, OpEndsWith,
	OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual,
	OpIn, OpBetween, OpIsNull, OpIsNotNull,
}

// UnmarshalText accepts the operator name case-insensitively.
func (o *Operator) UnmarshalText(b []byte) error {
	v, ok := matchName(string(b), operators)
	if !ok {
		return fmt.Errorf("unknown operator %q", string(b))
	}
	*o = v
	return nil
}

// Logic combines the members of a FilterGroup.
type Logic string

const (
	LogicAnd Logic = "And"
	LogicOr  Logic = "Or"
)

// UnmarshalText accepts the logic name case-insensitively. An empty name means And.
func (l *Logic) UnmarshalText(b []byte) error {
	if strings.TrimSpace(string(b)) == "" {
		*l = LogicAnd
		return nil
	}
	v, ok := matchName(string(b), []Logic{LogicAnd, LogicOr})
	if !ok {
		return fmt.Errorf("unknown logic %q", string(b))
	}
	*l = v
	return nil
}

// FilterCondition is a single comparison against one whitelisted field.
// Value2 is only read by Between. Value may be a list or a comma separated
// string for In.
type FilterCondition struct {
	Field     string    `json:"field"`
	FieldType FieldType `json:"field_type,omitempty"`
	Operator  Operator  `json:"operator"`
	Value     any       `json:"value,omitempty"`
	Value2    any       `json:"value2,omitempty"`
}

// FilterGroup combines conditions and nested groups with one Logic.
// Conditions are evaluated before subgroups. An empty group matches everything.
// Not negates the combined result of a non-empty group.
type FilterGroup struct {
	Logic      Logic             `json:"logic,omitempty"`
	Conditions []FilterCondition `json:"conditions,omitempty"`
	Groups     []FilterGroup     `json:"groups,omitempty"`
	Not        bool              `json:"not,omitempty"`
}

// IsEmpty reports whether the group applies no filtering at all.
// A group whose members are all empty groups is itself empty.
func (g *FilterGroup) IsEmpty() bool {
	if g == nil {
		return true
	}
	if len(g.Conditions) > 0 {
		return false
	}
	for i := range g.Groups {
		if !g.Groups[i].IsEmpty() {
			return false
		}
	}
	return true
}

// EffectiveLogic returns the group's logic, defaulting to And.
func (g *FilterGroup) EffectiveLogic() Logic {
	if g.Logic == LogicOr {
		return LogicOr
	}
	return LogicAnd
}

func matchName[T ~string](s string, names []T) (T, bool) {
	s = strings.TrimSpace(s)
	for _, n := range names {
		if strings.EqualFold(s, string(n)) {
			return n, true
		}
	}
	var zero T
	return zero, false
}
