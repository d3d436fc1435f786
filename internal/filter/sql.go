package filter

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/simp-lee/gamestore/internal/domain"
)

// likeEscaper escapes LIKE wildcards in caller text; the predicate declares
// backslash as the escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Where compiles g into a parameterised SQL predicate over e's columns, with
// "?" placeholders. It returns nil when g applies no filtering.
//
// Column names come only from the whitelist; caller values are always bound
// as arguments.
func Where(e *Entity, g *domain.FilterGroup) (sq.Sqlizer, error) {
	b, err := bind(e, g)
	if err != nil || b == nil {
		return nil, err
	}
	return groupSQL(*b)
}

func groupSQL(g group) (sq.Sqlizer, error) {
	parts := make([]sq.Sqlizer, 0, len(g.conditions)+len(g.groups))
	for _, c := range g.conditions {
		part, err := conditionSQL(c)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	for _, sub := range g.groups {
		part, err := groupSQL(sub)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	var combined sq.Sqlizer = sq.And(parts)
	if g.logic == domain.LogicOr {
		combined = sq.Or(parts)
	}
	if !g.not {
		return combined, nil
	}
	query, args, err := combined.ToSql()
	if err != nil {
		return nil, err
	}
	// A comparison against NULL is unknown, and so is its negation. Unknown
	// collapses to false before negating, as a missing value does in memory.
	return sq.Expr("NOT COALESCE("+query+", FALSE)", args...), nil
}

func conditionSQL(c condition) (sq.Sqlizer, error) {
	col := c.field.Column
	text := c.field.Type == domain.FieldString

	switch c.op {
	case domain.OpIsNull:
		return sq.Eq{col: nil}, nil
	case domain.OpIsNotNull:
		return sq.NotEq{col: nil}, nil

	case domain.OpEquals:
		if text {
			return sq.Expr("LOWER("+col+") = LOWER(?)", c.value), nil
		}
		return sq.Eq{col: sqlArg(c.value)}, nil
	case domain.OpNotEquals:
		if text {
			return sq.Expr("("+col+" IS NULL OR LOWER("+col+") <> LOWER(?))", c.value), nil
		}
		return sq.Expr("("+col+" IS NULL OR "+col+" <> ?)", sqlArg(c.value)), nil

	case domain.OpContains:
		return likeSQL(col, "%"+likeEscaper.Replace(c.value.(string))+"%"), nil
	case domain.OpStartsWith:
		return likeSQL(col, likeEscaper.Replace(c.value.(string))+"%"), nil
	case domain.OpEndsWith:
		return likeSQL(col, "%"+likeEscaper.Replace(c.value.(string))), nil

	case domain.OpGreaterThan:
		return sq.Gt{col: sqlArg(c.value)}, nil
	case domain.OpGreaterThanOrEqual:
		return sq.GtOrEq{col: sqlArg(c.value)}, nil
	case domain.OpLessThan:
		return sq.Lt{col: sqlArg(c.value)}, nil
	case domain.OpLessThanOrEqual:
		return sq.LtOrEq{col: sqlArg(c.value)}, nil

	case domain.OpIn:
		if len(c.values) == 0 {
			return sq.Expr("1 = 0"), nil
		}
		if text {
			ors := make(sq.Or, len(c.values))
			for i, v := range c.values {
				ors[i] = sq.Expr("LOWER("+col+") = LOWER(?)", v)
			}
			return ors, nil
		}
		args := make([]any, len(c.values))
		for i, v := range c.values {
			args[i] = sqlArg(v)
		}
		return sq.Expr(col+" IN ("+sq.Placeholders(len(args))+")", args...), nil

	case domain.OpBetween:
		return sq.And{sq.GtOrEq{col: sqlArg(c.low)}, sq.LtOrEq{col: sqlArg(c.high)}}, nil
	}
	return nil, domain.NewInvalidFilterSyntaxError(fmt.Sprintf("unsupported operator %q", c.op), nil)
}

func likeSQL(col, pattern string) sq.Sqlizer {
	return sq.Expr("("+col+" IS NOT NULL AND LOWER("+col+") LIKE LOWER(?) ESCAPE '\\')", pattern)
}

// sqlArg converts coerced values the SQL layer would otherwise misread.
// uuid.UUID is a byte array, which squirrel expands as a list.
func sqlArg(v any) any {
	if id, ok := v.(uuid.UUID); ok {
		return id.String()
	}
	return v
}
