package filter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/simp-lee/gamestore/internal/domain"
)

const (
	// DefaultLocaleDateLayout reads day/month/year literals such as 15/09/2025.
	DefaultLocaleDateLayout = "2/1/2006"

	maxExpressionLength = 4096
	allowedPunctuation  = `.()[]"'=<>!&|,-`
)

// localeDate matches a day/month/year literal with an optional time of day.
var localeDate = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})(?:\s+\d{1,2}:\d{2}(?::\d{2})?)?$`)

// Sanitizer validates textual filter and order-by expressions against a
// Whitelist. It is safe for concurrent use.
type Sanitizer struct {
	whitelist  *Whitelist
	dateLayout string
}

// SanitizerOption configures a Sanitizer.
type SanitizerOption func(*Sanitizer)

// WithLocaleDateLayout sets the time layout used to read locale date literals
// in equality comparisons.
func WithLocaleDateLayout(layout string) SanitizerOption {
	return func(s *Sanitizer) {
		if layout != "" {
			s.dateLayout = layout
		}
	}
}

// NewSanitizer creates a Sanitizer over w.
func NewSanitizer(w *Whitelist, opts ...SanitizerOption) *Sanitizer {
	if w == nil {
		panic("filter.NewSanitizer: whitelist must not be nil")
	}
	s := &Sanitizer{whitelist: w, dateLayout: DefaultLocaleDateLayout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Whitelist returns the whitelist the sanitizer validates against.
func (s *Sanitizer) Whitelist() *Whitelist {
	return s.whitelist
}

// ParseFilter compiles a textual filter into a FilterGroup. Blank text
// yields nil.
func (s *Sanitizer) ParseFilter(text, entityType string) (*domain.FilterGroup, error) {
	e, err := s.whitelist.Entity(entityType)
	if err != nil {
		return nil, err
	}
	n, err := s.parse(e, text)
	if err != nil || n == nil {
		return nil, err
	}
	g := toGroup(n)
	if _, err := bind(e, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// SanitizeFilter validates a textual filter and returns it in canonical form,
// with locale date equality rewritten into a day range. Blank text yields "".
func (s *Sanitizer) SanitizeFilter(text, entityType string) (string, error) {
	e, err := s.whitelist.Entity(entityType)
	if err != nil {
		return "", err
	}
	n, err := s.parse(e, text)
	if err != nil || n == nil {
		return "", err
	}
	g := toGroup(n)
	if _, err := bind(e, &g); err != nil {
		return "", err
	}
	var sb strings.Builder
	render(&sb, n, true)
	return sb.String(), nil
}

func (s *Sanitizer) parse(e *Entity, text string) (node, error) {
	if len(text) > maxExpressionLength {
		return nil, domain.NewInvalidFilterSyntaxError(fmt.Sprintf("expression longer than %d bytes", maxExpressionLength), nil)
	}
	text = stripDisallowed(text)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	ast, err := exprParser.ParseString("", text)
	if err != nil {
		return nil, domain.NewInvalidFilterSyntaxError(err.Error(), err)
	}
	// Every field is checked before anything else is interpreted.
	if err := resolveFields(e, ast); err != nil {
		return nil, err
	}
	return s.convertOr(e, ast)
}

// stripDisallowed drops characters outside the allow-list. Quoted literals
// are kept verbatim; they only ever become bound values.
func stripDisallowed(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	var quote rune
	escaped := false
	for _, r := range text {
		if quote != 0 {
			sb.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch {
		case r == '"' || r == '\'':
			quote = r
			sb.WriteRune(r)
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r),
			strings.ContainsRune(allowedPunctuation, r):
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func resolveFields(e *Entity, ast *orExpr) error {
	var walkOr func(*orExpr) error
	var walkUnary func(*unaryExpr) error
	walkAnd := func(a *andExpr) error {
		for _, u := range append([]*unaryExpr{a.Left}, a.Right...) {
			if err := walkUnary(u); err != nil {
				return err
			}
		}
		return nil
	}
	walkOr = func(o *orExpr) error {
		for _, a := range append([]*andExpr{o.Left}, o.Right...) {
			if err := walkAnd(a); err != nil {
				return err
			}
		}
		return nil
	}
	walkUnary = func(u *unaryExpr) error {
		switch {
		case u.Not != nil:
			return walkUnary(u.Not)
		case u.Group != nil:
			return walkOr(u.Group)
		case u.Term != nil:
			_, err := e.Resolve(u.Term.Field)
			return err
		}
		return nil
	}
	return walkOr(ast)
}

// node is the validated expression tree: *logicNode, *notNode or *condNode.
type node any

type logicNode struct {
	logic domain.Logic
	items []node
}

type notNode struct {
	inner node
}

type condNode struct {
	field  Field
	op     domain.Operator
	value  any
	values []any
}

func (s *Sanitizer) convertOr(e *Entity, o *orExpr) (node, error) {
	items := make([]node, 0, 1+len(o.Right))
	for _, a := range append([]*andExpr{o.Left}, o.Right...) {
		n, err := s.convertAnd(e, a)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &logicNode{logic: domain.LogicOr, items: items}, nil
}

func (s *Sanitizer) convertAnd(e *Entity, a *andExpr) (node, error) {
	items := make([]node, 0, 1+len(a.Right))
	for _, u := range append([]*unaryExpr{a.Left}, a.Right...) {
		n, err := s.convertUnary(e, u)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &logicNode{logic: domain.LogicAnd, items: items}, nil
}

func (s *Sanitizer) convertUnary(e *Entity, u *unaryExpr) (node, error) {
	switch {
	case u.Not != nil:
		inner, err := s.convertUnary(e, u.Not)
		if err != nil {
			return nil, err
		}
		return &notNode{inner: inner}, nil
	case u.Group != nil:
		return s.convertOr(e, u.Group)
	}
	return s.convertTerm(e, u.Term)
}

var comparisonOps = map[string]domain.Operator{
	"==": domain.OpEquals,
	"=":  domain.OpEquals,
	"!=": domain.OpNotEquals,
	"<>": domain.OpNotEquals,
	">":  domain.OpGreaterThan,
	">=": domain.OpGreaterThanOrEqual,
	"<":  domain.OpLessThan,
	"<=": domain.OpLessThanOrEqual,
}

var methodOps = map[string]domain.Operator{
	"contains":   domain.OpContains,
	"startswith": domain.OpStartsWith,
	"endswith":   domain.OpEndsWith,
}

func (s *Sanitizer) convertTerm(e *Entity, t *termExpr) (node, error) {
	f, err := e.Resolve(t.Field)
	if err != nil {
		return nil, err
	}

	switch {
	case t.Method != nil:
		op, ok := methodOps[strings.ToLower(t.Method.Name)]
		if !ok {
			return nil, domain.NewInvalidFilterSyntaxError(fmt.Sprintf("unsupported method %q", t.Method.Name), nil)
		}
		return &condNode{field: f, op: op, value: t.Method.Arg.value()}, nil

	case len(t.In) > 0:
		values := make([]any, len(t.In))
		for i, lit := range t.In {
			values[i] = lit.value()
		}
		return &condNode{field: f, op: domain.OpIn, values: values}, nil

	case t.Op != "":
		c := &condNode{field: f, op: comparisonOps[t.Op], value: t.Value.value()}
		if c.op == domain.OpEquals && f.Type == domain.FieldDateTime {
			if raw, ok := c.value.(string); ok && localeDate.MatchString(strings.TrimSpace(raw)) {
				return s.dayRange(f, raw)
			}
		}
		return c, nil
	}

	if f.Type != domain.FieldBoolean {
		return nil, domain.NewInvalidFilterSyntaxError(fmt.Sprintf("field %s is not boolean and needs a comparison", f.Name), nil)
	}
	return &condNode{field: f, op: domain.OpEquals, value: true}, nil
}

// dayRange rewrites equality with a locale date into the half-open range
// covering that calendar day in UTC. A time of day in the literal is ignored.
func (s *Sanitizer) dayRange(f Field, raw string) (node, error) {
	m := localeDate.FindStringSubmatch(strings.TrimSpace(raw))
	day, err := time.ParseInLocation(s.dateLayout, m[1], time.UTC)
	if err != nil {
		return nil, domain.NewInvalidFilterValueError(f.Name, raw)
	}
	next := day.AddDate(0, 0, 1)
	return &logicNode{
		logic: domain.LogicAnd,
		items: []node{
			&condNode{field: f, op: domain.OpGreaterThanOrEqual, value: day.Format(time.RFC3339)},
			&condNode{field: f, op: domain.OpLessThan, value: next.Format(time.RFC3339)},
		},
	}, nil
}

func (l *literal) value() any {
	switch {
	case l.Str != nil:
		return unquote(*l.Str)
	case l.Num != nil:
		return json.Number(*l.Num)
	case l.Bool != nil:
		return strings.EqualFold(*l.Bool, "true")
	}
	return nil
}

// unquote strips the surrounding quotes of a string token and resolves
// backslash escapes: \x becomes x.
func unquote(tok string) string {
	body := tok[1 : len(tok)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var sb strings.Builder
	escaped := false
	for _, r := range body {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// toGroup converts a validated tree into the structured filter model.
// Nested groups sharing their parent's logic are flattened.
func toGroup(n node) domain.FilterGroup {
	switch n := n.(type) {
	case *condNode:
		return domain.FilterGroup{Logic: domain.LogicAnd, Conditions: []domain.FilterCondition{n.condition()}}
	case *notNode:
		g := toGroup(n.inner)
		if g.Not {
			return domain.FilterGroup{Logic: domain.LogicAnd, Groups: []domain.FilterGroup{g}, Not: true}
		}
		g.Not = true
		return g
	case *logicNode:
		g := domain.FilterGroup{Logic: n.logic}
		for _, item := range n.items {
			if c, ok := item.(*condNode); ok {
				g.Conditions = append(g.Conditions, c.condition())
				continue
			}
			sub := toGroup(item)
			if !sub.Not && sub.Logic == n.logic {
				g.Conditions = append(g.Conditions, sub.Conditions...)
				g.Groups = append(g.Groups, sub.Groups...)
				continue
			}
			g.Groups = append(g.Groups, sub)
		}
		return g
	}
	return domain.FilterGroup{}
}

func (c *condNode) condition() domain.FilterCondition {
	fc := domain.FilterCondition{
		Field:     c.field.Name,
		FieldType: c.field.Type,
		Operator:  c.op,
		Value:     c.value,
	}
	if c.op == domain.OpIn {
		fc.Value = c.values
	}
	return fc
}

var operatorText = map[domain.Operator]string{
	domain.OpEquals:             "==",
	domain.OpNotEquals:          "!=",
	domain.OpGreaterThan:        ">",
	domain.OpGreaterThanOrEqual: ">=",
	domain.OpLessThan:           "<",
	domain.OpLessThanOrEqual:    "<=",
}

var methodText = map[domain.Operator]string{
	domain.OpContains:   "Contains",
	domain.OpStartsWith: "StartsWith",
	domain.OpEndsWith:   "EndsWith",
}

// render writes n in canonical syntax. Logic nodes below the top level are
// parenthesised, and so is a top-level date range.
func render(sb *strings.Builder, n node, top bool) {
	switch n := n.(type) {
	case *logicNode:
		paren := !top || isDayRange(n)
		if paren {
			sb.WriteByte('(')
		}
		sep := " AND "
		if n.logic == domain.LogicOr {
			sep = " OR "
		}
		for i, item := range n.items {
			if i > 0 {
				sb.WriteString(sep)
			}
			render(sb, item, false)
		}
		if paren {
			sb.WriteByte(')')
		}
	case *notNode:
		sb.WriteString("NOT ")
		if _, ok := n.inner.(*condNode); ok {
			sb.WriteByte('(')
			render(sb, n.inner, true)
			sb.WriteByte(')')
			return
		}
		render(sb, n.inner, false)
	case *condNode:
		sb.WriteString(n.field.Name)
		switch {
		case n.op == domain.OpIn:
			sb.WriteString(" in (")
			for i, v := range n.values {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(literalText(v))
			}
			sb.WriteByte(')')
		case methodText[n.op] != "":
			sb.WriteString("." + methodText[n.op] + "(" + literalText(n.value) + ")")
		default:
			sb.WriteString(" " + operatorText[n.op] + " " + literalText(n.value))
		}
	}
}

func isDayRange(n *logicNode) bool {
	if n.logic != domain.LogicAnd || len(n.items) != 2 {
		return false
	}
	lo, ok1 := n.items[0].(*condNode)
	hi, ok2 := n.items[1].(*condNode)
	return ok1 && ok2 && lo.field == hi.field &&
		lo.op == domain.OpGreaterThanOrEqual && hi.op == domain.OpLessThan
}

func literalText(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	return strconv.Quote(fmt.Sprint(v))
}
