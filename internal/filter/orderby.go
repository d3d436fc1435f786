package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/simp-lee/gamestore/internal/domain"
)

var orderByDisallowed = regexp.MustCompile(`[^\w\s,]`)

// OrderTerm is one validated order-by term.
type OrderTerm struct {
	Field Field
	Desc  bool
}

// ParseOrderBy validates a comma separated order-by clause such as
// "Titolo desc, PrezzoListino". Each term is a field name optionally followed
// by a direction; anything other than "desc" sorts ascending. Blank input
// yields no terms.
func (s *Sanitizer) ParseOrderBy(text, entityType string) ([]OrderTerm, error) {
	e, err := s.whitelist.Entity(entityType)
	if err != nil {
		return nil, err
	}
	return parseOrderBy(e, text)
}

// SanitizeOrderBy validates an order-by clause and returns it in canonical
// form, with explicit directions: "Titolo desc, PrezzoListino asc".
func (s *Sanitizer) SanitizeOrderBy(text, entityType string) (string, error) {
	terms, err := s.ParseOrderBy(text, entityType)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		dir := "asc"
		if t.Desc {
			dir = "desc"
		}
		parts[i] = t.Field.Name + " " + dir
	}
	return strings.Join(parts, ", "), nil
}

func parseOrderBy(e *Entity, text string) ([]OrderTerm, error) {
	text = orderByDisallowed.ReplaceAllString(text, "")
	var terms []OrderTerm
	for _, raw := range strings.Split(text, ",") {
		tokens := strings.Fields(raw)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) > 2 {
			return nil, domain.NewInvalidFilterSyntaxError(fmt.Sprintf("order-by term %q has too many words", strings.TrimSpace(raw)), nil)
		}
		f, err := e.Resolve(tokens[0])
		if err != nil {
			return nil, err
		}
		t := OrderTerm{Field: f}
		if len(tokens) == 2 {
			t.Desc = strings.EqualFold(tokens[1], "desc")
		}
		terms = append(terms, t)
	}
	return terms, nil
}
