// Package filter turns caller-supplied filters and order-by clauses into
// validated, typed queries.
//
// Every field name a caller mentions is resolved against a Whitelist before
// it is used. Structured filters (domain.FilterGroup) and textual filter
// expressions both end up in the same bound form, which is then rendered
// either as a parameterised SQL predicate (Where) or as an in-memory
// predicate (CompilePredicate).
package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/simp-lee/gamestore/internal/domain"
)

// Field is a whitelisted field of an entity type.
type Field struct {
	// Name is the public name callers use in filters and order-by clauses.
	Name string
	// Column is the store column the field maps to.
	Column string
	Type   domain.FieldType
}

// Entity is the set of fields callers may reference for one entity type.
// An Entity is immutable once built.
type Entity struct {
	name   string
	fields []Field
	index  map[string]Field
}

// NewEntity builds the whitelist of one entity type. Field names are matched
// case-insensitively, so two fields differing only in case are rejected.
// Panics on an invalid definition.
func NewEntity(name string, fields ...Field) *Entity {
	if strings.TrimSpace(name) == "" {
		panic("filter.NewEntity: name must not be empty")
	}
	e := &Entity{
		name:   name,
		fields: slices.Clone(fields),
		index:  make(map[string]Field, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" || f.Column == "" {
			panic(fmt.Sprintf("filter.NewEntity: %s has a field without name or column", name))
		}
		key := strings.ToLower(f.Name)
		if _, dup := e.index[key]; dup {
			panic(fmt.Sprintf("filter.NewEntity: %s declares field %q twice", name, f.Name))
		}
		e.index[key] = f
	}
	return e
}

// Name returns the entity type name.
func (e *Entity) Name() string {
	return e.name
}

// Fields returns the whitelisted fields in declaration order.
func (e *Entity) Fields() []Field {
	return slices.Clone(e.fields)
}

// Field looks a field up by name, ignoring case.
func (e *Entity) Field(name string) (Field, bool) {
	f, ok := e.index[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Resolve is Field with a DisallowedField error for unknown names.
func (e *Entity) Resolve(name string) (Field, error) {
	f, ok := e.Field(name)
	if !ok {
		return Field{}, domain.NewDisallowedFieldError(name)
	}
	return f, nil
}

// Whitelist maps entity type names to their field whitelists.
// It is read-only after construction and safe for concurrent use.
type Whitelist struct {
	entities map[string]*Entity
}

// NewWhitelist registers the given entities. Entity names are matched
// case-insensitively.
func NewWhitelist(entities ...*Entity) *Whitelist {
	w := &Whitelist{entities: make(map[string]*Entity, len(entities))}
	for _, e := range entities {
		if e == nil {
			panic("filter.NewWhitelist: nil entity")
		}
		w.entities[strings.ToLower(e.name)] = e
	}
	return w
}

// Entity returns the whitelist of entityType, or UnsupportedEntityType.
func (w *Whitelist) Entity(entityType string) (*Entity, error) {
	e, ok := w.entities[strings.ToLower(strings.TrimSpace(entityType))]
	if !ok {
		return nil, domain.NewUnsupportedEntityTypeError(entityType)
	}
	return e, nil
}

// AllowedFields returns the public field names of entityType.
func (w *Whitelist) AllowedFields(entityType string) ([]string, error) {
	e, err := w.Entity(entityType)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(e.fields))
	for i, f := range e.fields {
		names[i] = f.Name
	}
	return names, nil
}

// IsAllowed reports whether field is whitelisted for entityType.
func (w *Whitelist) IsAllowed(entityType, field string) (bool, error) {
	e, err := w.Entity(entityType)
	if err != nil {
		return false, err
	}
	_, ok := e.Field(field)
	return ok, nil
}
