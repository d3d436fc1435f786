// Package audit keeps the audit and soft-delete columns of every record
// consistent. It is installed as a gorm plugin and is the only code that
// writes those columns.
//
// On insert the audit fields are reset, on update the creation time is
// excluded from the write and the modification time is stamped, and a delete
// of a soft-deletable model is rewritten into an UPDATE that flags the rows
// as deleted. Statements run with Unscoped delete physically.
package audit

import (
	"log/slog"
	"reflect"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/simp-lee/gamestore/internal/domain"
)

const (
	pluginName = "audit"

	createCallback = "audit:before_create"
	updateCallback = "audit:before_update"
	deleteCallback = "audit:soft_delete"
)

// Plugin is the audit and soft-delete interceptor.
type Plugin struct {
	now func() time.Time
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithClock replaces the time source. Stamped times are always stored in UTC.
func WithClock(now func() time.Time) Option {
	return func(p *Plugin) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates the interceptor.
func New(opts ...Option) *Plugin {
	p := &Plugin{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements gorm.Plugin.
func (p *Plugin) Name() string {
	return pluginName
}

// Initialize implements gorm.Plugin by registering the create, update and
// delete callbacks.
func (p *Plugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register(createCallback, p.beforeCreate); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register(updateCallback, p.beforeUpdate); err != nil {
		return err
	}
	return cb.Delete().Before("gorm:delete").Register(deleteCallback, p.softDelete)
}

func (p *Plugin) stamp() time.Time {
	return p.now().UTC()
}

func (p *Plugin) beforeCreate(db *gorm.DB) {
	stmt := db.Statement
	if db.Error != nil || !hasAuditColumns(stmt.Schema) {
		return
	}
	now := p.stamp()

	switch dest := stmt.Dest.(type) {
	case map[string]any:
		stampCreatedMap(dest, now)
		return
	case []map[string]any:
		for _, m := range dest {
			stampCreatedMap(m, now)
		}
		return
	}

	forEachRecord(stmt.ReflectValue, func(rec any) {
		if a, ok := rec.(domain.Auditable); ok {
			a.StampCreated(now)
		}
	})
}

func stampCreatedMap(m map[string]any, now time.Time) {
	m[domain.ColumnCreatedAt] = now
	m[domain.ColumnLastModifiedAt] = nil
	m[domain.ColumnIsDeleted] = false
	m[domain.ColumnDeletedAt] = nil
}

func (p *Plugin) beforeUpdate(db *gorm.DB) {
	stmt := db.Statement
	if db.Error != nil || !hasAuditColumns(stmt.Schema) {
		return
	}
	now := p.stamp()

	// The creation time is never part of an UPDATE, whatever the record holds.
	stmt.Omits = append(stmt.Omits, domain.ColumnCreatedAt)

	if m, ok := stmt.Dest.(map[string]any); ok {
		m[domain.ColumnLastModifiedAt] = now
		if deleted, _ := m[domain.ColumnIsDeleted].(bool); deleted {
			if _, set := m[domain.ColumnDeletedAt]; !set {
				m[domain.ColumnDeletedAt] = gorm.Expr("COALESCE("+domain.ColumnDeletedAt+", ?)", now)
			}
		}
		return
	}

	live := false
	forEachRecord(stmt.ReflectValue, func(rec any) {
		if a, ok := rec.(domain.Auditable); ok {
			a.StampModified(now)
		}
		if s, ok := rec.(domain.SoftDeletable); ok && !s.Deleted() {
			live = true
		}
	})
	// Updates with a separate struct writes only that struct's non-zero
	// fields, so it is stamped as well.
	dv := reflect.Indirect(reflect.ValueOf(stmt.Dest))
	separate := dv.Kind() == reflect.Struct && dv != stmt.ReflectValue
	if separate {
		stmt.SetColumn(domain.ColumnLastModifiedAt, now, true)
		// A logical delete through Updates: stamp it and leave rows that are
		// already deleted, and their deletion time, alone.
		if flagsDeletion(stmt, dv) {
			stmt.SetColumn(domain.ColumnIsDeleted, true, true)
			stmt.SetColumn(domain.ColumnDeletedAt, now, true)
			if targeted(stmt) {
				stmt.AddClause(clause.Where{Exprs: []clause.Expression{
					clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: domain.ColumnIsDeleted}, Value: false},
				}})
			}
			return
		}
	}

	// A live record cannot clear a deletion: Deleted is terminal.
	if live && stmt.ReflectValue.Kind() == reflect.Struct {
		stmt.Omits = append(stmt.Omits, domain.ColumnIsDeleted, domain.ColumnDeletedAt)
	}
}

// targeted reports whether the update already has conditions or a model
// key, so an extra condition cannot lift gorm's guard against updates
// without a WHERE clause.
func targeted(stmt *gorm.Statement) bool {
	if _, ok := stmt.Clauses["WHERE"]; ok {
		return true
	}
	pk := stmt.Schema.PrioritizedPrimaryField
	if pk == nil || stmt.ReflectValue.Kind() != reflect.Struct {
		return false
	}
	_, zero := pk.ValueOf(stmt.Context, stmt.ReflectValue)
	return !zero
}

// flagsDeletion reports whether dv, a struct of the statement's model type
// passed to Updates, sets the deletion flag.
func flagsDeletion(stmt *gorm.Statement, dv reflect.Value) bool {
	field := stmt.Schema.LookUpField(domain.ColumnIsDeleted)
	if field == nil || dv.Type() != stmt.Schema.ModelType {
		return false
	}
	v, zero := field.ValueOf(stmt.Context, dv)
	deleted, _ := v.(bool)
	return !zero && deleted
}

func (p *Plugin) softDelete(db *gorm.DB) {
	stmt := db.Statement
	if db.Error != nil || stmt.Unscoped || stmt.SQL.Len() > 0 || !softDeletable(stmt.Schema) {
		return
	}
	now := p.stamp()

	forEachRecord(stmt.ReflectValue, func(rec any) {
		if s, ok := rec.(domain.SoftDeletable); ok {
			s.MarkDeleted(now)
		}
	})

	_, queryValues := schema.GetIdentityFieldValuesMap(stmt.Context, stmt.ReflectValue, stmt.Schema.PrimaryFields)
	column, values := schema.ToQueryValues(stmt.Table, stmt.Schema.PrimaryFieldDBNames, queryValues)
	if len(values) > 0 {
		stmt.AddClause(clause.Where{Exprs: []clause.Expression{clause.IN{Column: column, Values: values}}})
	}

	stmt.AddClause(clause.Set{
		{Column: clause.Column{Name: domain.ColumnIsDeleted}, Value: true},
		{Column: clause.Column{Name: domain.ColumnLastModifiedAt}, Value: now},
		{Column: clause.Column{Name: domain.ColumnDeletedAt}, Value: gorm.Expr("COALESCE("+domain.ColumnDeletedAt+", ?)", now)},
	})
	stmt.AddClauseIfNotExists(clause.Update{})
	stmt.Build(stmt.DB.Callback().Update().Clauses...)

	slog.DebugContext(stmt.Context, "delete converted to soft delete",
		slog.String("table", stmt.Table),
		slog.Int("keys", len(values)),
	)
}

func hasAuditColumns(s *schema.Schema) bool {
	return s != nil &&
		s.LookUpField(domain.ColumnCreatedAt) != nil &&
		s.LookUpField(domain.ColumnLastModifiedAt) != nil
}

func softDeletable(s *schema.Schema) bool {
	if s == nil || s.LookUpField(domain.ColumnIsDeleted) == nil {
		return false
	}
	_, ok := reflect.New(s.ModelType).Interface().(domain.SoftDeletable)
	return ok
}

// forEachRecord calls fn with a pointer to every addressable struct held by v.
func forEachRecord(v reflect.Value, fn func(any)) {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			forEachRecord(v.Index(i), fn)
		}
	case reflect.Pointer, reflect.Interface:
		if !v.IsNil() {
			forEachRecord(v.Elem(), fn)
		}
	case reflect.Struct:
		if v.CanAddr() {
			fn(v.Addr().Interface())
		}
	}
}
