// Package repository provides the generic data access layer shared by the
// catalog modules: paged, filtered queries over one entity type plus the
// plain CRUD operations.
//
// Every query hides logically deleted rows unless the caller asks for them
// for that single call. Deletes go through the audit interceptor and only
// flag rows; HardRemove is the one path that erases them.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/gamestore/internal/domain"
	"github.com/simp-lee/gamestore/internal/filter"
	"github.com/simp-lee/gamestore/internal/pkg"
)

const defaultBatchSize = 100

// Scope narrows a query. Presets are scopes supplied by domain logic and are
// always ANDed with the caller's filter.
type Scope = func(*gorm.DB) *gorm.DB

// Repository runs queries for one whitelisted entity type T.
// It is safe for concurrent use.
type Repository[T any] struct {
	db        *gorm.DB
	entity    *filter.Entity
	sanitizer *filter.Sanitizer
}

// New creates a repository for the entity type registered under entityType
// in the sanitizer's whitelist.
func New[T any](db *gorm.DB, sanitizer *filter.Sanitizer, entityType string) (*Repository[T], error) {
	entity, err := sanitizer.Whitelist().Entity(entityType)
	if err != nil {
		return nil, err
	}
	return &Repository[T]{db: db, entity: entity, sanitizer: sanitizer}, nil
}

// MustNew is New for package-level wiring; it panics on an unknown entity type.
func MustNew[T any](db *gorm.DB, sanitizer *filter.Sanitizer, entityType string) *Repository[T] {
	r, err := New[T](db, sanitizer, entityType)
	if err != nil {
		panic(err)
	}
	return r
}

// Entity returns the whitelist the repository validates against.
func (r *Repository[T]) Entity() *filter.Entity {
	return r.entity
}

// DB returns a session bound to ctx for queries the generic operations do
// not cover.
func (r *Repository[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// QueryOption adjusts one GetPaged call.
type QueryOption func(*queryOptions)

type queryOptions struct {
	presets  []Scope
	includes []string
}

// WithPreset restricts the query with a scope the caller's filter cannot
// widen.
func WithPreset(scopes ...Scope) QueryOption {
	return func(o *queryOptions) {
		o.presets = append(o.presets, scopes...)
	}
}

// WithIncludes eager-loads the named associations of every returned item.
func WithIncludes(names ...string) QueryOption {
	return func(o *queryOptions) {
		o.includes = append(o.includes, names...)
	}
}

// GetPaged returns one page of the filtered, ordered collection.
//
// The filter and order-by are compiled before anything touches the store, so
// an invalid request never produces a count. The total is counted over the
// filtered collection before ordering and paging are applied.
func (r *Repository[T]) GetPaged(ctx context.Context, req domain.PageRequest, opts ...QueryOption) (*domain.PageResult[T], error) {
	if err := pkg.ValidatePageRequest(req); err != nil {
		return nil, err
	}
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}

	where, err := r.compileFilter(req)
	if err != nil {
		return nil, err
	}
	terms, err := r.sanitizer.ParseOrderBy(req.OrderBy, r.entity.Name())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := r.db.WithContext(ctx).Model(new(T)).
		Scopes(pkg.Visible(req.IncludeDeleted)).
		Scopes(o.presets...)
	if where != nil {
		base = base.Where(where)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, r.fail(ctx, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var items []T
	if err := base.Scopes(
		pkg.Order(terms),
		pkg.Paginate(req),
		preload(o.includes),
	).Find(&items).Error; err != nil {
		return nil, r.fail(ctx, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return domain.NewPageResult(items, total, req), nil
}

// compileFilter ANDs the textual filter with the structured one. A nil
// expression means no filtering.
func (r *Repository[T]) compileFilter(req domain.PageRequest) (clause.Expression, error) {
	var groups []domain.FilterGroup
	if strings.TrimSpace(req.Filter) != "" {
		g, err := r.sanitizer.ParseFilter(req.Filter, r.entity.Name())
		if err != nil {
			return nil, err
		}
		if g != nil {
			groups = append(groups, *g)
		}
	}
	if req.FilterTree != nil {
		groups = append(groups, *req.FilterTree)
	}

	var tree *domain.FilterGroup
	switch len(groups) {
	case 0:
		return nil, nil
	case 1:
		tree = &groups[0]
	default:
		tree = &domain.FilterGroup{Logic: domain.LogicAnd, Groups: groups}
	}

	sqlizer, err := filter.Where(r.entity, tree)
	if err != nil || sqlizer == nil {
		return nil, err
	}
	query, args, err := sqlizer.ToSql()
	if err != nil {
		return nil, domain.NewInvalidFilterSyntaxError("cannot render filter", err)
	}
	return clause.Expr{SQL: query, Vars: args}, nil
}

// GetByID retrieves a record by primary key, eager-loading includes.
func (r *Repository[T]) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool, includes ...string) (*T, error) {
	var item T
	err := r.db.WithContext(ctx).
		Scopes(pkg.Visible(includeDeleted), preload(includes)).
		Where(byID(id)).
		First(&item).Error
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &item, nil
}

// GetAll returns every record in the default order.
func (r *Repository[T]) GetAll(ctx context.Context, includeDeleted bool, includes ...string) ([]T, error) {
	var items []T
	err := r.db.WithContext(ctx).
		Scopes(pkg.Visible(includeDeleted), pkg.Order(nil), preload(includes)).
		Find(&items).Error
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return items, nil
}

// Create inserts a record. The audit fields are stamped by the interceptor;
// loaded relations are not written.
func (r *Repository[T]) Create(ctx context.Context, item *T) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return r.fail(ctx, err)
	}
	return nil
}

// CreateBatch inserts records in one transaction.
func (r *Repository[T]) CreateBatch(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(items, defaultBatchSize).Error; err != nil {
		return r.fail(ctx, err)
	}
	return nil
}

// Update writes every column of an existing record except its creation
// time. It never inserts: a record that is not stored, purged ones
// included, is NotFound.
func (r *Repository[T]) Update(ctx context.Context, item *T) error {
	result := r.db.WithContext(ctx).Model(item).Select("*").Omit(clause.Associations).Updates(item)
	switch {
	case errors.Is(result.Error, gorm.ErrMissingWhereClause):
		return domain.ErrNotFound
	case result.Error != nil:
		return r.fail(ctx, result.Error)
	case result.RowsAffected == 0:
		return domain.ErrNotFound
	}
	return nil
}

// Remove logically deletes a live record.
func (r *Repository[T]) Remove(ctx context.Context, id uuid.UUID) error {
	return r.remove(ctx, r.db, id)
}

func (r *Repository[T]) remove(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	result := db.WithContext(ctx).Scopes(pkg.Visible(false)).Where(byID(id)).Delete(new(T))
	if result.Error != nil {
		return r.fail(ctx, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RemoveRange logically deletes several records in one transaction. Nothing
// is deleted unless every record is found.
func (r *Repository[T]) RemoveRange(ctx context.Context, ids []uuid.UUID) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		for _, id := range ids {
			if err := r.remove(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// HardRemove physically erases a record, deleted or not.
func (r *Repository[T]) HardRemove(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Unscoped().Where(byID(id)).Delete(new(T))
	if result.Error != nil {
		return r.fail(ctx, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count counts the live records matching the presets.
func (r *Repository[T]) Count(ctx context.Context, presets ...Scope) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).
		Scopes(pkg.Visible(false)).
		Scopes(presets...).
		Count(&n).Error
	if err != nil {
		return 0, r.fail(ctx, err)
	}
	return n, nil
}

// Exists reports whether any live record matches the presets.
func (r *Repository[T]) Exists(ctx context.Context, presets ...Scope) (bool, error) {
	n, err := r.Count(ctx, presets...)
	return n > 0, err
}

// fail reports a cancelled context as itself and maps everything else.
func (r *Repository[T]) fail(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return ctxErr
	}
	return MapError(err)
}

func byID(id uuid.UUID) clause.Expression {
	return clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: domain.ColumnID}, Value: id}
}

func preload(names []string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		for _, name := range names {
			db = db.Preload(name)
		}
		return db
	}
}

// Column returns a preset scope comparing one column of the current table.
func Column(name string, value any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: name}, Value: value})
	}
}
