package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store column names of the audit and soft-delete fields.
const (
	ColumnID             = "id"
	ColumnCreatedAt      = "created_at"
	ColumnLastModifiedAt = "last_modified_at"
	ColumnIsDeleted      = "is_deleted"
	ColumnDeletedAt      = "deleted_at"
)

// Auditable is implemented by records that carry creation and modification timestamps.
type Auditable interface {
	StampCreated(now time.Time)
	StampModified(now time.Time)
}

// SoftDeletable is implemented by records that are deleted logically.
type SoftDeletable interface {
	Deleted() bool
	MarkDeleted(now time.Time)
}

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of
// gorm.DeletedAt: visibility of deleted rows is an explicit query scope.
//
// The audit and soft-delete fields are written only by the audit interceptor.
type BaseModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time  `gorm:"not null;index" json:"created_at"`
	LastModifiedAt *time.Time `json:"last_modified_at"`
	IsDeleted      bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at"`
}

// BeforeCreate assigns a random identifier to records created without one.
func (m *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// StampCreated resets every audit field for a fresh insert.
func (m *BaseModel) StampCreated(now time.Time) {
	m.CreatedAt = now
	m.LastModifiedAt = nil
	m.IsDeleted = false
	m.DeletedAt = nil
}

// StampModified records a modification. A record flagged deleted without a
// deletion time gets one.
func (m *BaseModel) StampModified(now time.Time) {
	m.LastModifiedAt = &now
	if m.IsDeleted && m.DeletedAt == nil {
		m.DeletedAt = &now
	}
}

// Deleted reports whether the record has been logically deleted.
func (m *BaseModel) Deleted() bool {
	return m.IsDeleted
}

// MarkDeleted flips the record to deleted. The deletion time is set once.
func (m *BaseModel) MarkDeleted(now time.Time) {
	m.IsDeleted = true
	if m.DeletedAt == nil {
		m.DeletedAt = &now
	}
	m.LastModifiedAt = &now
}

// PageRequest describes one bounded slice of a filtered, ordered result set.
// Filter is the textual filter expression; FilterTree is the structured form.
// When both are present they are ANDed.
type PageRequest struct {
	Filter         string       `json:"filter,omitempty" form:"filter"`
	FilterTree     *FilterGroup `json:"filter_tree,omitempty"`
	OrderBy        string       `json:"order_by,omitempty" form:"order_by"`
	PageNumber     int          `json:"page_number" form:"page_number"`
	PageSize       int          `json:"page_size" form:"page_size"`
	IncludeDeleted bool         `json:"include_deleted" form:"include_deleted"`
}

// PageResult is one page of items plus the total count of the filtered set.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	TotalItems int64 `json:"total_items"`
	PageNumber int   `json:"page_number"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResult creates a PageResult with computed TotalPages.
func NewPageResult[T any](items []T, total int64, req PageRequest) *PageResult[T] {
	totalPages := 0
	if req.PageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	}

	if items == nil {
		items = []T{}
	}

	return &PageResult[T]{
		Items:      items,
		TotalItems: total,
		PageNumber: req.PageNumber,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}
}
