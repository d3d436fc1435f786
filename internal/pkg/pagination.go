package pkg

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/gamestore/internal/domain"
	"github.com/simp-lee/gamestore/internal/filter"
)

const (
	defaultPageNumber = 1
	defaultPageSize   = 20
	maxPageSize       = 100
)

// PageDefaults bounds the page size of list requests.
type PageDefaults struct {
	PageSize    int
	MaxPageSize int
}

// DefaultPageDefaults is used when no query configuration is supplied.
var DefaultPageDefaults = PageDefaults{PageSize: defaultPageSize, MaxPageSize: maxPageSize}

// Apply fills an omitted page number or size and clamps the size to the
// maximum. Negative values are left alone for the repository to reject.
func (d PageDefaults) Apply(req *domain.PageRequest) {
	if d.PageSize < 1 {
		d.PageSize = defaultPageSize
	}
	if d.MaxPageSize < 1 {
		d.MaxPageSize = maxPageSize
	}
	if req.PageNumber == 0 {
		req.PageNumber = defaultPageNumber
	}
	if req.PageSize == 0 {
		req.PageSize = d.PageSize
	}
	if req.PageSize > d.MaxPageSize {
		req.PageSize = d.MaxPageSize
	}
}

// ParsePageRequest reads a page request from the query string:
// filter, order_by, page_number, page_size and include_deleted.
// Malformed numbers or flags yield InvalidPageRequest.
func ParsePageRequest(c *gin.Context, d PageDefaults) (domain.PageRequest, error) {
	req := domain.PageRequest{
		Filter:  strings.TrimSpace(c.Query("filter")),
		OrderBy: strings.TrimSpace(c.Query("order_by")),
	}

	var err error
	if req.PageNumber, err = queryInt(c, "page_number"); err != nil {
		return domain.PageRequest{}, err
	}
	if req.PageSize, err = queryInt(c, "page_size"); err != nil {
		return domain.PageRequest{}, err
	}
	if raw := c.Query("include_deleted"); raw != "" {
		if req.IncludeDeleted, err = strconv.ParseBool(raw); err != nil {
			return domain.PageRequest{}, domain.NewInvalidPageRequestError("include_deleted must be true or false")
		}
	}

	d.Apply(&req)
	return req, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewInvalidPageRequestError(key + " must be an integer")
	}
	return n, nil
}

// ValidatePageRequest rejects page numbers and sizes below one.
func ValidatePageRequest(req domain.PageRequest) error {
	if req.PageNumber < 1 {
		return domain.NewInvalidPageRequestError("page_number must be at least 1")
	}
	if req.PageSize < 1 {
		return domain.NewInvalidPageRequestError("page_size must be at least 1")
	}
	return nil
}

// Visible returns a GORM scope that hides logically deleted rows unless
// includeDeleted is set. It applies to the current query only.
func Visible(includeDeleted bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if includeDeleted {
			return db
		}
		return db.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: domain.ColumnIsDeleted}, Value: false})
	}
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET based on the page request.
func Paginate(req domain.PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		offset := (req.PageNumber - 1) * req.PageSize
		return db.Offset(offset).Limit(req.PageSize)
	}
}

// Order returns a GORM scope that sorts by the validated terms, newest first
// when there are none. The primary key is always the last key so that pages
// never overlap.
func Order(terms []filter.OrderTerm) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		columns := make([]clause.OrderByColumn, 0, len(terms)+2)
		hasID := false
		for _, t := range terms {
			columns = append(columns, clause.OrderByColumn{
				Column: clause.Column{Table: clause.CurrentTable, Name: t.Field.Column},
				Desc:   t.Desc,
			})
			hasID = hasID || t.Field.Column == domain.ColumnID
		}
		if len(terms) == 0 {
			columns = append(columns, clause.OrderByColumn{
				Column: clause.Column{Table: clause.CurrentTable, Name: domain.ColumnCreatedAt},
				Desc:   true,
			})
		}
		if !hasID {
			columns = append(columns, clause.OrderByColumn{
				Column: clause.Column{Table: clause.CurrentTable, Name: domain.ColumnID},
				Desc:   len(terms) == 0,
			})
		}
		return db.Order(clause.OrderBy{Columns: columns})
	}
}
