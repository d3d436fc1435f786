package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/gamestore/internal/domain"
)

// uniqueViolationMarkers are the fragments drivers use when a unique index
// rejects a write. The pure-Go SQLite driver is never translated to
// gorm.ErrDuplicatedKey, so its text has to be matched.
var uniqueViolationMarkers = []string{
	"unique constraint", // sqlite and postgres
	"duplicate key",     // postgres
	"duplicate entry",
}

// MapError turns a store error into a domain error. Errors that already
// are domain errors pass through untouched. Store failures are not
// retried; they surface as Internal.
func MapError(err error) error {
	var appErr *domain.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), violatesUnique(err):
		return domain.NewAppError(domain.CodeAlreadyExists, "record already exists", err)
	default:
		return domain.NewAppError(domain.CodeInternal, "store failure", err)
	}
}

func violatesUnique(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, m := range uniqueViolationMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
