package pkg

import (
	"context"

	"gorm.io/gorm"
)

// WithTx runs fn in a transaction bound to ctx. Writes are kept only when
// fn returns nil and ctx is still live at commit time; a panic in fn rolls
// back and propagates. Called with a handle that is already inside a
// transaction, fn runs under a savepoint instead.
func WithTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		return ctx.Err()
	})
}
