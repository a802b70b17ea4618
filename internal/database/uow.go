package database

import (
	"context"

	"gorm.io/gorm"
)

// WithinTransaction runs fn inside a single database transaction. The
// *gorm.DB handed to fn is already scoped to ctx; repositories created
// from it share the transaction. Returning an error rolls everything
// back, otherwise the transaction commits.
func WithinTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}
