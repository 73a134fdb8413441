package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// WithTransaction executes a function within a database transaction.
// The transaction is committed if fn returns nil and rolled back if fn
// returns an error or panics. The upload pipeline relies on this for
// the insert-item-and-append-to-party unit.
func (db *DB) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return fmt.Errorf("transaction error: %w", err)
		}
		return nil
	})
}
