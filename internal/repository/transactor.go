package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles the repositories that take part in one unit of work.
type Repositories struct {
	Paths   PathRepository
	Modules ModuleRepository
}

// Transactor runs work against repositories bound to a single transaction.
// Returning an error from fn rolls everything back.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a GORM-backed transactor.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

// WithTransaction executes fn within a database transaction.
func (t *gormTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, Repositories{
			Paths:   NewPathRepository(tx),
			Modules: NewModuleRepository(tx),
		})
	})
}
