package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"learnpath/internal/model"
)

// ModuleRepository defines module persistence operations.
type ModuleRepository interface {
	Create(ctx context.Context, module *model.Module) error
	Update(ctx context.Context, module *model.Module) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Module, error)
	// FindByIDs loads the modules with the given IDs in no particular order.
	// Missing IDs are skipped. When columns is non-empty only those columns
	// are read.
	FindByIDs(ctx context.Context, ids []uuid.UUID, columns ...string) ([]model.Module, error)
	List(ctx context.Context) ([]model.Module, error)
}

type moduleRepository struct {
	db *gorm.DB
}

// NewModuleRepository creates a new module repository.
func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

// Create creates a new module.
func (r *moduleRepository) Create(ctx context.Context, module *model.Module) error {
	return r.db.WithContext(ctx).Create(module).Error
}

// Update saves every field of an existing module.
func (r *moduleRepository) Update(ctx context.Context, module *model.Module) error {
	return r.db.WithContext(ctx).Save(module).Error
}

// Delete removes a module. Paths referencing it are left untouched.
func (r *moduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Module{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a module by ID.
func (r *moduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Module, error) {
	var module model.Module
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&module).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID, columns ...string) ([]model.Module, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).Where("id IN ?", ids)
	if len(columns) > 0 {
		q = q.Select(columns)
	}
	var modules []model.Module
	if err := q.Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

// List lists all modules by title.
func (r *moduleRepository) List(ctx context.Context) ([]model.Module, error) {
	var modules []model.Module
	if err := r.db.WithContext(ctx).Order("title").Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}
