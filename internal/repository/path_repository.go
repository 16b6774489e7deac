package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnpath/internal/model"
)

// PathRepository defines path persistence operations. Paths are always
// loaded together with their module entries.
type PathRepository interface {
	Create(ctx context.Context, path *model.Path) error
	// Update saves the title and, when replaceModules is set, swaps the
	// stored module entries for path.Entries. path.UpdatedAt is refreshed.
	Update(ctx context.Context, path *model.Path, replaceModules bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Path, error)
	List(ctx context.Context) ([]model.Path, error)
	// AppendModule adds moduleID at the end of the path's module list.
	AppendModule(ctx context.Context, pathID, moduleID uuid.UUID) error
}

type pathRepository struct {
	db *gorm.DB
}

// NewPathRepository creates a new path repository.
func NewPathRepository(db *gorm.DB) PathRepository {
	return &pathRepository{db: db}
}

// Create inserts the path and its entries.
func (r *pathRepository) Create(ctx context.Context, path *model.Path) error {
	return r.db.WithContext(ctx).Create(path).Error
}

func (r *pathRepository) Update(ctx context.Context, path *model.Path, replaceModules bool) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Path{}).Where("id = ?", path.ID).
			Updates(map[string]interface{}{"title": path.Title, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.Path{}).Where("id = ?", path.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		if !replaceModules {
			return nil
		}
		if err := tx.Where("path_id = ?", path.ID).Delete(&model.PathModule{}).Error; err != nil {
			return err
		}
		if len(path.Entries) == 0 {
			return nil
		}
		for i := range path.Entries {
			path.Entries[i].PathID = path.ID
		}
		return tx.Create(&path.Entries).Error
	})
	if err != nil {
		return err
	}
	path.UpdatedAt = now
	return nil
}

// Delete removes the path and its entries. Referenced modules are kept.
func (r *pathRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("path_id = ?", id).Delete(&model.PathModule{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Path{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// FindByID finds a path by ID.
func (r *pathRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Path, error) {
	var path model.Path
	if err := r.db.WithContext(ctx).Preload("Entries").Where("id = ?", id).First(&path).Error; err != nil {
		return nil, err
	}
	return &path, nil
}

// List lists all paths in creation order.
func (r *pathRepository) List(ctx context.Context) ([]model.Path, error) {
	var paths []model.Path
	if err := r.db.WithContext(ctx).Preload("Entries").Order("created_at").Find(&paths).Error; err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *pathRepository) AppendModule(ctx context.Context, pathID, moduleID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var path model.Path
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", pathID).First(&path).Error; err != nil {
			return err
		}

		var next int
		if err := tx.Model(&model.PathModule{}).
			Where("path_id = ?", pathID).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&next).Error; err != nil {
			return err
		}

		entry := model.PathModule{PathID: pathID, Position: next, ModuleID: &moduleID}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&path).Update("updated_at", time.Now()).Error
	})
}
