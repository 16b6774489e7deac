package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"learnpath/internal/cache"
	apperrors "learnpath/internal/errors"
	"learnpath/internal/model"
	"learnpath/internal/repository"
)

const moduleCacheTTL = 5 * time.Minute

// CreateModuleInput is the payload of a module creation. When PathID is set
// the new module is appended to that path.
type CreateModuleInput struct {
	Title       string
	Description string
	Content     string
	Resources   datatypes.JSON
	PathID      *uuid.UUID
}

// UpdateModuleInput is a partial module update; nil fields are left unchanged.
type UpdateModuleInput struct {
	Title       *string
	Description *string
	Content     *string
	Resources   *datatypes.JSON
}

// ModuleService handles module operations.
type ModuleService interface {
	CreateModule(ctx context.Context, in CreateModuleInput) (*model.Module, error)
	GetModule(ctx context.Context, id uuid.UUID) (*model.Module, error)
	ListModules(ctx context.Context) ([]model.Module, error)
	UpdateModule(ctx context.Context, id uuid.UUID, in UpdateModuleInput) (*model.Module, error)
	DeleteModule(ctx context.Context, id uuid.UUID) error
}

type moduleService struct {
	tx    repository.Transactor
	repo  repository.ModuleRepository
	cache *cache.Client
}

// NewModuleService creates a new module service.
func NewModuleService(tx repository.Transactor, repo repository.ModuleRepository, cache *cache.Client) ModuleService {
	return &moduleService{tx: tx, repo: repo, cache: cache}
}

func (s *moduleService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("module:%s", id.String())
}

// CreateModule stores a module, attaching it to a path in the same
// transaction when requested.
func (s *moduleService) CreateModule(ctx context.Context, in CreateModuleInput) (*model.Module, error) {
	module := &model.Module{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Resources:   in.Resources,
	}

	if in.PathID == nil {
		if err := s.repo.Create(ctx, module); err != nil {
			return nil, fmt.Errorf("create module: %w", err)
		}
		return module, nil
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Modules.Create(ctx, module); err != nil {
			return fmt.Errorf("create module: %w", err)
		}
		if err := repos.Paths.AppendModule(ctx, *in.PathID, module.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPathNotFound
			}
			return fmt.Errorf("append module: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

// GetModule retrieves a module by ID with caching.
func (s *moduleService) GetModule(ctx context.Context, id uuid.UUID) (*model.Module, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Module
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrModuleNotFound
		}
		return nil, fmt.Errorf("find module: %w", err)
	}

	if payload, err := json.Marshal(module); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, moduleCacheTTL)
	}
	return module, nil
}

func (s *moduleService) ListModules(ctx context.Context) ([]model.Module, error) {
	modules, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

func (s *moduleService) UpdateModule(ctx context.Context, id uuid.UUID, in UpdateModuleInput) (*model.Module, error) {
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrModuleNotFound
		}
		return nil, fmt.Errorf("find module: %w", err)
	}

	if in.Title != nil {
		module.Title = *in.Title
	}
	if in.Description != nil {
		module.Description = *in.Description
	}
	if in.Content != nil {
		module.Content = *in.Content
	}
	if in.Resources != nil {
		module.Resources = *in.Resources
	}

	if err := s.repo.Update(ctx, module); err != nil {
		return nil, fmt.Errorf("update module: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return module, nil
}

// DeleteModule removes a module. Paths keep their now dangling references,
// which populate as null. Deleting a missing module is not an error.
func (s *moduleService) DeleteModule(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("delete module: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}
