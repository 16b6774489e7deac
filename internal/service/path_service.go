package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	apperrors "learnpath/internal/errors"
	"learnpath/internal/metrics"
	"learnpath/internal/model"
	"learnpath/internal/repository"
)

// CreatePathInput is the payload of a path creation.
type CreatePathInput struct {
	Title   string
	Modules []model.ModuleRef
}

// UpdatePathInput is a partial path update; nil fields are left unchanged.
type UpdatePathInput struct {
	Title   *string
	Modules *[]model.ModuleRef
}

// PathService handles learning path operations.
type PathService interface {
	// CreatePath stores a new path. Embedded module objects are cloned into
	// new module records; identifier references are stored as given.
	CreatePath(ctx context.Context, in CreatePathInput) (*model.PathDocument, error)
	GetPath(ctx context.Context, id uuid.UUID) (*model.PopulatedPath, error)
	ListPaths(ctx context.Context) ([]model.PopulatedPath, error)
	// ListPathSummaries lists paths with modules projected to fields
	// (as returned by model.ParseModuleFields).
	ListPathSummaries(ctx context.Context, fields []string) ([]model.PathSummary, error)
	UpdatePath(ctx context.Context, id uuid.UUID, in UpdatePathInput) (*model.PathDocument, error)
	DeletePath(ctx context.Context, id uuid.UUID) error
	AddModule(ctx context.Context, pathID, moduleID uuid.UUID) (*model.PathDocument, error)
}

type pathService struct {
	tx          repository.Transactor
	paths       repository.PathRepository
	modules     repository.ModuleRepository
	metrics     *metrics.Collector
	logger      zerolog.Logger
	strictClone bool
}

// NewPathService creates a new path service. With strictClone set, creating a
// path from an embedded module whose source no longer exists fails instead of
// storing a null placeholder.
func NewPathService(
	tx repository.Transactor,
	paths repository.PathRepository,
	modules repository.ModuleRepository,
	collector *metrics.Collector,
	logger zerolog.Logger,
	strictClone bool,
) PathService {
	return &pathService{
		tx:          tx,
		paths:       paths,
		modules:     modules,
		metrics:     collector,
		logger:      logger,
		strictClone: strictClone,
	}
}

func (s *pathService) CreatePath(ctx context.Context, in CreatePathInput) (*model.PathDocument, error) {
	path := &model.Path{ID: uuid.New(), Title: in.Title}
	var cloned, missed int

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		cloned, missed = 0, 0
		ids := make([]*uuid.UUID, len(in.Modules))
		for i, ref := range in.Modules {
			if ref.Kind == model.RefIdentifier {
				id := ref.ID
				ids[i] = &id
				continue
			}

			clone, err := s.cloneModule(ctx, repos.Modules, ref)
			if err != nil {
				return err
			}
			if clone == nil {
				missed++
				continue
			}
			cloned++
			ids[i] = &clone.ID
		}

		path.SetModuleIDs(ids)
		if err := repos.Paths.Create(ctx, path); err != nil {
			return fmt.Errorf("create path: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ModulesCloned.Add(float64(cloned))
	s.metrics.CloneMisses.Add(float64(missed))

	doc := path.Document()
	return &doc, nil
}

// cloneModule copies the source module of an embedded reference. It returns
// nil without error when the source is gone and strict mode is off.
func (s *pathService) cloneModule(ctx context.Context, modules repository.ModuleRepository, ref model.ModuleRef) (*model.Module, error) {
	srcID, ok := ref.TargetID()
	if !ok {
		return s.cloneMiss(uuid.Nil)
	}

	src, err := modules.FindByID(ctx, srcID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.cloneMiss(srcID)
	}
	if err != nil {
		return nil, fmt.Errorf("find module %s: %w", srcID, err)
	}

	clone := src.Clone()
	if err := modules.Create(ctx, clone); err != nil {
		return nil, fmt.Errorf("clone module %s: %w", srcID, err)
	}
	return clone, nil
}

func (s *pathService) cloneMiss(srcID uuid.UUID) (*model.Module, error) {
	if s.strictClone {
		return nil, fmt.Errorf("clone module %s: %w", srcID, apperrors.ErrModuleNotFound)
	}
	s.logger.Warn().Str("module_id", srcID.String()).Msg("clone source not found, storing null")
	return nil, nil
}

func (s *pathService) GetPath(ctx context.Context, id uuid.UUID) (*model.PopulatedPath, error) {
	path, err := s.paths.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPathNotFound
		}
		return nil, fmt.Errorf("find path: %w", err)
	}

	byID, err := s.loadModules(ctx, model.ReferencedModuleIDs(path))
	if err != nil {
		return nil, err
	}
	populated := path.Populate(byID)
	return &populated, nil
}

func (s *pathService) ListPaths(ctx context.Context) ([]model.PopulatedPath, error) {
	paths, err := s.paths.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}

	byID, err := s.loadModules(ctx, model.ReferencedModuleIDs(pathPtrs(paths)...))
	if err != nil {
		return nil, err
	}

	out := make([]model.PopulatedPath, len(paths))
	for i := range paths {
		out[i] = paths[i].Populate(byID)
	}
	return out, nil
}

func (s *pathService) ListPathSummaries(ctx context.Context, fields []string) ([]model.PathSummary, error) {
	paths, err := s.paths.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}

	byID, err := s.loadModules(ctx, model.ReferencedModuleIDs(pathPtrs(paths)...), model.ModuleColumns(fields)...)
	if err != nil {
		return nil, err
	}

	out := make([]model.PathSummary, len(paths))
	for i := range paths {
		out[i] = paths[i].Summarize(byID, fields)
	}
	return out, nil
}

func (s *pathService) UpdatePath(ctx context.Context, id uuid.UUID, in UpdatePathInput) (*model.PathDocument, error) {
	path, err := s.paths.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPathNotFound
		}
		return nil, fmt.Errorf("find path: %w", err)
	}

	if in.Title != nil {
		path.Title = *in.Title
	}
	if in.Modules != nil {
		refs := *in.Modules
		ids := make([]*uuid.UUID, len(refs))
		for i, ref := range refs {
			if target, ok := ref.TargetID(); ok {
				ids[i] = &target
			}
		}
		path.SetModuleIDs(ids)
	}

	if err := s.paths.Update(ctx, path, in.Modules != nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPathNotFound
		}
		return nil, fmt.Errorf("update path: %w", err)
	}

	doc := path.Document()
	return &doc, nil
}

// DeletePath removes a path. Deleting a missing path is not an error.
func (s *pathService) DeletePath(ctx context.Context, id uuid.UUID) error {
	if err := s.paths.Delete(ctx, id); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("delete path: %w", err)
	}
	return nil
}

func (s *pathService) AddModule(ctx context.Context, pathID, moduleID uuid.UUID) (*model.PathDocument, error) {
	if _, err := s.modules.FindByID(ctx, moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrModuleNotFound
		}
		return nil, fmt.Errorf("find module: %w", err)
	}

	if err := s.paths.AppendModule(ctx, pathID, moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPathNotFound
		}
		return nil, fmt.Errorf("append module: %w", err)
	}

	path, err := s.paths.FindByID(ctx, pathID)
	if err != nil {
		return nil, fmt.Errorf("find path: %w", err)
	}
	doc := path.Document()
	return &doc, nil
}

// loadModules fetches the modules for ids keyed by ID. Unknown IDs are simply
// absent from the map.
func (s *pathService) loadModules(ctx context.Context, ids []uuid.UUID, columns ...string) (map[uuid.UUID]*model.Module, error) {
	modules, err := s.modules.FindByIDs(ctx, ids, columns...)
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Module, len(modules))
	for i := range modules {
		byID[modules[i].ID] = &modules[i]
	}
	return byID, nil
}

func pathPtrs(paths []model.Path) []*model.Path {
	out := make([]*model.Path, len(paths))
	for i := range paths {
		out[i] = &paths[i]
	}
	return out
}
