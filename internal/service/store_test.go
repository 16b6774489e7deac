package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"learnpath/internal/model"
	"learnpath/internal/repository"
)

// memStore is an in-memory stand-in for the path and module tables. It
// implements both repositories and the transactor; a failed transaction
// restores the snapshot taken when it began.
type memStore struct {
	mu      sync.Mutex
	paths   map[uuid.UUID]model.Path
	modules map[uuid.UUID]model.Module
	seq     int

	failPathCreate error
}

func newMemStore() *memStore {
	return &memStore{
		paths:   make(map[uuid.UUID]model.Path),
		modules: make(map[uuid.UUID]model.Module),
	}
}

func (s *memStore) pathRepo() repository.PathRepository     { return (*memPaths)(s) }
func (s *memStore) moduleRepo() repository.ModuleRepository { return (*memModules)(s) }

func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	paths := make(map[uuid.UUID]model.Path, len(s.paths))
	for k, v := range s.paths {
		paths[k] = v
	}
	modules := make(map[uuid.UUID]model.Module, len(s.modules))
	for k, v := range s.modules {
		modules[k] = v
	}
	s.mu.Unlock()

	err := fn(ctx, repository.Repositories{Paths: s.pathRepo(), Modules: s.moduleRepo()})
	if err != nil {
		s.mu.Lock()
		s.paths, s.modules = paths, modules
		s.mu.Unlock()
	}
	return err
}

// addModule seeds a module and returns it.
func (s *memStore) addModule(title string) model.Module {
	m := model.Module{Title: title, Description: title + " description", Content: title + " content"}
	_ = s.moduleRepo().Create(context.Background(), &m)
	return m
}

func (s *memStore) tick() time.Time {
	s.seq++
	return time.Date(2024, 1, 1, 0, 0, s.seq, 0, time.UTC)
}

type memPaths memStore

func (r *memPaths) Create(_ context.Context, path *model.Path) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPathCreate != nil {
		return s.failPathCreate
	}
	if path.ID == uuid.Nil {
		path.ID = uuid.New()
	}
	for i := range path.Entries {
		path.Entries[i].PathID = path.ID
	}
	path.CreatedAt = s.tick()
	path.UpdatedAt = path.CreatedAt
	s.paths[path.ID] = copyPath(*path)
	return nil
}

func (r *memPaths) Update(_ context.Context, path *model.Path, replaceModules bool) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.paths[path.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Title = path.Title
	stored.UpdatedAt = s.tick()
	path.UpdatedAt = stored.UpdatedAt
	if replaceModules {
		stored.Entries = copyPath(*path).Entries
	}
	s.paths[path.ID] = stored
	return nil
}

func (r *memPaths) Delete(_ context.Context, id uuid.UUID) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.paths[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.paths, id)
	return nil
}

func (r *memPaths) FindByID(_ context.Context, id uuid.UUID) (*model.Path, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.paths[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := copyPath(p)
	return &out, nil
}

func (r *memPaths) List(_ context.Context) ([]model.Path, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Path, 0, len(s.paths))
	for _, p := range s.paths {
		out = append(out, copyPath(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memPaths) AppendModule(_ context.Context, pathID, moduleID uuid.UUID) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.paths[pathID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	next := 0
	for _, e := range p.Entries {
		if e.Position >= next {
			next = e.Position + 1
		}
	}
	id := moduleID
	p.Entries = append(p.Entries, model.PathModule{PathID: pathID, Position: next, ModuleID: &id})
	p.UpdatedAt = s.tick()
	s.paths[pathID] = p
	return nil
}

type memModules memStore

func (r *memModules) Create(_ context.Context, module *model.Module) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if module.ID == uuid.Nil {
		module.ID = uuid.New()
	}
	module.CreatedAt = s.tick()
	module.UpdatedAt = module.CreatedAt
	s.modules[module.ID] = *module
	return nil
}

func (r *memModules) Update(_ context.Context, module *model.Module) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[module.ID] = *module
	return nil
}

func (r *memModules) Delete(_ context.Context, id uuid.UUID) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.modules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.modules, id)
	return nil
}

func (r *memModules) FindByID(_ context.Context, id uuid.UUID) (*model.Module, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.modules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *memModules) FindByIDs(_ context.Context, ids []uuid.UUID, columns ...string) ([]model.Module, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Module
	for _, id := range ids {
		m, ok := s.modules[id]
		if !ok {
			continue
		}
		if len(columns) > 0 {
			m = selectColumns(m, columns)
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memModules) List(_ context.Context) ([]model.Module, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Module, 0, len(s.modules))
	for _, m := range s.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *memStore) moduleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.modules)
}

// selectColumns zeroes every field not named in columns, like a SELECT list.
func selectColumns(m model.Module, columns []string) model.Module {
	var out model.Module
	for _, c := range columns {
		switch c {
		case "id":
			out.ID = m.ID
		case "title":
			out.Title = m.Title
		case "description":
			out.Description = m.Description
		case "content":
			out.Content = m.Content
		case "resources":
			out.Resources = m.Resources
		case "created_at":
			out.CreatedAt = m.CreatedAt
		case "updated_at":
			out.UpdatedAt = m.UpdatedAt
		}
	}
	return out
}

func copyPath(p model.Path) model.Path {
	entries := make([]model.PathModule, len(p.Entries))
	copy(entries, p.Entries)
	p.Entries = entries
	return p
}
