package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Path is a titled, ordered list of module references.
type Path struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Title     string    `gorm:"size:255;not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Relations
	Entries []PathModule `gorm:"foreignKey:PathID"`
}

// PathModule is one position of a path's module list. ModuleID is nil when
// the position holds a placeholder for a module that could not be resolved.
// Module IDs are not foreign keys: deleting a module leaves the reference.
type PathModule struct {
	PathID   uuid.UUID  `gorm:"type:char(36);primaryKey"`
	Position int        `gorm:"primaryKey;autoIncrement:false"`
	ModuleID *uuid.UUID `gorm:"type:char(36);index"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Path) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ModuleIDs returns the module references in path order.
func (p *Path) ModuleIDs() []*uuid.UUID {
	entries := make([]PathModule, len(p.Entries))
	copy(entries, p.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })

	ids := make([]*uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ModuleID
	}
	return ids
}

// SetModuleIDs replaces the entries with ids, numbered from zero.
func (p *Path) SetModuleIDs(ids []*uuid.UUID) {
	p.Entries = make([]PathModule, len(ids))
	for i, id := range ids {
		p.Entries[i] = PathModule{PathID: p.ID, Position: i, ModuleID: id}
	}
}

// Document renders the path with unresolved module identities.
func (p *Path) Document() PathDocument {
	return PathDocument{
		ID:        p.ID,
		Title:     p.Title,
		Modules:   p.ModuleIDs(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// PathDocument is the wire form of a path whose modules are identities.
// Null entries mark references that did not resolve at creation time.
type PathDocument struct {
	ID        uuid.UUID    `json:"_id"`
	Title     string       `json:"title"`
	Modules   []*uuid.UUID `json:"modules" swaggertype:"array,string"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// PopulatedPath is the wire form of a path with modules resolved to records.
// A nil entry is a reference that no longer resolves.
type PopulatedPath struct {
	ID        uuid.UUID `json:"_id"`
	Title     string    `json:"title"`
	Modules   []*Module `json:"modules"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PathSummary is a path whose modules are projected to a field subset.
type PathSummary struct {
	ID      uuid.UUID       `json:"_id"`
	Title   string          `json:"title"`
	Modules []ModuleSummary `json:"modules"`
}

// Populate resolves the path's module references against byID.
func (p *Path) Populate(byID map[uuid.UUID]*Module) PopulatedPath {
	ids := p.ModuleIDs()
	modules := make([]*Module, len(ids))
	for i, id := range ids {
		if id != nil {
			modules[i] = byID[*id]
		}
	}
	return PopulatedPath{
		ID:        p.ID,
		Title:     p.Title,
		Modules:   modules,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Summarize resolves the path's module references against byID and projects
// each module to fields.
func (p *Path) Summarize(byID map[uuid.UUID]*Module, fields []string) PathSummary {
	ids := p.ModuleIDs()
	modules := make([]ModuleSummary, len(ids))
	for i, id := range ids {
		if id == nil {
			continue
		}
		if m, ok := byID[*id]; ok {
			modules[i] = m.Project(fields)
		}
	}
	return PathSummary{ID: p.ID, Title: p.Title, Modules: modules}
}

// ReferencedModuleIDs collects the distinct non-nil module IDs of paths.
func ReferencedModuleIDs(paths ...*Path) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, p := range paths {
		for _, e := range p.Entries {
			if e.ModuleID == nil || seen[*e.ModuleID] {
				continue
			}
			seen[*e.ModuleID] = true
			ids = append(ids, *e.ModuleID)
		}
	}
	return ids
}
