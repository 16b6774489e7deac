package model

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Module is a single unit of learning content. Paths reference modules by ID;
// a module may be shared by any number of paths.
type Module struct {
	ID          uuid.UUID      `json:"_id" gorm:"type:char(36);primaryKey"`
	Title       string         `json:"title" gorm:"size:255;not null;index"`
	Description string         `json:"description" gorm:"type:text"`
	Content     string         `json:"content" gorm:"type:longtext"`
	Resources   datatypes.JSON `json:"resources,omitempty" gorm:"type:json" swaggertype:"object"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Clone copies the module's content into a new, unsaved record with a fresh ID.
// The copy shares no memory with the receiver.
func (m *Module) Clone() *Module {
	var resources datatypes.JSON
	if m.Resources != nil {
		resources = datatypes.JSON(bytes.Clone(m.Resources))
	}
	return &Module{
		ID:          uuid.New(),
		Title:       m.Title,
		Description: m.Description,
		Content:     m.Content,
		Resources:   resources,
	}
}

// moduleColumns maps the JSON names a client may project on to column names.
var moduleColumns = map[string]string{
	"_id":         "id",
	"title":       "title",
	"description": "description",
	"content":     "content",
	"resources":   "resources",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

// ParseModuleFields splits a comma separated field list, dropping blanks,
// duplicates and names that are not module fields. "_id" is always included
// and always first.
func ParseModuleFields(raw string) []string {
	fields := []string{"_id"}
	seen := map[string]bool{"_id": true}
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if _, ok := moduleColumns[f]; !ok || seen[f] {
			continue
		}
		seen[f] = true
		fields = append(fields, f)
	}
	return fields
}

// ModuleColumns returns the column names for fields as produced by ParseModuleFields.
func ModuleColumns(fields []string) []string {
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		if col, ok := moduleColumns[f]; ok {
			cols = append(cols, col)
		}
	}
	return cols
}

// ModuleSummary is a module reduced to a subset of its fields.
type ModuleSummary map[string]interface{}

// Project reduces the module to the given JSON fields.
func (m *Module) Project(fields []string) ModuleSummary {
	s := make(ModuleSummary, len(fields))
	for _, f := range fields {
		switch f {
		case "_id":
			s[f] = m.ID
		case "title":
			s[f] = m.Title
		case "description":
			s[f] = m.Description
		case "content":
			s[f] = m.Content
		case "resources":
			s[f] = m.Resources
		case "created_at":
			s[f] = m.CreatedAt
		case "updated_at":
			s[f] = m.UpdatedAt
		}
	}
	return s
}
