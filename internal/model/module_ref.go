package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ModuleRefKind tags a ModuleRef.
type ModuleRefKind int

const (
	// RefIdentifier points at an existing module by ID.
	RefIdentifier ModuleRefKind = iota
	// RefEmbedded carries a full module object.
	RefEmbedded
)

// ModuleData is a module object embedded in a path payload. ID names the
// module the object was taken from, if any.
type ModuleData struct {
	ID          *uuid.UUID     `json:"_id,omitempty" swaggertype:"string"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Content     string         `json:"content,omitempty"`
	Resources   datatypes.JSON `json:"resources,omitempty" swaggertype:"object"`
}

// ModuleRef is one entry of a path payload's modules list: either a bare
// module identifier or an embedded module object.
type ModuleRef struct {
	Kind ModuleRefKind
	ID   uuid.UUID
	Data ModuleData
}

// IdentifierRef returns a ModuleRef pointing at id.
func IdentifierRef(id uuid.UUID) ModuleRef {
	return ModuleRef{Kind: RefIdentifier, ID: id}
}

// EmbeddedRef returns a ModuleRef carrying data.
func EmbeddedRef(data ModuleData) ModuleRef {
	return ModuleRef{Kind: RefEmbedded, Data: data}
}

// ErrInvalidModuleRef is returned when a modules entry is neither an ID string
// nor an object.
var ErrInvalidModuleRef = errors.New("module reference must be an id string or an object")

// UnmarshalJSON decides the variant from the JSON token type.
func (r *ModuleRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ErrInvalidModuleRef
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("module reference %q: %w", s, err)
		}
		*r = IdentifierRef(id)
		return nil
	case '{':
		var data ModuleData
		if err := json.Unmarshal(b, &data); err != nil {
			return fmt.Errorf("embedded module: %w", err)
		}
		*r = EmbeddedRef(data)
		return nil
	default:
		return ErrInvalidModuleRef
	}
}

// MarshalJSON writes the variant back in its wire form.
func (r ModuleRef) MarshalJSON() ([]byte, error) {
	if r.Kind == RefEmbedded {
		return json.Marshal(r.Data)
	}
	return json.Marshal(r.ID.String())
}

// TargetID is the module ID the reference names, if any.
func (r ModuleRef) TargetID() (uuid.UUID, bool) {
	if r.Kind == RefIdentifier {
		return r.ID, true
	}
	if r.Data.ID != nil {
		return *r.Data.ID, true
	}
	return uuid.Nil, false
}

// HasEmbedded reports whether any reference carries a module object.
func HasEmbedded(refs []ModuleRef) bool {
	for _, r := range refs {
		if r.Kind == RefEmbedded {
			return true
		}
	}
	return false
}
