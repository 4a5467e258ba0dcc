package catalogs

import (
	pkgerrors "github.com/aecstation/costmap/pkg/errors"
)

// ModelType is one distinguishable type from the building model. It is
// produced by an external extractor and consumed as-is; the engine only
// requires the fields listed here.
type ModelType struct {
	// ID is the globally unique stable identifier of the type.
	ID string `json:"id" yaml:"id"`

	// Tag is the short human-assigned code, the preferred
	// cross-reference key against budget item codes.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`

	Name      string `json:"name" yaml:"name"`
	ClassName string `json:"class_name,omitempty" yaml:"class_name,omitempty"`

	FamilyName string `json:"family_name,omitempty" yaml:"family_name,omitempty"`
	TypeName   string `json:"type_name,omitempty" yaml:"type_name,omitempty"`

	Properties Properties `json:"properties,omitempty" yaml:"-"`

	// InstanceCount is how many instances of this type the model places.
	InstanceCount int `json:"instance_count" yaml:"instance_count"`
}

// ModelCatalog is an insertion-ordered collection of model types,
// keyed by their stable id, with a secondary lookup by tag.
type ModelCatalog struct {
	order []string
	byID  map[string]*ModelType
	byTag map[string]*ModelType
}

// NewModelCatalog creates an empty model catalog.
func NewModelCatalog() *ModelCatalog {
	return &ModelCatalog{
		byID:  make(map[string]*ModelType),
		byTag: make(map[string]*ModelType),
	}
}

// Add inserts a type into the catalog. Types without an id are rejected.
// A duplicate id replaces the earlier type but keeps its position. The
// first type carrying a given tag wins the tag lookup.
func (c *ModelCatalog) Add(t *ModelType) error {
	if t == nil || t.ID == "" {
		return pkgerrors.NewValidationError("id", "", "model type id must not be empty")
	}
	if _, exists := c.byID[t.ID]; !exists {
		c.order = append(c.order, t.ID)
	}
	c.byID[t.ID] = t
	if t.Tag != "" {
		if _, taken := c.byTag[t.Tag]; !taken {
			c.byTag[t.Tag] = t
		}
	}
	return nil
}

// ByID returns the type with the given stable id.
func (c *ModelCatalog) ByID(id string) (*ModelType, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// ByTag returns the type carrying the given tag.
func (c *ModelCatalog) ByTag(tag string) (*ModelType, bool) {
	t, ok := c.byTag[tag]
	return t, ok
}

// Types returns all types in insertion order.
func (c *ModelCatalog) Types() []*ModelType {
	out := make([]*ModelType, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of types in the catalog.
func (c *ModelCatalog) Len() int {
	return len(c.byID)
}
