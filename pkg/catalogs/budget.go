// Package catalogs defines the two entity catalogs the reconciliation
// engine operates on: the cost-budget line-item catalog parsed from a
// BC3-style file, and the building-model type catalog produced by an
// external extractor. Catalogs are built once per run and are read-only
// afterward; both preserve insertion order so downstream matching is
// deterministic.
package catalogs

import (
	pkgerrors "github.com/aecstation/costmap/pkg/errors"
)

// ChildRef is one hierarchy edge from a parent budget item to a child,
// with the quantity the child contributes under that parent.
type ChildRef struct {
	Code     string  `json:"code"`
	Quantity float64 `json:"quantity"`
}

// BudgetItem is one line of the cost budget.
type BudgetItem struct {
	Code        string  `json:"code"`
	Unit        string  `json:"unit,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`

	// Cross-references into the model catalog. ModelTypeID is the
	// type-level id used for matching; ModelInstanceID identifies a
	// single placed instance and is informational.
	ModelTypeID     string `json:"model_type_id,omitempty"`
	ModelInstanceID string `json:"model_instance_id,omitempty"`

	FamilyName string `json:"family_name,omitempty"`
	TypeName   string `json:"type_name,omitempty"`

	Properties Properties `json:"properties,omitempty"`

	// Hierarchy, populated after all records are read.
	ParentCode string     `json:"parent_code,omitempty"`
	Children   []ChildRef `json:"children,omitempty"`
	Quantity   float64    `json:"quantity"`
}

// Comparable reports whether the item represents real, comparable work.
// Structural/hierarchy-only records (composite parents with no unit, no
// cross-reference and no properties) are not comparable.
func (b *BudgetItem) Comparable() bool {
	return b.Unit != "" || b.ModelTypeID != "" || len(b.Properties) > 0
}

// BudgetCatalog is an insertion-ordered collection of budget items,
// keyed by their unique code.
type BudgetCatalog struct {
	order []string
	items map[string]*BudgetItem
}

// NewBudgetCatalog creates an empty budget catalog.
func NewBudgetCatalog() *BudgetCatalog {
	return &BudgetCatalog{
		items: make(map[string]*BudgetItem),
	}
}

// Add inserts an item into the catalog. Items without a code are
// rejected. A duplicate code replaces the earlier item but keeps its
// original position, so iteration order stays stable.
func (c *BudgetCatalog) Add(item *BudgetItem) error {
	if item == nil || item.Code == "" {
		return pkgerrors.NewValidationError("code", "", "budget item code must not be empty")
	}
	if _, exists := c.items[item.Code]; !exists {
		c.order = append(c.order, item.Code)
	}
	c.items[item.Code] = item
	return nil
}

// Get returns the item with the given code.
func (c *BudgetCatalog) Get(code string) (*BudgetItem, bool) {
	item, ok := c.items[code]
	return item, ok
}

// Has reports whether the catalog contains the given code.
func (c *BudgetCatalog) Has(code string) bool {
	_, ok := c.items[code]
	return ok
}

// Items returns all items in insertion order.
func (c *BudgetCatalog) Items() []*BudgetItem {
	out := make([]*BudgetItem, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.items[code])
	}
	return out
}

// Codes returns all codes in insertion order.
func (c *BudgetCatalog) Codes() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of items in the catalog.
func (c *BudgetCatalog) Len() int {
	return len(c.items)
}

// ComparableCount returns the number of comparable work items.
func (c *BudgetCatalog) ComparableCount() int {
	n := 0
	for _, code := range c.order {
		if c.items[code].Comparable() {
			n++
		}
	}
	return n
}
