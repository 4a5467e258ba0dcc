// Package phases defines the named analysis presets that parameterize
// comparison depth. A phase is a plain configuration value: the matcher
// and comparator consume its fields and never branch on preset
// identity, so new phases are added by constructing a new Config.
package phases

import (
	pkgerrors "github.com/aecstation/costmap/pkg/errors"
)

// Scope selects which free-form properties the comparator examines.
type Scope string

const (
	// ScopeNone compares no free-form properties.
	ScopeNone Scope = "none"
	// ScopeSpatial compares the curated dimensional, material and
	// thermal property set.
	ScopeSpatial Scope = "spatial"
	// ScopeAll compares the curated set plus every key seen on either
	// side.
	ScopeAll Scope = "all"
)

// Config is an immutable analysis phase configuration.
type Config struct {
	// Name identifies the phase in CLI output and reports.
	Name string `json:"name"`

	// Description explains what the phase checks.
	Description string `json:"description,omitempty"`

	// CheckProperties enables free-form property comparison.
	CheckProperties bool `json:"check_properties"`

	// CheckNames enables family/type name comparison.
	CheckNames bool `json:"check_names"`

	// QuantityTolerance is the allowed absolute difference between the
	// budget quantity and the model instance count.
	QuantityTolerance float64 `json:"quantity_tolerance"`

	// PropertyScope selects which properties CheckProperties covers.
	PropertyScope Scope `json:"property_scope"`
}

// Quick is the fast triage preset: identifier and quantity checks only.
func Quick() Config {
	return Config{
		Name:              "quick",
		Description:       "Code and quantity validation. Flags description-based matches with diverging codes and quantity differences beyond tolerance.",
		CheckProperties:   false,
		CheckNames:        false,
		QuantityTolerance: 0.1,
		PropertyScope:     ScopeNone,
	}
}

// Full is the exhaustive audit preset: every check, tight tolerance,
// all properties.
func Full() Config {
	return Config{
		Name:              "full",
		Description:       "Exhaustive comparison of all properties, family/type names and quantities with strict tolerance.",
		CheckProperties:   true,
		CheckNames:        true,
		QuantityTolerance: 0.01,
		PropertyScope:     ScopeAll,
	}
}

// builtin lists the built-in presets in presentation order.
var builtin = []Config{Quick(), Full()}

// Get returns the built-in preset with the given name.
func Get(name string) (Config, error) {
	for _, cfg := range builtin {
		if cfg.Name == name {
			return cfg, nil
		}
	}
	return Config{}, pkgerrors.NewNotFoundError("phase", name)
}

// List returns the built-in presets in presentation order.
func List() []Config {
	out := make([]Config, len(builtin))
	copy(out, builtin)
	return out
}
