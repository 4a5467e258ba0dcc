// Package comparator walks matched pairs and emits a typed,
// severity-ranked list of discrepancies. Discrepancies are the intended
// output of the system: they are data, not error-handling artifacts.
package comparator

import (
	"fmt"
	"sort"

	"github.com/agentstation/utc"
)

// Type classifies a detected discrepancy.
type Type string

const (
	// TypeMissingInBudget marks a model type with no budget counterpart.
	TypeMissingInBudget Type = "missing_in_budget"
	// TypeMissingInModel marks a budget item with no model counterpart.
	TypeMissingInModel Type = "missing_in_model"
	// TypeCodeMismatch marks a description-matched pair whose codes
	// diverge, the signature of a one-sided rename.
	TypeCodeMismatch Type = "code_mismatch"
	// TypeQuantityMismatch marks a countable quantity difference beyond
	// tolerance.
	TypeQuantityMismatch Type = "quantity_mismatch"
	// TypeNameMismatch marks differing family or type names.
	TypeNameMismatch Type = "name_mismatch"
	// TypePropertyMismatch marks differing property values.
	TypePropertyMismatch Type = "property_mismatch"
	// TypePropertyMissing marks a property present on one side only;
	// the nil value identifies the missing side.
	TypePropertyMissing Type = "property_missing"
)

// Severity ranks a conflict for presentation.
type Severity string

const (
	// SeverityError marks values that are present on both sides and differ.
	SeverityError Severity = "error"
	// SeverityWarning marks missing counterparts or diverging names.
	SeverityWarning Severity = "warning"
	// SeverityInfo marks informational findings.
	SeverityInfo Severity = "info"
)

// Conflict is one classified discrepancy.
type Conflict struct {
	Type     Type     `json:"type"`
	Severity Severity `json:"severity"`

	Code        string `json:"code,omitempty"`
	ElementName string `json:"element_name"`

	PropertyName string `json:"property_name,omitempty"`
	ModelValue   any    `json:"model_value,omitempty"`
	BudgetValue  any    `json:"budget_value,omitempty"`

	Message string `json:"message"`
}

// String implements fmt.Stringer.
func (c Conflict) String() string {
	if c.PropertyName != "" {
		return fmt.Sprintf("[%s] %s: %s - model: %v, budget: %v",
			c.Severity, c.Code, c.PropertyName, c.ModelValue, c.BudgetValue)
	}
	return fmt.Sprintf("[%s] %s: %s", c.Severity, c.Code, c.Message)
}

// rank orders conflicts for presentation: plain errors first, then code
// mismatches, then warnings, then informational findings.
func (c Conflict) rank() int {
	switch {
	case c.Severity == SeverityError && c.Type != TypeCodeMismatch:
		return 0
	case c.Type == TypeCodeMismatch:
		return 1
	case c.Severity == SeverityWarning:
		return 2
	default:
		return 3
	}
}

// sortConflicts orders a conflict list by rank, breaking ties by code.
func sortConflicts(conflicts []Conflict) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		ri, rj := conflicts[i].rank(), conflicts[j].rank()
		if ri != rj {
			return ri < rj
		}
		return conflicts[i].Code < conflicts[j].Code
	})
}

// Summary holds aggregate comparison counters.
type Summary struct {
	TotalConflicts int `json:"total_conflicts"`

	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`

	MissingInBudget    int `json:"missing_in_budget"`
	MissingInModel     int `json:"missing_in_model"`
	CodeMismatches     int `json:"code_mismatches"`
	QuantityMismatches int `json:"quantity_mismatches"`
	NameMismatches     int `json:"name_mismatches"`
	PropertyMismatches int `json:"property_mismatches"`
	PropertiesMissing  int `json:"properties_missing"`

	PropertiesCompared int `json:"properties_compared"`
	TotalMatched       int `json:"total_matched"`

	// CodesWithConflicts counts distinct codes carrying at least one
	// conflict.
	CodesWithConflicts int `json:"codes_with_conflicts"`
}

// Result is the outcome of comparing one reconciliation result.
type Result struct {
	Conflicts []Conflict `json:"conflicts"`
	Summary   Summary    `json:"summary"`

	GeneratedAt utc.Time `json:"generated_at"`
}

// ByType returns all conflicts of the given type.
func (r *Result) ByType(t Type) []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// BySeverity returns all conflicts of the given severity.
func (r *Result) BySeverity(s Severity) []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if c.Severity == s {
			out = append(out, c)
		}
	}
	return out
}

// ForCode returns all conflicts recorded against the given code.
func (r *Result) ForCode(code string) []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if c.Code == code {
			out = append(out, c)
		}
	}
	return out
}
