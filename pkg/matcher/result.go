package matcher

import (
	"fmt"

	"github.com/agentstation/utc"

	"github.com/aecstation/costmap/pkg/catalogs"
)

// Status is the reconciliation status of a pair.
type Status string

const (
	// StatusMatched indicates the entity was found in both catalogs.
	StatusMatched Status = "matched"
	// StatusModelOnly indicates the entity exists only in the model catalog.
	StatusModelOnly Status = "model_only"
	// StatusBudgetOnly indicates the entity exists only in the budget catalog.
	StatusBudgetOnly Status = "budget_only"
)

// Method is the strategy that established a match.
type Method string

const (
	// MethodIdentifier matched the model tag against the budget code.
	MethodIdentifier Method = "identifier"
	// MethodCrossReference matched the model id against the budget
	// cross-reference id.
	MethodCrossReference Method = "cross_reference"
	// MethodName matched on the family:type name key.
	MethodName Method = "name"
	// MethodDescription matched on description similarity.
	MethodDescription Method = "description"
	// MethodNone marks an unmatched pair.
	MethodNone Method = "none"
)

// Pair is one reconciliation outcome. Exactly one of Model/Budget is
// nil when Status is not StatusMatched; both are set when it is.
type Pair struct {
	Status Status `json:"status"`
	Method Method `json:"method"`

	Model  *catalogs.ModelType  `json:"model,omitempty"`
	Budget *catalogs.BudgetItem `json:"budget,omitempty"`

	// MatchKey is the key the winning strategy matched on.
	MatchKey string `json:"match_key,omitempty"`

	// Confidence is in [0,1]. Exact strategies score 1.0; fuzzy
	// strategies score lower.
	Confidence float64 `json:"confidence"`
}

// Code returns the primary code of the pair: the budget code when
// present, otherwise the model tag.
func (p *Pair) Code() string {
	if p.Budget != nil {
		return p.Budget.Code
	}
	if p.Model != nil && p.Model.Tag != "" {
		return p.Model.Tag
	}
	return ""
}

// Name returns a descriptive name for the pair.
func (p *Pair) Name() string {
	if p.Budget != nil && p.Budget.Description != "" {
		return p.Budget.Description
	}
	if p.Model != nil {
		return p.Model.Name
	}
	return "unknown"
}

// Result is the outcome of reconciling a model catalog against a
// budget catalog. It is produced once per run and owned by the caller.
type Result struct {
	Matched    []Pair `json:"matched"`
	ModelOnly  []Pair `json:"model_only"`
	BudgetOnly []Pair `json:"budget_only"`

	// TotalModelTypes counts every model type considered.
	TotalModelTypes int `json:"total_model_types"`

	// TotalBudgetItems counts comparable budget items only; structural
	// hierarchy-only records are excluded.
	TotalBudgetItems int `json:"total_budget_items"`

	GeneratedAt utc.Time `json:"generated_at"`
}

// MatchRate is the percentage of entities covered by a match. Each
// match covers one entity from each side.
func (r *Result) MatchRate() float64 {
	total := r.TotalModelTypes + r.TotalBudgetItems
	if total == 0 {
		return 0
	}
	return float64(len(r.Matched)*2) / float64(total) * 100
}

// MatchedByMethod returns all matches established by a given strategy.
func (r *Result) MatchedByMethod(method Method) []Pair {
	var out []Pair
	for _, pair := range r.Matched {
		if pair.Method == method {
			out = append(out, pair)
		}
	}
	return out
}

// HighConfidence returns matches at or above the given confidence.
func (r *Result) HighConfidence(threshold float64) []Pair {
	var out []Pair
	for _, pair := range r.Matched {
		if pair.Confidence >= threshold {
			out = append(out, pair)
		}
	}
	return out
}

// Summary holds aggregate reconciliation counters.
type Summary struct {
	TotalModelTypes  int     `json:"total_model_types"`
	TotalBudgetItems int     `json:"total_budget_items"`
	Matched          int     `json:"matched"`
	ModelOnly        int     `json:"model_only"`
	BudgetOnly       int     `json:"budget_only"`
	MatchRate        float64 `json:"match_rate"`
}

// Summary computes the aggregate counters for the result.
func (r *Result) Summary() Summary {
	return Summary{
		TotalModelTypes:  r.TotalModelTypes,
		TotalBudgetItems: r.TotalBudgetItems,
		Matched:          len(r.Matched),
		ModelOnly:        len(r.ModelOnly),
		BudgetOnly:       len(r.BudgetOnly),
		MatchRate:        r.MatchRate(),
	}
}

// String returns a human-readable summary line.
func (s Summary) String() string {
	return fmt.Sprintf("matched %d of %d model types and %d budget items (%.1f%%), %d model-only, %d budget-only",
		s.Matched, s.TotalModelTypes, s.TotalBudgetItems, s.MatchRate, s.ModelOnly, s.BudgetOnly)
}
