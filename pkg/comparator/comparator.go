package comparator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/aecstation/costmap/pkg/catalogs"
	"github.com/aecstation/costmap/pkg/logging"
	"github.com/aecstation/costmap/pkg/matcher"
	"github.com/aecstation/costmap/pkg/phases"
)

// countableUnits are the unit abbreviations whose quantities count
// discrete instances and can be checked against the model's instance
// count. Area, volume and length units are not quantity-checked here.
var countableUnits = map[string]bool{
	"u": true, "ud": true, "un": true, "pza": true,
	"ut": true, "unidad": true, "unidades": true,
}

// propertyPair links a budget-side property name to its model-side
// equivalent.
type propertyPair struct {
	BudgetKey string
	ModelKey  string
}

// curatedProperties is the fixed dimensional/material/thermal property
// set examined under the spatial scope.
var curatedProperties = []propertyPair{
	{"h", "h"},
	{"b", "b"},
	{"Anchura", "width"},
	{"Altura", "height"},
	{"Grosor", "thickness"},
	{"Longitud", "length"},
	{"Material", "Material"},
	{"Material estructural", "StructuralMaterial"},
	{"Resistencia térmica (R)", "ThermalResistance"},
	{"Coeficiente de transferencia de calor (U)", "HeatTransferCoefficient"},
}

// Comparator produces a conflict list from a reconciliation result
// under a phase configuration. It branches only on the configuration's
// fields, never on preset identity.
type Comparator struct {
	logger *zerolog.Logger
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Comparator) {
		c.logger = logger
	}
}

// New creates a Comparator.
func New(opts ...Option) *Comparator {
	c := &Comparator{logger: logging.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare walks the reconciliation result and emits every detected
// conflict, ordered for presentation, plus aggregate counters.
func (c *Comparator) Compare(res *matcher.Result, cfg phases.Config) *Result {
	out := &Result{GeneratedAt: utc.Now()}
	codes := make(map[string]bool)

	record := func(conflict Conflict) {
		out.Conflicts = append(out.Conflicts, conflict)
		if conflict.Code != "" {
			codes[conflict.Code] = true
		}
	}

	// Missing counterparts are reported regardless of phase.
	for _, pair := range res.ModelOnly {
		record(Conflict{
			Type:        TypeMissingInBudget,
			Severity:    SeverityWarning,
			Code:        pair.Code(),
			ElementName: pair.Name(),
			Message:     "element exists in the model but not in the budget",
		})
	}
	for _, pair := range res.BudgetOnly {
		record(Conflict{
			Type:        TypeMissingInModel,
			Severity:    SeverityWarning,
			Code:        pair.Code(),
			ElementName: pair.Name(),
			Message:     "element exists in the budget but not in the model",
		})
	}

	for _, pair := range res.Matched {
		compared := c.comparePair(pair, cfg, record)
		out.Summary.PropertiesCompared += compared
	}

	sortConflicts(out.Conflicts)

	out.Summary.TotalConflicts = len(out.Conflicts)
	out.Summary.TotalMatched = len(res.Matched)
	out.Summary.CodesWithConflicts = len(codes)
	for _, conflict := range out.Conflicts {
		switch conflict.Severity {
		case SeverityError:
			out.Summary.Errors++
		case SeverityWarning:
			out.Summary.Warnings++
		case SeverityInfo:
			out.Summary.Infos++
		}
		switch conflict.Type {
		case TypeMissingInBudget:
			out.Summary.MissingInBudget++
		case TypeMissingInModel:
			out.Summary.MissingInModel++
		case TypeCodeMismatch:
			out.Summary.CodeMismatches++
		case TypeQuantityMismatch:
			out.Summary.QuantityMismatches++
		case TypeNameMismatch:
			out.Summary.NameMismatches++
		case TypePropertyMismatch:
			out.Summary.PropertyMismatches++
		case TypePropertyMissing:
			out.Summary.PropertiesMissing++
		}
	}

	c.logger.Debug().
		Str("phase", cfg.Name).
		Int("conflicts", out.Summary.TotalConflicts).
		Int("errors", out.Summary.Errors).
		Int("warnings", out.Summary.Warnings).
		Msg("compared matched pairs")

	return out
}

// comparePair runs every applicable check on one matched pair and
// returns how many properties were examined.
func (c *Comparator) comparePair(pair matcher.Pair, cfg phases.Config, record func(Conflict)) int {
	if pair.Model == nil || pair.Budget == nil {
		return 0
	}
	model, budget := pair.Model, pair.Budget

	// A description match with diverging codes means one side was
	// renamed without updating the other.
	if pair.Method == matcher.MethodDescription {
		modelCode := model.Tag
		if modelCode == "" {
			modelCode = "?"
		}
		if modelCode != budget.Code {
			record(Conflict{
				Type:         TypeCodeMismatch,
				Severity:     SeverityError,
				Code:         budget.Code,
				ElementName:  pair.Name(),
				PropertyName: "code",
				ModelValue:   modelCode,
				BudgetValue:  budget.Code,
				Message:      fmt.Sprintf("codes diverge: model uses %q, budget uses %q", modelCode, budget.Code),
			})
		}
	}

	// Quantities are only comparable when the budget counts discrete
	// units; areas, volumes and lengths have no instance-count analog.
	modelQty := float64(model.InstanceCount)
	if budget.Quantity > 0 && modelQty > 0 && countableUnits[strings.ToLower(budget.Unit)] {
		if diff := budget.Quantity - modelQty; diff > cfg.QuantityTolerance || -diff > cfg.QuantityTolerance {
			record(Conflict{
				Type:         TypeQuantityMismatch,
				Severity:     SeverityError,
				Code:         pair.Code(),
				ElementName:  pair.Name(),
				PropertyName: "quantity",
				ModelValue:   model.InstanceCount,
				BudgetValue:  budget.Quantity,
				Message: fmt.Sprintf("quantity differs: budget=%v %s, model=%d instances",
					budget.Quantity, budget.Unit, model.InstanceCount),
			})
		}
	}

	if cfg.CheckNames {
		c.compareNames(pair, record)
	}

	if !cfg.CheckProperties || cfg.PropertyScope == phases.ScopeNone {
		return 0
	}
	return c.compareProperties(pair, cfg, record)
}

// compareNames checks family and type names independently.
func (c *Comparator) compareNames(pair matcher.Pair, record func(Conflict)) {
	model, budget := pair.Model, pair.Budget

	check := func(field, modelName, budgetName string) {
		if modelName == "" || budgetName == "" {
			return
		}
		if normalizeName(modelName) != normalizeName(budgetName) {
			record(Conflict{
				Type:         TypeNameMismatch,
				Severity:     SeverityWarning,
				Code:         pair.Code(),
				ElementName:  pair.Name(),
				PropertyName: field,
				ModelValue:   modelName,
				BudgetValue:  budgetName,
				Message:      fmt.Sprintf("%s differs", field),
			})
		}
	}

	check("family name", model.FamilyName, budget.FamilyName)
	check("type name", model.TypeName, budget.TypeName)
}

// compareProperties examines free-form properties under the active
// scope. The curated pairs run first and consume their keys; under the
// all scope the remaining verbatim key union follows, so widening the
// scope only ever adds conflicts.
func (c *Comparator) compareProperties(pair matcher.Pair, cfg phases.Config, record func(Conflict)) int {
	model, budget := pair.Model, pair.Budget
	compared := 0

	consumedBudget := make(map[string]bool)
	consumedModel := make(map[string]bool)

	for _, pp := range curatedProperties {
		budgetVal, hasBudget := budget.Properties[pp.BudgetKey]
		modelVal, hasModel := model.Properties[pp.ModelKey]
		consumedBudget[pp.BudgetKey] = true
		consumedModel[pp.ModelKey] = true

		if !hasBudget && !hasModel {
			continue
		}
		compared++
		c.compareValue(pair, cfg, pp.BudgetKey, modelVal, hasModel, budgetVal, hasBudget, record)
	}

	if cfg.PropertyScope != phases.ScopeAll {
		return compared
	}

	// Verbatim key union, sorted for stable output within a code.
	union := make(map[string]bool, len(budget.Properties)+len(model.Properties))
	for key := range budget.Properties {
		if !consumedBudget[key] {
			union[key] = true
		}
	}
	for key := range model.Properties {
		if !consumedModel[key] {
			union[key] = true
		}
	}
	keys := make([]string, 0, len(union))
	for key := range union {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		budgetVal, hasBudget := budget.Properties[key]
		modelVal, hasModel := model.Properties[key]
		compared++
		c.compareValue(pair, cfg, key, modelVal, hasModel, budgetVal, hasBudget, record)
	}

	return compared
}

// compareValue emits the conflict, if any, for one property name.
func (c *Comparator) compareValue(pair matcher.Pair, cfg phases.Config, name string,
	modelVal catalogs.Value, hasModel bool, budgetVal catalogs.Value, hasBudget bool, record func(Conflict)) {
	switch {
	case !hasBudget:
		record(Conflict{
			Type:         TypePropertyMissing,
			Severity:     SeverityInfo,
			Code:         pair.Code(),
			ElementName:  pair.Name(),
			PropertyName: name,
			ModelValue:   modelVal.Any(),
			Message:      fmt.Sprintf("property %q exists in the model but not in the budget", name),
		})
	case !hasModel:
		record(Conflict{
			Type:         TypePropertyMissing,
			Severity:     SeverityInfo,
			Code:         pair.Code(),
			ElementName:  pair.Name(),
			PropertyName: name,
			BudgetValue:  budgetVal.Any(),
			Message:      fmt.Sprintf("property %q exists in the budget but not in the model", name),
		})
	case !valuesEqual(modelVal, budgetVal, cfg.QuantityTolerance):
		record(Conflict{
			Type:         TypePropertyMismatch,
			Severity:     SeverityError,
			Code:         pair.Code(),
			ElementName:  pair.Name(),
			PropertyName: name,
			ModelValue:   modelVal.Any(),
			BudgetValue:  budgetVal.Any(),
			Message:      fmt.Sprintf("property %q differs: model=%v, budget=%v", name, modelVal.Any(), budgetVal.Any()),
		})
	}
}

// valuesEqual compares two property values: numerically with tolerance
// when both sides have a numeric reading, otherwise as trimmed
// case-insensitive strings.
func valuesEqual(a, b catalogs.Value, tolerance float64) bool {
	fa, okA := a.Float64()
	fb, okB := b.Float64()
	if okA && okB {
		diff := fa - fb
		if diff < 0 {
			diff = -diff
		}
		return diff <= tolerance
	}
	return strings.EqualFold(strings.TrimSpace(cast.ToString(a.Any())), strings.TrimSpace(cast.ToString(b.Any())))
}

// normalizeName lowercases and collapses whitespace for comparison.
func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
