// Package matcher links entities across the model and budget catalogs.
// Four strategies (identifier, cross-reference, name, description
// similarity) run in strict precedence order and commit greedily:
// an entity claimed by an earlier strategy is never revisited. The
// cascade is intentionally not a globally optimal assignment; changing
// that would change which pairs are produced.
package matcher

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/aecstation/costmap/pkg/catalogs"
	"github.com/aecstation/costmap/pkg/logging"
)

// DefaultSimilarityThreshold is the minimum Jaccard score a description
// match must reach to be accepted.
const DefaultSimilarityThreshold = 0.5

// descriptionConfidenceCap keeps fuzzy description matches below the
// confidence of exact strategies.
const descriptionConfidenceCap = 0.8

// Matcher reconciles a model catalog against a budget catalog.
type Matcher struct {
	matchByName        bool
	matchByDescription bool
	threshold          float64
	ignoreTerms        []string
	numericTieBreak    bool
	logger             *zerolog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithNameMatching toggles the family:type name strategy.
func WithNameMatching(enabled bool) Option {
	return func(m *Matcher) {
		m.matchByName = enabled
	}
}

// WithDescriptionMatching toggles the description similarity strategy.
func WithDescriptionMatching(enabled bool) Option {
	return func(m *Matcher) {
		m.matchByDescription = enabled
	}
}

// WithSimilarityThreshold sets the acceptance threshold for
// description matches.
func WithSimilarityThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.threshold = threshold
	}
}

// WithIgnoreTerms excludes entities whose code or description contains
// any of the given terms from matching entirely.
func WithIgnoreTerms(terms []string) Option {
	return func(m *Matcher) {
		m.ignoreTerms = terms
	}
}

// WithNumericCodeTieBreak switches description-similarity ties to
// prefer the candidate whose numeric code suffix is closest to the
// model tag's. The default resolves ties in catalog iteration order.
func WithNumericCodeTieBreak() Option {
	return func(m *Matcher) {
		m.numericTieBreak = true
	}
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

// New creates a Matcher. Name and description matching are enabled by
// default.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		matchByName:        true,
		matchByDescription: true,
		threshold:          DefaultSimilarityThreshold,
		logger:             logging.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match runs the strategy cascade and produces one Result. Matching is
// one-to-one: every model type and every comparable budget item ends up
// in exactly one of matched, model-only or budget-only. The inputs are
// not mutated.
func (m *Matcher) Match(model *catalogs.ModelCatalog, budget *catalogs.BudgetCatalog) *Result {
	types := m.filterTypes(model.Types())
	items := m.filterItems(budget.Items())

	itemsByCode := make(map[string]*catalogs.BudgetItem, len(items))
	itemsByXref := make(map[string]*catalogs.BudgetItem)
	for _, item := range items {
		itemsByCode[item.Code] = item
		if item.ModelTypeID != "" {
			if _, taken := itemsByXref[item.ModelTypeID]; !taken {
				itemsByXref[item.ModelTypeID] = item
			}
		}
	}

	result := &Result{GeneratedAt: utc.Now()}
	matchedTypes := make(map[string]bool)
	matchedItems := make(map[string]bool)

	commit := func(t *catalogs.ModelType, item *catalogs.BudgetItem, method Method, key string, confidence float64) {
		result.Matched = append(result.Matched, Pair{
			Status:     StatusMatched,
			Method:     method,
			Model:      t,
			Budget:     item,
			MatchKey:   key,
			Confidence: confidence,
		})
		matchedTypes[t.ID] = true
		matchedItems[item.Code] = true
	}

	// Strategy 1: model tag against budget code, exact.
	for _, t := range types {
		if t.Tag == "" {
			continue
		}
		if item, ok := itemsByCode[t.Tag]; ok && !matchedItems[item.Code] {
			commit(t, item, MethodIdentifier, t.Tag, 1.0)
		}
	}

	// Strategy 2: model id against budget cross-reference id.
	for _, t := range types {
		if matchedTypes[t.ID] {
			continue
		}
		if item, ok := itemsByXref[t.ID]; ok && !matchedItems[item.Code] {
			commit(t, item, MethodCrossReference, t.ID, 1.0)
		}
	}

	// Strategy 3: family:type name key, exact but lower confidence.
	if m.matchByName {
		nameIndex := make(map[string]*catalogs.BudgetItem)
		for _, item := range items {
			if matchedItems[item.Code] || item.FamilyName == "" || item.TypeName == "" {
				continue
			}
			key := strings.ToLower(item.FamilyName + ":" + item.TypeName)
			if _, taken := nameIndex[key]; !taken {
				nameIndex[key] = item
			}
		}

		for _, t := range types {
			if matchedTypes[t.ID] {
				continue
			}
			key := nameKey(t)
			if key == "" {
				continue
			}
			if item, ok := nameIndex[key]; ok && !matchedItems[item.Code] {
				commit(t, item, MethodName, key, 0.8)
			}
		}
	}

	// Strategy 4: description similarity, fuzzy, greedy in catalog
	// iteration order.
	if m.matchByDescription {
		for _, t := range types {
			if matchedTypes[t.ID] || t.Name == "" {
				continue
			}

			var best *catalogs.BudgetItem
			bestScore := 0.0
			for _, item := range items {
				if matchedItems[item.Code] || item.Description == "" {
					continue
				}
				score := Similarity(t.Name, item.Description)
				if score > bestScore {
					best, bestScore = item, score
				} else if score == bestScore && best != nil && m.numericTieBreak &&
					closerNumericCode(t.Tag, item.Code, best.Code) {
					best = item
				}
			}

			if best != nil && bestScore >= m.threshold {
				confidence := bestScore
				if confidence > descriptionConfidenceCap {
					confidence = descriptionConfidenceCap
				}
				commit(t, best, MethodDescription, NormalizeDescription(best.Description), confidence)
			}
		}
	}

	// Everything not claimed by a strategy is one-sided.
	for _, t := range types {
		if !matchedTypes[t.ID] {
			result.ModelOnly = append(result.ModelOnly, Pair{
				Status: StatusModelOnly,
				Method: MethodNone,
				Model:  t,
			})
		}
	}
	comparable := 0
	for _, item := range items {
		if !item.Comparable() {
			continue
		}
		comparable++
		if !matchedItems[item.Code] {
			result.BudgetOnly = append(result.BudgetOnly, Pair{
				Status: StatusBudgetOnly,
				Method: MethodNone,
				Budget: item,
			})
		}
	}

	result.TotalModelTypes = len(types)
	result.TotalBudgetItems = comparable

	m.logger.Debug().
		Int("matched", len(result.Matched)).
		Int("model_only", len(result.ModelOnly)).
		Int("budget_only", len(result.BudgetOnly)).
		Float64("match_rate", result.MatchRate()).
		Msg("reconciled catalogs")

	return result
}

// filterTypes applies the ignore-term filter to model types.
func (m *Matcher) filterTypes(types []*catalogs.ModelType) []*catalogs.ModelType {
	if len(m.ignoreTerms) == 0 {
		return types
	}
	out := make([]*catalogs.ModelType, 0, len(types))
	for _, t := range types {
		if Ignored(t.Tag, t.Name, m.ignoreTerms) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// filterItems applies the ignore-term filter to budget items.
func (m *Matcher) filterItems(items []*catalogs.BudgetItem) []*catalogs.BudgetItem {
	if len(m.ignoreTerms) == 0 {
		return items
	}
	out := make([]*catalogs.BudgetItem, 0, len(items))
	for _, item := range items {
		if Ignored(item.Code, item.Description, m.ignoreTerms) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// nameKey builds the lookup key for the name strategy: family:type when
// both are present, the plain name otherwise.
func nameKey(t *catalogs.ModelType) string {
	if t.FamilyName != "" && t.TypeName != "" {
		return strings.ToLower(t.FamilyName + ":" + t.TypeName)
	}
	if t.Name != "" {
		return strings.ToLower(t.Name)
	}
	return ""
}

var trailingDigits = regexp.MustCompile(`(\d+)\s*$`)

// closerNumericCode reports whether candidate's trailing code number is
// strictly closer to tag's than incumbent's. Codes without a trailing
// number never win.
func closerNumericCode(tag, candidate, incumbent string) bool {
	ref, ok := trailingNumber(tag)
	if !ok {
		return false
	}
	cand, ok := trailingNumber(candidate)
	if !ok {
		return false
	}
	cur, ok := trailingNumber(incumbent)
	if !ok {
		return true
	}
	return abs(cand-ref) < abs(cur-ref)
}

func trailingNumber(s string) (int64, bool) {
	m := trailingDigits.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
