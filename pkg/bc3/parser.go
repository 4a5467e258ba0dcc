// Package bc3 parses BC3-style (FIEBDC-3) cost-budget files into a
// budget catalog. The format is line-oriented: each record starts with a
// ~<letter>| marker, fields are pipe-separated and sub-tokens are
// backslash-separated. Files are encoded in a legacy single-byte
// encoding and are decoded best-effort; a single malformed record never
// aborts the parse.
package bc3

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"golang.org/x/text/encoding/charmap"

	"github.com/aecstation/costmap/pkg/catalogs"
	pkgerrors "github.com/aecstation/costmap/pkg/errors"
	"github.com/aecstation/costmap/pkg/logging"
)

// recordPattern matches one ~X|... record line.
var recordPattern = regexp.MustCompile(`^~([A-Z])\|(.*)$`)

// hoistedKeys maps source property names to first-class BudgetItem
// attributes instead of the generic property map.
const (
	keyModelTypeID     = "Tipo IfcGUID"
	keyModelInstanceID = "IfcGUID"
	keyFamilyName      = "Nombre de familia"
	keyTypeName        = "Nombre de tipo"
)

// Warning is one recoverable, line-level parse issue.
type Warning struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// ParseResult is the outcome of parsing one budget file.
type ParseResult struct {
	// Budget holds every successfully parsed item, keyed by code.
	Budget *catalogs.BudgetCatalog

	// Hierarchy records every decomposition edge, including edges whose
	// child never appeared as an item (structural edges).
	Hierarchy map[string][]catalogs.ChildRef

	// Version is the content of the ~V banner record, informational.
	Version string

	// Warnings are recoverable line-level issues, in file order.
	Warnings []Warning
}

// Parser parses BC3-style budget files.
type Parser struct {
	charmap *charmap.Charmap
	logger  *zerolog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithCharmap selects the legacy single-byte encoding to decode with.
// The default is ISO 8859-1.
func WithCharmap(cm *charmap.Charmap) Option {
	return func(p *Parser) {
		p.charmap = cm
	}
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		charmap: charmap.ISO8859_1,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads and parses a budget file. A missing or unreadable
// file is the only fatal failure; everything else is reported through
// ParseResult.Warnings.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.NewNotFoundError("budget file", path)
		}
		return nil, pkgerrors.WrapIO("read", path, err)
	}
	return p.Parse(p.decode(data)), nil
}

// decode converts legacy single-byte bytes to UTF-8. Single-byte
// charmaps map every byte to some rune, so decoding cannot fail; if the
// decoder balks anyway the raw bytes are used as-is.
func (p *Parser) decode(data []byte) string {
	decoded, err := p.charmap.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// record is one recognized line, kept for phased processing.
type record struct {
	line int
	tag  byte
	data string
}

// Parse parses already-decoded budget text. Records are processed in
// three phases regardless of file order: component definitions first to
// establish the code universe, then extended properties, then
// decomposition edges.
func (p *Parser) Parse(text string) *ParseResult {
	result := &ParseResult{
		Budget:    catalogs.NewBudgetCatalog(),
		Hierarchy: make(map[string][]catalogs.ChildRef),
	}

	var records []record
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := recordPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		records = append(records, record{line: i + 1, tag: m[1][0], data: m[2]})
	}

	// Phase 1: version banner and component definitions.
	for _, rec := range records {
		switch rec.tag {
		case 'V':
			result.Version = parseVersion(rec.data)
		case 'C':
			p.parseComponent(rec, result)
		}
	}

	// Phase 2: extended properties attach to already-known codes.
	for _, rec := range records {
		if rec.tag == 'X' {
			p.parseExtended(rec, result)
		}
	}

	// Phase 3: decomposition edges.
	var parentOrder []string
	for _, rec := range records {
		if rec.tag == 'D' {
			if parent, ok := p.parseDecomposition(rec, result); ok {
				parentOrder = append(parentOrder, parent)
			}
		}
	}

	p.linkHierarchy(result, parentOrder)

	p.logger.Debug().
		Int("items", result.Budget.Len()).
		Int("edges", len(result.Hierarchy)).
		Int("warnings", len(result.Warnings)).
		Str("version", result.Version).
		Msg("parsed budget file")

	return result
}

// parseVersion extracts the banner string from a ~V record.
func parseVersion(data string) string {
	parts := strings.Split(data, "|")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1]
	}
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}

// parseComponent handles a ~C record: code, unit, description, price.
func (p *Parser) parseComponent(rec record, result *ParseResult) {
	parts := strings.Split(rec.data, "|")
	if len(parts) < 4 {
		result.warnf(rec.line, "component record has %d fields, want at least 4", len(parts))
		return
	}

	code := normalizeCode(parts[0])
	if code == "" {
		result.warnf(rec.line, "component record without code")
		return
	}

	item := &catalogs.BudgetItem{
		Code:        code,
		Unit:        strings.TrimSpace(parts[1]),
		Description: strings.TrimSpace(parts[2]),
		Properties:  catalogs.Properties{},
	}
	if raw := strings.TrimSpace(parts[3]); raw != "" {
		if price, err := parseNumber(raw); err == nil {
			item.Price = price
		}
	}

	if err := result.Budget.Add(item); err != nil {
		result.warnf(rec.line, "component rejected: %v", err)
	}
}

// parseExtended handles a ~X record: backslash-separated alternating
// key/value tokens attached to a previously defined code. Records for
// unknown codes are silently ignored.
func (p *Parser) parseExtended(rec record, result *ParseResult) {
	parts := strings.Split(rec.data, "|")
	if len(parts) < 2 {
		result.warnf(rec.line, "extended record has no property payload")
		return
	}

	code := normalizeCode(parts[0])
	item, ok := result.Budget.Get(code)
	if !ok {
		return
	}

	tokens := strings.Split(parts[1], `\`)
	for i := 0; i+1 < len(tokens); i += 2 {
		key := strings.TrimSpace(tokens[i])
		value := strings.TrimSpace(tokens[i+1])
		if key == "" {
			continue
		}

		switch key {
		case keyModelTypeID:
			item.ModelTypeID = value
		case keyModelInstanceID:
			item.ModelInstanceID = value
		case keyFamilyName:
			item.FamilyName = value
		case keyTypeName:
			item.TypeName = value
		default:
			if value != "" {
				item.Properties[key] = catalogs.Coerce(value)
			}
		}
	}
}

// parseDecomposition handles a ~D record: a parent code followed by
// backslash-separated (child_code, factor, quantity) triples.
func (p *Parser) parseDecomposition(rec record, result *ParseResult) (string, bool) {
	parts := strings.Split(rec.data, "|")
	if len(parts) < 2 {
		result.warnf(rec.line, "decomposition record has no children payload")
		return "", false
	}

	parent := normalizeCode(parts[0])
	if parent == "" {
		result.warnf(rec.line, "decomposition record without parent code")
		return "", false
	}

	tokens := strings.Split(parts[1], `\`)
	var children []catalogs.ChildRef
	for i := 0; i < len(tokens); {
		child := strings.TrimSpace(tokens[i])
		if child == "" {
			i++
			continue
		}

		// Triple layout: code, factor, quantity. A missing or
		// unparseable quantity keeps the default of 1.
		quantity := 1.0
		if i+2 < len(tokens) {
			if raw := strings.TrimSpace(tokens[i+2]); raw != "" {
				if q, err := parseNumber(raw); err == nil {
					quantity = q
				}
			}
		}

		children = append(children, catalogs.ChildRef{Code: child, Quantity: quantity})
		i += 3
	}

	if len(children) == 0 {
		return "", false
	}
	result.Hierarchy[parent] = children
	return parent, true
}

// linkHierarchy populates parent/children/quantity on items after all
// records are read. Edges to unknown codes stay in Hierarchy as
// structural edges but are not linked.
func (p *Parser) linkHierarchy(result *ParseResult, parentOrder []string) {
	for _, parentCode := range parentOrder {
		parent, ok := result.Budget.Get(parentCode)
		if !ok {
			continue
		}
		for _, ref := range result.Hierarchy[parentCode] {
			parent.Children = append(parent.Children, ref)
			if child, ok := result.Budget.Get(ref.Code); ok {
				child.ParentCode = parentCode
				child.Quantity = ref.Quantity
			}
		}
	}
}

// warnf records a recoverable line-level warning.
func (r *ParseResult) warnf(line int, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Line: line, Message: fmt.Sprintf(format, args...)})
}

// normalizeCode trims surrounding whitespace and the trailing # marker
// used by the source format to denote composite entries.
func normalizeCode(raw string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(raw), "#"))
}

// parseNumber parses a numeric field, accepting comma as the decimal
// separator.
func parseNumber(raw string) (float64, error) {
	return cast.ToFloat64E(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."))
}
