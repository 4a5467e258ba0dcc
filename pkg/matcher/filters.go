package matcher

import "strings"

// DefaultIgnoreTerms lists substrings that mark non-comparable catalog
// entries: views, sheets, rooms, areas, openings and MEP plumbing that
// appear in extracted catalogs but do not represent priced work items.
var DefaultIgnoreTerms = []string{
	// Project info / views
	"información", "plano", "vista",
	// Zones and areas
	"zona de", "climatización", "topografía",
	// Rooms
	"habitaciones", "áreas", "ocupacion",
	"sup.libre", "sup.construida",
	// Room types
	"almacén", "salón", "cocina", "aseo", "archivo", "circulación",
	"área de trabajo", "sala de reuniones", "dep. limpieza",
	"aseos femeninos", "aseos masculinos",
	// Openings and voids
	"aberturas", "hueco", "corte", "líneas",
	// Materials and MEP
	"materiales", "tubería", "segmentos",
	// English equivalents
	"project info", "sheet", "view",
	"rooms", "areas",
	"opening", "void", "lines",
	"materials", "pipe",
	"system panel", "empty panel",
}

// Ignored reports whether an entity with the given code and description
// should be excluded from matching. The check is a case-insensitive
// substring match over the concatenated code and description.
func Ignored(code, description string, terms []string) bool {
	text := strings.ToLower(strings.TrimSpace(code + " " + description))
	if text == "" {
		return false
	}
	for _, term := range terms {
		if strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
