// Package vocabulary maps free-text element nouns to canonical IFC category codes.
package vocabulary

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Group binds a list of synonyms to one canonical category code.
type Group struct {
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Synonyms []string `yaml:"synonyms"`
}

// Table is an ordered, immutable list of groups. Order decides ties.
type Table struct {
	groups []Group
}

var ifcToken = regexp.MustCompile(`\bifc[a-z]+\b`)

var defaultGroups = []Group{
	{Name: "doors", Category: "IFCDOOR", Synonyms: []string{"puerta", "puertas", "door", "doors"}},
	{Name: "windows", Category: "IFCWINDOW", Synonyms: []string{"ventana", "ventanas", "window", "windows"}},
	{Name: "walls", Category: "IFCWALL", Synonyms: []string{"muro", "muros", "pared", "paredes", "wall", "walls"}},
	{Name: "spaces", Category: "IFCSPACE", Synonyms: []string{"espacio", "espacios", "habitación", "habitaciones", "habitacion", "sala", "salas", "room", "rooms", "space", "spaces"}},
	{Name: "columns", Category: "IFCCOLUMN", Synonyms: []string{"columna", "columnas", "pilar", "pilares", "column", "columns"}},
	{Name: "beams", Category: "IFCBEAM", Synonyms: []string{"viga", "vigas", "beam", "beams"}},
	{Name: "stairs", Category: "IFCSTAIR", Synonyms: []string{"escalera", "escaleras", "stair", "stairs"}},
	{Name: "ceilings", Category: "IFCCOVERING", Synonyms: []string{"falso techo", "techo", "techos", "ceiling", "ceilings"}},
	{Name: "floors", Category: "IFCSLAB", Synonyms: []string{"forjado", "forjados", "losa", "losas", "suelo", "suelos", "slab", "slabs", "floor", "floors"}},
	{Name: "roofs", Category: "IFCROOF", Synonyms: []string{"cubierta", "cubiertas", "tejado", "tejados", "roof", "roofs"}},
	{Name: "furnishings", Category: "IFCFURNISHINGELEMENT", Synonyms: []string{"mobiliario", "mueble", "muebles", "furniture", "furnishing"}},
	{Name: "equipment", Category: "IFCFLOWTERMINAL", Synonyms: []string{"equipo", "equipos", "equipamiento", "equipment", "terminal"}},
}

// Default returns the built-in Spanish/English table.
func Default() *Table {
	t, err := New(defaultGroups)
	if err != nil {
		panic(err)
	}
	return t
}

// New validates and builds a table. Every group needs a category and at least one synonym.
func New(groups []Group) (*Table, error) {
	if len(groups) == 0 {
		return nil, errors.New("vocabulary: table has no groups")
	}
	out := make([]Group, 0, len(groups))
	for i, g := range groups {
		if strings.TrimSpace(g.Category) == "" {
			return nil, fmt.Errorf("vocabulary: group %d (%s) has no category", i, g.Name)
		}
		syn := make([]string, 0, len(g.Synonyms))
		for _, s := range g.Synonyms {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				syn = append(syn, s)
			}
		}
		if len(syn) == 0 {
			return nil, fmt.Errorf("vocabulary: category %s has no synonyms", g.Category)
		}
		out = append(out, Group{Name: g.Name, Category: strings.ToUpper(g.Category), Synonyms: syn})
	}
	return &Table{groups: out}, nil
}

// LoadFile reads a YAML table:
//
//	groups:
//	  - name: doors
//	    category: IFCDOOR
//	    synonyms: [puerta, puertas]
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file: %w", err)
	}
	var doc struct {
		Groups []Group `yaml:"groups"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing vocabulary file: %w", err)
	}
	return New(doc.Groups)
}

// Groups returns a copy of the table in lookup order.
func (t *Table) Groups() []Group {
	out := make([]Group, len(t.groups))
	for i, g := range t.groups {
		g.Synonyms = append([]string(nil), g.Synonyms...)
		out[i] = g
	}
	return out
}

// Synonyms returns the synonyms registered for a category, or nil.
func (t *Table) Synonyms(category string) []string {
	category = strings.ToUpper(category)
	for _, g := range t.groups {
		if g.Category == category {
			return append([]string(nil), g.Synonyms...)
		}
	}
	return nil
}

// Group returns the group registered under name.
func (t *Table) Group(name string) (Group, bool) {
	for _, g := range t.groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Detect returns the category code mentioned in text, or "" when none is found.
// "" means "no type filter", never an error.
func (t *Table) Detect(text string) string {
	lower := strings.ToLower(text)
	for _, g := range t.groups {
		if ContainsAny(lower, g.Synonyms) {
			return g.Category
		}
	}
	for _, g := range t.groups {
		if strings.Contains(lower, strings.ToLower(g.Category)) {
			return g.Category
		}
	}
	if m := ifcToken.FindString(lower); m != "" {
		return strings.ToUpper(m)
	}
	return ""
}

// ContainsAny reports whether text contains any of the needles.
func ContainsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
