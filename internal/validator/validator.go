// Package validator checks scene fixtures and vocabulary tables before they are served.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ikenthis/bmsagent/pkg/adapters/memory"
	"github.com/ikenthis/bmsagent/pkg/vocabulary"
)

// ValidateScene reports duplicate ids, uncategorised items and inverted boxes.
// ParseFixture tolerates all of these, so they would otherwise go unnoticed.
func ValidateScene(f memory.Fixture) error {
	var errors []string
	if len(f.Models) == 0 {
		errors = append(errors, "scene has no models")
	}

	models := make(map[string]bool)
	for i, m := range f.Models {
		if m.ID == "" {
			errors = append(errors, fmt.Sprintf("model #%d has no id", i))
		} else if models[m.ID] {
			errors = append(errors, fmt.Sprintf("duplicate model id '%s'", m.ID))
		}
		models[m.ID] = true

		items := make(map[int]bool)
		for _, it := range m.Items {
			ref := fmt.Sprintf("%s/%d", m.ID, it.LocalID)
			if items[it.LocalID] {
				errors = append(errors, fmt.Sprintf("duplicate local id '%s'", ref))
			}
			items[it.LocalID] = true

			if strings.TrimSpace(it.Category) == "" {
				errors = append(errors, fmt.Sprintf("item '%s' has no category", ref))
			}
			if it.Box.Min.X > it.Box.Max.X || it.Box.Min.Y > it.Box.Max.Y || it.Box.Min.Z > it.Box.Max.Z {
				errors = append(errors, fmt.Sprintf("item '%s' has an inverted bounding box", ref))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateVocabulary reports synonyms claimed by more than one category.
// Lookup is ordered, so the later claims can never match.
func ValidateVocabulary(t *vocabulary.Table) error {
	var errors []string
	owner := make(map[string]string)
	for _, g := range t.Groups() {
		for _, s := range g.Synonyms {
			if prev, ok := owner[s]; ok && prev != g.Category {
				errors = append(errors, fmt.Sprintf("synonym '%s' of %s is shadowed by %s", s, g.Category, prev))
				continue
			}
			owner[s] = g.Category
		}
	}
	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}

// Unreachable lists scene categories that no vocabulary group names.
// Requests can still reach them by spelling the IFC code.
func Unreachable(f memory.Fixture, t *vocabulary.Table) []string {
	known := make(map[string]bool)
	for _, g := range t.Groups() {
		known[g.Category] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, m := range f.Models {
		for _, it := range m.Items {
			c := strings.ToUpper(it.Category)
			if c == "" || known[c] || seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
