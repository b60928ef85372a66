package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/ports"
)

// SelectedElement is the payload of selectElement.
type SelectedElement struct {
	Element    domain.ElementReference `json:"element"`
	Category   string                  `json:"category"`
	Name       string                  `json:"name,omitempty"`
	Attributes map[string]any          `json:"attributes,omitempty"`
}

// TypeSelection is the payload of selectElementsByType and highlightElements.
type TypeSelection struct {
	Type        string                    `json:"type,omitempty"`
	Count       int                       `json:"count"`
	Highlighted int                       `json:"highlighted"`
	Elements    []domain.ElementReference `json:"elements"`
}

// PropertyMatch is one element whose property matched a search.
type PropertyMatch struct {
	Element  domain.ElementReference `json:"element"`
	Category string                  `json:"category"`
	Name     string                  `json:"name,omitempty"`
	Property string                  `json:"property"`
	Value    string                  `json:"value"`
}

// PropertySelection is the payload of selectElementsByProperty.
type PropertySelection struct {
	Property    string          `json:"property,omitempty"`
	Value       string          `json:"value"`
	Count       int             `json:"count"`
	Highlighted int             `json:"highlighted"`
	Matches     []PropertyMatch `json:"matches"`
}

// Isolation is the payload of isolateCategory.
type Isolation struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Models   int    `json:"models"`
}

func (e *Executor) selectElement(ctx context.Context, params map[string]any) (Outcome, error) {
	const action = domain.ActionSelectElement
	id, err := requireID(action, params)
	if err != nil {
		return Outcome{}, err
	}
	m, data, err := e.findElement(ctx, id)
	if err != nil {
		return Outcome{}, cancelled(action, err)
	}
	if m == nil {
		return Outcome{}, domain.NewActionError(action, "element %d not found", id)
	}
	ref := domain.ElementReference{ModelID: m.ID(), LocalID: id}
	e.fireSelect(ctx, ref, data)
	e.redraw(ctx)

	sel := SelectedElement{Element: ref, Category: data.Category, Name: data.Attribute("Name"), Attributes: data.Attributes}
	return Outcome{Result: sel, Message: fmt.Sprintf("Selected element %d (%s)", id, data.Category)}, nil
}

func (e *Executor) selectElementsByType(ctx context.Context, params map[string]any) (Outcome, error) {
	const action = domain.ActionSelectElementsByType
	var p typeParams
	if err := decode(action, params, &p); err != nil {
		return Outcome{}, err
	}
	category := normalizeCategory(p.Type)
	if category == "" {
		return Outcome{}, domain.NewActionError(action, "type is required")
	}
	groups, total, err := e.itemsOfCategory(ctx, category)
	if err != nil {
		return Outcome{}, cancelled(action, err)
	}
	if total == 0 {
		return Outcome{}, domain.NewActionError(action, "no elements of type %s found", category)
	}
	highlighted := e.highlightCapped(ctx, groups, e.heuristics.HighlightCap)
	e.redraw(ctx)

	sel := TypeSelection{
		Type:        category,
		Count:       total,
		Highlighted: len(highlighted),
		Elements:    capped(flatten(groups), e.heuristics.ResponseCap),
	}
	return Outcome{Result: sel, Message: fmt.Sprintf("Found %s of type %s", pluralize(total, "element", "elements"), category)}, nil
}

func (e *Executor) selectElementsByProperty(ctx context.Context, params map[string]any) (Outcome, error) {
	const action = domain.ActionSelectElementsByProperty
	var p propertyParams
	if err := decode(action, params, &p); err != nil {
		return Outcome{}, err
	}
	needle := strings.ToLower(strings.TrimSpace(p.Value))
	if needle == "" {
		return Outcome{}, domain.NewActionError(action, "value is required")
	}

	var matches []PropertyMatch
	var groups []modelItems
	err := e.eachModel(ctx, "property_scan", func(m ports.Model) error {
		cats, err := m.Categories(ctx)
		if err != nil {
			return err
		}
		var hits []int
		for _, c := range cats {
			ids, err := m.ItemsOfCategory(ctx, c)
			if err != nil || len(ids) == 0 {
				continue
			}
			data, err := m.ItemsData(ctx, ids)
			if err != nil {
				e.logger.Warn("model operation failed", "op", "items_data", "model", m.ID(), "category", c, "err", err)
				continue
			}
			for _, d := range data {
				if key, val, ok := matchProperty(d, p.Property, needle); ok {
					matches = append(matches, PropertyMatch{
						Element:  domain.ElementReference{ModelID: m.ID(), LocalID: d.LocalID},
						Category: d.Category,
						Name:     d.Attribute("Name"),
						Property: key,
						Value:    val,
					})
					hits = append(hits, d.LocalID)
				}
			}
		}
		if len(hits) > 0 {
			groups = append(groups, modelItems{model: m, ids: hits})
		}
		return nil
	})
	if err != nil {
		return Outcome{}, cancelled(action, err)
	}
	if len(matches) == 0 {
		if p.Property != "" {
			return Outcome{}, domain.NewActionError(action, "no elements with %s matching %q found", p.Property, p.Value)
		}
		return Outcome{}, domain.NewActionError(action, "no elements matching %q found", p.Value)
	}
	highlighted := e.highlightCapped(ctx, groups, e.heuristics.HighlightCap)
	e.redraw(ctx)

	sel := PropertySelection{
		Property:    p.Property,
		Value:       p.Value,
		Count:       len(matches),
		Highlighted: len(highlighted),
		Matches:     capped(matches, e.heuristics.ResponseCap),
	}
	return Outcome{Result: sel, Message: fmt.Sprintf("Found %s matching %q", pluralize(len(matches), "element", "elements"), p.Value)}, nil
}

// matchProperty searches direct attributes then property sets for a value containing needle.
// When property is set only keys equal to it (case-insensitive) are considered.
func matchProperty(d domain.ItemData, property, needle string) (string, string, bool) {
	try := func(key string, v any) (string, bool) {
		if property != "" && !strings.EqualFold(key, property) {
			return "", false
		}
		s := domain.ToString(v)
		return s, strings.Contains(strings.ToLower(s), needle)
	}
	for _, k := range sortedKeys(d.Attributes) {
		if s, ok := try(k, d.Attributes[k]); ok {
			return k, s, true
		}
	}
	for _, ps := range d.PropertySets {
		for _, k := range sortedKeys(ps.Properties) {
			if s, ok := try(k, ps.Properties[k]); ok {
				return ps.Name + "." + k, s, true
			}
		}
	}
	return "", "", false
}

func (e *Executor) highlightElements(ctx context.Context, params map[string]any) (Outcome, error) {
	const action = domain.ActionHighlightElements
	var p highlightParams
	if err := decode(action, params, &p); err != nil {
		return Outcome{}, err
	}
	category := normalizeCategory(p.Type)

	var groups []modelItems
	switch {
	case category != "":
		g, _, err := e.itemsOfCategory(ctx, category)
		if err != nil {
			return Outcome{}, cancelled(action, err)
		}
		groups = g
	case len(p.IDs) > 0:
		err := e.eachModel(ctx, "items_data", func(m ports.Model) error {
			data, err := m.ItemsData(ctx, p.IDs)
			if err != nil {
				return err
			}
			if len(data) == 0 {
				return nil
			}
			ids := make([]int, len(data))
			for i, d := range data {
				ids[i] = d.LocalID
			}
			groups = append(groups, modelItems{model: m, ids: ids})
			return nil
		})
		if err != nil {
			return Outcome{}, cancelled(action, err)
		}
	default:
		return Outcome{}, domain.NewActionError(action, "either type or ids is required")
	}

	limit := e.heuristics.TypeHighlightCap
	if category == "" {
		limit = len(flatten(groups))
	}
	highlighted := e.highlightCapped(ctx, groups, limit)
	if len(highlighted) == 0 {
		if category != "" {
			return Outcome{}, domain.NewActionError(action, "no elements of type %s found", category)
		}
		return Outcome{}, domain.NewActionError(action, "no elements found to highlight")
	}
	e.redraw(ctx)

	sel := TypeSelection{Type: category, Count: len(highlighted), Highlighted: len(highlighted), Elements: highlighted}
	return Outcome{Result: sel, Message: fmt.Sprintf("Highlighted %s", pluralize(len(highlighted), "element", "elements"))}, nil
}

func (e *Executor) isolateCategory(ctx context.Context, params map[string]any) (Outcome, error) {
	const action = domain.ActionIsolateCategory
	var p isolateParams
	if err := decode(action, params, &p); err != nil {
		return Outcome{}, err
	}
	category := normalizeCategory(p.Category)
	if category == "" {
		return Outcome{}, domain.NewActionError(action, "category is required")
	}
	groups, total, err := e.itemsOfCategory(ctx, category)
	if err != nil {
		return Outcome{}, cancelled(action, err)
	}
	if total == 0 {
		return Outcome{}, domain.NewActionError(action, "category %s not present", category)
	}

	holders := make(map[string][]int, len(groups))
	for _, g := range groups {
		holders[g.model.ID()] = g.ids
	}
	err = e.eachModel(ctx, "isolate", func(m ports.Model) error {
		if err := m.SetOpacity(ctx, e.heuristics.IsolationOpacity); err != nil {
			return err
		}
		if ids := holders[m.ID()]; len(ids) > 0 {
			return m.SetItemsOpacity(ctx, ids, 1)
		}
		return nil
	})
	if err != nil {
		return Outcome{}, cancelled(action, err)
	}
	e.redraw(ctx)

	iso := Isolation{Category: category, Count: total, Models: len(groups)}
	return Outcome{Result: iso, Message: fmt.Sprintf("Isolated %s of type %s", pluralize(total, "element", "elements"), category)}, nil
}
