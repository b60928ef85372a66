package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/ports"
)

// ElementCount is the payload of countElements.
type ElementCount struct {
	Total      int             `json:"total"`
	ByCategory map[string]int  `json:"by_category"`
	Ranking    []CategoryCount `json:"ranking"`
	Type       string          `json:"type,omitempty"`
	TypeCount  int             `json:"type_count,omitempty"`
}

// Space is one spatial element with its recognized properties.
type Space struct {
	Element    domain.ElementReference `json:"element"`
	Name       string                  `json:"name,omitempty"`
	LongName   string                  `json:"long_name,omitempty"`
	Function   string                  `json:"function,omitempty"`
	Area       float64                 `json:"area,omitempty"`
	Properties map[string]any          `json:"properties,omitempty"`
}

// SpaceList is the payload of findSpaces.
type SpaceList struct {
	Count       int     `json:"count"`
	Highlighted int     `json:"highlighted"`
	Spaces      []Space `json:"spaces"`
}

func (e *Executor) countElements(ctx context.Context, params map[string]any) (Outcome, error) {
	const action = domain.ActionCountElements
	var p typeParams
	if err := decode(action, params, &p); err != nil {
		return Outcome{}, err
	}
	count, err := e.tally(ctx, normalizeCategory(p.Type))
	if err != nil {
		return Outcome{}, err
	}
	if count.Type != "" {
		return Outcome{Result: count, Message: fmt.Sprintf("Found %s of type %s", pluralize(count.TypeCount, "element", "elements"), count.Type)}, nil
	}
	return Outcome{
		Result:  count,
		Message: fmt.Sprintf("Found %s in %s", pluralize(count.Total, "element", "elements"), pluralize(len(count.ByCategory), "category", "categories")),
	}, nil
}

// tally counts every category and, when category is set, requires it to be non-empty.
func (e *Executor) tally(ctx context.Context, category string) (ElementCount, error) {
	const action = domain.ActionCountElements
	counts, err := e.countCategories(ctx)
	if err != nil {
		return ElementCount{}, cancelled(action, err)
	}
	if len(counts) == 0 {
		return ElementCount{}, domain.NewActionError(action, "no categories found")
	}
	out := ElementCount{ByCategory: counts, Ranking: ranked(counts)}
	for _, n := range counts {
		out.Total += n
	}
	if category != "" {
		if counts[category] == 0 {
			return ElementCount{}, domain.NewActionError(action, "no elements of type %s found", category)
		}
		out.Type = category
		out.TypeCount = counts[category]
	}
	return out, nil
}

func (e *Executor) findSpaces(ctx context.Context, params map[string]any) (Outcome, error) {
	const action = domain.ActionFindSpaces
	var p spaceParams
	if err := decode(action, params, &p); err != nil {
		return Outcome{}, err
	}
	spaces, err := e.spaces(ctx)
	if err != nil {
		return Outcome{}, cancelled(action, err)
	}
	name := strings.ToLower(strings.TrimSpace(p.Name))
	function := strings.ToLower(strings.TrimSpace(p.Function))
	matched := spaces[:0:0]
	for _, s := range spaces {
		if name != "" && !containsFold(name, s.Name, s.LongName) {
			continue
		}
		if function != "" && !containsFold(function, s.Function, domain.ToString(s.Properties["Category"])) {
			continue
		}
		matched = append(matched, s)
	}
	if len(matched) == 0 {
		if name != "" || function != "" {
			return Outcome{}, domain.NewActionError(action, "no spaces match the given filters")
		}
		return Outcome{}, domain.NewActionError(action, "no spaces found")
	}

	groups := groupByModel(e.models, matched)
	highlighted := e.highlightCapped(ctx, groups, e.heuristics.SpaceHighlightCap)
	e.redraw(ctx)

	list := SpaceList{
		Count:       len(matched),
		Highlighted: len(highlighted),
		Spaces:      capped(matched, e.heuristics.SpaceResponseCap),
	}
	return Outcome{Result: list, Message: fmt.Sprintf("Found %s", pluralize(len(matched), "space", "spaces"))}, nil
}

// spaces enumerates every space with its recognized properties.
func (e *Executor) spaces(ctx context.Context) ([]Space, error) {
	var out []Space
	err := e.eachModel(ctx, "spaces", func(m ports.Model) error {
		ids, err := m.ItemsOfCategory(ctx, e.heuristics.SpaceCategory)
		if err != nil || len(ids) == 0 {
			return err
		}
		data, err := m.ItemsData(ctx, ids)
		if err != nil {
			return err
		}
		for _, d := range data {
			out = append(out, e.describeSpace(m, d))
		}
		return nil
	})
	return out, err
}

func (e *Executor) describeSpace(m ports.Model, d domain.ItemData) Space {
	s := Space{
		Element:    domain.ElementReference{ModelID: m.ID(), LocalID: d.LocalID},
		Name:       d.Attribute("Name"),
		LongName:   d.Attribute("LongName"),
		Properties: make(map[string]any),
	}
	for _, key := range e.heuristics.SpaceProperties {
		if v, ok := d.Lookup(key); ok {
			s.Properties[key] = v
		}
	}
	s.Function = domain.ToString(s.Properties["Function"])
	for _, key := range e.heuristics.Energy.AreaSource {
		if a, ok := domain.ToFloat(s.Properties[key]); ok && a > 0 {
			s.Area = a
			break
		}
	}
	return s
}

func groupByModel(models []ports.Model, spaces []Space) []modelItems {
	var out []modelItems
	for _, m := range models {
		var ids []int
		for _, s := range spaces {
			if s.Element.ModelID == m.ID() {
				ids = append(ids, s.Element.LocalID)
			}
		}
		if len(ids) > 0 {
			out = append(out, modelItems{model: m, ids: ids})
		}
	}
	return out
}

func sortByArea(spaces []Space) []Space {
	out := append([]Space(nil), spaces...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Area > out[j].Area })
	return out
}

func containsFold(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if h != "" && strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
