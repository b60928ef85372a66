package interpreter

import (
	"strings"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/vocabulary"
)

// Rule is one predicate/resolver pair. Rules are evaluated in order and the
// first match wins. Text given to both functions is already lower-cased.
type Rule struct {
	Name    string
	Match   func(text string) bool
	Resolve func(text string) domain.InterpretedAction
}

// branch chooses an action inside a noun group from a secondary signal.
type branch struct {
	when   func(text string) bool
	action domain.ActionName
	params func(text string) map[string]any
}

// nounGroup is a data-driven rule: the group matches when any noun is present,
// then the first matching branch decides the action, else the fallback.
type nounGroup struct {
	name     string
	nouns    []string
	match    func(text string) bool // overrides nouns when set
	branches []branch
	fallback branch
}

func (g nounGroup) rule() Rule {
	match := g.match
	if match == nil {
		match = func(text string) bool { return containsAny(text, g.nouns) }
	}
	return Rule{
		Name:  g.name,
		Match: match,
		Resolve: func(text string) domain.InterpretedAction {
			for _, b := range g.branches {
				if b.when(text) {
					return b.resolve(text)
				}
			}
			return g.fallback.resolve(text)
		},
	}
}

func (b branch) resolve(text string) domain.InterpretedAction {
	var params map[string]any
	if b.params != nil {
		params = b.params(text)
	}
	return domain.NewAction(b.action, params)
}

func keywords(words ...[]string) func(string) bool {
	return func(text string) bool {
		for _, w := range words {
			if containsAny(text, w) {
				return true
			}
		}
		return false
	}
}

func fixed(params map[string]any) func(string) map[string]any {
	return func(string) map[string]any {
		out := make(map[string]any, len(params))
		for k, v := range params {
			out[k] = v
		}
		return out
	}
}

func typeParam(category string) func(string) map[string]any {
	return fixed(map[string]any{"type": category})
}

// defaultRules builds the ordered rule list over a vocabulary table.
func defaultRules(vocab *vocabulary.Table) []Rule {
	detected := func(text string) map[string]any {
		if t := vocab.Detect(text); t != "" {
			return map[string]any{"type": t}
		}
		return nil
	}
	hasType := func(text string) bool { return vocab.Detect(text) != "" }
	idParam := func(key string) func(string) map[string]any {
		return func(text string) map[string]any {
			id, _ := elementID(text)
			if key == "ids" {
				return map[string]any{"ids": []int{id}}
			}
			return map[string]any{key: id}
		}
	}

	rules := []Rule{
		{
			Name: "distribution-analysis",
			Match: func(text string) bool {
				return containsAll(text, "analiza", "elemento") &&
					containsAny(text, []string{"distribución", "distribucion"})
			},
			Resolve: func(string) domain.InterpretedAction {
				return domain.NewAction(domain.ActionCountElements, nil)
			},
		},
		{
			Name:  "counting",
			Match: func(text string) bool { return matchesAny(text, countingPatterns) },
			Resolve: func(text string) domain.InterpretedAction {
				return domain.NewAction(domain.ActionCountElements, detected(text))
			},
		},
		{
			Name:  "reset-view",
			Match: keywords(resetPhrases),
			Resolve: func(string) domain.InterpretedAction {
				return domain.NewAction(domain.ActionResetView, nil)
			},
		},
		nounGroup{
			name: "element-id",
			match: func(text string) bool {
				_, ok := elementID(text)
				return ok
			},
			branches: []branch{
				{when: keywords(zoomVerbs), action: domain.ActionZoomToElement, params: idParam("id")},
				{when: keywords(analyzeVerbs), action: domain.ActionAnalyzeElement, params: idParam("id")},
				{when: keywords(highlightVerbs), action: domain.ActionHighlightElements, params: idParam("ids")},
			},
			fallback: branch{action: domain.ActionSelectElement, params: idParam("id")},
		}.rule(),
		{
			Name:  "isolate",
			Match: func(text string) bool { return containsAny(text, isolateVerbs) && hasType(text) },
			Resolve: func(text string) domain.InterpretedAction {
				return domain.NewAction(domain.ActionIsolateCategory, map[string]any{"category": vocab.Detect(text)})
			},
		},
		nounGroup{
			name:  "diagram",
			nouns: diagramNouns,
			branches: []branch{
				{when: keywords(pieWords), action: domain.ActionCreateDiagram, params: fixed(map[string]any{"type": "pie", "source": "categories"})},
				{when: keywords(barWords), action: domain.ActionCreateDiagram, params: fixed(map[string]any{"type": "bar", "source": "categories"})},
			},
			fallback: branch{action: domain.ActionCreateDiagram, params: fixed(map[string]any{"type": "distribution", "source": "categories"})},
		}.rule(),
		nounGroup{
			name:  "report",
			nouns: reportNouns,
			branches: []branch{
				{when: keywords(maintenance), action: domain.ActionGenerateReport, params: typeParam("maintenance")},
				{when: keywords(energy), action: domain.ActionGenerateReport, params: typeParam("energy")},
				{when: keywords(compliance), action: domain.ActionGenerateReport, params: typeParam("compliance")},
			},
			fallback: branch{action: domain.ActionGenerateReport},
		}.rule(),
	}
	for _, name := range []string{"doors", "windows", "walls"} {
		g, ok := vocab.Group(name)
		if !ok {
			continue
		}
		rules = append(rules, nounGroup{
			name:  name,
			nouns: g.Synonyms,
			branches: []branch{
				{when: keywords(highlightVerbs), action: domain.ActionHighlightElements, params: typeParam(g.Category)},
				{when: keywords(selectVerbs), action: domain.ActionSelectElementsByType, params: typeParam(g.Category)},
			},
			fallback: branch{action: domain.ActionSelectElementsByType, params: typeParam(g.Category)},
		}.rule())
	}

	if g, ok := vocab.Group("spaces"); ok {
		rules = append(rules, nounGroup{
			name:  "spaces",
			nouns: g.Synonyms,
			branches: []branch{
				{when: keywords(highlightVerbs), action: domain.ActionHighlightElements, params: typeParam(g.Category)},
			},
			fallback: branch{action: domain.ActionFindSpaces, params: spaceFilters},
		}.rule())
	}

	rules = append(rules,
		nounGroup{
			name:  "elements",
			nouns: elementNouns,
			branches: []branch{
				{when: propertyQuery, action: domain.ActionSelectElementsByProperty, params: propertyParams},
				{when: func(t string) bool { return containsAny(t, highlightVerbs) && hasType(t) }, action: domain.ActionHighlightElements, params: detected},
				{when: func(t string) bool { return containsAny(t, selectVerbs) && hasType(t) }, action: domain.ActionSelectElementsByType, params: detected},
			},
			fallback: branch{action: domain.ActionCountElements},
		}.rule(),
		Rule{
			Name:  "property",
			Match: propertyQuery,
			Resolve: func(text string) domain.InterpretedAction {
				return domain.NewAction(domain.ActionSelectElementsByProperty, propertyParams(text))
			},
		},
		Rule{
			Name:  "element-type",
			Match: hasType,
			Resolve: func(text string) domain.InterpretedAction {
				if containsAny(text, highlightVerbs) {
					return domain.NewAction(domain.ActionHighlightElements, detected(text))
				}
				return domain.NewAction(domain.ActionSelectElementsByType, detected(text))
			},
		},
	)
	return rules
}

func propertyQuery(text string) bool {
	return containsAny(text, propertyWords) && propertyPattern.MatchString(text)
}

func propertyParams(text string) map[string]any {
	m := propertyPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return map[string]any{"property": m[1], "value": m[2]}
}

func spaceFilters(text string) map[string]any {
	params := map[string]any{}
	if name := submatch(spaceNamePattern, text); name != "" {
		params["name"] = name
	}
	if fn := submatch(spaceFuncPattern, text); fn != "" {
		if loc := spaceNamePattern.FindStringIndex(fn); loc != nil {
			fn = strings.TrimSpace(fn[:loc[0]])
		}
		if fn != "" {
			params["function"] = fn
		}
	}
	return params
}
