// Package graph renders agent data as Mermaid diagrams.
package graph

import (
	"fmt"
	"strings"

	"github.com/ikenthis/bmsagent/pkg/domain"
)

// HistoryFlow produces a Mermaid flowchart of the action sequence of a conversation.
// Each distinct action is one node; each edge is labelled with how many times the
// conversation moved from one action to the next. Visited actions and the last
// action get overlay styles.
func HistoryFlow(conv *domain.ConversationContext) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	if conv == nil || len(conv.History) == 0 {
		sb.WriteString("    empty((\"no actions\"))\n")
		return sb.String()
	}

	type edge struct{ from, to domain.ActionName }
	var (
		nodes []domain.ActionName
		seen  = make(map[domain.ActionName]int)
		edges []edge
		count = make(map[edge]int)
	)
	for i, h := range conv.History {
		if _, ok := seen[h.Action]; !ok {
			nodes = append(nodes, h.Action)
		}
		seen[h.Action]++
		if i == 0 {
			continue
		}
		e := edge{conv.History[i-1].Action, h.Action}
		if count[e] == 0 {
			edges = append(edges, e)
		}
		count[e]++
	}

	sb.WriteString("    start((\"start\"))\n")
	for _, n := range nodes {
		fmt.Fprintf(&sb, "    %s[\"%s <br/> x%d\"]\n", sanitizeMermaidID(string(n)), n, seen[n])
	}
	fmt.Fprintf(&sb, "    start --> %s\n", sanitizeMermaidID(string(conv.History[0].Action)))
	for _, e := range edges {
		arrow := "-->"
		if count[e] > 1 {
			arrow = fmt.Sprintf("-- \"%d\" -->", count[e])
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(string(e.from)), arrow, sanitizeMermaidID(string(e.to)))
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Black text keeps contrast on light fills under both themes.
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	current := domain.ActionName("")
	if conv.LastAction != nil {
		current = conv.LastAction.Action
	}
	for _, n := range nodes {
		if n == current {
			continue
		}
		fmt.Fprintf(&sb, "    class %s visited;\n", sanitizeMermaidID(string(n)))
	}
	if current != "" {
		fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(current)))
	}
	return sb.String()
}

// Slice is one labelled value of a pie chart.
type Slice struct {
	Label string
	Value float64
}

// Pie produces a Mermaid pie chart. Non-positive values are skipped.
func Pie(title string, slices []Slice) string {
	var sb strings.Builder
	sb.WriteString("pie showData\n")
	if title != "" {
		fmt.Fprintf(&sb, "    title %s\n", sanitizeLabel(title))
	}
	for _, s := range slices {
		if s.Value <= 0 {
			continue
		}
		fmt.Fprintf(&sb, "    \"%s\" : %g\n", sanitizeLabel(s.Label), s.Value)
	}
	return sb.String()
}

func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
