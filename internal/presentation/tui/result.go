package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ikenthis/bmsagent/internal/executor"
	"github.com/ikenthis/bmsagent/internal/presentation/graph"
	"github.com/ikenthis/bmsagent/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ResultMarkdown formats an execution result for the console.
func ResultMarkdown(res domain.ExecutionResult) string {
	var b strings.Builder
	if !res.Success {
		fmt.Fprintf(&b, "**✗ %s**\n", res.Message)
		return b.String()
	}
	fmt.Fprintf(&b, "**✓ %s**\n\n", res.Message)

	switch r := res.Result.(type) {
	case executor.ElementCount:
		categoryTable(&b, r.Ranking)
	case executor.Report:
		reportMarkdown(&b, r)
	case executor.SpaceList:
		spaceTable(&b, r.Spaces)
	case executor.ElementAnalysis:
		analysisMarkdown(&b, r)
	case executor.DiagramSummary:
		b.WriteString("| Label | Value | % |\n|---|---:|---:|\n")
		slices := make([]graph.Slice, 0, len(r.Entries))
		for _, e := range r.Entries {
			fmt.Fprintf(&b, "| %s | %g | %.2f |\n", e.Label, e.Value, e.Percentage)
			slices = append(slices, graph.Slice{Label: e.Label, Value: e.Value})
		}
		if r.Type == "pie" {
			fmt.Fprintf(&b, "\n```mermaid\n%s```\n", graph.Pie(r.Name, slices))
		}
	case nil:
	default:
		yamlBlock(&b, r)
	}
	return b.String()
}

func categoryTable(b *strings.Builder, ranking []executor.CategoryCount) {
	if len(ranking) == 0 {
		return
	}
	b.WriteString("| Category | Count | % |\n|---|---:|---:|\n")
	for _, c := range ranking {
		fmt.Fprintf(b, "| %s | %d | %.2f |\n", c.Category, c.Count, c.Percentage)
	}
	b.WriteString("\n")
}

func spaceTable(b *strings.Builder, spaces []executor.Space) {
	if len(spaces) == 0 {
		return
	}
	b.WriteString("| Space | Function | Area m² |\n|---|---|---:|\n")
	for _, s := range spaces {
		name := s.Name
		if s.LongName != "" {
			name = fmt.Sprintf("%s %s", s.Name, s.LongName)
		}
		fmt.Fprintf(b, "| %s | %s | %.2f |\n", name, s.Function, s.Area)
	}
	b.WriteString("\n")
}

func reportMarkdown(b *strings.Builder, r executor.Report) {
	fmt.Fprintf(b, "## %s report\n\n", r.Type)
	categoryTable(b, r.TopCategories)
	if m := r.Maintenance; m != nil {
		b.WriteString("### Maintenance\n\n| Category | Count | Frequency | Cost |\n|---|---:|---|---:|\n")
		for _, it := range m.Items {
			fmt.Fprintf(b, "| %s | %d | %s | %.2f |\n", it.Category, it.Count, it.Frequency, it.EstimatedCost)
		}
		fmt.Fprintf(b, "\nTotal estimated cost: **%.2f**\n\n", m.TotalCost)
	}
	if e := r.Energy; e != nil {
		fmt.Fprintf(b, "### Energy\n\nArea %.2f m², estimated %.0f kWh/year.\n\n", e.TotalArea, e.Total)
		for _, s := range e.Savings {
			fmt.Fprintf(b, "- %s: save up to %.0f kWh (%s)\n", s.Category, s.Potential, strings.Join(s.Strategies, "; "))
		}
		b.WriteString("\n")
	}
	if len(r.Compliance) > 0 {
		b.WriteString("### Compliance\n\n")
		for _, c := range r.Compliance {
			fmt.Fprintf(b, "- **%s**: %s (%s)\n", c.Name, c.Requirement, c.Status)
		}
		b.WriteString("\n")
	}
	if r.Type == "general" {
		spaceTable(b, r.Spaces)
	}
}

func analysisMarkdown(b *strings.Builder, a executor.ElementAnalysis) {
	fmt.Fprintf(b, "**%s** `%s`\n\n", a.Category, a.GlobalID)
	if d := a.Dimensions; d != nil {
		fmt.Fprintf(b, "Dimensions: %.2f × %.2f × %.2f m\n\n", d.Width, d.Height, d.Depth)
	}
	keys := make([]string, 0, len(a.Properties))
	for k := range a.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		b.WriteString("| Property | Value |\n|---|---|\n")
		for _, k := range keys {
			fmt.Fprintf(b, "| %s | %v |\n", k, a.Properties[k])
		}
		b.WriteString("\n")
	}
	for _, r := range a.Recommendations {
		fmt.Fprintf(b, "- %s\n", r)
	}
}

func yamlBlock(b *strings.Builder, v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		fmt.Fprintf(b, "%+v\n", v)
		return
	}
	b.WriteString("```yaml\n")
	b.Write(data)
	b.WriteString("```\n")
}
