package tui

import (
	"bytes"
	"testing"

	"github.com/ikenthis/bmsagent/internal/executor"
	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultMarkdown_Failure(t *testing.T) {
	md := ResultMarkdown(domain.ExecutionResult{Message: "element not found"})
	assert.Equal(t, "**✗ element not found**\n", md)
}

func TestResultMarkdown_Count(t *testing.T) {
	md := ResultMarkdown(domain.ExecutionResult{
		Success: true,
		Message: "Found 3 elements in 2 categories",
		Result: executor.ElementCount{
			Total:   3,
			Ranking: []executor.CategoryCount{{Category: "IFCDOOR", Count: 2, Percentage: 66.67}, {Category: "IFCWALL", Count: 1, Percentage: 33.33}},
		},
	})
	assert.Contains(t, md, "| IFCDOOR | 2 | 66.67 |")
	assert.Contains(t, md, "| IFCWALL | 1 | 33.33 |")
}

func TestResultMarkdown_MaintenanceReport(t *testing.T) {
	md := ResultMarkdown(domain.ExecutionResult{
		Success: true,
		Message: "Generated maintenance report",
		Result: executor.Report{
			Type: "maintenance",
			Maintenance: &executor.MaintenancePlan{
				Items:     []executor.MaintenanceItem{{Category: "IFCDOOR", Count: 4, Frequency: "quarterly", EstimatedCost: 100}},
				TotalCost: 100,
			},
		},
	})
	assert.Contains(t, md, "## maintenance report")
	assert.Contains(t, md, "| IFCDOOR | 4 | quarterly | 100.00 |")
	assert.Contains(t, md, "Total estimated cost: **100.00**")
}

func TestResultMarkdown_FallbackYAML(t *testing.T) {
	md := ResultMarkdown(domain.ExecutionResult{
		Success: true,
		Message: "Zoomed to element 7",
		Result:  map[string]any{"distance": 4.2},
	})
	assert.Contains(t, md, "```yaml\ndistance: 4.2\n```")
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(60)
	require.NoError(t, err)
	out, err := render("**bold**")
	require.NoError(t, err)
	assert.Contains(t, out, "bold")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "facility assistant 1.2.3")
}

func TestResultMarkdown_PieDiagram(t *testing.T) {
	md := ResultMarkdown(domain.ExecutionResult{
		Success: true,
		Message: "Created pie diagram with 2 entries",
		Result: executor.DiagramSummary{
			Name: "occupancy",
			Type: "pie",
			Entries: []executor.DiagramEntry{
				{Label: "free", Value: 3, Percentage: 75},
				{Label: "taken", Value: 1, Percentage: 25},
			},
		},
	})
	assert.Contains(t, md, "| free | 3 | 75.00 |")
	assert.Contains(t, md, "```mermaid\npie showData\n")
	assert.Contains(t, md, `"taken" : 1`)
}
