package graph_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ikenthis/bmsagent/internal/presentation/graph"
	"github.com/ikenthis/bmsagent/pkg/domain"
)

func TestHistoryFlow(t *testing.T) {
	conv := domain.NewConversationContext("s")
	now := time.Now()
	for _, a := range []domain.ActionName{
		domain.ActionCountElements,
		domain.ActionHighlightElements,
		domain.ActionResetView,
		domain.ActionHighlightElements,
		domain.ActionResetView,
	} {
		conv.Record(a, now)
	}

	got := graph.HistoryFlow(conv)
	for _, want := range []string{
		"graph LR\n",
		`countElements["countElements <br/> x1"]`,
		`highlightElements["highlightElements <br/> x2"]`,
		"start --> countElements",
		"countElements --> highlightElements",
		`highlightElements -- "2" --> resetView`,
		"resetView --> highlightElements",
		"class countElements visited;",
		"class resetView current;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("HistoryFlow() = \n%v\nWant substring: %v", got, want)
		}
	}
	if strings.Contains(got, "class resetView visited;") {
		t.Error("current action should not also be styled as visited")
	}
}

func TestHistoryFlow_Empty(t *testing.T) {
	got := graph.HistoryFlow(domain.NewConversationContext("s"))
	if !strings.Contains(got, `empty(("no actions"))`) {
		t.Errorf("unexpected empty flow: %q", got)
	}
}

func TestPie(t *testing.T) {
	got := graph.Pie(`Doors "by" floor`, []graph.Slice{
		{Label: "IFCDOOR", Value: 4},
		{Label: "IFCWALL", Value: 0},
		{Label: `say "hi"`, Value: 1.5},
	})

	tests := []struct {
		name string
		want string
		has  bool
	}{
		{"header", "pie showData\n", true},
		{"escaped title", "title Doors 'by' floor", true},
		{"slice", `"IFCDOOR" : 4`, true},
		{"zero skipped", "IFCWALL", false},
		{"escaped label", `"say 'hi'" : 1.5`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if strings.Contains(got, tt.want) != tt.has {
				t.Errorf("Pie() = \n%v\nsubstring %q presence want %v", got, tt.want, tt.has)
			}
		})
	}
}
