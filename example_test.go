package bmsagent_test

import (
	"context"
	"fmt"

	"github.com/ikenthis/bmsagent"
	"github.com/ikenthis/bmsagent/pkg/adapters/memory"
	"github.com/ikenthis/bmsagent/pkg/domain"
)

// ExampleAgent_ExecuteAction runs free-text requests against the built-in demo building.
func ExampleAgent_ExecuteAction() {
	viewer := memory.DemoViewer()
	agent := bmsagent.New()
	agent.Initialize(viewer, viewer.Fragments(), viewer.Models())

	ctx := context.Background()
	for _, text := range []string{"¿Cuántas puertas hay?", "haz zoom al elemento 9999"} {
		res := agent.ExecuteAction(ctx, text, nil)
		fmt.Printf("%s success=%t: %s\n", res.Action, res.Success, res.Message)
	}
	fmt.Println("history:", len(agent.History()))

	// Output:
	// countElements success=true: Found 4 elements of type IFCDOOR
	// zoomToElement success=false: element not found
	// history: 2
}

// ExampleAgent_Dispatch skips interpretation and runs an explicit action.
func ExampleAgent_Dispatch() {
	viewer := memory.DemoViewer()
	agent := bmsagent.New()
	agent.Initialize(viewer, viewer.Fragments(), viewer.Models())

	conv := domain.NewConversationContext("ops")
	res := agent.Dispatch(context.Background(), conv, domain.NewAction(domain.ActionCountElements, map[string]any{"type": "IFCWINDOW"}), nil)
	fmt.Println(res.Message)

	res = agent.Dispatch(context.Background(), conv, domain.NewAction(domain.ActionZoomToElement, nil), nil)
	fmt.Println(res.Message)

	// Output:
	// Found 2 elements of type IFCWINDOW
	// invalid parameters: id: required
}
