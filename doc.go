/*
Package bmsagent is a natural-language action agent for BIM facility dashboards.

Free text is interpreted into exactly one action of a closed catalog (select,
zoom, count, analyze, report, highlight, isolate, create geometry or diagrams),
executed against a BIM viewer reached only through the interfaces in pkg/ports,
and returned as a uniform domain.ExecutionResult.

# Concept

The agent has two halves. The interpreter is a deterministic, offline classifier:
an ordered list of predicate/resolver rules over the lower-cased request, backed by
a vocabulary table that maps Spanish and English nouns to IFC categories. The
executor owns the capability catalog and talks to the viewer collaborators
(models, camera, scene graph, redraw trigger). Neither half keeps hidden state;
the conversation context is an explicit, versioned value that callers may persist
through any ports.ContextStore.

# Usage

	viewer := memory.DemoViewer()

	agent := bmsagent.New(bmsagent.WithLogger(logger))
	agent.Initialize(viewer, viewer.Fragments(), viewer.Models())

	res := agent.ExecuteAction(ctx, "cuántas puertas hay", nil)
	if !res.Success {
		fmt.Println(res.Message)
	}

ExecuteAction never returns an error: unrecognised text and failed actions are
reported as {Success: false, Message}. Use Agent.Execute to run a request against
a caller-owned context, which is how the HTTP and MCP surfaces keep one context per
session.

# Surfaces

  - pkg/adapters/http: chi router with session endpoints and Prometheus metrics.
  - pkg/adapters/mcp: Model Context Protocol tools for LLM hosts.
  - pkg/runner: an interactive console.
  - cmd/bmsagent: the cobra binary wiring all of the above.
*/
package bmsagent
