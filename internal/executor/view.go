package executor

import (
	"context"
	"fmt"
	"math"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/ports"
)

// Zoom is the payload of zoomToElement.
type Zoom struct {
	Element  domain.ElementReference `json:"element"`
	Center   domain.Vec3             `json:"center"`
	Distance float64                 `json:"distance"`
	Box      domain.Box              `json:"box"`
}

// Dimensions are derived from an element's bounding box (Y up).
type Dimensions struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Depth  float64     `json:"depth"`
	Volume float64     `json:"volume"`
	Center domain.Vec3 `json:"center"`
}

// ElementAnalysis is the payload of analyzeElement.
type ElementAnalysis struct {
	Element         domain.ElementReference `json:"element"`
	Category        string                  `json:"category"`
	Name            string                  `json:"name,omitempty"`
	Description     string                  `json:"description,omitempty"`
	GlobalID        string                  `json:"global_id,omitempty"`
	Properties      map[string]any          `json:"properties"`
	Dimensions      *Dimensions             `json:"dimensions,omitempty"`
	Recommendations []string                `json:"recommendations"`
}

func (e *Executor) zoomToElement(ctx context.Context, params map[string]any) (Outcome, error) {
	const action = domain.ActionZoomToElement
	id, err := requireID(action, params)
	if err != nil {
		return Outcome{}, err
	}
	m, _, err := e.findElement(ctx, id)
	if err != nil {
		return Outcome{}, cancelled(action, err)
	}
	if m == nil {
		return Outcome{}, domain.NewActionError(action, "element not found")
	}
	box, err := m.MergedBox(ctx, []int{id})
	// A point box would put the camera inside the element.
	if err != nil || box.Empty() || box.MaxDimension() == 0 {
		return Outcome{}, &domain.ActionExecutionError{Action: action, Cause: "bounding box unavailable", Err: err}
	}
	cam := e.camera()
	if cam == nil {
		return Outcome{}, domain.NewActionError(action, "camera unavailable")
	}

	center := box.Center()
	distance := e.heuristics.ZoomFactor * box.MaxDimension()
	if err := cam.FitToSphere(ctx, center, distance); err != nil {
		return Outcome{}, &domain.ActionExecutionError{Action: action, Cause: "camera unavailable", Err: err}
	}
	if err := m.Highlight(ctx, []int{id}, e.heuristics.HighlightMaterial); err != nil {
		e.logger.Warn("model operation failed", "op", "highlight", "model", m.ID(), "err", err)
	}
	e.redraw(ctx)

	z := Zoom{
		Element:  domain.ElementReference{ModelID: m.ID(), LocalID: id},
		Center:   center,
		Distance: distance,
		Box:      box,
	}
	return Outcome{Result: z, Message: fmt.Sprintf("Zoomed to element %d", id)}, nil
}

func (e *Executor) resetView(ctx context.Context) (Outcome, error) {
	const action = domain.ActionResetView
	cam := e.camera()
	if cam == nil {
		return Outcome{}, domain.NewActionError(action, "camera unavailable")
	}
	if err := cam.Reset(ctx); err != nil {
		return Outcome{}, &domain.ActionExecutionError{Action: action, Cause: "camera unavailable", Err: err}
	}
	reset := 0
	err := e.eachModel(ctx, "reset", func(m ports.Model) error {
		if err := m.ResetHighlight(ctx, nil); err != nil {
			return err
		}
		if err := m.SetOpacity(ctx, 1); err != nil {
			return err
		}
		reset++
		return nil
	})
	if err != nil {
		return Outcome{}, cancelled(action, err)
	}
	e.redraw(ctx)

	return Outcome{
		Result:  map[string]any{"models": reset},
		Message: "View reset",
	}, nil
}

func (e *Executor) analyzeElement(ctx context.Context, params map[string]any) (Outcome, error) {
	const action = domain.ActionAnalyzeElement
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

	analysis := ElementAnalysis{
		Element:         domain.ElementReference{ModelID: m.ID(), LocalID: id},
		Category:        data.Category,
		Name:            data.Attribute("Name"),
		Description:     data.Attribute("Description"),
		GlobalID:        data.Attribute("GlobalId"),
		Properties:      flattenPropertySets(data.PropertySets),
		Recommendations: e.heuristics.recommendations(data.Category),
	}
	if box, err := m.MergedBox(ctx, []int{id}); err != nil {
		e.logger.Warn("model operation failed", "op", "merged_box", "model", m.ID(), "err", err)
	} else if !box.Empty() {
		size := box.Size()
		analysis.Dimensions = &Dimensions{
			Width:  round2(size.X),
			Height: round2(size.Y),
			Depth:  round2(size.Z),
			Volume: round2(box.Volume()),
			Center: box.Center(),
		}
	}
	if err := m.Highlight(ctx, []int{id}, e.heuristics.HighlightMaterial); err != nil {
		e.logger.Warn("model operation failed", "op", "highlight", "model", m.ID(), "err", err)
	}
	e.redraw(ctx)

	label := analysis.Name
	if label == "" {
		label = fmt.Sprintf("element %d", id)
	}
	return Outcome{Result: analysis, Message: fmt.Sprintf("Analysis of %s (%s) complete", label, data.Category)}, nil
}

// flattenPropertySets keys every property as "Set.Property".
func flattenPropertySets(sets []domain.PropertySet) map[string]any {
	out := make(map[string]any)
	for _, ps := range sets {
		for k, v := range ps.Properties {
			out[ps.Name+"."+k] = v
		}
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
