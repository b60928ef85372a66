package executor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/ports"
)

// GeometrySummary is the payload of createGeometry.
type GeometrySummary struct {
	Group       string       `json:"group"`
	Shape       domain.Shape `json:"shape"`
	Count       int          `json:"count"`
	LightsAdded bool         `json:"lights_added"`
}

// DiagramEntry is one normalized data point of a chart.
type DiagramEntry struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// DiagramSummary is the payload of createDiagram.
type DiagramSummary struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Origin  domain.Vec3    `json:"origin"`
	Total   float64        `json:"total"`
	Entries []DiagramEntry `json:"entries"`
	Meshes  int            `json:"meshes"`
}

func (e *Executor) createGeometry(ctx context.Context, params map[string]any) (Outcome, error) {
	const action = domain.ActionCreateGeometry
	layout := e.heuristics.Geometry
	p := geometryParams{
		Name:    layout.GroupName,
		Shape:   string(domain.ShapeBox),
		Count:   1,
		Size:    layout.Size,
		Spacing: layout.Spacing,
		Color:   layout.Color,
		Opacity: 1,
	}
	if err := decode(action, params, &p); err != nil {
		return Outcome{}, err
	}
	scene := e.scene()
	if scene == nil {
		return Outcome{}, domain.NewActionError(action, "scene unavailable")
	}
	shape := domain.Shape(strings.ToLower(p.Shape))
	switch shape {
	case domain.ShapeBox, domain.ShapeSphere, domain.ShapeCylinder, domain.ShapePlane:
	default:
		return Outcome{}, domain.NewActionError(action, "unsupported shape %q", p.Shape)
	}
	if p.Count < 1 {
		return Outcome{}, domain.NewActionError(action, "count must be at least 1")
	}
	if p.Count > layout.MaxCount {
		p.Count = layout.MaxCount
	}

	group := &domain.SceneGroup{Name: p.Name, Meshes: make([]domain.Mesh, 0, p.Count)}
	for i := 0; i < p.Count; i++ {
		mesh := domain.Mesh{
			Name:     fmt.Sprintf("%s-%d", p.Name, i),
			Shape:    shape,
			Position: p.Position.Add(domain.Vec3{X: float64(i) * p.Spacing}),
			Scale:    domain.Vec3{X: 1, Y: 1, Z: 1},
			Color:    p.Color,
			Opacity:  p.Opacity,
		}
		switch shape {
		case domain.ShapeBox:
			mesh.Size = domain.Vec3{X: p.Size, Y: p.Size, Z: p.Size}
		case domain.ShapeSphere:
			mesh.Radius = p.Size / 2
		case domain.ShapeCylinder:
			mesh.Radius = p.Size / 2
			mesh.Height = p.Size
		case domain.ShapePlane:
			mesh.Size = domain.Vec3{X: p.Size, Z: p.Size}
			mesh.Rotation = domain.Vec3{X: -math.Pi / 2}
		}
		group.Meshes = append(group.Meshes, mesh)
	}
	if err := replaceGroup(ctx, scene, group); err != nil {
		return Outcome{}, &domain.ActionExecutionError{Action: action, Cause: "scene unavailable", Err: err}
	}

	lights := p.Lights == nil || *p.Lights
	added := false
	if lights && !scene.HasLights(ctx) {
		if err := scene.AddLights(ctx, layout.Lights); err != nil {
			e.logger.Warn("adding default lights failed", "err", err)
		} else {
			added = true
		}
	}
	e.redraw(ctx)

	sum := GeometrySummary{Group: p.Name, Shape: shape, Count: p.Count, LightsAdded: added}
	return Outcome{Result: sum, Message: fmt.Sprintf("Created %s in group %s", pluralize(p.Count, string(shape), string(shape)+"s"), p.Name)}, nil
}

func (e *Executor) createDiagram(ctx context.Context, params map[string]any) (Outcome, error) {
	const action = domain.ActionCreateDiagram
	layout := e.heuristics.Diagram
	p := diagramParams{Name: layout.Name, Type: "bar"}
	if err := decode(action, params, &p); err != nil {
		return Outcome{}, err
	}
	kind := strings.ToLower(p.Type)

	entries := make([]DiagramEntry, 0, len(p.Data))
	for _, d := range p.Data {
		entries = append(entries, DiagramEntry{Label: d.label(), Value: d.value()})
	}
	if len(entries) == 0 && p.Source == "categories" {
		counts, err := e.countCategories(ctx)
		if err != nil {
			return Outcome{}, cancelled(action, err)
		}
		for _, c := range capped(ranked(counts), layout.MaxEntries) {
			entries = append(entries, DiagramEntry{Label: c.Category, Value: float64(c.Count)})
		}
	}
	if len(entries) == 0 {
		return Outcome{}, domain.NewActionError(action, "no data supplied")
	}

	var build func(domain.Vec3, []DiagramEntry, float64) []domain.Mesh
	switch kind {
	case "bar", "distribution":
		build = e.barMeshes
	case "pie":
		build = e.pieMeshes
	default:
		return Outcome{}, domain.NewActionError(action, "unsupported diagram type %q", p.Type)
	}

	total := 0.0
	for _, en := range entries {
		if math.IsNaN(en.Value) || math.IsInf(en.Value, 0) {
			return Outcome{}, domain.NewActionError(action, "value of %q is not a finite number", en.Label)
		}
		if en.Value < 0 {
			return Outcome{}, domain.NewActionError(action, "values must not be negative")
		}
		total += en.Value
	}
	if math.IsInf(total, 0) {
		return Outcome{}, domain.NewActionError(action, "sum of values overflows")
	}
	if total <= 0 {
		return Outcome{}, domain.NewActionError(action, "sum of values must be >0")
	}
	for i := range entries {
		entries[i].Percentage = round2(entries[i].Value * 100 / total)
	}

	scene := e.scene()
	if scene == nil {
		return Outcome{}, domain.NewActionError(action, "scene unavailable")
	}
	origin := e.diagramOrigin(ctx)
	group := &domain.SceneGroup{Name: p.Name, Meshes: build(origin, entries, total)}
	if p.Title != "" {
		group.Meshes = append(group.Meshes, domain.Mesh{
			Name:     p.Name + "-title",
			Shape:    domain.ShapeText,
			Position: origin.Add(domain.Vec3{Y: layout.Height + 1}),
			Scale:    domain.Vec3{X: 1, Y: 1, Z: 1},
			Label:    p.Title,
		})
	}
	if err := replaceGroup(ctx, scene, group); err != nil {
		return Outcome{}, &domain.ActionExecutionError{Action: action, Cause: "scene unavailable", Err: err}
	}
	e.redraw(ctx)

	sum := DiagramSummary{Name: p.Name, Type: kind, Origin: origin, Total: total, Entries: entries, Meshes: len(group.Meshes)}
	return Outcome{Result: sum, Message: fmt.Sprintf("Created %s diagram with %s", kind, pluralize(len(entries), "entry", "entries"))}, nil
}

// diagramOrigin places charts a fixed distance in front of the camera,
// or at the scene origin when no camera pose is available.
func (e *Executor) diagramOrigin(ctx context.Context) domain.Vec3 {
	cam := e.camera()
	if cam == nil {
		return domain.Vec3{}
	}
	pos, dir, err := cam.Pose(ctx)
	if err != nil {
		e.logger.Warn("camera pose unavailable", "err", err)
		return domain.Vec3{}
	}
	return pos.Add(dir.Normalize().Scale(e.heuristics.Diagram.Distance))
}

// barMeshes lays bars side by side across the footprint width, scaled to the largest value.
func (e *Executor) barMeshes(origin domain.Vec3, entries []DiagramEntry, _ float64) []domain.Mesh {
	layout := e.heuristics.Diagram
	maxValue := 0.0
	for _, en := range entries {
		maxValue = math.Max(maxValue, en.Value)
	}
	slot := layout.Width / float64(len(entries))
	width := slot * layout.BarFill
	meshes := make([]domain.Mesh, 0, len(entries))
	for i, en := range entries {
		h := en.Value / maxValue * layout.Height
		meshes = append(meshes, domain.Mesh{
			Name:     fmt.Sprintf("bar-%d", i),
			Shape:    domain.ShapeBox,
			Position: origin.Add(domain.Vec3{X: -layout.Width/2 + (float64(i)+0.5)*slot, Y: h / 2}),
			Scale:    domain.Vec3{X: 1, Y: 1, Z: 1},
			Size:     domain.Vec3{X: width, Y: h, Z: width},
			Color:    e.heuristics.color(i),
			Opacity:  1,
			Label:    fmt.Sprintf("%s: %g", en.Label, en.Value),
		})
	}
	return meshes
}

// pieMeshes emits one sector per non-zero entry; angles sum to a full turn.
func (e *Executor) pieMeshes(origin domain.Vec3, entries []DiagramEntry, total float64) []domain.Mesh {
	layout := e.heuristics.Diagram
	meshes := make([]domain.Mesh, 0, len(entries))
	start := 0.0
	for i, en := range entries {
		if en.Value == 0 {
			continue
		}
		angle := en.Value / total * 2 * math.Pi
		meshes = append(meshes, domain.Mesh{
			Name:       fmt.Sprintf("sector-%d", i),
			Shape:      domain.ShapeSector,
			Position:   origin,
			Scale:      domain.Vec3{X: 1, Y: 1, Z: 1},
			Radius:     layout.Radius,
			Height:     layout.Thickness,
			StartAngle: start,
			Angle:      angle,
			Color:      e.heuristics.color(i),
			Opacity:    1,
			Label:      fmt.Sprintf("%s: %.1f%%", en.Label, en.Percentage),
		})
		start += angle
	}
	return meshes
}

// replaceGroup removes any group with the same name before adding the new one.
func replaceGroup(ctx context.Context, scene ports.Scene, group *domain.SceneGroup) error {
	if _, ok := scene.Group(ctx, group.Name); ok {
		if err := scene.RemoveGroup(ctx, group.Name); err != nil {
			return err
		}
	}
	return scene.AddGroup(ctx, group)
}
