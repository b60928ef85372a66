package executor_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/ikenthis/bmsagent/internal/executor"
	"github.com/ikenthis/bmsagent/pkg/adapters/memory"
	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitBox(x float64) domain.Box {
	return domain.Box{Min: domain.Vec3{X: x}, Max: domain.Vec3{X: x + 1, Y: 1, Z: 1}}
}

func items(category string, first, n int) []memory.Item {
	out := make([]memory.Item, n)
	for i := range out {
		id := first + i
		out[i] = memory.Item{
			ItemData: domain.ItemData{
				LocalID:    id,
				Category:   category,
				Attributes: map[string]any{"Name": fmt.Sprintf("%s-%d", category, id)},
			},
			Box: unitBox(float64(i)),
		}
	}
	return out
}

func newExecutor(t *testing.T, v *memory.Viewer, opts ...executor.Option) *executor.Executor {
	t.Helper()
	return executor.New(v, v.Fragments(), v.Models(), opts...)
}

func dispatch(t *testing.T, e *executor.Executor, name domain.ActionName, params map[string]any) (executor.Outcome, error) {
	t.Helper()
	return e.Dispatch(context.Background(), domain.NewAction(name, params))
}

func requireCause(t *testing.T, err error, cause string) {
	t.Helper()
	require.Error(t, err)
	var execErr *domain.ActionExecutionError
	require.True(t, errors.As(err, &execErr), "expected ActionExecutionError, got %T", err)
	assert.Equal(t, cause, execErr.Cause)
	assert.ErrorIs(t, err, domain.ErrActionFailed)
}

func TestCountElements(t *testing.T) {
	v := memory.NewViewer([]*memory.Model{
		memory.NewModel("m1", append(items("IFCWALL", 1, 3), items("IFCWINDOW", 10, 2)...)...),
	})
	e := newExecutor(t, v)

	_, err := dispatch(t, e, domain.ActionCountElements, map[string]any{"type": "IFCDOOR"})
	requireCause(t, err, "no elements of type IFCDOOR found")

	out, err := dispatch(t, e, domain.ActionCountElements, nil)
	require.NoError(t, err)
	count := out.Result.(executor.ElementCount)
	assert.Equal(t, 5, count.Total)
	assert.Equal(t, map[string]int{"IFCWALL": 3, "IFCWINDOW": 2}, count.ByCategory)
	assert.Equal(t, "IFCWALL", count.Ranking[0].Category)
	assert.Equal(t, 60.0, count.Ranking[0].Percentage)

	out, err = dispatch(t, e, domain.ActionCountElements, map[string]any{"type": "ifcwindow"})
	require.NoError(t, err)
	count = out.Result.(executor.ElementCount)
	assert.Equal(t, "IFCWINDOW", count.Type)
	assert.Equal(t, 2, count.TypeCount)
}

func TestCountElements_NoModels(t *testing.T) {
	v := memory.NewViewer(nil)
	_, err := dispatch(t, newExecutor(t, v), domain.ActionCountElements, nil)
	requireCause(t, err, "no categories found")
}

func TestPerModelFailureIsTolerated(t *testing.T) {
	broken := memory.NewModel("broken", items("IFCDOOR", 1, 4)...)
	broken.SetFailure(errors.New("model offline"))
	healthy := memory.NewModel("healthy", items("IFCDOOR", 100, 2)...)
	v := memory.NewViewer([]*memory.Model{broken, healthy})
	e := newExecutor(t, v)

	out, err := dispatch(t, e, domain.ActionCountElements, map[string]any{"type": "IFCDOOR"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Result.(executor.ElementCount).TypeCount)

	out, err = dispatch(t, e, domain.ActionSelectElement, map[string]any{"id": 101})
	require.NoError(t, err)
	assert.Equal(t, "healthy", out.Result.(executor.SelectedElement).Element.ModelID)
}

func TestSelectElement(t *testing.T) {
	v := memory.NewViewer([]*memory.Model{memory.NewModel("m1", items("IFCDOOR", 1, 2)...)})

	var selected []domain.ElementReference
	hooks := domain.LifecycleHooks{
		OnSelect: func(_ context.Context, ev *domain.SelectEvent) {
			selected = append(selected, ev.Element)
		},
	}
	e := newExecutor(t, v, executor.WithHooks(hooks))

	out, err := dispatch(t, e, domain.ActionSelectElement, map[string]any{"id": "2"})
	require.NoError(t, err)
	sel := out.Result.(executor.SelectedElement)
	assert.Equal(t, "IFCDOOR-2", sel.Name)
	assert.Equal(t, []domain.ElementReference{{ModelID: "m1", LocalID: 2}}, selected)
	assert.EqualValues(t, 1, v.Fragments().Updates())

	_, err = dispatch(t, e, domain.ActionSelectElement, map[string]any{"id": 99})
	requireCause(t, err, "element 99 not found")

	_, err = dispatch(t, e, domain.ActionSelectElement, nil)
	requireCause(t, err, "id is required")
}

func TestSelectElementsByType_Caps(t *testing.T) {
	m1 := memory.NewModel("m1", items("IFCDOOR", 1, 15)...)
	m2 := memory.NewModel("m2", items("IFCDOOR", 100, 15)...)
	v := memory.NewViewer([]*memory.Model{m1, m2})
	e := newExecutor(t, v)

	out, err := dispatch(t, e, domain.ActionSelectElementsByType, map[string]any{"type": "IFCDOOR"})
	require.NoError(t, err)
	sel := out.Result.(executor.TypeSelection)
	assert.Equal(t, 30, sel.Count)
	assert.Equal(t, 20, sel.Highlighted)
	assert.Len(t, sel.Elements, 10)
	assert.Len(t, m1.Highlighted(), 15)
	assert.Len(t, m2.Highlighted(), 5)

	_, err = dispatch(t, e, domain.ActionSelectElementsByType, map[string]any{"type": "IFCROOF"})
	requireCause(t, err, "no elements of type IFCROOF found")
}

func TestSelectElementsByProperty(t *testing.T) {
	door := memory.Item{
		ItemData: domain.ItemData{
			LocalID:  1,
			Category: "IFCDOOR",
			PropertySets: []domain.PropertySet{
				{Name: "Pset_DoorCommon", Properties: map[string]any{"FireRating": "EI30"}},
			},
		},
		Box: unitBox(0),
	}
	table := memory.Item{
		ItemData: domain.ItemData{
			LocalID:    2,
			Category:   "IFCFURNISHINGELEMENT",
			Attributes: map[string]any{"Material": "Oak Wood"},
		},
		Box: unitBox(2),
	}
	m := memory.NewModel("m1", door, table)
	e := newExecutor(t, memory.NewViewer([]*memory.Model{m}))

	out, err := dispatch(t, e, domain.ActionSelectElementsByProperty, map[string]any{"property": "material", "value": "wood"})
	require.NoError(t, err)
	sel := out.Result.(executor.PropertySelection)
	require.Len(t, sel.Matches, 1)
	assert.Equal(t, 2, sel.Matches[0].Element.LocalID)
	assert.Equal(t, "Material", sel.Matches[0].Property)
	assert.Equal(t, []int{2}, m.Highlighted())

	out, err = dispatch(t, e, domain.ActionSelectElementsByProperty, map[string]any{"value": "ei30"})
	require.NoError(t, err)
	sel = out.Result.(executor.PropertySelection)
	require.Len(t, sel.Matches, 1)
	assert.Equal(t, "Pset_DoorCommon.FireRating", sel.Matches[0].Property)

	_, err = dispatch(t, e, domain.ActionSelectElementsByProperty, map[string]any{"property": "material", "value": "steel"})
	requireCause(t, err, `no elements with material matching "steel" found`)
}

func TestZoomToElement(t *testing.T) {
	box := domain.Box{Min: domain.Vec3{X: 1, Y: 0, Z: 2}, Max: domain.Vec3{X: 2, Y: 3, Z: 2.5}}
	m := memory.NewModel("m1", memory.Item{ItemData: domain.ItemData{LocalID: 7, Category: "IFCDOOR"}, Box: box})
	v := memory.NewViewer([]*memory.Model{m})
	e := newExecutor(t, v)

	_, err := dispatch(t, e, domain.ActionZoomToElement, map[string]any{"id": 8})
	requireCause(t, err, "element not found")

	out, err := dispatch(t, e, domain.ActionZoomToElement, map[string]any{"id": 7})
	require.NoError(t, err)
	zoom := out.Result.(executor.Zoom)
	assert.Equal(t, 2*box.MaxDimension(), zoom.Distance)
	assert.Equal(t, 6.0, zoom.Distance)
	assert.Equal(t, box.Center(), zoom.Center)
	assert.Equal(t, 6.0, v.MemoryCamera().LastFitRadius())
	assert.Equal(t, box.Center(), v.MemoryCamera().Target())
	assert.Equal(t, []int{7}, m.Highlighted())
}

func TestZoomToElement_Unavailable(t *testing.T) {
	flat := memory.NewModel("m1", memory.Item{ItemData: domain.ItemData{LocalID: 1, Category: "IFCDOOR"}})
	e := newExecutor(t, memory.NewViewer([]*memory.Model{flat}))
	_, err := dispatch(t, e, domain.ActionZoomToElement, map[string]any{"id": 1})
	requireCause(t, err, "bounding box unavailable")

	point := domain.Vec3{X: 4, Y: 1, Z: 3}
	v := memory.NewViewer([]*memory.Model{memory.NewModel("m1", memory.Item{
		ItemData: domain.ItemData{LocalID: 2, Category: "IFCSENSOR"},
		Box:      domain.Box{Min: point, Max: point},
	})})
	e = newExecutor(t, v)
	_, err = dispatch(t, e, domain.ActionZoomToElement, map[string]any{"id": 2})
	requireCause(t, err, "bounding box unavailable")
	assert.Zero(t, v.MemoryCamera().LastFitRadius())

	m := memory.NewModel("m1", items("IFCDOOR", 1, 1)...)
	e = newExecutor(t, memory.NewViewer([]*memory.Model{m}, memory.WithoutCamera()))
	_, err = dispatch(t, e, domain.ActionZoomToElement, map[string]any{"id": 1})
	requireCause(t, err, "camera unavailable")
}

func TestHighlightThenReset(t *testing.T) {
	m1 := memory.NewModel("m1", append(items("IFCDOOR", 1, 3), items("IFCWALL", 10, 2)...)...)
	m2 := memory.NewModel("m2", items("IFCDOOR", 100, 2)...)
	v := memory.NewViewer([]*memory.Model{m1, m2})
	e := newExecutor(t, v)

	_, err := dispatch(t, e, domain.ActionHighlightElements, map[string]any{"type": "IFCDOOR"})
	require.NoError(t, err)
	_, err = dispatch(t, e, domain.ActionIsolateCategory, map[string]any{"category": "IFCWALL"})
	require.NoError(t, err)
	require.NotEmpty(t, m1.Highlighted())
	require.Equal(t, 0.1, m2.ModelOpacity())

	_, err = dispatch(t, e, domain.ActionResetView, nil)
	require.NoError(t, err)

	for _, m := range []*memory.Model{m1, m2} {
		assert.Empty(t, m.Highlighted(), m.ID())
		assert.Equal(t, 1.0, m.ModelOpacity(), m.ID())
	}
	for _, id := range []int{1, 2, 3, 10, 11} {
		assert.Equal(t, 1.0, m1.Opacity(id))
	}
}

func TestResetView_NoCamera(t *testing.T) {
	e := newExecutor(t, memory.NewViewer(nil, memory.WithoutCamera()))
	_, err := dispatch(t, e, domain.ActionResetView, nil)
	requireCause(t, err, "camera unavailable")
}

func TestHighlightElements(t *testing.T) {
	m := memory.NewModel("m1", items("IFCSPACE", 1, 60)...)
	e := newExecutor(t, memory.NewViewer([]*memory.Model{m}))

	out, err := dispatch(t, e, domain.ActionHighlightElements, map[string]any{"type": "IFCSPACE"})
	require.NoError(t, err)
	assert.Equal(t, 50, out.Result.(executor.TypeSelection).Count)
	assert.Len(t, m.Highlighted(), 50)

	require.NoError(t, m.ResetHighlight(context.Background(), nil))
	out, err = dispatch(t, e, domain.ActionHighlightElements, map[string]any{"ids": []any{3, "4", 999}})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Result.(executor.TypeSelection).Count)
	assert.Equal(t, []int{3, 4}, m.Highlighted())

	_, err = dispatch(t, e, domain.ActionHighlightElements, nil)
	requireCause(t, err, "either type or ids is required")

	_, err = dispatch(t, e, domain.ActionHighlightElements, map[string]any{"ids": []int{999}})
	requireCause(t, err, "no elements found to highlight")
}

func TestIsolateCategory(t *testing.T) {
	m1 := memory.NewModel("m1", append(items("IFCDOOR", 1, 2), items("IFCWALL", 10, 2)...)...)
	m2 := memory.NewModel("m2", items("IFCWALL", 100, 1)...)
	e := newExecutor(t, memory.NewViewer([]*memory.Model{m1, m2}))

	out, err := dispatch(t, e, domain.ActionIsolateCategory, map[string]any{"category": "IFCDOOR"})
	require.NoError(t, err)
	iso := out.Result.(executor.Isolation)
	assert.Equal(t, 2, iso.Count)
	assert.Equal(t, 1.0, m1.Opacity(1))
	assert.Equal(t, 0.1, m1.Opacity(10))
	assert.Equal(t, 0.1, m2.Opacity(100))

	_, err = dispatch(t, e, domain.ActionIsolateCategory, map[string]any{"category": "IFCROOF"})
	requireCause(t, err, "category IFCROOF not present")
}

func spaceItem(id int, name, function string, area float64) memory.Item {
	return memory.Item{
		ItemData: domain.ItemData{
			LocalID:    id,
			Category:   "IFCSPACE",
			Attributes: map[string]any{"Name": name, "LongName": name + " room"},
			PropertySets: []domain.PropertySet{
				{Name: "Pset_SpaceCommon", Properties: map[string]any{"NetArea": area, "Function": function}},
			},
		},
		Box: unitBox(float64(id)),
	}
}

func TestFindSpaces(t *testing.T) {
	var spaces []memory.Item
	for i := 1; i <= 25; i++ {
		fn := "Office"
		if i%5 == 0 {
			fn = "Meeting"
		}
		spaces = append(spaces, spaceItem(i, fmt.Sprintf("S%02d", i), fn, float64(10+i)))
	}
	spaces = append(spaces, spaceItem(26, "Kitchen", "Catering", 18))
	m := memory.NewModel("m1", spaces...)
	e := newExecutor(t, memory.NewViewer([]*memory.Model{m}))

	out, err := dispatch(t, e, domain.ActionFindSpaces, nil)
	require.NoError(t, err)
	list := out.Result.(executor.SpaceList)
	assert.Equal(t, 26, list.Count)
	assert.Len(t, list.Spaces, 20)
	assert.Equal(t, 10, list.Highlighted)
	assert.Len(t, m.Highlighted(), 10)
	assert.Equal(t, 11.0, list.Spaces[0].Area)
	assert.Equal(t, "Office", list.Spaces[0].Function)

	out, err = dispatch(t, e, domain.ActionFindSpaces, map[string]any{"name": "kitchen"})
	require.NoError(t, err)
	list = out.Result.(executor.SpaceList)
	require.Len(t, list.Spaces, 1)
	assert.Equal(t, 26, list.Spaces[0].Element.LocalID)

	out, err = dispatch(t, e, domain.ActionFindSpaces, map[string]any{"function": "meeting"})
	require.NoError(t, err)
	assert.Equal(t, 5, out.Result.(executor.SpaceList).Count)

	_, err = dispatch(t, e, domain.ActionFindSpaces, map[string]any{"name": "garage"})
	requireCause(t, err, "no spaces match the given filters")
}

func TestAnalyzeElement(t *testing.T) {
	door := memory.Item{
		ItemData: domain.ItemData{
			LocalID:    5,
			Category:   "IFCDOOR",
			Attributes: map[string]any{"Name": "D-5", "Description": "Fire door", "GlobalId": "abc"},
			PropertySets: []domain.PropertySet{
				{Name: "Pset_DoorCommon", Properties: map[string]any{"FireRating": "EI60"}},
			},
		},
		Box: domain.Box{Max: domain.Vec3{X: 1, Y: 2, Z: 0.5}},
	}
	beam := memory.Item{ItemData: domain.ItemData{LocalID: 6, Category: "IFCBEAM"}, Box: unitBox(3)}
	m := memory.NewModel("m1", door, beam)
	e := newExecutor(t, memory.NewViewer([]*memory.Model{m}))
	h := executor.DefaultHeuristics()

	out, err := dispatch(t, e, domain.ActionAnalyzeElement, map[string]any{"id": 5})
	require.NoError(t, err)
	a := out.Result.(executor.ElementAnalysis)
	assert.Equal(t, "D-5", a.Name)
	assert.Equal(t, "Fire door", a.Description)
	assert.Equal(t, "abc", a.GlobalID)
	assert.Equal(t, "EI60", a.Properties["Pset_DoorCommon.FireRating"])
	require.NotNil(t, a.Dimensions)
	assert.Equal(t, 1.0, a.Dimensions.Width)
	assert.Equal(t, 2.0, a.Dimensions.Height)
	assert.Equal(t, 0.5, a.Dimensions.Depth)
	assert.Equal(t, 1.0, a.Dimensions.Volume)
	assert.Equal(t, h.Recommendations["IFCDOOR"], a.Recommendations)
	assert.Equal(t, []int{5}, m.Highlighted())

	out, err = dispatch(t, e, domain.ActionAnalyzeElement, map[string]any{"id": 6})
	require.NoError(t, err)
	assert.Equal(t, h.DefaultRecommendations, out.Result.(executor.ElementAnalysis).Recommendations)

	_, err = dispatch(t, e, domain.ActionAnalyzeElement, map[string]any{"id": 7})
	requireCause(t, err, "element 7 not found")
}

func reportViewer() *memory.Viewer {
	all := append(items("IFCDOOR", 1, 4), items("IFCWINDOW", 10, 3)...)
	all = append(all, items("IFCBEAM", 20, 2)...)
	all = append(all, spaceItem(30, "Lobby", "Reception", 40), spaceItem(31, "Office", "Office", 60))
	return memory.NewViewer([]*memory.Model{memory.NewModel("m1", all...)})
}

func TestGenerateReport_Maintenance(t *testing.T) {
	v := reportViewer()
	e := newExecutor(t, v)
	h := executor.DefaultHeuristics()

	out, err := dispatch(t, e, domain.ActionGenerateReport, map[string]any{"type": "maintenance"})
	require.NoError(t, err)
	report := out.Result.(executor.Report)
	require.NotNil(t, report.Maintenance)
	assert.Equal(t, 11, report.Total)

	costs := map[string]float64{}
	total := 0.0
	for _, item := range report.Maintenance.Items {
		assert.Equal(t, float64(item.Count)*item.UnitCost, item.EstimatedCost)
		costs[item.Category] = item.EstimatedCost
		total += item.EstimatedCost
	}
	assert.Equal(t, 4*h.UnitCosts["IFCDOOR"], costs["IFCDOOR"])
	assert.Equal(t, 3*h.UnitCosts["IFCWINDOW"], costs["IFCWINDOW"])
	assert.Equal(t, 2*h.DefaultUnitCost, costs["IFCBEAM"])
	assert.Equal(t, 2*h.UnitCosts["IFCSPACE"], costs["IFCSPACE"])
	assert.Equal(t, total, report.Maintenance.TotalCost)

	require.NotNil(t, report.Diagram)
	_, ok := v.MemoryScene().Group(context.Background(), h.Diagram.ReportName)
	assert.True(t, ok)
}

func TestGenerateReport_EnergyAndCompliance(t *testing.T) {
	e := newExecutor(t, reportViewer())

	out, err := dispatch(t, e, domain.ActionGenerateReport, map[string]any{"type": "energy"})
	require.NoError(t, err)
	report := out.Result.(executor.Report)
	require.NotNil(t, report.Energy)
	assert.Equal(t, 100.0, report.Energy.TotalArea)
	assert.Equal(t, 550.0, report.Energy.Lighting)
	assert.Equal(t, 1280.0, report.Energy.HVAC)
	assert.Equal(t, 830.0, report.Energy.Equipment)
	require.Len(t, report.Energy.Savings, 3)
	assert.Equal(t, 165.0, report.Energy.Savings[0].Potential)
	assert.Equal(t, 60.0, report.Spaces[0].Area)

	out, err = dispatch(t, e, domain.ActionGenerateReport, map[string]any{"type": "compliance"})
	require.NoError(t, err)
	report = out.Result.(executor.Report)
	require.Len(t, report.Compliance, 4)
	for _, c := range report.Compliance {
		assert.Equal(t, "requires manual verification", c.Status)
	}

	out, err = dispatch(t, e, domain.ActionGenerateReport, nil)
	require.NoError(t, err)
	report = out.Result.(executor.Report)
	assert.Equal(t, "general", report.Type)
	assert.Nil(t, report.Maintenance)
	assert.Equal(t, 4, report.TopCategories[0].Count)
}

func TestGenerateReport_UnknownTypeFallsBackToGeneral(t *testing.T) {
	e := newExecutor(t, reportViewer())

	for _, kind := range []string{"summary", "", "  General "} {
		out, err := dispatch(t, e, domain.ActionGenerateReport, map[string]any{"type": kind})
		require.NoError(t, err, kind)
		report := out.Result.(executor.Report)
		assert.Equal(t, "general", report.Type, kind)
		assert.Nil(t, report.Maintenance)
		assert.Nil(t, report.Energy)
	}

	out, err := dispatch(t, e, domain.ActionGenerateReport, map[string]any{"type": "Maintenance"})
	require.NoError(t, err)
	assert.NotNil(t, out.Result.(executor.Report).Maintenance)
	assert.Equal(t, "Generated maintenance report covering 11 elements", out.Message)
}

func TestGenerateReport_WithoutSpaces(t *testing.T) {
	m := memory.NewModel("m1", items("IFCDOOR", 1, 2)...)
	e := newExecutor(t, memory.NewViewer([]*memory.Model{m}))

	out, err := dispatch(t, e, domain.ActionGenerateReport, map[string]any{"type": "energy"})
	require.NoError(t, err)
	report := out.Result.(executor.Report)
	assert.Empty(t, report.Spaces)
	require.NotNil(t, report.Energy)
	assert.Zero(t, report.Energy.TotalArea)
}

func TestGenerateReport_DiagramFailureIsNotFatal(t *testing.T) {
	m := memory.NewModel("m1", items("IFCDOOR", 1, 2)...)
	e := newExecutor(t, memory.NewViewer([]*memory.Model{m}, memory.WithoutScene()))

	out, err := dispatch(t, e, domain.ActionGenerateReport, nil)
	require.NoError(t, err)
	assert.Nil(t, out.Result.(executor.Report).Diagram)
}

func TestCreateDiagram_Pie(t *testing.T) {
	v := memory.NewViewer(nil)
	e := newExecutor(t, v)

	_, err := dispatch(t, e, domain.ActionCreateDiagram, map[string]any{
		"type": "pie",
		"data": []map[string]any{{"name": "A", "value": 0}},
	})
	requireCause(t, err, "sum of values must be >0")

	out, err := dispatch(t, e, domain.ActionCreateDiagram, map[string]any{
		"type": "pie",
		"data": []map[string]any{{"name": "A", "value": 5}, {"name": "B", "value": 5}},
	})
	require.NoError(t, err)
	sum := out.Result.(executor.DiagramSummary)

	group, ok := v.MemoryScene().Group(context.Background(), sum.Name)
	require.True(t, ok)
	var sectors []domain.Mesh
	for _, mesh := range group.Meshes {
		if mesh.Shape == domain.ShapeSector {
			sectors = append(sectors, mesh)
		}
	}
	require.Len(t, sectors, 2)
	for _, s := range sectors {
		assert.InDelta(t, math.Pi, s.Angle, 1e-9)
	}
	assert.InDelta(t, math.Pi, sectors[1].StartAngle, 1e-9)
}

func TestCreateDiagram_BarAndReplace(t *testing.T) {
	v := memory.NewViewer(nil)
	e := newExecutor(t, v)
	h := executor.DefaultHeuristics()

	data := []any{
		map[string]any{"label": "Doors", "count": 10},
		map[string]any{"type": "IFCWALL", "value": "5"},
	}
	out, err := dispatch(t, e, domain.ActionCreateDiagram, map[string]any{"type": "bar", "name": "chart", "data": data})
	require.NoError(t, err)
	sum := out.Result.(executor.DiagramSummary)
	assert.Equal(t, []executor.DiagramEntry{
		{Label: "Doors", Value: 10, Percentage: 66.67},
		{Label: "IFCWALL", Value: 5, Percentage: 33.33},
	}, sum.Entries)

	group, ok := v.MemoryScene().Group(context.Background(), "chart")
	require.True(t, ok)
	require.Len(t, group.Meshes, 2)
	assert.Equal(t, h.Diagram.Height, group.Meshes[0].Size.Y)
	assert.Equal(t, h.Diagram.Height/2, group.Meshes[1].Size.Y)

	_, err = dispatch(t, e, domain.ActionCreateDiagram, map[string]any{"type": "distribution", "name": "chart", "data": data[:1]})
	require.NoError(t, err)
	group, _ = v.MemoryScene().Group(context.Background(), "chart")
	assert.Len(t, group.Meshes, 1)
}

func TestCreateDiagram_PlacedInFrontOfCamera(t *testing.T) {
	cam := memory.NewCamera(domain.Vec3{Z: 30}, domain.Vec3{})
	e := newExecutor(t, memory.NewViewer(nil, memory.WithCamera(cam)))

	out, err := dispatch(t, e, domain.ActionCreateDiagram, map[string]any{"data": []map[string]any{{"name": "A", "value": 1}}})
	require.NoError(t, err)
	assert.Equal(t, domain.Vec3{Z: 20}, out.Result.(executor.DiagramSummary).Origin)
}

func TestCreateDiagram_Errors(t *testing.T) {
	e := newExecutor(t, memory.NewViewer(nil))

	_, err := dispatch(t, e, domain.ActionCreateDiagram, map[string]any{"type": "bar"})
	requireCause(t, err, "no data supplied")

	_, err = dispatch(t, e, domain.ActionCreateDiagram, map[string]any{
		"type": "radar",
		"data": []map[string]any{{"name": "A", "value": 1}},
	})
	requireCause(t, err, `unsupported diagram type "radar"`)

	e = newExecutor(t, memory.NewViewer(nil, memory.WithoutScene()))
	_, err = dispatch(t, e, domain.ActionCreateDiagram, map[string]any{"data": []map[string]any{{"name": "A", "value": 1}}})
	requireCause(t, err, "scene unavailable")
}

func TestCreateDiagram_RejectsNonFiniteValues(t *testing.T) {
	v := memory.NewViewer(nil)
	e := newExecutor(t, v)

	for _, bad := range []any{"NaN", "Inf", math.Inf(-1)} {
		_, err := dispatch(t, e, domain.ActionCreateDiagram, map[string]any{
			"type": "pie",
			"data": []map[string]any{{"name": "A", "value": bad}, {"name": "B", "value": 1}},
		})
		requireCause(t, err, `value of "A" is not a finite number`)
	}

	_, err := dispatch(t, e, domain.ActionCreateDiagram, map[string]any{
		"data": []map[string]any{{"name": "A", "value": math.MaxFloat64}, {"name": "B", "value": math.MaxFloat64}},
	})
	requireCause(t, err, "sum of values overflows")

	_, ok := v.MemoryScene().Group(context.Background(), executor.DefaultHeuristics().Diagram.Name)
	assert.False(t, ok)
}

func TestCreateDiagram_FromCategories(t *testing.T) {
	m := memory.NewModel("m1", append(items("IFCDOOR", 1, 3), items("IFCWALL", 10, 1)...)...)
	e := newExecutor(t, memory.NewViewer([]*memory.Model{m}))

	out, err := dispatch(t, e, domain.ActionCreateDiagram, map[string]any{"type": "pie", "source": "categories"})
	require.NoError(t, err)
	sum := out.Result.(executor.DiagramSummary)
	require.Len(t, sum.Entries, 2)
	assert.Equal(t, "IFCDOOR", sum.Entries[0].Label)
	assert.Equal(t, 75.0, sum.Entries[0].Percentage)
}

func TestCreateGeometry(t *testing.T) {
	v := memory.NewViewer(nil)
	e := newExecutor(t, v)
	ctx := context.Background()

	out, err := dispatch(t, e, domain.ActionCreateGeometry, map[string]any{
		"shape":    "sphere",
		"count":    3,
		"size":     2,
		"spacing":  4,
		"position": map[string]any{"x": 1, "y": 0, "z": 0},
		"name":     "markers",
	})
	require.NoError(t, err)
	sum := out.Result.(executor.GeometrySummary)
	assert.Equal(t, 3, sum.Count)
	assert.True(t, sum.LightsAdded)

	group, ok := v.MemoryScene().Group(ctx, "markers")
	require.True(t, ok)
	require.Len(t, group.Meshes, 3)
	assert.Equal(t, 1.0, group.Meshes[0].Radius)
	assert.Equal(t, domain.Vec3{X: 9}, group.Meshes[2].Position)
	lights := len(v.MemoryScene().Lights())

	out, err = dispatch(t, e, domain.ActionCreateGeometry, map[string]any{"shape": "box", "name": "markers"})
	require.NoError(t, err)
	assert.False(t, out.Result.(executor.GeometrySummary).LightsAdded)
	group, _ = v.MemoryScene().Group(ctx, "markers")
	require.Len(t, group.Meshes, 1)
	assert.Equal(t, domain.ShapeBox, group.Meshes[0].Shape)
	assert.Len(t, v.MemoryScene().Lights(), lights)

	_, err = dispatch(t, e, domain.ActionCreateGeometry, map[string]any{"shape": "torus"})
	requireCause(t, err, `unsupported shape "torus"`)

	e = newExecutor(t, memory.NewViewer(nil, memory.WithoutScene()))
	_, err = dispatch(t, e, domain.ActionCreateGeometry, nil)
	requireCause(t, err, "scene unavailable")
}

func TestDispatch_UnknownAction(t *testing.T) {
	e := newExecutor(t, memory.NewViewer(nil))
	_, err := e.Dispatch(context.Background(), domain.NewAction("fly", nil))
	requireCause(t, err, `unknown action "fly"`)
}

func TestDispatch_Cancelled(t *testing.T) {
	m := memory.NewModel("m1", items("IFCDOOR", 1, 1)...)
	e := newExecutor(t, memory.NewViewer([]*memory.Model{m}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Dispatch(ctx, domain.NewAction(domain.ActionCountElements, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithHeuristics(t *testing.T) {
	h := executor.DefaultHeuristics()
	h.HighlightCap = 2
	m := memory.NewModel("m1", items("IFCDOOR", 1, 5)...)
	e := newExecutor(t, memory.NewViewer([]*memory.Model{m}), executor.WithHeuristics(h))

	_, err := dispatch(t, e, domain.ActionSelectElementsByType, map[string]any{"type": "IFCDOOR"})
	require.NoError(t, err)
	assert.Len(t, m.Highlighted(), 2)
	assert.Equal(t, 2, e.Heuristics().HighlightCap)
}

func TestEveryCatalogActionHasHandler(t *testing.T) {
	e := newExecutor(t, memory.DemoViewer())
	for _, name := range domain.AllActions() {
		assert.True(t, e.Supports(name), name)
	}
	assert.False(t, e.Supports("teleport"))

	_, err := dispatch(t, e, "teleport", nil)
	requireCause(t, err, `unknown action "teleport"`)
}
