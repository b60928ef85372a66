package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ikenthis/bmsagent/pkg/domain"
)

// Report types understood by generateReport.
const (
	ReportGeneral     = "general"
	ReportMaintenance = "maintenance"
	ReportEnergy      = "energy"
	ReportCompliance  = "compliance"
)

// Report is the payload of generateReport.
type Report struct {
	Type          string              `json:"type"`
	GeneratedAt   time.Time           `json:"generated_at"`
	Total         int                 `json:"total"`
	ByCategory    map[string]int      `json:"by_category"`
	TopCategories []CategoryCount     `json:"top_categories"`
	Spaces        []Space             `json:"spaces"`
	Maintenance   *MaintenancePlan    `json:"maintenance,omitempty"`
	Energy        *EnergyAnalysis     `json:"energy,omitempty"`
	Compliance    []ComplianceFinding `json:"compliance,omitempty"`
	Diagram       *DiagramSummary     `json:"diagram,omitempty"`
}

// MaintenanceItem is the plan for one category.
type MaintenanceItem struct {
	Category      string   `json:"category"`
	Count         int      `json:"count"`
	Frequency     string   `json:"frequency"`
	Tasks         []string `json:"tasks"`
	UnitCost      float64  `json:"unit_cost"`
	EstimatedCost float64  `json:"estimated_cost"`
}

// MaintenancePlan is the maintenance section of a report.
type MaintenancePlan struct {
	Items     []MaintenanceItem `json:"items"`
	TotalCost float64           `json:"total_cost"`
}

// EnergySavings is the savings estimate for one consumption category.
type EnergySavings struct {
	Category    string   `json:"category"`
	Consumption float64  `json:"consumption_kwh"`
	Rate        float64  `json:"rate"`
	Potential   float64  `json:"potential_kwh"`
	Strategies  []string `json:"strategies"`
}

// EnergyAnalysis is the energy section of a report. Values are kWh per year.
type EnergyAnalysis struct {
	TotalArea float64         `json:"total_area"`
	Lighting  float64         `json:"lighting_kwh"`
	HVAC      float64         `json:"hvac_kwh"`
	Equipment float64         `json:"equipment_kwh"`
	Total     float64         `json:"total_kwh"`
	Savings   []EnergySavings `json:"savings"`
}

// ComplianceFinding is a check stub that still needs a human.
type ComplianceFinding struct {
	ComplianceCheck
	Status string `json:"status"`
}

const manualVerification = "requires manual verification"

func (e *Executor) generateReport(ctx context.Context, params map[string]any) (Outcome, error) {
	const action = domain.ActionGenerateReport
	var p typeParams
	if err := decode(action, params, &p); err != nil {
		return Outcome{}, err
	}
	kind := strings.ToLower(strings.TrimSpace(p.Type))
	switch kind {
	case ReportMaintenance, ReportEnergy, ReportCompliance:
	default:
		kind = ReportGeneral
	}

	count, err := e.tally(ctx, "")
	if err != nil {
		return Outcome{}, &domain.ActionExecutionError{Action: action, Cause: "could not count elements", Err: err}
	}
	spaces, err := e.spaces(ctx)
	if err != nil {
		return Outcome{}, cancelled(action, err)
	}

	top := capped(count.Ranking, e.heuristics.TopCategories)
	report := Report{
		Type:          kind,
		GeneratedAt:   e.now(),
		Total:         count.Total,
		ByCategory:    count.ByCategory,
		TopCategories: top,
		Spaces:        sortByArea(spaces),
	}
	switch kind {
	case ReportMaintenance:
		report.Maintenance = e.maintenancePlan(top)
	case ReportEnergy:
		report.Energy = e.energyAnalysis(spaces)
	case ReportCompliance:
		report.Compliance = e.complianceFindings()
	}

	diagram, err := e.createDiagram(ctx, map[string]any{
		"type": "bar",
		"name": e.heuristics.Diagram.ReportName,
		"data": chartData(capped(count.Ranking, e.heuristics.Diagram.ReportEntries)),
	})
	if err != nil {
		e.logger.Warn("report diagram failed", "err", err)
	} else if s, ok := diagram.Result.(DiagramSummary); ok {
		report.Diagram = &s
	}

	return Outcome{Result: report, Message: fmt.Sprintf("Generated %s report covering %s", kind, pluralize(count.Total, "element", "elements"))}, nil
}

func (e *Executor) maintenancePlan(top []CategoryCount) *MaintenancePlan {
	plan := &MaintenancePlan{Items: make([]MaintenanceItem, 0, len(top))}
	for _, c := range top {
		unit := e.heuristics.unitCost(c.Category)
		item := MaintenanceItem{
			Category:      c.Category,
			Count:         c.Count,
			Frequency:     e.heuristics.frequency(c.Category),
			Tasks:         e.heuristics.tasks(c.Category),
			UnitCost:      unit,
			EstimatedCost: float64(c.Count) * unit,
		}
		plan.Items = append(plan.Items, item)
		plan.TotalCost += item.EstimatedCost
	}
	return plan
}

func (e *Executor) energyAnalysis(spaces []Space) *EnergyAnalysis {
	area := 0.0
	for _, s := range spaces {
		area += s.Area
	}
	model := e.heuristics.Energy
	out := &EnergyAnalysis{
		TotalArea: round2(area),
		Lighting:  round2(area * model.Lighting.KWhPerM2),
		HVAC:      round2(area * model.HVAC.KWhPerM2),
		Equipment: round2(area * model.Equipment.KWhPerM2),
	}
	out.Total = round2(out.Lighting + out.HVAC + out.Equipment)
	for _, use := range []struct {
		name  string
		kwh   float64
		model EnergyUse
	}{
		{"lighting", out.Lighting, model.Lighting},
		{"hvac", out.HVAC, model.HVAC},
		{"equipment", out.Equipment, model.Equipment},
	} {
		out.Savings = append(out.Savings, EnergySavings{
			Category:    use.name,
			Consumption: use.kwh,
			Rate:        use.model.SavingsRate,
			Potential:   round2(use.kwh * use.model.SavingsRate),
			Strategies:  use.model.Strategies,
		})
	}
	return out
}

func (e *Executor) complianceFindings() []ComplianceFinding {
	out := make([]ComplianceFinding, len(e.heuristics.ComplianceChecks))
	for i, c := range e.heuristics.ComplianceChecks {
		out[i] = ComplianceFinding{ComplianceCheck: c, Status: manualVerification}
	}
	return out
}

func chartData(counts []CategoryCount) []map[string]any {
	out := make([]map[string]any, len(counts))
	for i, c := range counts {
		out[i] = map[string]any{"name": c.Category, "value": c.Count}
	}
	return out
}
