package executor

import "github.com/ikenthis/bmsagent/pkg/domain"

// Heuristics holds every static number and canned text used by the actions.
// None of it is derived from live data.
type Heuristics struct {
	HighlightCap      int             `yaml:"highlight_cap"`
	ResponseCap       int             `yaml:"response_cap"`
	TypeHighlightCap  int             `yaml:"type_highlight_cap"`
	SpaceHighlightCap int             `yaml:"space_highlight_cap"`
	SpaceResponseCap  int             `yaml:"space_response_cap"`
	TopCategories     int             `yaml:"top_categories"`
	ZoomFactor        float64         `yaml:"zoom_factor"`
	IsolationOpacity  float64         `yaml:"isolation_opacity"`
	HighlightMaterial domain.Material `yaml:"highlight_material"`

	SpaceCategory   string   `yaml:"space_category"`
	SpaceProperties []string `yaml:"space_properties"`

	Diagram  DiagramLayout  `yaml:"diagram"`
	Geometry GeometryLayout `yaml:"geometry"`

	UnitCosts        map[string]float64  `yaml:"unit_costs"`
	DefaultUnitCost  float64             `yaml:"default_unit_cost"`
	Frequencies      map[string]string   `yaml:"frequencies"`
	DefaultFrequency string              `yaml:"default_frequency"`
	Tasks            map[string][]string `yaml:"tasks"`
	DefaultTasks     []string            `yaml:"default_tasks"`

	Energy           EnergyModel         `yaml:"energy"`
	ComplianceChecks []ComplianceCheck   `yaml:"compliance_checks"`
	Recommendations  map[string][]string `yaml:"recommendations"`
	// DefaultRecommendations apply to categories without a bespoke list.
	DefaultRecommendations []string `yaml:"default_recommendations"`
}

// DiagramLayout fixes the footprint and placement of in-scene charts.
type DiagramLayout struct {
	Name          string   `yaml:"name"`
	ReportName    string   `yaml:"report_name"`
	ReportEntries int      `yaml:"report_entries"`
	MaxEntries    int      `yaml:"max_entries"`
	Distance      float64  `yaml:"distance"`
	Width         float64  `yaml:"width"`
	Height        float64  `yaml:"height"`
	Radius        float64  `yaml:"radius"`
	Thickness     float64  `yaml:"thickness"`
	BarFill       float64  `yaml:"bar_fill"`
	Palette       []string `yaml:"palette"`
}

// GeometryLayout holds defaults for procedural shapes.
type GeometryLayout struct {
	GroupName string         `yaml:"group_name"`
	Color     string         `yaml:"color"`
	Size      float64        `yaml:"size"`
	Spacing   float64        `yaml:"spacing"`
	MaxCount  int            `yaml:"max_count"`
	Lights    []domain.Light `yaml:"lights"`
}

// EnergyModel holds per-m² consumption coefficients and savings rates.
type EnergyModel struct {
	Lighting   EnergyUse `yaml:"lighting"`
	HVAC       EnergyUse `yaml:"hvac"`
	Equipment  EnergyUse `yaml:"equipment"`
	AreaSource []string  `yaml:"area_source"`
}

// EnergyUse describes one consumption category.
type EnergyUse struct {
	KWhPerM2    float64  `yaml:"kwh_per_m2"`
	SavingsRate float64  `yaml:"savings_rate"`
	Strategies  []string `yaml:"strategies"`
}

// ComplianceCheck is a regulatory check stub.
type ComplianceCheck struct {
	Name        string `yaml:"name" json:"name"`
	Requirement string `yaml:"requirement" json:"requirement"`
}

// DefaultHeuristics returns the baseline values. Every call returns fresh maps
// and slices so callers may override them in place.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		HighlightCap:      20,
		ResponseCap:       10,
		TypeHighlightCap:  50,
		SpaceHighlightCap: 10,
		SpaceResponseCap:  20,
		TopCategories:     10,
		ZoomFactor:        2,
		IsolationOpacity:  0.1,
		HighlightMaterial: domain.Material{Color: "#ffb300", Opacity: 1},

		SpaceCategory: "IFCSPACE",
		SpaceProperties: []string{
			"Area", "Height", "Volume", "NetArea", "GrossArea",
			"NetVolume", "GrossVolume", "Function", "Category",
		},

		Diagram: DiagramLayout{
			Name:          "bim-diagram",
			ReportName:    "report-diagram",
			ReportEntries: 5,
			MaxEntries:    10,
			Distance:      10,
			Width:         8,
			Height:        5,
			Radius:        3,
			Thickness:     0.3,
			BarFill:       0.8,
			Palette:       []string{"#1e88e5", "#43a047", "#fb8c00", "#e53935", "#8e24aa", "#00acc1", "#fdd835", "#6d4c41"},
		},
		Geometry: GeometryLayout{
			GroupName: "generated-geometry",
			Color:     "#4caf50",
			Size:      1,
			Spacing:   2,
			MaxCount:  100,
			Lights: []domain.Light{
				{Kind: "ambient", Color: "#ffffff", Intensity: 0.6},
				{Kind: "directional", Color: "#ffffff", Intensity: 0.8, Position: domain.Vec3{X: 10, Y: 20, Z: 10}},
			},
		},

		UnitCosts: map[string]float64{
			"IFCDOOR":   25,
			"IFCWINDOW": 30,
			"IFCWALL":   15,
			"IFCSPACE":  40,
		},
		DefaultUnitCost: 10,
		Frequencies: map[string]string{
			"IFCDOOR":         "quarterly",
			"IFCWINDOW":       "semiannual",
			"IFCWALL":         "annual",
			"IFCSPACE":        "quarterly",
			"IFCFLOWTERMINAL": "quarterly",
		},
		DefaultFrequency: "annual",
		Tasks: map[string][]string{
			"IFCDOOR":   {"Lubricate hinges and locks", "Check door closers", "Inspect seals and weatherstripping"},
			"IFCWINDOW": {"Clean glazing and frames", "Check seals and gaskets", "Test opening mechanisms"},
			"IFCWALL":   {"Inspect for cracks and moisture", "Check paint and finishes"},
			"IFCSPACE":  {"Deep cleaning", "Check lighting and outlets", "Verify ventilation grilles"},
		},
		DefaultTasks: []string{"General visual inspection"},

		Energy: EnergyModel{
			Lighting: EnergyUse{
				KWhPerM2:    5.5,
				SavingsRate: 0.30,
				Strategies:  []string{"Replace fixtures with LED", "Install occupancy sensors", "Use daylight harvesting"},
			},
			HVAC: EnergyUse{
				KWhPerM2:    12.8,
				SavingsRate: 0.25,
				Strategies:  []string{"Tune setpoints and schedules", "Improve envelope insulation", "Add heat recovery ventilation"},
			},
			Equipment: EnergyUse{
				KWhPerM2:    8.3,
				SavingsRate: 0.15,
				Strategies:  []string{"Enable power management", "Replace inefficient appliances"},
			},
			AreaSource: []string{"NetArea", "Area", "GrossArea"},
		},
		ComplianceChecks: []ComplianceCheck{
			{Name: "Accessibility door width", Requirement: "Clear opening of at least 0.80 m"},
			{Name: "Occupancy density", Requirement: "At most 1 person per 10 m² in offices"},
			{Name: "Evacuation distance", Requirement: "Travel distance to an exit under 50 m"},
			{Name: "Ventilation rate", Requirement: "At least 12.5 l/s of outdoor air per person"},
		},
		Recommendations: map[string][]string{
			"IFCDOOR":   {"Check hinges and closing mechanism", "Verify lock operation", "Inspect frame alignment"},
			"IFCWINDOW": {"Clean glazing", "Check seal condition", "Verify opening hardware"},
			"IFCWALL":   {"Inspect for cracks or damp", "Review finish condition"},
			"IFCSPACE":  {"Verify occupancy against capacity", "Check lighting and climate comfort", "Schedule periodic cleaning"},
		},
		DefaultRecommendations: []string{"Perform a periodic visual inspection", "Record condition in the maintenance log"},
	}
}

func (h Heuristics) unitCost(category string) float64 {
	if c, ok := h.UnitCosts[category]; ok {
		return c
	}
	return h.DefaultUnitCost
}

func (h Heuristics) frequency(category string) string {
	if f, ok := h.Frequencies[category]; ok {
		return f
	}
	return h.DefaultFrequency
}

func (h Heuristics) tasks(category string) []string {
	if t, ok := h.Tasks[category]; ok {
		return t
	}
	return h.DefaultTasks
}

func (h Heuristics) recommendations(category string) []string {
	if r, ok := h.Recommendations[category]; ok {
		return r
	}
	return h.DefaultRecommendations
}

func (h Heuristics) color(i int) string {
	if len(h.Diagram.Palette) == 0 {
		return h.Geometry.Color
	}
	return h.Diagram.Palette[i%len(h.Diagram.Palette)]
}
