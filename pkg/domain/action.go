package domain

// ActionRequest is the raw free text supplied by a user or an upstream UI action.
type ActionRequest = string

// ActionName identifies one capability of the closed action catalog.
type ActionName string

const (
	ActionSelectElement            ActionName = "selectElement"
	ActionSelectElementsByType     ActionName = "selectElementsByType"
	ActionSelectElementsByProperty ActionName = "selectElementsByProperty"
	ActionZoomToElement            ActionName = "zoomToElement"
	ActionResetView                ActionName = "resetView"
	ActionCountElements            ActionName = "countElements"
	ActionAnalyzeElement           ActionName = "analyzeElement"
	ActionFindSpaces               ActionName = "findSpaces"
	ActionGenerateReport           ActionName = "generateReport"
	ActionHighlightElements        ActionName = "highlightElements"
	ActionIsolateCategory          ActionName = "isolateCategory"
	ActionCreateGeometry           ActionName = "createGeometry"
	ActionCreateDiagram            ActionName = "createDiagram"
)

var allActions = []ActionName{
	ActionSelectElement,
	ActionSelectElementsByType,
	ActionSelectElementsByProperty,
	ActionZoomToElement,
	ActionResetView,
	ActionCountElements,
	ActionAnalyzeElement,
	ActionFindSpaces,
	ActionGenerateReport,
	ActionHighlightElements,
	ActionIsolateCategory,
	ActionCreateGeometry,
	ActionCreateDiagram,
}

// AllActions returns the catalog in declaration order.
func AllActions() []ActionName {
	out := make([]ActionName, len(allActions))
	copy(out, allActions)
	return out
}

// Valid reports whether the name belongs to the catalog.
func (a ActionName) Valid() bool {
	for _, known := range allActions {
		if a == known {
			return true
		}
	}
	return false
}

func (a ActionName) String() string { return string(a) }

// ActionDescriptions holds a one-line summary per action, used by catalog endpoints.
var ActionDescriptions = map[ActionName]string{
	ActionSelectElement:            "Select one element by local id across all loaded models.",
	ActionSelectElementsByType:     "Select and highlight every element of a category.",
	ActionSelectElementsByProperty: "Find elements whose property value contains the given text.",
	ActionZoomToElement:            "Frame the camera on one element.",
	ActionResetView:                "Reset camera, highlights and opacity.",
	ActionCountElements:            "Count elements per category, optionally for one type.",
	ActionAnalyzeElement:           "Analyze properties, dimensions and maintenance needs of one element.",
	ActionFindSpaces:               "List spaces with their area, volume and function.",
	ActionGenerateReport:           "Compose a general, maintenance, energy or compliance report.",
	ActionHighlightElements:        "Highlight elements of a type or an explicit id list.",
	ActionIsolateCategory:          "Fade every model except one category.",
	ActionCreateGeometry:           "Create primitive shapes in a named scene group.",
	ActionCreateDiagram:            "Build a bar or pie chart inside the 3D scene.",
}

// InterpretedAction is the (action, parameters) pair resolved from free text.
type InterpretedAction struct {
	Action     ActionName     `json:"action" yaml:"action" mapstructure:"action"`
	Parameters map[string]any `json:"parameters" yaml:"parameters" mapstructure:"parameters"`
}

// NewAction builds an InterpretedAction with a non-nil parameter map.
func NewAction(name ActionName, params map[string]any) InterpretedAction {
	if params == nil {
		params = map[string]any{}
	}
	return InterpretedAction{Action: name, Parameters: params}
}

// ExecutionResult is the envelope returned to callers regardless of the action run.
type ExecutionResult struct {
	Success bool       `json:"success"`
	Action  ActionName `json:"action,omitempty"`
	Result  any        `json:"result,omitempty"`
	Message string     `json:"message"`
}
