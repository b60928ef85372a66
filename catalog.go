package bmsagent

import (
	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/schema"
)

// ActionInfo describes one catalog entry.
type ActionInfo struct {
	Name        domain.ActionName `json:"name"`
	Description string            `json:"description"`
	Parameters  schema.Schema     `json:"parameters"`
}

var vec3 = schema.Object(schema.Schema{
	"x": {Type: schema.Float()},
	"y": {Type: schema.Float()},
	"z": {Type: schema.Float()},
})

var parameters = map[domain.ActionName]schema.Schema{
	domain.ActionSelectElement: {
		"id": {Type: schema.Int(), Required: true, Description: "Local id of the element"},
	},
	domain.ActionSelectElementsByType: {
		"type": {Type: schema.String(), Required: true, Description: "IFC category, e.g. IFCDOOR"},
	},
	domain.ActionSelectElementsByProperty: {
		"property": {Type: schema.String(), Description: "Property name, informational only"},
		"value":    {Type: schema.String(), Required: true, Description: "Text searched in every property value"},
	},
	domain.ActionZoomToElement: {
		"id": {Type: schema.Int(), Required: true, Description: "Local id of the element"},
	},
	domain.ActionResetView: {},
	domain.ActionCountElements: {
		"type": {Type: schema.String(), Description: "Restrict the count to one IFC category"},
	},
	domain.ActionAnalyzeElement: {
		"id": {Type: schema.Int(), Required: true, Description: "Local id of the element"},
	},
	domain.ActionFindSpaces: {
		"name":     {Type: schema.String(), Description: "Substring of the space name"},
		"function": {Type: schema.String(), Description: "Substring of the space function"},
	},
	domain.ActionGenerateReport: {
		"type": {Type: schema.String(), Description: "maintenance, energy or compliance; anything else is a general report"},
	},
	domain.ActionHighlightElements: {
		"type": {Type: schema.String(), Description: "IFC category to highlight"},
		"ids":  {Type: schema.Slice(schema.Int()), Description: "Explicit local ids, used when type is empty"},
	},
	domain.ActionIsolateCategory: {
		"category": {Type: schema.String(), Required: true, Description: "IFC category left opaque"},
	},
	domain.ActionCreateGeometry: {
		"name":     {Type: schema.String(), Description: "Scene group, replaced if it exists"},
		"shape":    {Type: schema.OneOf("box", "sphere", "cylinder", "plane")},
		"count":    {Type: schema.Int()},
		"size":     {Type: schema.Float()},
		"spacing":  {Type: schema.Float()},
		"color":    {Type: schema.String(), Description: "Hex color, e.g. #4488ff"},
		"opacity":  {Type: schema.Float()},
		"position": {Type: vec3},
		"lights":   {Type: schema.Bool(), Description: "Add default lights when the scene has none"},
	},
	domain.ActionCreateDiagram: {
		"name":   {Type: schema.String(), Description: "Scene group, replaced if it exists"},
		"type":   {Type: schema.OneOf("bar", "pie", "distribution")},
		"title":  {Type: schema.String()},
		"source": {Type: schema.OneOf("categories"), Description: "Fill data from element counts"},
		"data": {Type: schema.Slice(schema.Object(schema.Schema{
			"name":  {Type: schema.String()},
			"type":  {Type: schema.String()},
			"label": {Type: schema.String()},
			"value": {Type: schema.Float()},
			"count": {Type: schema.Float()},
		})), Description: "Data points as {label, value}"},
	},
}

// Actions lists the catalog with descriptions and parameters, in catalog order.
func Actions() []ActionInfo {
	names := domain.AllActions()
	out := make([]ActionInfo, len(names))
	for i, n := range names {
		out[i] = ActionInfo{Name: n, Description: domain.ActionDescriptions[n], Parameters: parameters[n]}
	}
	return out
}

// Parameters returns the parameter schema of an action, or nil for names outside the catalog.
func Parameters(name domain.ActionName) schema.Schema {
	return parameters[name]
}

// ValidateAction checks an explicitly built action before it is dispatched.
// Interpreted actions skip this; the interpreter only emits catalog parameters.
func ValidateAction(action domain.InterpretedAction) error {
	s, ok := parameters[action.Action]
	if !ok {
		return &domain.UnrecognizedActionError{Text: string(action.Action)}
	}
	return schema.Validate(s, action.Parameters)
}
