package domain

// ElementReference identifies one element inside one loaded model.
type ElementReference struct {
	ModelID string `json:"model_id"`
	LocalID int    `json:"local_id"`
}

// PropertySet is a named group of key/value attributes attached to an element.
type PropertySet struct {
	Name       string         `json:"name" yaml:"name"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// ItemData is the data a model exposes for one element.
type ItemData struct {
	LocalID      int            `json:"local_id" yaml:"local_id"`
	Category     string         `json:"category" yaml:"category"`
	Attributes   map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	PropertySets []PropertySet  `json:"property_sets,omitempty" yaml:"property_sets,omitempty"`
}

// Attribute returns a direct attribute as a string, or "" if absent.
func (d ItemData) Attribute(key string) string {
	if v, ok := d.Attributes[key]; ok && v != nil {
		return stringify(v)
	}
	return ""
}

// Lookup finds a property by name, searching direct attributes before property sets.
func (d ItemData) Lookup(key string) (any, bool) {
	if v, ok := d.Attributes[key]; ok {
		return v, true
	}
	for _, ps := range d.PropertySets {
		if v, ok := ps.Properties[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Material is a visual override applied to elements.
type Material struct {
	Color   string  `json:"color" yaml:"color"`
	Opacity float64 `json:"opacity" yaml:"opacity"`
}
