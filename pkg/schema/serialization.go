package schema

import (
	"encoding/json"
	"fmt"
)

type fieldJSON struct {
	Type        string `json:"type"`
	Required    bool   `json:"required,omitempty"`
	Description string `json:"description,omitempty"`
}

// MarshalJSON writes the type by name.
func (f Field) MarshalJSON() ([]byte, error) {
	if f.Type == nil {
		return nil, fmt.Errorf("schema: field type is nil")
	}
	return json.Marshal(fieldJSON{Type: f.Type.Name(), Required: f.Required, Description: f.Description})
}

// UnmarshalJSON parses the type name with ParseType.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw fieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := ParseType(raw.Type)
	if err != nil {
		return err
	}
	*f = Field{Type: t, Required: raw.Required, Description: raw.Description}
	return nil
}
