package executor

import (
	"strings"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

type idParams struct {
	ID *int `mapstructure:"id"`
}

type typeParams struct {
	Type string `mapstructure:"type"`
}

type propertyParams struct {
	Property string `mapstructure:"property"`
	Value    string `mapstructure:"value"`
}

type spaceParams struct {
	Name     string `mapstructure:"name"`
	Function string `mapstructure:"function"`
}

type highlightParams struct {
	Type string `mapstructure:"type"`
	IDs  []int  `mapstructure:"ids"`
}

type isolateParams struct {
	Category string `mapstructure:"category"`
}

type geometryParams struct {
	Name     string      `mapstructure:"name"`
	Shape    string      `mapstructure:"shape"`
	Count    int         `mapstructure:"count"`
	Size     float64     `mapstructure:"size"`
	Spacing  float64     `mapstructure:"spacing"`
	Color    string      `mapstructure:"color"`
	Opacity  float64     `mapstructure:"opacity"`
	Position domain.Vec3 `mapstructure:"position"`
	Lights   *bool       `mapstructure:"lights"`
}

type diagramParams struct {
	Name   string      `mapstructure:"name"`
	Type   string      `mapstructure:"type"`
	Title  string      `mapstructure:"title"`
	Source string      `mapstructure:"source"`
	Data   []dataPoint `mapstructure:"data"`
}

// dataPoint accepts the label under name, type or label and the value under value or count.
type dataPoint struct {
	Name  string   `mapstructure:"name"`
	Type  string   `mapstructure:"type"`
	Label string   `mapstructure:"label"`
	Value *float64 `mapstructure:"value"`
	Count *float64 `mapstructure:"count"`
}

func (d dataPoint) label() string {
	for _, s := range []string{d.Name, d.Label, d.Type} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (d dataPoint) value() float64 {
	switch {
	case d.Value != nil:
		return *d.Value
	case d.Count != nil:
		return *d.Count
	}
	return 0
}

// decode maps loosely typed parameters onto a struct. Strings such as "42" decode into ints.
func decode(action domain.ActionName, in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return &domain.ActionExecutionError{Action: action, Cause: "invalid parameters", Err: err}
	}
	if err := dec.Decode(in); err != nil {
		return &domain.ActionExecutionError{Action: action, Cause: "invalid parameters", Err: err}
	}
	return nil
}

func requireID(action domain.ActionName, in map[string]any) (int, error) {
	var p idParams
	if err := decode(action, in, &p); err != nil {
		return 0, err
	}
	if p.ID == nil {
		return 0, domain.NewActionError(action, "id is required")
	}
	return *p.ID, nil
}

func normalizeCategory(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
