package memory

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed scenes/demo.yaml
var demoScene []byte

// Fixture is the YAML layout of a scene file:
//
//	camera:
//	  position: {x: 20, y: 20, z: 20}
//	  target: {x: 0, y: 0, z: 0}
//	models:
//	  - id: building-a
//	    items:
//	      - local_id: 1
//	        category: IFCDOOR
//	        attributes: {Name: D-01}
//	        box: {min: {x: 0, y: 0, z: 0}, max: {x: 1, y: 2.1, z: 0.1}}
type Fixture struct {
	Camera *CameraFixture `yaml:"camera"`
	Models []ModelFixture `yaml:"models"`
}

// CameraFixture is the home pose of the camera.
type CameraFixture struct {
	Position domain.Vec3 `yaml:"position"`
	Target   domain.Vec3 `yaml:"target"`
}

// ModelFixture is one model and its items.
type ModelFixture struct {
	ID    string `yaml:"id"`
	Items []Item `yaml:"items"`
}

// DecodeFixture parses YAML bytes without building a viewer.
func DecodeFixture(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("failed to parse scene fixture: %w", err)
	}
	return f, nil
}

// ReadFixture reads and decodes a scene file without building a viewer.
func ReadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to read scene fixture %s: %w", path, err)
	}
	return DecodeFixture(data)
}

// DemoFixture returns the decoded built-in scene.
func DemoFixture() Fixture {
	f, err := DecodeFixture(demoScene)
	if err != nil {
		panic(err)
	}
	return f
}

// ParseFixture builds a viewer from YAML bytes.
func ParseFixture(data []byte, opts ...ViewerOption) (*Viewer, error) {
	f, err := DecodeFixture(data)
	if err != nil {
		return nil, err
	}
	if len(f.Models) == 0 {
		return nil, fmt.Errorf("scene fixture has no models")
	}
	models := make([]*Model, 0, len(f.Models))
	for i, mf := range f.Models {
		if mf.ID == "" {
			return nil, fmt.Errorf("model %d in scene fixture has no id", i)
		}
		models = append(models, NewModel(mf.ID, mf.Items...))
	}
	if f.Camera != nil {
		opts = append([]ViewerOption{WithCamera(NewCamera(f.Camera.Position, f.Camera.Target))}, opts...)
	}
	return NewViewer(models, opts...), nil
}

// LoadFixture reads a scene file from disk.
func LoadFixture(path string, opts ...ViewerOption) (*Viewer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene fixture %s: %w", path, err)
	}
	return ParseFixture(data, opts...)
}

// DemoViewer returns a small two-model office building.
func DemoViewer(opts ...ViewerOption) *Viewer {
	v, err := ParseFixture(demoScene, opts...)
	if err != nil {
		panic(err)
	}
	return v
}
