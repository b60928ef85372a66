package domain

// Shape is a primitive mesh kind understood by the scene port.
type Shape string

const (
	ShapeBox      Shape = "box"
	ShapeSphere   Shape = "sphere"
	ShapeCylinder Shape = "cylinder"
	ShapePlane    Shape = "plane"
	// ShapeSector is a pie slice lying in the XY plane.
	ShapeSector Shape = "sector"
	// ShapeText is a floating label.
	ShapeText Shape = "text"
)

// Mesh describes one procedurally created object.
type Mesh struct {
	Name       string  `json:"name"`
	Shape      Shape   `json:"shape"`
	Position   Vec3    `json:"position"`
	Rotation   Vec3    `json:"rotation"`
	Scale      Vec3    `json:"scale"`
	Size       Vec3    `json:"size,omitempty"`
	Radius     float64 `json:"radius,omitempty"`
	Height     float64 `json:"height,omitempty"`
	StartAngle float64 `json:"start_angle,omitempty"`
	Angle      float64 `json:"angle,omitempty"`
	Color      string  `json:"color,omitempty"`
	Opacity    float64 `json:"opacity,omitempty"`
	Label      string  `json:"label,omitempty"`
}

// Light is a scene light source.
type Light struct {
	Kind      string  `json:"kind"`
	Color     string  `json:"color"`
	Intensity float64 `json:"intensity"`
	Position  Vec3    `json:"position"`
}

// SceneGroup is a named, replaceable collection of meshes and lights.
type SceneGroup struct {
	Name   string  `json:"name"`
	Meshes []Mesh  `json:"meshes"`
	Lights []Light `json:"lights,omitempty"`
}
