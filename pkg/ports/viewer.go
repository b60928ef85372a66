package ports

import (
	"context"

	"github.com/ikenthis/bmsagent/pkg/domain"
)

// Model is the capability surface of one loaded BIM model.
type Model interface {
	// ID returns a stable handle for the model.
	ID() string

	// Categories lists the category codes present in the model.
	Categories(ctx context.Context) ([]string, error)

	// ItemsOfCategory returns the local ids of every item of a category.
	// An unknown category yields an empty slice, not an error.
	ItemsOfCategory(ctx context.Context, category string) ([]int, error)

	// ItemsData returns data for the given ids. Ids absent from the model are skipped.
	ItemsData(ctx context.Context, ids []int) ([]domain.ItemData, error)

	// MergedBox returns the box enclosing all given items.
	MergedBox(ctx context.Context, ids []int) (domain.Box, error)

	// Highlight applies a material override to the given items.
	Highlight(ctx context.Context, ids []int, material domain.Material) error

	// ResetHighlight removes overrides from the given items, or from every item when ids is nil.
	ResetHighlight(ctx context.Context, ids []int) error

	// SetOpacity sets the opacity of the whole model.
	SetOpacity(ctx context.Context, opacity float64) error

	// SetItemsOpacity sets the opacity of individual items.
	SetItemsOpacity(ctx context.Context, ids []int, opacity float64) error
}

// Camera is the viewer camera/controls object.
type Camera interface {
	// Pose returns the camera position and its normalized viewing direction.
	Pose(ctx context.Context) (position, direction domain.Vec3, err error)

	// FitToSphere moves the camera so the sphere is framed.
	FitToSphere(ctx context.Context, center domain.Vec3, radius float64) error

	// Reset restores the default camera position.
	Reset(ctx context.Context) error
}

// Scene is the scene graph used for procedural geometry and diagrams.
type Scene interface {
	Group(ctx context.Context, name string) (*domain.SceneGroup, bool)
	AddGroup(ctx context.Context, group *domain.SceneGroup) error
	RemoveGroup(ctx context.Context, name string) error
	HasLights(ctx context.Context) bool
	AddLights(ctx context.Context, lights []domain.Light) error
}

// Fragments triggers a redraw after any mutation.
type Fragments interface {
	Update(ctx context.Context) error
}

// World gives access to the camera and scene. Either may be nil when unavailable.
type World interface {
	Camera() Camera
	Scene() Scene
}
