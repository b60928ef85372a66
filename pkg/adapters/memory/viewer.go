package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/ports"
)

// Item is one element of an in-memory model: its data plus its bounding box.
type Item struct {
	domain.ItemData `yaml:",inline"`
	Box             domain.Box `yaml:"box"`
}

// Model implements ports.Model over a fixed list of items.
// Safe for concurrent use.
type Model struct {
	id    string
	items map[int]Item
	order []int

	mu          sync.RWMutex
	highlights  map[int]domain.Material
	opacity     float64
	itemOpacity map[int]float64
	failure     error
}

// NewModel creates a model. Duplicate local ids keep the last item.
func NewModel(id string, items ...Item) *Model {
	m := &Model{
		id:          id,
		items:       make(map[int]Item, len(items)),
		highlights:  make(map[int]domain.Material),
		opacity:     1,
		itemOpacity: make(map[int]float64),
	}
	for _, it := range items {
		if _, dup := m.items[it.LocalID]; !dup {
			m.order = append(m.order, it.LocalID)
		}
		m.items[it.LocalID] = it
	}
	return m
}

// SetFailure makes every subsequent port call return err. Pass nil to recover.
func (m *Model) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

func (m *Model) fail() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failure
}

func (m *Model) ID() string { return m.id }

func (m *Model) Categories(ctx context.Context) ([]string, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, id := range m.order {
		c := m.items[id].Category
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Model) ItemsOfCategory(ctx context.Context, category string) ([]int, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	out := []int{}
	for _, id := range m.order {
		if m.items[id].Category == category {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *Model) ItemsData(ctx context.Context, ids []int) ([]domain.ItemData, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	out := make([]domain.ItemData, 0, len(ids))
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			out = append(out, it.ItemData)
		}
	}
	return out, nil
}

func (m *Model) MergedBox(ctx context.Context, ids []int) (domain.Box, error) {
	if err := m.fail(); err != nil {
		return domain.Box{}, err
	}
	var box domain.Box
	found := false
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			box = box.Union(it.Box)
			found = true
		}
	}
	if !found {
		return domain.Box{}, fmt.Errorf("model %s: none of %v exist", m.id, ids)
	}
	return box, nil
}

func (m *Model) Highlight(ctx context.Context, ids []int, material domain.Material) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if _, ok := m.items[id]; ok {
			m.highlights[id] = material
		}
	}
	return nil
}

func (m *Model) ResetHighlight(ctx context.Context, ids []int) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ids == nil {
		clear(m.highlights)
		return nil
	}
	for _, id := range ids {
		delete(m.highlights, id)
	}
	return nil
}

// SetOpacity applies to the whole model and drops per-item overrides.
func (m *Model) SetOpacity(ctx context.Context, opacity float64) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opacity = opacity
	clear(m.itemOpacity)
	return nil
}

func (m *Model) SetItemsOpacity(ctx context.Context, ids []int, opacity float64) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if _, ok := m.items[id]; ok {
			m.itemOpacity[id] = opacity
		}
	}
	return nil
}

// Highlighted returns the ids that currently carry a highlight, in model order.
func (m *Model) Highlighted() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []int{}
	for _, id := range m.order {
		if _, ok := m.highlights[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Opacity returns the effective opacity of an item.
func (m *Model) Opacity(id int) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if o, ok := m.itemOpacity[id]; ok {
		return o
	}
	return m.opacity
}

// ModelOpacity returns the model-wide opacity.
func (m *Model) ModelOpacity() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.opacity
}

// Camera implements ports.Camera with a look-at pose.
type Camera struct {
	mu             sync.Mutex
	home, position domain.Vec3
	homeTarget     domain.Vec3
	target         domain.Vec3
	lastRadius     float64
}

// NewCamera creates a camera at position looking at target. Reset returns here.
func NewCamera(position, target domain.Vec3) *Camera {
	return &Camera{home: position, position: position, homeTarget: target, target: target}
}

func (c *Camera) Pose(ctx context.Context) (domain.Vec3, domain.Vec3, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position, c.target.Sub(c.position).Normalize(), nil
}

// FitToSphere keeps the viewing direction and backs off radius units from center.
func (c *Camera) FitToSphere(ctx context.Context, center domain.Vec3, radius float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	dir := c.target.Sub(c.position).Normalize()
	if dir == (domain.Vec3{}) {
		dir = domain.Vec3{Z: -1}
	}
	c.target = center
	c.position = center.Sub(dir.Scale(radius))
	c.lastRadius = radius
	return nil
}

func (c *Camera) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.home
	c.target = c.homeTarget
	c.lastRadius = 0
	return nil
}

// Target returns the point the camera looks at.
func (c *Camera) Target() domain.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// LastFitRadius returns the radius of the last FitToSphere call, or 0 after Reset.
func (c *Camera) LastFitRadius() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRadius
}

// Scene implements ports.Scene as a map of named groups.
type Scene struct {
	mu     sync.RWMutex
	groups map[string]*domain.SceneGroup
	lights []domain.Light
}

func NewScene() *Scene {
	return &Scene{groups: make(map[string]*domain.SceneGroup)}
}

func (s *Scene) Group(ctx context.Context, name string) (*domain.SceneGroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[name]
	return g, ok
}

func (s *Scene) AddGroup(ctx context.Context, group *domain.SceneGroup) error {
	if group == nil || group.Name == "" {
		return fmt.Errorf("scene group requires a name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.groups[group.Name]; exists {
		return fmt.Errorf("scene group %q already exists", group.Name)
	}
	s.groups[group.Name] = group
	return nil
}

func (s *Scene) RemoveGroup(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, name)
	return nil
}

func (s *Scene) HasLights(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lights) > 0
}

func (s *Scene) AddLights(ctx context.Context, lights []domain.Light) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, lights...)
	return nil
}

// Lights returns the lights added so far.
func (s *Scene) Lights() []domain.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Light(nil), s.lights...)
}

// Fragments counts redraw requests.
type Fragments struct {
	updates atomic.Int64
}

func (f *Fragments) Update(ctx context.Context) error {
	f.updates.Add(1)
	return nil
}

// Updates returns how many redraws were requested.
func (f *Fragments) Updates() int64 {
	return f.updates.Load()
}

// Viewer bundles the in-memory collaborators. It implements ports.World.
type Viewer struct {
	camera    *Camera
	scene     *Scene
	fragments *Fragments
	models    []*Model
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithoutCamera builds a viewer whose world exposes no camera.
func WithoutCamera() ViewerOption {
	return func(v *Viewer) { v.camera = nil }
}

// WithoutScene builds a viewer whose world exposes no scene graph.
func WithoutScene() ViewerOption {
	return func(v *Viewer) { v.scene = nil }
}

// WithCamera replaces the default camera.
func WithCamera(c *Camera) ViewerOption {
	return func(v *Viewer) { v.camera = c }
}

// NewViewer creates a viewer over the given models with a default camera and an empty scene.
func NewViewer(models []*Model, opts ...ViewerOption) *Viewer {
	v := &Viewer{
		camera:    NewCamera(domain.Vec3{X: 20, Y: 20, Z: 20}, domain.Vec3{}),
		scene:     NewScene(),
		fragments: &Fragments{},
		models:    models,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Viewer) Camera() ports.Camera {
	if v.camera == nil {
		return nil
	}
	return v.camera
}

func (v *Viewer) Scene() ports.Scene {
	if v.scene == nil {
		return nil
	}
	return v.scene
}

// MemoryCamera returns the concrete camera, or nil.
func (v *Viewer) MemoryCamera() *Camera { return v.camera }

// MemoryScene returns the concrete scene, or nil.
func (v *Viewer) MemoryScene() *Scene { return v.scene }

// Fragments returns the redraw counter.
func (v *Viewer) Fragments() *Fragments { return v.fragments }

// Models returns the models as ports.
func (v *Viewer) Models() []ports.Model {
	out := make([]ports.Model, len(v.models))
	for i, m := range v.models {
		out[i] = m
	}
	return out
}

// Model returns the model with the given id, or nil.
func (v *Viewer) Model(id string) *Model {
	for _, m := range v.models {
		if m.id == id {
			return m
		}
	}
	return nil
}

var (
	_ ports.Model     = (*Model)(nil)
	_ ports.Camera    = (*Camera)(nil)
	_ ports.Scene     = (*Scene)(nil)
	_ ports.Fragments = (*Fragments)(nil)
	_ ports.World     = (*Viewer)(nil)
)
