package theme

import (
	"sort"
	"sync"

	"github.com/yanizio/primer/internal/imagesize"
	"github.com/yanizio/primer/internal/sidebar"
)

// ImageSize is one size as the surface received it.
type ImageSize struct {
	Name   string
	Width  int
	Height int
	Crop   imagesize.Crop
}

// Surface records what the registries publish: image sizes, widget areas,
// and menu locations.  The media and widget screens of the host read
// these; the theme itself only needs the sidebars to exist.
type Surface struct {
	mu       sync.RWMutex
	sizes    map[string]ImageSize
	sidebars map[string]sidebar.Area
	order    []string
	menus    map[string]string
}

var (
	_ imagesize.Surface = (*Surface)(nil)
	_ sidebar.Surface   = (*Surface)(nil)
)

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{
		sizes:    map[string]ImageSize{},
		sidebars: map[string]sidebar.Area{},
		menus:    map[string]string{},
	}
}

// AddImageSize stores a size.  Re-adding a name overwrites it.
func (s *Surface) AddImageSize(name string, width, height int, crop imagesize.Crop) {
	s.mu.Lock()
	s.sizes[name] = ImageSize{Name: name, Width: width, Height: height, Crop: crop}
	s.mu.Unlock()
}

// RegisterSidebar stores an area.  Re-registering an id overwrites it and
// keeps its first position.
func (s *Surface) RegisterSidebar(a sidebar.Area) {
	s.mu.Lock()
	if _, ok := s.sidebars[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.sidebars[a.ID] = a
	s.mu.Unlock()
}

// RegisterNavMenu stores a menu location.
func (s *Surface) RegisterNavMenu(location, description string) {
	s.mu.Lock()
	s.menus[location] = description
	s.mu.Unlock()
}

// ImageSizes returns the stored sizes sorted by name.
func (s *Surface) ImageSizes() []ImageSize {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ImageSize, 0, len(s.sizes))
	for _, v := range s.sizes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Sidebars returns the stored areas in first-registration order.
func (s *Surface) Sidebars() []sidebar.Area {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]sidebar.Area, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.sidebars[id])
	}
	return out
}

// NavMenus returns a copy of the stored locations.
func (s *Surface) NavMenus() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.menus))
	for k, v := range s.menus {
		out[k] = v
	}
	return out
}
