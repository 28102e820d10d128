package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yanizio/primer/internal/imagesize"
	"github.com/yanizio/primer/internal/sidebar"
)

// Declarations are the theme's declarative registrations before any
// filtering or validation.
type Declarations struct {
	ImageSizes []imagesize.Input `yaml:"image_sizes"`
	Sidebars   []sidebar.Input   `yaml:"sidebars"`
	NavMenus   map[string]string `yaml:"nav_menus"`
}

// DefaultDeclarations decodes the embedded defaults.yaml.
func DefaultDeclarations() (Declarations, error) {
	var d Declarations
	if err := yaml.Unmarshal(defaultDeclarations, &d); err != nil {
		return Declarations{}, fmt.Errorf("embedded declarations: %w", err)
	}
	return d, nil
}

// LoadDeclarations returns the embedded defaults with the override file at
// path layered on top.  A missing file is not an error.
func LoadDeclarations(path string) (Declarations, error) {
	d, err := DefaultDeclarations()
	if err != nil || path == "" {
		return d, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return d, fmt.Errorf("read %s: %w", path, err)
	}
	var o Declarations
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return d, fmt.Errorf("decode %s: %w", path, err)
	}
	return d.Merge(o), nil
}

// Merge layers o over d.  Entries with a matching key replace the earlier
// entry in place; new entries are appended in o's order.
func (d Declarations) Merge(o Declarations) Declarations {
	out := Declarations{
		ImageSizes: append([]imagesize.Input(nil), d.ImageSizes...),
		Sidebars:   append([]sidebar.Input(nil), d.Sidebars...),
		NavMenus:   make(map[string]string, len(d.NavMenus)+len(o.NavMenus)),
	}

	for _, s := range o.ImageSizes {
		replaced := false
		for i := range out.ImageSizes {
			if out.ImageSizes[i].Name == s.Name {
				out.ImageSizes[i], replaced = s, true
				break
			}
		}
		if !replaced {
			out.ImageSizes = append(out.ImageSizes, s)
		}
	}

	for _, s := range o.Sidebars {
		replaced := false
		for i := range out.Sidebars {
			if out.Sidebars[i].ID == s.ID {
				out.Sidebars[i], replaced = s, true
				break
			}
		}
		if !replaced {
			out.Sidebars = append(out.Sidebars, s)
		}
	}

	for k, v := range d.NavMenus {
		out.NavMenus[k] = v
	}
	for k, v := range o.NavMenus {
		out.NavMenus[k] = v
	}
	return out
}
