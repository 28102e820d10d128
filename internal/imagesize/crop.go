package imagesize

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Crop is either a boolean hard-crop flag or an anchor pair telling the
// surface which part of the image to keep.
//
// Declarations accept any of:
//
//	crop: false
//	crop: true
//	crop: [center, top]
type Crop struct {
	Enabled bool
	X       string // left, center, right; empty when no anchor
	Y       string // top, center, bottom; empty when no anchor
}

// NoCrop is the default applied to declarations that omit crop.
var NoCrop = Crop{}

// Anchored returns a hard crop anchored at x, y.
func Anchored(x, y string) Crop { return Crop{Enabled: true, X: x, Y: y} }

// HasAnchor reports whether an anchor pair is set.
func (c Crop) HasAnchor() bool { return c.X != "" || c.Y != "" }

func (c Crop) String() string {
	switch {
	case c.HasAnchor():
		return c.X + "," + c.Y
	case c.Enabled:
		return "true"
	default:
		return "false"
	}
}

var (
	horizontal = map[string]bool{"left": true, "center": true, "right": true}
	vertical   = map[string]bool{"top": true, "center": true, "bottom": true}
)

// UnmarshalYAML accepts a bool or a two-element anchor sequence.
func (c *Crop) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var b bool
		if err := n.Decode(&b); err != nil {
			return fmt.Errorf("crop: %w", err)
		}
		*c = Crop{Enabled: b}
		return nil
	case yaml.SequenceNode:
		var pair []string
		if err := n.Decode(&pair); err != nil {
			return fmt.Errorf("crop: %w", err)
		}
		return c.setPair(pair)
	default:
		return fmt.Errorf("crop: line %d: want bool or [x, y]", n.Line)
	}
}

func (c *Crop) setPair(pair []string) error {
	if len(pair) != 2 {
		return fmt.Errorf("crop: anchor needs 2 values, got %d", len(pair))
	}
	if !horizontal[pair[0]] || !vertical[pair[1]] {
		return fmt.Errorf("crop: invalid anchor [%s, %s]", pair[0], pair[1])
	}
	*c = Anchored(pair[0], pair[1])
	return nil
}
