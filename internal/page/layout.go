package page

// Layout is the column arrangement of a page.
type Layout string

const (
	OneColumn           Layout = "one-column"
	OneColumnWide       Layout = "one-column-wide"
	TwoColumnDefault    Layout = "two-column-default"
	TwoColumnReversed   Layout = "two-column-reversed"
	ThreeColumnDefault  Layout = "three-column-default"
	ThreeColumnCenter   Layout = "three-column-center"
	ThreeColumnReversed Layout = "three-column-reversed"
)

// Layouts lists every layout in menu order.
var Layouts = []Layout{
	OneColumn, OneColumnWide,
	TwoColumnDefault, TwoColumnReversed,
	ThreeColumnDefault, ThreeColumnCenter, ThreeColumnReversed,
}

// Content widths in pixels before the primer_content_width filter.
const (
	WideContentWidth    = 1068
	DefaultContentWidth = 688
)

// ParseLayout returns the layout named s.
func ParseLayout(s string) (Layout, bool) {
	for _, l := range Layouts {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// Columns returns 1, 2, or 3.
func (l Layout) Columns() int {
	switch l {
	case OneColumn, OneColumnWide:
		return 1
	case ThreeColumnDefault, ThreeColumnCenter, ThreeColumnReversed:
		return 3
	default:
		return 2
	}
}

// HasSidebar reports whether the primary sidebar shows.
func (l Layout) HasSidebar() bool { return l.Columns() > 1 }

// HasSecondarySidebar reports whether the secondary sidebar shows.
func (l Layout) HasSecondarySidebar() bool { return l.Columns() == 3 }

// BaseContentWidth is the width before filtering.
func (l Layout) BaseContentWidth() int {
	if l == OneColumnWide {
		return WideContentWidth
	}
	return DefaultContentWidth
}

func (l Layout) String() string { return string(l) }
