package ico

import (
	"errors"

	"github.com/aarondl/opt/omit"
)

// Criteria selects entries by exact match. Unset fields match anything, so
// the zero value matches every entry.
type Criteria struct {
	Index       omit.Val[int]
	Width       omit.Val[int]
	Height      omit.Val[int]
	BitDepth    omit.Val[int]
	PaletteSize omit.Val[int]

	IconOnly   bool
	CursorOnly bool

	// Hotspot coordinates are compared against the effective hotspot, so
	// icons only match (0,0).
	HotspotX omit.Val[int]
	HotspotY omit.Val[int]
}

var errConflictingKinds = errors.New("only one of icon-only and cursor-only may be set")

// Validate reports criteria that can never be satisfied by construction.
func (c Criteria) Validate() error {
	if c.IconOnly && c.CursorOnly {
		return errConflictingKinds
	}
	return nil
}

// Match reports whether m satisfies every set criterion.
func (c Criteria) Match(m Metadata) bool {
	if !matchInt(c.Index, m.Index) ||
		!matchInt(c.Width, m.Width) ||
		!matchInt(c.Height, m.Height) ||
		!matchInt(c.BitDepth, m.BitDepth) ||
		!matchInt(c.PaletteSize, m.PaletteSize) {
		return false
	}

	if c.IconOnly && m.Kind != KindIcon {
		return false
	}
	if c.CursorOnly && m.Kind != KindCursor {
		return false
	}

	hotspot := m.EffectiveHotspot()
	return matchInt(c.HotspotX, hotspot.X) && matchInt(c.HotspotY, hotspot.Y)
}

func matchInt(want omit.Val[int], got int) bool {
	v, ok := want.Get()
	return !ok || v == got
}

// Filter returns the entries of metas matched by c, keeping their order.
func (c Criteria) Filter(metas []Metadata) []Metadata {
	var matched []Metadata
	for _, m := range metas {
		if c.Match(m) {
			matched = append(matched, m)
		}
	}
	return matched
}
