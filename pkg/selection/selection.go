// Package selection implements rectangle selection of nodes.
//
// Given a selection rectangle and candidate node rectangles in the same
// coordinate space, [Select] returns the ids of the selected nodes under a
// [Mode]: Full requires the node to lie entirely inside the rectangle,
// Partial requires a positive overlap area (touching edges do not count).
package selection

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/flowcore/pkg/geom"
)

// Mode is the rectangle selection policy.
type Mode int

const (
	// Full selects nodes entirely inside the rectangle.
	Full Mode = iota
	// Partial selects nodes overlapping the rectangle by a positive area.
	Partial
)

func (m Mode) String() string {
	switch m {
	case Full:
		return "full"
	case Partial:
		return "partial"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "full" or "partial" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "full":
		return Full, nil
	case "partial":
		return Partial, nil
	}
	return Full, fmt.Errorf("unknown selection mode %q", s)
}

// Candidate is a selectable node rectangle.
type Candidate struct {
	ID   string
	Rect geom.Rect
}

// Select returns the sorted, duplicate-free ids of the candidates selected
// by rect under mode.
func Select(rect geom.Rect, candidates []Candidate, mode Mode) []string {
	var out []string
	for _, c := range candidates {
		var hit bool
		if mode == Partial {
			hit = rect.OverlapArea(c.Rect) > 0
		} else {
			hit = rect.Contains(c.Rect)
		}
		if hit {
			out = append(out, c.ID)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// RectFromPoints returns the normalized rectangle spanned by two corners.
func RectFromPoints(a, b geom.Point) geom.Rect {
	x0, x1 := min(a.X, b.X), max(a.X, b.X)
	y0, y1 := min(a.Y, b.Y), max(a.Y, b.Y)
	return geom.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Diff compares two sorted id sets and returns the ids only in next (added)
// and only in prev (removed).
func Diff(prev, next []string) (added, removed []string) {
	i, j := 0, 0
	for i < len(prev) || j < len(next) {
		switch {
		case j == len(next) || (i < len(prev) && prev[i] < next[j]):
			removed = append(removed, prev[i])
			i++
		case i == len(prev) || next[j] < prev[i]:
			added = append(added, next[j])
			j++
		default:
			i++
			j++
		}
	}
	return added, removed
}
