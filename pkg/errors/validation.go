package errors

import (
	"math"
	"unicode"
)

// maxIDLength bounds node, edge and handle identifiers.
const maxIDLength = 256

// ValidateID validates a node, edge or handle identifier.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s id contains invalid control characters", kind)
		}
	}

	return nil
}

// ValidateZoomRange validates a zoom interval.
// Both bounds must be finite and positive, and min must not exceed max.
func ValidateZoomRange(minZoom, maxZoom float64) error {
	if !finite(minZoom) || !finite(maxZoom) {
		return New(ErrCodeInvalidViewport, "zoom bounds must be finite (got %v, %v)", minZoom, maxZoom)
	}
	if minZoom <= 0 {
		return New(ErrCodeInvalidViewport, "minZoom must be positive (got %v)", minZoom)
	}
	if minZoom > maxZoom {
		return New(ErrCodeInvalidViewport, "minZoom %v exceeds maxZoom %v", minZoom, maxZoom)
	}
	return nil
}

// ValidateViewport validates a pan/zoom triple against a zoom interval.
func ValidateViewport(x, y, zoom, minZoom, maxZoom float64) error {
	if !finite(x) || !finite(y) || !finite(zoom) {
		return New(ErrCodeInvalidViewport, "viewport must be finite (got %v, %v, %v)", x, y, zoom)
	}
	if zoom < minZoom || zoom > maxZoom {
		return New(ErrCodeInvalidViewport, "zoom %v outside [%v, %v]", zoom, minZoom, maxZoom)
	}
	return nil
}

// ValidateGrid validates a snap grid cell size.
func ValidateGrid(x, y float64) error {
	if !finite(x) || !finite(y) || x <= 0 || y <= 0 {
		return New(ErrCodeInvalidConfig, "snap grid must be positive (got %v x %v)", x, y)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
