/**
 * Selection-to-region mapping
 *
 * Converts raw pointer pixel coordinates into normalized, resolution
 * independent rectangles for the OCR selection endpoint. PDF pages carry a
 * backing canvas at device resolution separate from the CSS layout size, so
 * their pointer coordinates are rescaled before normalization; images are
 * clamped to the displayed box and normalized by it directly.
 */

package selection

import "math"

// MinSelectionPx is the minimum pixel width/height a drag must cover.
// Anything smaller is treated as an accidental click and dropped silently.
const MinSelectionPx = 10.0

// DocType distinguishes the two coordinate systems.
type DocType string

const (
	DocTypePDF   DocType = "pdf"
	DocTypeImage DocType = "image"
)

// Point is a pixel coordinate relative to the canvas/image origin.
type Point struct {
	X float64
	Y float64
}

// Rect is a normalized rectangle, each component in [0,1], X1<=X2, Y1<=Y2.
type Rect struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// WholePage is the unit rectangle used for full-page OCR requests.
var WholePage = Rect{X1: 0, Y1: 0, X2: 1, Y2: 1}

// CanvasMetrics describes the drawing surface a selection was made on.
// For PDFs IntrinsicWidth/Height are the backing canvas dimensions while
// DisplayWidth/Height are the on-screen layout size; for images only the
// display box matters.
type CanvasMetrics struct {
	IntrinsicWidth  float64
	IntrinsicHeight float64
	DisplayWidth    float64
	DisplayHeight   float64
}

// CanvasPoint maps client coordinates (relative to the element's bounding
// box origin) into the coordinate space selections are tracked in: backing
// canvas pixels for PDFs, clamped display pixels for images.
func CanvasPoint(docType DocType, clientX, clientY float64, m CanvasMetrics) Point {
	if docType == DocTypePDF {
		scaleX := m.IntrinsicWidth / m.DisplayWidth
		scaleY := m.IntrinsicHeight / m.DisplayHeight
		return Point{X: clientX * scaleX, Y: clientY * scaleY}
	}

	return Point{
		X: math.Max(0, math.Min(m.DisplayWidth, clientX)),
		Y: math.Max(0, math.Min(m.DisplayHeight, clientY)),
	}
}

// Compute turns a start/end drag (already in canvas space, see CanvasPoint)
// into a normalized rectangle. ok is false when the drag is below the
// MinSelectionPx threshold in either axis.
func Compute(docType DocType, start, end Point, m CanvasMetrics) (r Rect, ok bool) {
	if math.Abs(end.X-start.X) < MinSelectionPx || math.Abs(end.Y-start.Y) < MinSelectionPx {
		return Rect{}, false
	}

	var w, h float64
	if docType == DocTypePDF {
		w, h = m.IntrinsicWidth, m.IntrinsicHeight
	} else {
		w, h = m.DisplayWidth, m.DisplayHeight
	}

	r = Rect{
		X1: math.Min(start.X, end.X) / w,
		Y1: math.Min(start.Y, end.Y) / h,
		X2: math.Max(start.X, end.X) / w,
		Y2: math.Max(start.Y, end.Y) / h,
	}
	return r, true
}

// Denormalize maps a normalized rectangle back to pixel space for the given
// dimensions. Used to verify selections round-trip.
func Denormalize(r Rect, width, height float64) (x1, y1, x2, y2 float64) {
	return r.X1 * width, r.Y1 * height, r.X2 * width, r.Y2 * height
}

// Valid reports whether every component lies in [0,1] with sorted corners.
func (r Rect) Valid() bool {
	in := func(v float64) bool { return v >= 0 && v <= 1 }
	return in(r.X1) && in(r.Y1) && in(r.X2) && in(r.Y2) && r.X1 <= r.X2 && r.Y1 <= r.Y2
}

// Width returns the normalized width.
func (r Rect) Width() float64 { return r.X2 - r.X1 }

// Height returns the normalized height.
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }
