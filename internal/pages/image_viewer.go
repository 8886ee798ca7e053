/**
 * Standalone image viewer controller
 *
 * Zoom, rotation and pan state for the full-screen image preview.
 */

package pages

import (
	"math"

	"github.com/stachuman/opiniowanie-serwis/internal/logging"
)

const (
	imageZoomFactor = 1.2
	imageMinZoom    = 0.1
	imageMaxZoom    = 5.0
)

// ImageTransform is the current view transform applied to the image.
type ImageTransform struct {
	Zoom     float64
	Rotation int // degrees, multiple of 90
	PanX     float64
	PanY     float64
}

// ImageViewerManager tracks the transform for the image preview page.
type ImageViewerManager struct {
	transform ImageTransform
	logger    *logging.Logger

	// OnTransformChanged re-applies the transform to the view.
	OnTransformChanged func(t ImageTransform)
}

// NewImageViewerManager starts at 1:1 with no rotation.
func NewImageViewerManager() *ImageViewerManager {
	return &ImageViewerManager{
		transform: ImageTransform{Zoom: 1.0},
		logger:    logging.NewLogger("ImageViewerManager"),
	}
}

// Transform returns the current view transform.
func (m *ImageViewerManager) Transform() ImageTransform {
	return m.transform
}

// ZoomIn multiplies the zoom by the zoom factor, capped at the maximum.
func (m *ImageViewerManager) ZoomIn() {
	m.setZoom(m.transform.Zoom * imageZoomFactor)
}

// ZoomOut divides the zoom by the zoom factor, never below the minimum.
func (m *ImageViewerManager) ZoomOut() {
	m.setZoom(m.transform.Zoom / imageZoomFactor)
}

// ResetView restores 1:1 zoom, zero rotation and centered pan.
func (m *ImageViewerManager) ResetView() {
	m.transform = ImageTransform{Zoom: 1.0}
	m.notify()
}

// RotateClockwise turns the image by 90 degrees.
func (m *ImageViewerManager) RotateClockwise() {
	m.transform.Rotation = (m.transform.Rotation + 90) % 360
	m.notify()
}

// RotateCounterClockwise turns the image by -90 degrees.
func (m *ImageViewerManager) RotateCounterClockwise() {
	m.transform.Rotation = (m.transform.Rotation + 270) % 360
	m.notify()
}

// FitToScreen picks the zoom that fits the image inside the viewport
// without enlarging it past its natural size. Rotation by 90 or 270
// degrees swaps the image axes.
func (m *ImageViewerManager) FitToScreen(imageW, imageH, viewportW, viewportH float64) {
	if imageW <= 0 || imageH <= 0 || viewportW <= 0 || viewportH <= 0 {
		return
	}
	w, h := imageW, imageH
	if m.transform.Rotation%180 != 0 {
		w, h = h, w
	}
	zoom := math.Min(math.Min(viewportW/w, viewportH/h), 1.0)
	m.transform.PanX = 0
	m.transform.PanY = 0
	m.setZoom(zoom)
}

// Pan shifts the view by the given delta. Panning is only available when
// the image is enlarged past its natural size.
func (m *ImageViewerManager) Pan(dx, dy float64) {
	if m.transform.Zoom <= 1.0 {
		return
	}
	m.transform.PanX += dx
	m.transform.PanY += dy
	m.notify()
}

// CanPan reports whether pan gestures are active.
func (m *ImageViewerManager) CanPan() bool {
	return m.transform.Zoom > 1.0
}

func (m *ImageViewerManager) setZoom(zoom float64) {
	if zoom < imageMinZoom {
		zoom = imageMinZoom
	}
	if zoom > imageMaxZoom {
		zoom = imageMaxZoom
	}
	if zoom == m.transform.Zoom {
		return
	}
	m.transform.Zoom = zoom
	if zoom <= 1.0 {
		m.transform.PanX = 0
		m.transform.PanY = 0
	}
	m.logger.Debug("zoom changed", "zoom", zoom)
	m.notify()
}

func (m *ImageViewerManager) notify() {
	if m.OnTransformChanged != nil {
		m.OnTransformChanged(m.transform)
	}
}
