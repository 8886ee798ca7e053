/**
 * Standalone PDF viewer controller
 *
 * Zoom state for the full-document PDF view. Rendering itself is owned by
 * the OcrViewer; this controller only tracks scale and requests re-renders.
 */

package pages

import (
	"github.com/stachuman/opiniowanie-serwis/internal/editor"
	"github.com/stachuman/opiniowanie-serwis/internal/logging"
)

const (
	pdfZoomFactor   = 1.2
	pdfMinScale     = 0.5
	pdfDefaultScale = 1.5
)

// PdfViewerManager tracks zoom state for the PDF preview page.
type PdfViewerManager struct {
	scale  float64
	editor *editor.TextEditor
	logger *logging.Logger

	// OnScaleChanged re-renders the current page at the new scale.
	OnScaleChanged func(scale float64)
}

// NewPdfViewerManager starts at the default scale.
func NewPdfViewerManager() *PdfViewerManager {
	return &PdfViewerManager{
		scale:  pdfDefaultScale,
		logger: logging.NewLogger("PdfViewerManager"),
	}
}

// AttachEditor connects the page's text editor so the auto-save checkbox
// can drive it.
func (m *PdfViewerManager) AttachEditor(e *editor.TextEditor) {
	m.editor = e
}

// SetAutoSave forwards the auto-save checkbox state to the editor.
func (m *PdfViewerManager) SetAutoSave(enabled bool) {
	if m.editor == nil {
		return
	}
	m.editor.SetAutoSave(enabled)
	m.logger.Info("auto-save toggled", "enabled", enabled)
}

// AutoSaveEnabled reports the editor's auto-save state.
func (m *PdfViewerManager) AutoSaveEnabled() bool {
	return m.editor != nil && m.editor.AutoSaveEnabled()
}

// Scale returns the current render scale.
func (m *PdfViewerManager) Scale() float64 {
	return m.scale
}

// ZoomIn multiplies the scale by the zoom factor.
func (m *PdfViewerManager) ZoomIn() {
	m.setScale(m.scale * pdfZoomFactor)
}

// ZoomOut divides the scale by the zoom factor, never below the minimum.
func (m *PdfViewerManager) ZoomOut() {
	next := m.scale / pdfZoomFactor
	if next < pdfMinScale {
		next = pdfMinScale
	}
	m.setScale(next)
}

// ResetZoom restores the default scale.
func (m *PdfViewerManager) ResetZoom() {
	m.setScale(pdfDefaultScale)
}

func (m *PdfViewerManager) setScale(scale float64) {
	if scale == m.scale {
		return
	}
	m.scale = scale
	m.logger.Debug("scale changed", "scale", scale)
	if m.OnScaleChanged != nil {
		m.OnScaleChanged(scale)
	}
}
