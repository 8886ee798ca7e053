/**
 * Region selection and fragment OCR
 *
 * Pointer drags are tracked in canvas space, converted to a normalized
 * rectangle and sent to the selection endpoint. A recognized fragment is
 * surfaced in a modal; only after the user confirms "add to full text" does
 * it merge into the document's canonical text, get persisted, and replicate
 * to every cached page. A failed persist rolls the display back so the
 * cache and the server never diverge.
 */

package viewer

import (
	"context"
	"strings"

	"github.com/stachuman/opiniowanie-serwis/internal/api"
	"github.com/stachuman/opiniowanie-serwis/internal/selection"
)

// BeginSelection starts a pointer drag at client coordinates relative to
// the canvas origin.
func (v *OcrViewer) BeginSelection(clientX, clientY float64, m selection.CanvasMetrics) {
	pt := selection.CanvasPoint(v.cfg.DocType, clientX, clientY, m)
	v.mu.Lock()
	v.isSelecting = true
	v.startPt = pt
	v.endPt = pt
	v.mu.Unlock()
}

// UpdateSelection tracks the drag.
func (v *OcrViewer) UpdateSelection(clientX, clientY float64, m selection.CanvasMetrics) {
	pt := selection.CanvasPoint(v.cfg.DocType, clientX, clientY, m)
	v.mu.Lock()
	if !v.isSelecting {
		v.mu.Unlock()
		return
	}
	v.endPt = pt
	v.mu.Unlock()
}

// EndSelection finishes the drag. Selections under the pixel threshold are
// dropped silently; anything larger triggers fragment OCR.
func (v *OcrViewer) EndSelection(ctx context.Context, clientX, clientY float64, m selection.CanvasMetrics) {
	pt := selection.CanvasPoint(v.cfg.DocType, clientX, clientY, m)

	v.mu.Lock()
	if !v.isSelecting {
		v.mu.Unlock()
		return
	}
	v.isSelecting = false
	v.endPt = pt
	start, end := v.startPt, v.endPt
	v.mu.Unlock()

	rect, ok := selection.Compute(v.cfg.DocType, start, end, m)
	if !ok {
		v.HideSelection()
		return
	}

	v.PerformOcrSelection(ctx, rect)
}

// HideSelection drops any in-progress selection.
func (v *OcrViewer) HideSelection() {
	v.mu.Lock()
	v.isSelecting = false
	v.startPt = selection.Point{}
	v.endPt = selection.Point{}
	v.mu.Unlock()
}

// Selecting reports whether a drag is in progress.
func (v *OcrViewer) Selecting() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.isSelecting
}

// PerformOcrSelection runs OCR on a normalized region of the current page
// and shows the result. The cache is never written here; fragment text only
// enters it through AddToFullText after user confirmation.
func (v *OcrViewer) PerformOcrSelection(ctx context.Context, rect selection.Rect) {
	v.mu.Lock()
	page := v.currentPage
	v.mu.Unlock()

	result, err := v.deps.Client.OcrSelection(ctx, v.cfg.DocID, api.OcrSelectionRequest{
		Page:         page,
		X1:           rect.X1,
		Y1:           rect.Y1,
		X2:           rect.X2,
		Y2:           rect.Y2,
		SkipPdfEmbed: true,
	})
	if err != nil {
		v.showFragmentResult(ctx, "Błąd: "+err.Error(), false)
		return
	}

	v.showFragmentResult(ctx, result.Text, true)
}

func (v *OcrViewer) showFragmentResult(ctx context.Context, text string, allowAdd bool) {
	if v.deps.Modals == nil {
		return
	}
	var onAdd func()
	if allowAdd {
		fragment := text
		onAdd = func() { v.AddToFullText(ctx, fragment) }
	}
	v.deps.Modals.ShowFragmentText(text, onAdd)
}

// AddToFullText appends a recognized fragment to the canonical text,
// persists it and replicates the merged text to every page's cache entry.
// The display is updated first so the user sees the merge immediately; a
// failed persist rolls it back.
func (v *OcrViewer) AddToFullText(ctx context.Context, fragmentText string) error {
	currentFullText := v.DisplayedText()

	var newFullText string
	if strings.TrimSpace(currentFullText) != "" {
		newFullText = currentFullText + FragmentSeparator + fragmentText
	} else {
		newFullText = fragmentText
	}

	v.setDisplayText(newFullText)

	result, err := v.deps.Client.UpdateOcrText(ctx, v.cfg.DocID, newFullText)
	if err != nil {
		// Roll back; the cache was never touched.
		if strings.TrimSpace(currentFullText) != "" {
			v.setDisplayText(currentFullText)
		} else {
			v.setDisplay(Display{Kind: DisplayMessage, Text: NoOcrMessage})
		}
		if v.deps.Alerts != nil {
			v.deps.Alerts.Error("Nie udało się zapisać tekstu: " + err.Error())
		}
		return err
	}

	v.updateOcrCacheForAllPages(newFullText)

	if v.deps.Editor != nil {
		v.deps.Editor.SetText(newFullText)
	}
	if v.deps.Alerts != nil {
		v.deps.Alerts.ShowOcrSuccess("Fragment dodany i zapisany automatycznie",
			result.OcrDocID, v.cfg.DocID, v.cfg.ParentID)
	}
	return nil
}

// SaveCurrentText persists the displayed text as the document's canonical
// text (the save-changes button outside edit mode).
func (v *OcrViewer) SaveCurrentText(ctx context.Context) error {
	currentText := v.DisplayedText()

	result, err := v.deps.Client.UpdateOcrText(ctx, v.cfg.DocID, currentText)
	if err != nil {
		if v.deps.Alerts != nil {
			v.deps.Alerts.Error("Błąd podczas zapisywania: " + err.Error())
		}
		return err
	}

	if v.deps.Editor != nil {
		v.deps.Editor.SetText(currentText)
	}
	if v.deps.Alerts != nil {
		v.deps.Alerts.ShowOcrSuccess("Zmiany zostały zapisane",
			result.OcrDocID, v.cfg.DocID, v.cfg.ParentID)
	}
	return nil
}
