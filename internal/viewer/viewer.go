/**
 * OCR viewer
 *
 * Unifies the PDF and image selection views: region selection, per-page
 * OCR text cache and full-document synchronization against the server's
 * canonical text.
 *
 * Cache policy: the backend stores one unsegmented text blob per document,
 * so a successful sync replicates that blob into every page slot in a
 * single assignment pass. Readers never observe a partially replicated
 * cache, and failed writes never touch it.
 *
 * Stale responses: page navigation is not queued or cancelled, so every
 * async load is tagged with a generation at issue time and a response for
 * an older generation is discarded instead of applied.
 */

package viewer

import (
	"context"
	"strings"
	"sync"

	"github.com/stachuman/opiniowanie-serwis/internal/api"
	"github.com/stachuman/opiniowanie-serwis/internal/editor"
	"github.com/stachuman/opiniowanie-serwis/internal/errors"
	"github.com/stachuman/opiniowanie-serwis/internal/logging"
	"github.com/stachuman/opiniowanie-serwis/internal/selection"
	"github.com/stachuman/opiniowanie-serwis/internal/ui"
)

// FragmentSeparator joins an appended fragment to the existing full text.
const FragmentSeparator = "\n\n--- Dodany fragment ---\n"

// NoOcrMessage is shown when the document has no full OCR yet.
const NoOcrMessage = "Brak pełnego OCR dla tego dokumentu. Zaznacz fragment tekstu na dokumencie, aby rozpoznać wybrany obszar."

// DisplayKind tells what the text panel currently shows.
type DisplayKind int

const (
	DisplayEmpty DisplayKind = iota
	DisplayText
	DisplayMessage
	DisplayLoading
	DisplayError
)

// Display is the state of the text panel.
type Display struct {
	Kind DisplayKind
	Text string
}

// PageSource supplies page count and per-page canvas metrics. The preview
// package provides implementations for PDF and image documents.
type PageSource interface {
	PageCount() int
	PageMetrics(num int) (selection.CanvasMetrics, error)
}

// OcrClient is the slice of the API client the viewer needs.
type OcrClient interface {
	GetOcrText(ctx context.Context, docID string) (*api.OcrTextResult, error)
	OcrSelection(ctx context.Context, docID string, sel api.OcrSelectionRequest) (*api.OcrSelectionResult, error)
	UpdateOcrText(ctx context.Context, docID, textContent string) (*api.UpdateOcrTextResult, error)
}

// Config identifies the document under the viewer.
type Config struct {
	DocID              string
	DocType            selection.DocType
	DocumentHasFullOcr bool
	ParentID           string
	Scale              float64
}

// Deps are the collaborating services, passed explicitly.
type Deps struct {
	Client OcrClient
	Pages  PageSource
	Alerts *ui.AlertManager
	Modals *ui.ModalManager
	Editor *editor.TextEditor // optional
}

// OcrViewer is one viewer instance over a single document.
type OcrViewer struct {
	mu   sync.Mutex
	cfg  Config
	deps Deps

	currentPage int
	totalPages  int
	scale       float64

	isSelecting bool
	startPt     selection.Point
	endPt       selection.Point

	ocrText            map[int]string
	currentFullPageOcr string

	display Display

	pageRendering  bool
	pageNumPending int // 0 = none; queue depth of 1, last write wins

	generation uint64

	logger *logging.Logger
}

// New creates a viewer. Call Init to load the first page.
func New(cfg Config, deps Deps) *OcrViewer {
	if cfg.Scale <= 0 {
		cfg.Scale = 1.5
	}
	return &OcrViewer{
		cfg:         cfg,
		deps:        deps,
		currentPage: 1,
		totalPages:  1,
		scale:       cfg.Scale,
		ocrText:     make(map[int]string),
		logger:      logging.NewLogger("OcrViewer"),
	}
}

// Init reads the page count and loads the first page.
func (v *OcrViewer) Init(ctx context.Context) error {
	total := v.deps.Pages.PageCount()
	if total < 1 {
		total = 1
	}
	v.mu.Lock()
	v.totalPages = total
	v.mu.Unlock()

	return v.RenderPage(ctx, 1)
}

// CurrentPage returns the page on display.
func (v *OcrViewer) CurrentPage() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentPage
}

// TotalPages returns the document's page count.
func (v *OcrViewer) TotalPages() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalPages
}

// Display returns the current text-panel state.
func (v *OcrViewer) Display() Display {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.display
}

// CachedText returns the cache entry for a page.
func (v *OcrViewer) CachedText(page int) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	text, ok := v.ocrText[page]
	return text, ok
}

// FullPageOcr returns the current canonical text, when known.
func (v *OcrViewer) FullPageOcr() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentFullPageOcr
}

// === PAGE NAVIGATION ===

// RenderPage displays a page and loads its OCR text. While a render is in
// flight further requests coalesce into a single pending page number; the
// latest request wins.
func (v *OcrViewer) RenderPage(ctx context.Context, num int) error {
	v.mu.Lock()
	if num < 1 || num > v.totalPages {
		v.mu.Unlock()
		return errors.NewValidationError("page out of range")
	}
	if v.pageRendering {
		v.pageNumPending = num
		v.mu.Unlock()
		return nil
	}
	v.pageRendering = true
	v.generation++
	gen := v.generation
	v.mu.Unlock()

	_, err := v.deps.Pages.PageMetrics(num)

	v.mu.Lock()
	v.pageRendering = false
	v.currentPage = num
	pending := v.pageNumPending
	v.pageNumPending = 0
	v.mu.Unlock()

	if err != nil {
		v.logger.Error("Error rendering page", "page", num, "error", err)
		return err
	}

	if pending != 0 && pending != num {
		return v.RenderPage(ctx, pending)
	}

	return v.loadPageOcr(ctx, num, gen)
}

// PrevPage navigates to the previous page.
func (v *OcrViewer) PrevPage(ctx context.Context) error {
	v.mu.Lock()
	if v.currentPage <= 1 {
		v.mu.Unlock()
		return nil
	}
	target := v.currentPage - 1
	v.mu.Unlock()

	v.HideSelection()
	return v.RenderPage(ctx, target)
}

// NextPage navigates to the next page.
func (v *OcrViewer) NextPage(ctx context.Context) error {
	v.mu.Lock()
	if v.currentPage >= v.totalPages {
		v.mu.Unlock()
		return nil
	}
	target := v.currentPage + 1
	v.mu.Unlock()

	v.HideSelection()
	return v.RenderPage(ctx, target)
}

// LoadPageOcr loads the OCR text for a page outside of navigation
// (image views call this directly after the image is ready).
func (v *OcrViewer) LoadPageOcr(ctx context.Context, page int) error {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.mu.Unlock()
	return v.loadPageOcr(ctx, page, gen)
}

func (v *OcrViewer) loadPageOcr(ctx context.Context, page int, gen uint64) error {
	v.mu.Lock()
	cached, hit := v.ocrText[page]
	fullKnown := v.currentFullPageOcr != ""
	hasFullOcr := v.cfg.DocumentHasFullOcr
	v.mu.Unlock()

	// Cache hit short-circuits to direct display.
	if hit && fullKnown {
		v.setDisplayText(cached)
		return nil
	}

	// No full OCR on the document: initial message, no network call.
	if !hasFullOcr {
		v.setDisplay(Display{Kind: DisplayMessage, Text: NoOcrMessage})
		return nil
	}

	v.setDisplay(Display{Kind: DisplayLoading, Text: "Ładowanie..."})

	synced, err := v.syncWithServer(ctx, gen)
	if err != nil {
		v.setDisplay(Display{Kind: DisplayError, Text: "Nie udało się załadować tekstu OCR"})
		return err
	}
	if !synced {
		return v.performFullPageOcr(ctx, page, gen)
	}
	return nil
}

// === SYNCHRONIZATION ===

// syncWithServer fetches the canonical text. Blank or whitespace-only text
// counts as "no OCR" and falls through to the full-page fallback.
func (v *OcrViewer) syncWithServer(ctx context.Context, gen uint64) (bool, error) {
	result, err := v.deps.Client.GetOcrText(ctx, v.cfg.DocID)
	if err != nil {
		v.logger.Warn("Server sync failed", "docId", v.cfg.DocID, "error", err)
		return false, nil
	}

	if !result.Success || !result.HasOcr || strings.TrimSpace(result.Text) == "" {
		return false, nil
	}

	if v.isStale(gen) {
		v.logger.Debug("Discarding stale sync response", "docId", v.cfg.DocID)
		return true, nil
	}

	v.updateOcrCacheForAllPages(result.Text)
	v.setDisplayText(result.Text)

	if v.deps.Editor != nil {
		v.deps.Editor.SetText(result.Text)
	}
	if v.deps.Alerts != nil {
		v.deps.Alerts.ShowSyncInfo()
	}
	return true, nil
}

// performFullPageOcr computes OCR for one page via a whole-page selection
// and caches only that page.
func (v *OcrViewer) performFullPageOcr(ctx context.Context, page int, gen uint64) error {
	result, err := v.deps.Client.OcrSelection(ctx, v.cfg.DocID, api.OcrSelectionRequest{
		Page: page,
		X1:   selection.WholePage.X1,
		Y1:   selection.WholePage.Y1,
		X2:   selection.WholePage.X2,
		Y2:   selection.WholePage.Y2,
	})
	if err != nil {
		v.setDisplay(Display{Kind: DisplayError, Text: "Nie udało się pobrać tekstu OCR: " + err.Error()})
		return err
	}

	if v.isStale(gen) {
		v.logger.Debug("Discarding stale full-page OCR response", "docId", v.cfg.DocID, "page", page)
		return nil
	}

	v.mu.Lock()
	v.ocrText[page] = result.Text
	v.currentFullPageOcr = result.Text
	v.mu.Unlock()

	v.setDisplayText(result.Text)
	return nil
}

// updateOcrCacheForAllPages replaces the whole cache with the same text for
// every page in one assignment, keeping pages consistent with each other.
func (v *OcrViewer) updateOcrCacheForAllPages(text string) {
	v.mu.Lock()
	fresh := make(map[int]string, v.totalPages)
	for i := 1; i <= v.totalPages; i++ {
		fresh[i] = text
	}
	v.ocrText = fresh
	v.currentFullPageOcr = text
	pages := v.totalPages
	v.mu.Unlock()

	v.logger.Info("OCR cache updated", "pages", pages)
}

func (v *OcrViewer) isStale(gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return gen != v.generation
}

// === DISPLAY ===

func (v *OcrViewer) setDisplayText(text string) {
	v.setDisplay(Display{Kind: DisplayText, Text: text})
}

func (v *OcrViewer) setDisplay(d Display) {
	v.mu.Lock()
	v.display = d
	v.mu.Unlock()
}

// DisplayedText returns the panel text when real text is shown, empty
// otherwise.
func (v *OcrViewer) DisplayedText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.display.Kind == DisplayText {
		return v.display.Text
	}
	return ""
}

// Refresh re-renders the current page (PDF) or reloads the first page's
// OCR (image).
func (v *OcrViewer) Refresh(ctx context.Context) error {
	if v.cfg.DocType == selection.DocTypePDF {
		return v.RenderPage(ctx, v.CurrentPage())
	}
	return v.LoadPageOcr(ctx, 1)
}

// Close clears viewer state. The instance must not be reused afterwards.
func (v *OcrViewer) Close() {
	v.HideSelection()
	v.mu.Lock()
	v.ocrText = make(map[int]string)
	v.currentFullPageOcr = ""
	v.display = Display{}
	v.mu.Unlock()
}
