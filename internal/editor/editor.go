/**
 * OCR text editor
 *
 * Read-only display / editable draft lifecycle shared by the document and
 * viewer screens. Headless: the displayed text and the edit draft are plain
 * state, dirtiness is recomputed against the enter-edit snapshot, and
 * visual affordances (highlight, save button) are typed callbacks fired
 * only on the dirty flag's false→true / true→false edges.
 */

package editor

import (
	"context"
	"sync"
	"time"

	"github.com/stachuman/opiniowanie-serwis/internal/api"
	"github.com/stachuman/opiniowanie-serwis/internal/clipboard"
	"github.com/stachuman/opiniowanie-serwis/internal/logging"
	"github.com/stachuman/opiniowanie-serwis/internal/ui"
)

// TextPersister saves edited full text for a document. *api.Client
// implements it.
type TextPersister interface {
	UpdateOcrText(ctx context.Context, docID, textContent string) (*api.UpdateOcrTextResult, error)
}

// Config configures a TextEditor.
type Config struct {
	DocID        string
	AutoSave     bool
	SaveInterval time.Duration
	ReadOnly     bool
	Placeholder  string

	Client    TextPersister
	Alerts    *ui.AlertManager
	Clipboard *clipboard.Manager
}

// Callbacks notify the presentation layer. All are optional.
type Callbacks struct {
	OnDirtyChange    func(dirty bool)
	OnEditModeChange func(editing bool)
	OnTextUpdated    func(text string)
	OnSaved          func(text string, result *api.UpdateOcrTextResult)
}

// TextEditor toggles between viewing and editing, tracks dirtiness and
// persists changes.
type TextEditor struct {
	mu  sync.Mutex
	cfg Config
	cb  Callbacks

	isEditMode             bool
	displayText            string
	draft                  string
	originalText           string // last persisted/accepted display text
	originalTextBeforeEdit string // snapshot taken on entering edit mode
	textChanged            bool
	lastSaveTime           time.Time

	autoSaveStop chan struct{}
	logger       *logging.Logger
}

// NewTextEditor creates an editor; the auto-save timer starts immediately
// when configured and runs until Close.
func NewTextEditor(cfg Config, cb Callbacks) *TextEditor {
	if cfg.SaveInterval <= 0 {
		cfg.SaveInterval = 30 * time.Second
	}
	e := &TextEditor{
		cfg:    cfg,
		cb:     cb,
		logger: logging.NewLogger("TextEditor"),
	}
	if cfg.AutoSave && cfg.DocID != "" {
		e.autoSaveStop = make(chan struct{})
		go e.autoSaveLoop()
	}
	return e
}

func (e *TextEditor) autoSaveLoop() {
	ticker := time.NewTicker(e.cfg.SaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.autoSaveStop:
			return
		case <-ticker.C:
			e.mu.Lock()
			due := e.textChanged && !e.isEditMode
			e.mu.Unlock()
			if due {
				e.SaveChanges(context.Background(), true)
			}
		}
	}
}

// SetAutoSave starts or stops the auto-save timer at runtime. Enabling
// requires a document id; disabling is always allowed.
func (e *TextEditor) SetAutoSave(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if enabled {
		if e.autoSaveStop != nil || e.cfg.DocID == "" {
			return
		}
		e.autoSaveStop = make(chan struct{})
		go e.autoSaveLoop()
		e.logger.Info("auto-save enabled", "interval", e.cfg.SaveInterval)
		return
	}
	if e.autoSaveStop != nil {
		close(e.autoSaveStop)
		e.autoSaveStop = nil
		e.logger.Info("auto-save disabled")
	}
}

// AutoSaveEnabled reports whether the auto-save timer is running.
func (e *TextEditor) AutoSaveEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.autoSaveStop != nil
}

// Close cancels the auto-save timer. Safe to call more than once.
func (e *TextEditor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.autoSaveStop != nil {
		close(e.autoSaveStop)
		e.autoSaveStop = nil
	}
}

// ToggleEditMode flips between viewing and editing.
func (e *TextEditor) ToggleEditMode() {
	e.mu.Lock()
	editing := e.isEditMode
	e.mu.Unlock()
	if editing {
		e.ExitEditMode(false)
	} else {
		e.EnterEditMode()
	}
}

// EnterEditMode snapshots the displayed text and seeds the draft with it.
func (e *TextEditor) EnterEditMode() {
	e.mu.Lock()
	if e.cfg.ReadOnly || e.isEditMode {
		e.mu.Unlock()
		return
	}
	e.originalTextBeforeEdit = e.displayText
	e.draft = e.displayText
	e.isEditMode = true
	cb := e.cb.OnEditModeChange
	e.mu.Unlock()

	if cb != nil {
		cb(true)
	}
}

// ExitEditMode leaves edit mode; when apply is true the draft becomes the
// displayed text.
func (e *TextEditor) ExitEditMode(apply bool) {
	e.mu.Lock()
	if !e.isEditMode {
		e.mu.Unlock()
		return
	}
	notify := func() {}
	if apply {
		notify = e.setDisplayLocked(e.draft)
	}
	e.isEditMode = false
	cb := e.cb.OnEditModeChange
	e.mu.Unlock()

	notify()
	if cb != nil {
		cb(false)
	}
	e.recomputeDirty()
}

// CancelEdit restores the pre-edit snapshot and leaves edit mode.
func (e *TextEditor) CancelEdit() {
	e.mu.Lock()
	e.draft = e.originalTextBeforeEdit
	e.mu.Unlock()
	e.ExitEditMode(false)
}

// SetDraft records the live textarea content and recomputes the dirty flag
// by strict inequality against the enter-edit snapshot.
func (e *TextEditor) SetDraft(text string) {
	e.mu.Lock()
	if !e.isEditMode {
		e.mu.Unlock()
		return
	}
	e.draft = text
	dirty := text != e.originalTextBeforeEdit
	e.mu.Unlock()
	e.setDirty(dirty)
}

// SaveAndExit applies the draft to the display, exits edit mode and
// persists. On persist failure the display rolls back to its pre-save value
// so a half-saved state is never shown.
func (e *TextEditor) SaveAndExit(ctx context.Context) bool {
	e.mu.Lock()
	preSave := e.displayText
	e.mu.Unlock()

	e.ExitEditMode(true)

	ok, err := e.SaveChanges(ctx, false)
	if err != nil {
		e.mu.Lock()
		notify := e.setDisplayLocked(preSave)
		e.mu.Unlock()
		notify()
		e.recomputeDirty()
		return false
	}
	return ok
}

// SaveChanges persists the current text. When nothing changed and the call
// is not a silent auto-save, it reports "nothing to save" instead of
// issuing a duplicate write.
func (e *TextEditor) SaveChanges(ctx context.Context, silent bool) (bool, error) {
	e.mu.Lock()
	docID := e.cfg.DocID
	changed := e.textChanged
	current := e.currentTextLocked()
	e.mu.Unlock()

	if docID == "" {
		if !silent && e.cfg.Alerts != nil {
			e.cfg.Alerts.Warning("Brak ID dokumentu - nie można zapisać zmian")
		}
		return false, nil
	}

	if !changed {
		if !silent && e.cfg.Alerts != nil {
			e.cfg.Alerts.Info("Brak zmian do zapisania")
		}
		return false, nil
	}

	result, err := e.cfg.Client.UpdateOcrText(ctx, docID, current)
	if err != nil {
		e.logger.Warn("Save failed", "docId", docID, "error", err)
		if !silent && e.cfg.Alerts != nil {
			e.cfg.Alerts.Error("Błąd podczas zapisywania: " + err.Error())
		}
		return false, err
	}

	e.mu.Lock()
	e.originalText = current
	e.lastSaveTime = time.Now()
	e.mu.Unlock()
	e.setDirty(false)

	if !silent && e.cfg.Alerts != nil {
		e.cfg.Alerts.Success("Zmiany zostały zapisane")
	}
	if e.cb.OnSaved != nil {
		e.cb.OnSaved(current, result)
	}
	return true, nil
}

// CopyToClipboard copies the current text through the clipboard manager.
func (e *TextEditor) CopyToClipboard() error {
	e.mu.Lock()
	text := e.currentTextLocked()
	e.mu.Unlock()

	if err := e.cfg.Clipboard.CopyTextToClipboard(text); err != nil {
		if e.cfg.Alerts != nil {
			e.cfg.Alerts.Error("Nie udało się skopiować tekstu: " + err.Error())
		}
		return err
	}
	if e.cfg.Alerts != nil {
		e.cfg.Alerts.ShowCopySuccess()
	}
	return nil
}

// SetText replaces the displayed text from outside (sync, fragment append)
// and marks the editor clean against it.
func (e *TextEditor) SetText(text string) {
	e.mu.Lock()
	notify := e.setDisplayLocked(text)
	e.originalText = text
	if e.isEditMode {
		e.draft = text
	}
	e.mu.Unlock()
	notify()
	e.setDirty(false)
}

// GetText returns the draft while editing, the displayed text otherwise.
func (e *TextEditor) GetText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentTextLocked()
}

// DisplayText returns the read-only display content.
func (e *TextEditor) DisplayText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.displayText
}

// HasChanges reports the dirty flag.
func (e *TextEditor) HasChanges() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.textChanged
}

// IsEditMode reports whether the editor is in edit mode.
func (e *TextEditor) IsEditMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isEditMode
}

// LastSaveTime returns the time of the last successful save.
func (e *TextEditor) LastSaveTime() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSaveTime
}

// SetReadOnly toggles read-only mode, leaving edit mode when necessary.
func (e *TextEditor) SetReadOnly(readOnly bool) {
	e.mu.Lock()
	e.cfg.ReadOnly = readOnly
	editing := e.isEditMode
	e.mu.Unlock()
	if readOnly && editing {
		e.ExitEditMode(false)
	}
}

// Clear empties the display and draft.
func (e *TextEditor) Clear() {
	e.SetText("")
}

func (e *TextEditor) currentTextLocked() string {
	if e.isEditMode {
		return e.draft
	}
	return e.displayText
}

// setDisplayLocked updates the display text and returns the notification
// to run once the lock is released. The last-accepted text is untouched so
// an applied draft stays dirty until it is persisted.
func (e *TextEditor) setDisplayLocked(text string) func() {
	e.displayText = text
	if e.cb.OnTextUpdated == nil {
		return func() {}
	}
	cb := e.cb.OnTextUpdated
	return func() { cb(text) }
}

// recomputeDirty compares the display against the last accepted text.
func (e *TextEditor) recomputeDirty() {
	e.mu.Lock()
	dirty := e.displayText != e.originalText
	e.mu.Unlock()
	e.setDirty(dirty)
}

// setDirty fires OnDirtyChange only on an actual edge.
func (e *TextEditor) setDirty(dirty bool) {
	e.mu.Lock()
	if e.textChanged == dirty {
		e.mu.Unlock()
		return
	}
	e.textChanged = dirty
	cb := e.cb.OnDirtyChange
	e.mu.Unlock()

	if cb != nil {
		cb(dirty)
	}
}
