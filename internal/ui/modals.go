/**
 * Modal dialogs
 *
 * Id-keyed registry of modal dialogs with typed button callbacks. Buttons
 * carry function values directly; nothing is serialized into markup. The
 * predefined modals (confirm, note edit, fragment text, quick preview)
 * mirror the dialogs the document and opinion views rely on.
 */

package ui

import (
	"context"
	"fmt"
	"sync"

	"github.com/stachuman/opiniowanie-serwis/internal/api"
	"github.com/stachuman/opiniowanie-serwis/internal/logging"
)

// ModalButton is a typed footer button.
type ModalButton struct {
	Text    string
	Style   string // "primary", "secondary", ...
	Icon    string
	Dismiss bool
	OnClick func()
}

// ModalOptions configures a modal dialog.
type ModalOptions struct {
	Title       string
	Body        string
	Size        string // "", "sm", "lg", "xl"
	Centered    bool
	Scrollable  bool
	AutoDestroy bool
	Buttons     []ModalButton
}

// Modal is one registered dialog.
type Modal struct {
	ID      string
	Options ModalOptions
	Visible bool
}

// ModalManager creates, shows and hides modal dialogs, tracked by id.
type ModalManager struct {
	mu     sync.Mutex
	modals map[string]*Modal
	logger *logging.Logger
}

// NewModalManager creates an empty modal registry.
func NewModalManager() *ModalManager {
	return &ModalManager{
		modals: make(map[string]*Modal),
		logger: logging.NewLogger("ModalManager"),
	}
}

// Create registers a new modal without showing it. An existing modal with
// the same id is replaced.
func (m *ModalManager) Create(id string, opts ModalOptions) *Modal {
	m.mu.Lock()
	defer m.mu.Unlock()
	modal := &Modal{ID: id, Options: opts}
	m.modals[id] = modal
	return modal
}

// Show displays an existing modal, creating it when missing. Non-empty
// title/body in opts update the stored modal.
func (m *ModalManager) Show(id string, opts ModalOptions) *Modal {
	m.mu.Lock()
	modal, ok := m.modals[id]
	if !ok {
		modal = &Modal{ID: id, Options: opts}
		m.modals[id] = modal
	} else {
		if opts.Title != "" {
			modal.Options.Title = opts.Title
		}
		if opts.Body != "" {
			modal.Options.Body = opts.Body
		}
		if len(opts.Buttons) > 0 {
			modal.Options.Buttons = opts.Buttons
		}
	}
	modal.Visible = true
	m.mu.Unlock()

	m.logger.Debug("Modal shown", "id", id)
	return modal
}

// Hide marks a modal invisible; auto-destroy modals are removed.
func (m *ModalManager) Hide(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	modal, ok := m.modals[id]
	if !ok {
		return
	}
	modal.Visible = false
	if modal.Options.AutoDestroy {
		delete(m.modals, id)
	}
}

// Destroy removes a modal from the registry.
func (m *ModalManager) Destroy(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.modals, id)
}

// Get returns a registered modal.
func (m *ModalManager) Get(id string) (*Modal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	modal, ok := m.modals[id]
	return modal, ok
}

// UpdateBody replaces a modal's body content.
func (m *ModalManager) UpdateBody(id, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if modal, ok := m.modals[id]; ok {
		modal.Options.Body = body
	}
}

// ClickButton invokes the handler of the index-th button of a modal and
// hides the modal when the button dismisses it.
func (m *ModalManager) ClickButton(id string, index int) error {
	m.mu.Lock()
	modal, ok := m.modals[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("modal %s not found", id)
	}
	if index < 0 || index >= len(modal.Options.Buttons) {
		m.mu.Unlock()
		return fmt.Errorf("modal %s has no button %d", id, index)
	}
	btn := modal.Options.Buttons[index]
	m.mu.Unlock()

	if btn.OnClick != nil {
		btn.OnClick()
	}
	if btn.Dismiss || btn.OnClick != nil {
		m.Hide(id)
	}
	return nil
}

// === PREDEFINED MODALS ===

// ShowConfirm displays a confirmation dialog with typed callbacks.
func (m *ModalManager) ShowConfirm(title, message string, onConfirm, onCancel func()) *Modal {
	id := "confirmModal_" + title
	return m.Show(id, ModalOptions{
		Title:       title,
		Body:        message,
		AutoDestroy: true,
		Buttons: []ModalButton{
			{Text: "Anuluj", Style: "secondary", Dismiss: true, OnClick: onCancel},
			{Text: "Potwierdź", Style: "primary", OnClick: onConfirm},
		},
	})
}

// ShowFragmentText displays recognized fragment text with an optional
// "add to full text" action.
func (m *ModalManager) ShowFragmentText(text string, onAddToFullText func()) *Modal {
	buttons := []ModalButton{
		{Text: "Zamknij", Style: "secondary", Dismiss: true},
	}
	if onAddToFullText != nil {
		buttons = append([]ModalButton{
			{Text: "Dodaj do pełnego tekstu", Style: "primary", Icon: "plus-circle", OnClick: onAddToFullText},
		}, buttons...)
	}

	return m.Show("fragmentTextModal", ModalOptions{
		Title:   "Rozpoznany tekst",
		Body:    text,
		Size:    "lg",
		Buttons: buttons,
	})
}

// ShowNoteEdit displays the note editing dialog; onSave receives the edited
// note.
func (m *ModalManager) ShowNoteEdit(id, currentNote string, isOpinion bool, onSave func(note string)) *Modal {
	title := "Edycja notatki dokumentu"
	if isOpinion {
		title = "Edycja notatki opinii"
	}
	return m.Show("noteEditModal", ModalOptions{
		Title: title,
		Body:  currentNote,
		Buttons: []ModalButton{
			{Text: "Anuluj", Style: "secondary", Dismiss: true},
			{Text: "Zapisz notatkę", Style: "primary", Icon: "save", OnClick: func() {
				if onSave != nil {
					mo, ok := m.Get("noteEditModal")
					if ok {
						onSave(mo.Options.Body)
					}
				}
			}},
		},
	})
}

// ShowDocumentPreview displays the quick-preview dialog and loads its body
// through the api client, swapping in an error body on failure.
func (m *ModalManager) ShowDocumentPreview(ctx context.Context, client *api.Client, docID, docName string) *Modal {
	id := "quickPreviewModal"
	modal := m.Show(id, ModalOptions{
		Title:      docName,
		Body:       "Wczytywanie podglądu...",
		Size:       "xl",
		Centered:   true,
		Scrollable: true,
		Buttons: []ModalButton{
			{Text: "Otwórz pełny podgląd", Style: "primary", Icon: "arrows-fullscreen"},
			{Text: "Zamknij", Style: "secondary", Dismiss: true},
		},
	})

	content, err := client.PreviewContent(ctx, docID)
	if err != nil {
		m.logger.Warn("Preview content load failed", "docId", docID, "error", err)
		m.UpdateBody(id, fmt.Sprintf("Błąd! Nie udało się załadować podglądu: %v", err))
		return modal
	}
	m.UpdateBody(id, content)
	return modal
}
