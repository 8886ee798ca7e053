/**
 * Opinions list controller
 *
 * Debounced filter auto-submit and delete confirmation for the opinions
 * overview.
 */

package pages

import (
	"time"

	"github.com/stachuman/opiniowanie-serwis/internal/logging"
	"github.com/stachuman/opiniowanie-serwis/internal/ui"
)

// OpinionsListManager drives the opinions list view.
type OpinionsListManager struct {
	alerts *ui.AlertManager
	modals *ui.ModalManager
	logger *logging.Logger

	filterDebounce *Debouncer

	// OnFilterSubmit applies the filter form.
	OnFilterSubmit func()
}

// NewOpinionsListManager creates the controller.
func NewOpinionsListManager(alerts *ui.AlertManager, modals *ui.ModalManager) *OpinionsListManager {
	return &OpinionsListManager{
		alerts:         alerts,
		modals:         modals,
		logger:         logging.NewLogger("OpinionsListManager"),
		filterDebounce: NewDebouncer(500 * time.Millisecond),
	}
}

// FilterChanged schedules a debounced filter submit.
func (m *OpinionsListManager) FilterChanged() {
	m.filterDebounce.Trigger(func() {
		if m.OnFilterSubmit != nil {
			m.OnFilterSubmit()
		}
	})
}

// ConfirmDelete asks before deleting an opinion; onConfirm runs only after
// the user accepts.
func (m *OpinionsListManager) ConfirmDelete(opinionTitle string, onConfirm func()) {
	m.modals.ShowConfirm(
		"Usunięcie opinii",
		"Czy na pewno chcesz usunąć opinię \""+opinionTitle+"\" wraz ze wszystkimi dokumentami?",
		onConfirm,
		nil,
	)
}

// Close cancels pending timers.
func (m *OpinionsListManager) Close() {
	m.filterDebounce.Cancel()
}
