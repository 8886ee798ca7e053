/**
 * Document list controller
 *
 * Debounced filter auto-submit, auto-refresh while OCR jobs are running and
 * quick preview delegation.
 */

package pages

import (
	"context"
	"sync"
	"time"

	"github.com/stachuman/opiniowanie-serwis/internal/api"
	"github.com/stachuman/opiniowanie-serwis/internal/logging"
	"github.com/stachuman/opiniowanie-serwis/internal/ui"
)

// DocumentListManager drives the documents list view.
type DocumentListManager struct {
	client *api.Client
	alerts *ui.AlertManager
	modals *ui.ModalManager
	logger *logging.Logger

	filterDebounce *Debouncer

	mu                 sync.Mutex
	autoRefreshEnabled bool
	autoRefreshStop    chan struct{}

	// OnFilterSubmit applies the filter form.
	OnFilterSubmit func()
	// OnRefresh reloads the list.
	OnRefresh func()
}

// NewDocumentListManager creates the controller.
func NewDocumentListManager(client *api.Client, alerts *ui.AlertManager, modals *ui.ModalManager) *DocumentListManager {
	return &DocumentListManager{
		client:         client,
		alerts:         alerts,
		modals:         modals,
		logger:         logging.NewLogger("DocumentListManager"),
		filterDebounce: NewDebouncer(500 * time.Millisecond),
	}
}

// FilterChanged schedules a debounced filter submit; rapid changes coalesce
// into a single submit after the quiet period.
func (m *DocumentListManager) FilterChanged() {
	m.filterDebounce.Trigger(func() {
		if m.OnFilterSubmit != nil {
			m.OnFilterSubmit()
		}
	})
}

// EnableAutoRefresh starts periodic list refreshes while OCR jobs run.
// No-op when already enabled.
func (m *DocumentListManager) EnableAutoRefresh(interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	m.mu.Lock()
	if m.autoRefreshEnabled {
		m.mu.Unlock()
		return
	}
	m.autoRefreshEnabled = true
	stop := make(chan struct{})
	m.autoRefreshStop = stop
	m.mu.Unlock()

	m.logger.Info("Auto-refresh enabled", "interval", interval)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if m.OnRefresh != nil {
					m.OnRefresh()
				}
			}
		}
	}()
}

// DisableAutoRefresh stops the refresh loop. No-op when not running.
func (m *DocumentListManager) DisableAutoRefresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.autoRefreshEnabled {
		return
	}
	m.autoRefreshEnabled = false
	close(m.autoRefreshStop)
	m.autoRefreshStop = nil
}

// AutoRefreshEnabled reports the refresh loop state.
func (m *DocumentListManager) AutoRefreshEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.autoRefreshEnabled
}

// QuickPreview opens the quick-preview modal for a document.
func (m *DocumentListManager) QuickPreview(ctx context.Context, docID, docName string) {
	m.modals.ShowDocumentPreview(ctx, m.client, docID, docName)
}

// Close cancels timers. The controller must not be reused afterwards.
func (m *DocumentListManager) Close() {
	m.filterDebounce.Cancel()
	m.DisableAutoRefresh()
}
