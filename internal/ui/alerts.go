/**
 * Unified alert system
 *
 * Transient, auto-dismissing notifications. Headless: alerts live in a
 * registry and are pushed to subscribed listeners; presentation is the
 * caller's concern. Actions are typed links, never serialized markup.
 */

package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stachuman/opiniowanie-serwis/internal/logging"
)

// AlertType is the severity of a notification.
type AlertType string

const (
	AlertSuccess AlertType = "success"
	AlertError   AlertType = "danger"
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
)

// AlertAction is a navigation link attached to an alert.
type AlertAction struct {
	Text string
	URL  string
	Icon string
}

// Alert is a single notification.
type Alert struct {
	ID       string
	Type     AlertType
	Title    string
	Message  string
	Detail   string
	Icon     string
	Duration time.Duration
	Actions  []AlertAction
	ShownAt  time.Time
}

// AlertOptions tweaks a single alert.
type AlertOptions struct {
	Duration time.Duration // 0 = manager default, negative = sticky
	Title    string
	Icon     string
	Detail   string
	Actions  []AlertAction
}

// AlertListener receives every shown alert.
type AlertListener func(Alert)

// AlertManager renders transient notification banners.
type AlertManager struct {
	mu              sync.Mutex
	defaultDuration time.Duration
	active          map[string]*Alert
	timers          map[string]*time.Timer
	listeners       []AlertListener
	logger          *logging.Logger
}

// NewAlertManager creates an alert manager with the given auto-dismiss
// default.
func NewAlertManager(defaultDuration time.Duration) *AlertManager {
	if defaultDuration <= 0 {
		defaultDuration = 5 * time.Second
	}
	return &AlertManager{
		defaultDuration: defaultDuration,
		active:          make(map[string]*Alert),
		timers:          make(map[string]*time.Timer),
		logger:          logging.NewLogger("AlertManager"),
	}
}

// Subscribe registers a listener for every alert shown afterwards.
func (m *AlertManager) Subscribe(listener AlertListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, listener)
}

// Show displays an alert and schedules its auto-dismiss.
func (m *AlertManager) Show(message string, alertType AlertType, opts AlertOptions) *Alert {
	duration := opts.Duration
	if duration == 0 {
		duration = m.defaultDuration
	}

	alert := &Alert{
		ID:       uuid.NewString(),
		Type:     alertType,
		Title:    opts.Title,
		Message:  message,
		Detail:   opts.Detail,
		Icon:     opts.Icon,
		Duration: duration,
		Actions:  opts.Actions,
		ShownAt:  time.Now(),
	}
	if alert.Icon == "" {
		alert.Icon = defaultIcon(alertType)
	}

	m.mu.Lock()
	m.active[alert.ID] = alert
	if duration > 0 {
		id := alert.ID
		m.timers[id] = time.AfterFunc(duration, func() {
			m.Dismiss(id)
		})
	}
	listeners := append([]AlertListener(nil), m.listeners...)
	m.mu.Unlock()

	m.logger.Debug("Alert shown", "type", alertType, "message", message)
	for _, l := range listeners {
		l(*alert)
	}

	return alert
}

// Success shows a success alert.
func (m *AlertManager) Success(message string, opts ...AlertOptions) *Alert {
	return m.Show(message, AlertSuccess, first(opts))
}

// Error shows an error alert.
func (m *AlertManager) Error(message string, opts ...AlertOptions) *Alert {
	return m.Show(message, AlertError, first(opts))
}

// Warning shows a warning alert.
func (m *AlertManager) Warning(message string, opts ...AlertOptions) *Alert {
	return m.Show(message, AlertWarning, first(opts))
}

// Info shows an info alert.
func (m *AlertManager) Info(message string, opts ...AlertOptions) *Alert {
	return m.Show(message, AlertInfo, first(opts))
}

// ShowOcrSuccess shows the OCR-saved alert with return links. A document
// owned by an opinion links back to the opinion first.
func (m *AlertManager) ShowOcrSuccess(message, ocrDocID, docID, parentID string) *Alert {
	var actions []AlertAction
	switch {
	case parentID != "":
		actions = []AlertAction{
			{Text: "Powrót do opinii", URL: fmt.Sprintf("/opinion/%s?ocr_updated=true&ocr_doc_id=%s", parentID, ocrDocID), Icon: "arrow-left"},
			{Text: "Widok dokumentu", URL: fmt.Sprintf("/document/%s?ocr_updated=true&ocr_doc_id=%s", docID, ocrDocID), Icon: "file-earmark"},
		}
	case docID != "":
		actions = []AlertAction{
			{Text: "Widok dokumentu", URL: fmt.Sprintf("/document/%s?ocr_updated=true&ocr_doc_id=%s", docID, ocrDocID), Icon: "arrow-left"},
			{Text: "Lista dokumentów", URL: "/documents", Icon: "files"},
		}
	}

	return m.Show(message, AlertSuccess, AlertOptions{
		Duration: 10 * time.Second,
		Detail:   "Tekst został zapisany na serwerze i będzie dostępny po powrocie do widoku dokumentu.",
		Actions:  actions,
	})
}

// ShowSyncInfo shows the server-synchronization notice.
func (m *AlertManager) ShowSyncInfo() *Alert {
	return m.Show("Synchronizacja z serwerem", AlertInfo, AlertOptions{
		Duration: 4 * time.Second,
		Detail:   "Załadowano najnowszy tekst OCR z serwera.",
		Icon:     "cloud-check",
	})
}

// ShowCopySuccess shows the clipboard confirmation.
func (m *AlertManager) ShowCopySuccess() *Alert {
	return m.Show("Skopiowano do schowka!", AlertSuccess, AlertOptions{
		Duration: 3 * time.Second,
		Icon:     "check-circle",
	})
}

// Dismiss removes an alert and cancels its timer.
func (m *AlertManager) Dismiss(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[id]; ok {
		t.Stop()
		delete(m.timers, id)
	}
	delete(m.active, id)
}

// Active returns the currently visible alerts.
func (m *AlertManager) Active() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Alert, 0, len(m.active))
	for _, a := range m.active {
		out = append(out, *a)
	}
	return out
}

// ClearAll removes every active alert.
func (m *AlertManager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
	m.active = make(map[string]*Alert)
}

func defaultIcon(t AlertType) string {
	switch t {
	case AlertSuccess:
		return "check-circle"
	case AlertError, AlertWarning:
		return "exclamation-triangle"
	default:
		return "info-circle"
	}
}

func first(opts []AlertOptions) AlertOptions {
	if len(opts) > 0 {
		return opts[0]
	}
	return AlertOptions{}
}
