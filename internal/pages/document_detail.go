/**
 * Document detail controller
 *
 * Run OCR, refresh the canonical text and monitor job progress for a single
 * document view.
 */

package pages

import (
	"context"
	"strings"
	"time"

	"github.com/stachuman/opiniowanie-serwis/internal/api"
	"github.com/stachuman/opiniowanie-serwis/internal/logging"
	"github.com/stachuman/opiniowanie-serwis/internal/ui"
)

// DocumentDetailConfig identifies the document and its OCR state.
type DocumentDetailConfig struct {
	DocID     string
	HasOcr    bool
	OcrDocID  string
	OcrStatus string
}

// DocumentDetailManager drives the document detail view.
type DocumentDetailManager struct {
	cfg    DocumentDetailConfig
	client *api.Client
	alerts *ui.AlertManager
	logger *logging.Logger

	// OnOcrTextRefreshed receives the refreshed canonical text.
	OnOcrTextRefreshed func(text string)
	// OnReloadRequested asks the host view to reload itself.
	OnReloadRequested func()
}

// NewDocumentDetailManager creates the controller.
func NewDocumentDetailManager(cfg DocumentDetailConfig, client *api.Client, alerts *ui.AlertManager) *DocumentDetailManager {
	return &DocumentDetailManager{
		cfg:    cfg,
		client: client,
		alerts: alerts,
		logger: logging.NewLogger("DocumentDetailManager"),
	}
}

// RunOcr triggers the OCR job. On failure the caller's button state must be
// restored, so the error is both alerted and returned.
func (m *DocumentDetailManager) RunOcr(ctx context.Context) error {
	if err := m.client.RunOcr(ctx, m.cfg.DocID); err != nil {
		m.logger.Error("Failed to start OCR", "docId", m.cfg.DocID, "error", err)
		m.alerts.Error("Nie udało się uruchomić OCR: " + err.Error())
		return err
	}

	m.alerts.Success("Proces OCR został uruchomiony")
	if m.OnReloadRequested != nil {
		m.OnReloadRequested()
	}
	return nil
}

// RefreshOcrText re-fetches the canonical text and pushes it to the view.
func (m *DocumentDetailManager) RefreshOcrText(ctx context.Context) error {
	result, err := m.client.GetOcrText(ctx, m.cfg.DocID)
	if err != nil {
		m.alerts.Error("Nie udało się odświeżyć tekstu OCR: " + err.Error())
		return err
	}

	if !result.Success || !result.HasOcr || strings.TrimSpace(result.Text) == "" {
		m.alerts.Warning("Brak tekstu OCR dla tego dokumentu")
		return nil
	}

	if m.OnOcrTextRefreshed != nil {
		m.OnOcrTextRefreshed(result.Text)
	}
	m.alerts.Success("Tekst OCR został odświeżony", ui.AlertOptions{Duration: 3 * time.Second})
	return nil
}

// MonitorOcrProgress polls the progress endpoint until the job leaves the
// running/pending states or the context ends. After an error the interval
// doubles for the next attempt, then returns to normal on success.
func (m *DocumentDetailManager) MonitorOcrProgress(ctx context.Context, interval time.Duration, onUpdate func(api.OcrProgress)) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	next := interval
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(next):
		}

		progress, err := m.client.GetOcrProgress(ctx, m.cfg.DocID)
		if err != nil {
			m.logger.Warn("OCR progress check failed", "docId", m.cfg.DocID, "error", err)
			next = interval * 2
			continue
		}
		next = interval

		if onUpdate != nil {
			onUpdate(*progress)
		}

		if progress.Status != "running" && progress.Status != "pending" {
			m.logger.Info("OCR monitoring finished", "docId", m.cfg.DocID, "status", progress.Status)
			return nil
		}
	}
}
