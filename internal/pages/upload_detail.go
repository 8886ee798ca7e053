/**
 * Upload detail controller
 *
 * After an upload the user lands on a waiting page while the batch OCR of
 * the opinion's documents runs. This controller polls the opinion OCR
 * status until every document is done, the attempt budget runs out or the
 * context ends, then sends the user back to the opinion.
 */

package pages

import (
	"context"
	"fmt"
	"time"

	"github.com/stachuman/opiniowanie-serwis/internal/api"
	"github.com/stachuman/opiniowanie-serwis/internal/errors"
	"github.com/stachuman/opiniowanie-serwis/internal/logging"
	"github.com/stachuman/opiniowanie-serwis/internal/ui"
)

const (
	defaultUploadPollInterval = 2 * time.Second
	defaultUploadMaxAttempts  = 300
	// every Nth consecutive failure surfaces a connection alert
	uploadErrorAlertEvery = 10
)

// UploadDetailConfig identifies the opinion whose batch OCR is watched.
type UploadDetailConfig struct {
	OpinionID string

	// PollInterval and MaxAttempts default to 2s and 300 when zero.
	PollInterval time.Duration
	MaxAttempts  int
}

// UploadDetailManager watches batch OCR progress after an upload.
type UploadDetailManager struct {
	cfg    UploadDetailConfig
	client *api.Client
	alerts *ui.AlertManager
	logger *logging.Logger

	// OnProgress receives every successful status poll.
	OnProgress func(status api.OpinionOcrStatus)
	// OnNavigateToOpinion sends the user back to the opinion view.
	OnNavigateToOpinion func(opinionID string)
}

// NewUploadDetailManager creates the controller.
func NewUploadDetailManager(cfg UploadDetailConfig, client *api.Client, alerts *ui.AlertManager) *UploadDetailManager {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultUploadPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultUploadMaxAttempts
	}
	return &UploadDetailManager{
		cfg:    cfg,
		client: client,
		alerts: alerts,
		logger: logging.NewLogger("UploadDetailManager"),
	}
}

// WatchOcrStatus polls until the batch finishes. When the attempt budget
// runs out the user is warned and sent to the opinion anyway, since the
// backend keeps processing regardless of the watcher.
func (m *UploadDetailManager) WatchOcrStatus(ctx context.Context) error {
	m.logger.Info("Watching opinion OCR status",
		"opinionId", m.cfg.OpinionID,
		"interval", m.cfg.PollInterval,
		"maxAttempts", m.cfg.MaxAttempts)

	consecutiveErrors := 0
	for attempt := 1; attempt <= m.cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.cfg.PollInterval):
		}

		status, err := m.client.GetOpinionOcrStatus(ctx, m.cfg.OpinionID)
		if err != nil {
			consecutiveErrors++
			m.logger.Warn("Opinion OCR status check failed",
				"opinionId", m.cfg.OpinionID,
				"attempt", attempt,
				"consecutiveErrors", consecutiveErrors,
				"error", err)
			if consecutiveErrors%uploadErrorAlertEvery == 0 {
				m.alerts.Warning("Problemy z połączeniem. Sprawdź status OCR ręcznie.")
			}
			continue
		}
		consecutiveErrors = 0

		if m.OnProgress != nil {
			m.OnProgress(*status)
		}

		if status.OcrDone {
			m.logger.Info("Opinion OCR finished",
				"opinionId", m.cfg.OpinionID,
				"completed", status.CompletedDocs,
				"total", status.TotalDocs)
			m.alerts.Success(fmt.Sprintf("OCR zakończony! Przetworzono %d/%d dokumentów.",
				status.CompletedDocs, status.TotalDocs))
			m.navigate()
			return nil
		}
	}

	m.logger.Warn("Opinion OCR watch gave up",
		"opinionId", m.cfg.OpinionID,
		"attempts", m.cfg.MaxAttempts)
	m.alerts.Warning("OCR trwa zbyt długo. Sprawdź status ręcznie w opinii.")
	m.navigate()
	return errors.NewPollTimeoutError(m.cfg.OpinionID, m.cfg.MaxAttempts, m.cfg.PollInterval)
}

func (m *UploadDetailManager) navigate() {
	if m.OnNavigateToOpinion != nil {
		m.OnNavigateToOpinion(m.cfg.OpinionID)
	}
}
