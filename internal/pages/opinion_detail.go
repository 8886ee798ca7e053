/**
 * Opinion detail controller
 *
 * Note editing and LLM quick summaries for the documents of one opinion.
 * Summaries try the streamed endpoint first and fall back to the plain one;
 * the finished summary is rendered from markdown for the result panel.
 */

package pages

import (
	"bytes"
	"context"

	"github.com/yuin/goldmark"

	"github.com/stachuman/opiniowanie-serwis/internal/api"
	"github.com/stachuman/opiniowanie-serwis/internal/logging"
	"github.com/stachuman/opiniowanie-serwis/internal/ui"
)

// SummaryState is the phase of the summary panel.
type SummaryState string

const (
	SummaryIdle    SummaryState = "idle"
	SummaryLoading SummaryState = "loading"
	SummaryResult  SummaryState = "result"
	SummaryError   SummaryState = "error"
)

// OpinionDetailManager drives the opinion detail view.
type OpinionDetailManager struct {
	opinionID string
	client    *api.Client
	alerts    *ui.AlertManager
	modals    *ui.ModalManager
	logger    *logging.Logger
	markdown  goldmark.Markdown

	state SummaryState

	// OnSummaryStateChange reports panel phase transitions.
	OnSummaryStateChange func(state SummaryState)
	// OnLiveText receives the accumulated text during streaming.
	OnLiveText func(text string)
	// OnSummaryResult receives the finished summary as raw text and HTML.
	OnSummaryResult func(text, html string)
}

// NewOpinionDetailManager creates the controller.
func NewOpinionDetailManager(opinionID string, client *api.Client, alerts *ui.AlertManager, modals *ui.ModalManager) *OpinionDetailManager {
	return &OpinionDetailManager{
		opinionID: opinionID,
		client:    client,
		alerts:    alerts,
		modals:    modals,
		logger:    logging.NewLogger("OpinionDetailManager"),
		markdown:  goldmark.New(),
		state:     SummaryIdle,
	}
}

// SummaryStateNow returns the current panel phase.
func (m *OpinionDetailManager) SummaryStateNow() SummaryState {
	return m.state
}

// UpdateNote persists the opinion's note.
func (m *OpinionDetailManager) UpdateNote(ctx context.Context, note string) error {
	if _, err := m.client.UpdateOpinionNote(ctx, m.opinionID, note); err != nil {
		m.alerts.Error("Nie udało się zapisać notatki: " + err.Error())
		return err
	}
	m.alerts.Success("Notatka została zapisana")
	return nil
}

// UpdateDocumentNote persists a note on one of the opinion's documents.
func (m *OpinionDetailManager) UpdateDocumentNote(ctx context.Context, docID, note string) error {
	if _, err := m.client.UpdateDocumentNote(ctx, docID, note); err != nil {
		m.alerts.Error("Nie udało się zapisać notatki: " + err.Error())
		return err
	}
	m.alerts.Success("Notatka została zapisana")
	return nil
}

// GenerateQuickSummary produces an LLM summary for a document. The streamed
// endpoint is tried first; when it fails the plain endpoint takes over.
func (m *OpinionDetailManager) GenerateQuickSummary(ctx context.Context, docID string, opts api.SummaryOptions) error {
	m.setState(SummaryLoading)

	text, err := m.generateWithStreaming(ctx, docID, opts)
	if err != nil {
		m.logger.Warn("Streaming failed, falling back to plain request", "docId", docID, "error", err)
		text, err = m.generateTraditional(ctx, docID, opts)
	}

	if err != nil {
		m.logger.Error("Summary generation failed", "docId", docID, "error", err)
		m.setState(SummaryError)
		m.alerts.Error("Błąd generowania podsumowania: " + err.Error())
		return err
	}

	m.showResult(text)
	return nil
}

func (m *OpinionDetailManager) generateWithStreaming(ctx context.Context, docID string, opts api.SummaryOptions) (string, error) {
	var accumulated string
	return m.client.QuickSummarizeStream(ctx, docID, opts, func(chunk string) {
		accumulated += chunk
		if m.OnLiveText != nil {
			m.OnLiveText(accumulated)
		}
	})
}

func (m *OpinionDetailManager) generateTraditional(ctx context.Context, docID string, opts api.SummaryOptions) (string, error) {
	result, err := m.client.QuickSummarize(ctx, docID, opts)
	if err != nil {
		return "", err
	}
	return result.Summary, nil
}

func (m *OpinionDetailManager) showResult(text string) {
	html := m.renderMarkdown(text)
	m.setState(SummaryResult)
	if m.OnSummaryResult != nil {
		m.OnSummaryResult(text, html)
	}
}

// renderMarkdown converts the model's markdown output to HTML for the
// result panel; on conversion failure the raw text is used as-is.
func (m *OpinionDetailManager) renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := m.markdown.Convert([]byte(text), &buf); err != nil {
		m.logger.Warn("Markdown rendering failed", "error", err)
		return text
	}
	return buf.String()
}

func (m *OpinionDetailManager) setState(s SummaryState) {
	m.state = s
	if m.OnSummaryStateChange != nil {
		m.OnSummaryStateChange(s)
	}
}
