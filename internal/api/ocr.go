/**
 * OCR endpoints
 *
 * Progress polling, canonical text fetch, fragment selection OCR and text
 * persistence for a single document, plus the batch status endpoint for an
 * opinion's documents.
 */

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/stachuman/opiniowanie-serwis/internal/errors"
)

// OcrProgress reports the state of a running OCR job.
type OcrProgress struct {
	Status      string  `json:"status"` // "running", "pending", "done", "fail"
	Progress    float64 `json:"progress"`
	Info        string  `json:"info,omitempty"`
	CurrentPage int     `json:"current_page,omitempty"`
	TotalPages  int     `json:"total_pages,omitempty"`
}

// OcrTextResult is the canonical OCR text for a document.
type OcrTextResult struct {
	Success bool   `json:"success"`
	HasOcr  bool   `json:"has_ocr"`
	Text    string `json:"text"`
}

// OcrSelectionRequest describes a normalized region on one page.
type OcrSelectionRequest struct {
	Page         int     `json:"page"`
	X1           float64 `json:"x1"`
	Y1           float64 `json:"y1"`
	X2           float64 `json:"x2"`
	Y2           float64 `json:"y2"`
	SkipPdfEmbed bool    `json:"skip_pdf_embed"`
}

// OcrSelectionResult carries the recognized text for a region.
type OcrSelectionResult struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
}

// UpdateOcrTextResult confirms persistence of edited text.
type UpdateOcrTextResult struct {
	Success  bool   `json:"success"`
	OcrDocID string `json:"ocr_doc_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// OpinionOcrStatus reports batch OCR progress for an opinion's documents.
type OpinionOcrStatus struct {
	OcrDone         bool    `json:"ocr_done"`
	CompletedDocs   int     `json:"completed_docs"`
	TotalDocs       int     `json:"total_docs"`
	PendingDocs     int     `json:"pending_docs"`
	ProgressOverall float64 `json:"progress_overall"`
}

// GetOcrProgress polls the OCR job status for a document.
func (c *Client) GetOcrProgress(ctx context.Context, docID string) (*OcrProgress, error) {
	var progress OcrProgress
	if err := c.getJSON(ctx, fmt.Sprintf("/api/document/%s/ocr-progress", docID), &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// GetOcrText fetches the canonical OCR text for a document.
func (c *Client) GetOcrText(ctx context.Context, docID string) (*OcrTextResult, error) {
	var result OcrTextResult
	if err := c.getJSON(ctx, fmt.Sprintf("/api/document/%s/ocr-text", docID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// OcrSelection runs OCR over a normalized region of one page. A whole-page
// request uses the unit rectangle (0,0)-(1,1).
func (c *Client) OcrSelection(ctx context.Context, docID string, sel OcrSelectionRequest) (*OcrSelectionResult, error) {
	var result OcrSelectionResult
	if err := c.postJSON(ctx, fmt.Sprintf("/api/document/%s/ocr-selection", docID), sel, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, errors.NewServerLogicError(docID, result.Error)
	}
	return &result, nil
}

// UpdateOcrText persists the full edited text for a document.
func (c *Client) UpdateOcrText(ctx context.Context, docID, textContent string) (*UpdateOcrTextResult, error) {
	fields := url.Values{}
	fields.Set("text_content", textContent)

	var result UpdateOcrTextResult
	if err := c.postForm(ctx, fmt.Sprintf("/api/document/%s/update-ocr-text", docID), fields, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, errors.NewServerLogicError(docID, result.Error)
	}
	return &result, nil
}

// RunOcr triggers an OCR job for a document. The backend answers with a bare
// HTTP status.
func (c *Client) RunOcr(ctx context.Context, docID string) error {
	_, err := c.Request(ctx, http.MethodPost, fmt.Sprintf("/document/%s/run_ocr", docID),
		nil, "application/x-www-form-urlencoded", nil)
	return err
}

// GetOpinionOcrStatus polls batch OCR status across an opinion's documents.
func (c *Client) GetOpinionOcrStatus(ctx context.Context, opinionID string) (*OpinionOcrStatus, error) {
	var status OpinionOcrStatus
	if err := c.getJSON(ctx, fmt.Sprintf("/api/opinion/%s/ocr-status", opinionID), &status); err != nil {
		return nil, err
	}
	return &status, nil
}
