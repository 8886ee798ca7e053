/**
 * Document endpoints
 *
 * Notes, preview/download bytes and the LLM quick-summary endpoints,
 * including the streamed variant. A stream chunk prefixed with "BŁĄD:" or
 * "ERROR:" aborts the stream and surfaces as a structured error.
 */

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/stachuman/opiniowanie-serwis/internal/errors"
)

// NoteUpdateResult confirms persistence of a free-text note.
type NoteUpdateResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SummaryOptions configures a quick-summary request.
type SummaryOptions struct {
	Instruction string
	SaveToNote  bool
	NoteMode    string // "append" or "replace"
}

// SummaryResult is the non-streamed quick-summary response.
type SummaryResult struct {
	Success bool   `json:"success"`
	Summary string `json:"summary"`
	Error   string `json:"error,omitempty"`
}

// UpdateDocumentNote persists a note attached to a document.
func (c *Client) UpdateDocumentNote(ctx context.Context, docID, note string) (*NoteUpdateResult, error) {
	return c.updateNote(ctx, fmt.Sprintf("/document/%s/update-note", docID), docID, note)
}

// UpdateOpinionNote persists a note attached to an opinion.
func (c *Client) UpdateOpinionNote(ctx context.Context, opinionID, note string) (*NoteUpdateResult, error) {
	return c.updateNote(ctx, fmt.Sprintf("/opinion/%s/update-note", opinionID), opinionID, note)
}

func (c *Client) updateNote(ctx context.Context, path, id, note string) (*NoteUpdateResult, error) {
	fields := url.Values{}
	fields.Set("note", note)

	var result NoteUpdateResult
	if err := c.postForm(ctx, path, fields, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, errors.NewServerLogicError(id, result.Error)
	}
	return &result, nil
}

// Preview fetches the raw preview bytes for a document (PDF bytes, image
// bytes or rendered HTML depending on the document type).
func (c *Client) Preview(ctx context.Context, docID string) ([]byte, error) {
	body, err := c.Request(ctx, http.MethodGet, fmt.Sprintf("/document/%s/preview", docID), nil, "", nil)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// PreviewContent fetches the HTML preview fragment used by the quick-preview
// modal.
func (c *Client) PreviewContent(ctx context.Context, docID string) (string, error) {
	body, err := c.Request(ctx, http.MethodGet, fmt.Sprintf("/document/%s/preview-content", docID), nil, "", nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Download fetches the original document bytes.
func (c *Client) Download(ctx context.Context, docID string) ([]byte, error) {
	body, err := c.Request(ctx, http.MethodGet, fmt.Sprintf("/document/%s/download", docID), nil, "", nil)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// QuickSummarize requests an LLM summary in one response.
func (c *Client) QuickSummarize(ctx context.Context, docID string, opts SummaryOptions) (*SummaryResult, error) {
	var result SummaryResult
	if err := c.postForm(ctx, fmt.Sprintf("/document/%s/quick-summarize", docID), summaryFields(opts), &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, errors.NewServerLogicError(docID, result.Error)
	}
	return &result, nil
}

// QuickSummarizeStream requests an LLM summary as a chunked stream, invoking
// onChunk for every received piece. The accumulated text is returned once
// the stream ends cleanly.
func (c *Client) QuickSummarizeStream(ctx context.Context, docID string, opts SummaryOptions, onChunk func(chunk string)) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+fmt.Sprintf("/document/%s/quick-summarize/stream", docID),
		strings.NewReader(summaryFields(opts).Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewNetworkError(docID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.NewHTTPStatusError(docID, resp.StatusCode, string(body))
	}

	var full strings.Builder
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])

			if strings.HasPrefix(chunk, "BŁĄD:") || strings.HasPrefix(chunk, "ERROR:") {
				return "", errors.NewStreamError(docID, chunk)
			}

			full.WriteString(chunk)
			if onChunk != nil {
				onChunk(chunk)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", errors.NewNetworkError(docID, readErr)
		}
	}

	c.logger.Info("Summary stream complete", "docId", docID, "length", full.Len())
	return full.String(), nil
}

func summaryFields(opts SummaryOptions) url.Values {
	fields := url.Values{}
	if opts.Instruction != "" {
		fields.Set("custom_instruction", opts.Instruction)
	}
	fields.Set("save_to_note", strconv.FormatBool(opts.SaveToNote))
	noteMode := opts.NoteMode
	if noteMode == "" {
		noteMode = "append"
	}
	fields.Set("note_mode", noteMode)
	return fields
}
