/**
 * Document Endpoint Tests
 *
 * Covers the note and summary endpoints:
 * - form field encoding for note updates and summaries
 * - streamed summaries accumulate chunks in order
 * - an error-prefixed chunk aborts the stream as a structured error
 */

package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stachuman/opiniowanie-serwis/internal/errors"
)

func TestUpdateDocumentNoteSendsForm(t *testing.T) {
	var gotNote, gotPath string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotNote = r.PostFormValue("note")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))

	if _, err := client.UpdateDocumentNote(context.Background(), "doc-7", "notatka testowa"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/document/doc-7/update-note" {
		t.Errorf("unexpected path: %q", gotPath)
	}
	if gotNote != "notatka testowa" {
		t.Errorf("unexpected note: %q", gotNote)
	}
}

func TestSummaryFieldsDefaults(t *testing.T) {
	fields := summaryFields(SummaryOptions{})
	if fields.Get("note_mode") != "append" {
		t.Errorf("default note mode must be append, got %q", fields.Get("note_mode"))
	}
	if fields.Get("save_to_note") != "false" {
		t.Errorf("unexpected save_to_note: %q", fields.Get("save_to_note"))
	}
	if _, ok := fields["custom_instruction"]; ok {
		t.Error("empty instruction must be omitted")
	}

	fields = summaryFields(SummaryOptions{Instruction: "krótko", SaveToNote: true, NoteMode: "replace"})
	if fields.Get("custom_instruction") != "krótko" || fields.Get("save_to_note") != "true" || fields.Get("note_mode") != "replace" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestQuickSummarizeStreamAccumulates(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, chunk := range []string{"Pierwsza część. ", "Druga część. ", "Koniec."} {
			w.Write([]byte(chunk))
			flusher.Flush()
		}
	}))

	var chunks []string
	full, err := client.QuickSummarizeStream(context.Background(), "doc-1", SummaryOptions{},
		func(chunk string) { chunks = append(chunks, chunk) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full != "Pierwsza część. Druga część. Koniec." {
		t.Errorf("unexpected accumulated text: %q", full)
	}
	if strings.Join(chunks, "") != full {
		t.Errorf("chunk callbacks diverge from the accumulated text: %v", chunks)
	}
}

func TestQuickSummarizeStreamAbortsOnErrorPrefix(t *testing.T) {
	testCases := []struct {
		name  string
		chunk string
	}{
		{"polish prefix", "BŁĄD: model niedostępny"},
		{"english prefix", "ERROR: model unavailable"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.chunk))
			}))

			_, err := client.QuickSummarizeStream(context.Background(), "doc-1", SummaryOptions{}, nil)
			if err == nil {
				t.Fatal("expected a stream error")
			}
			if errors.CodeOf(err) != errors.ErrorStreamFailed {
				t.Errorf("expected stream error code, got %v", errors.CodeOf(err))
			}
		})
	}
}

func TestQuickSummarizeStreamNonOKStatus(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusTooManyRequests)
	}))

	_, err := client.QuickSummarizeStream(context.Background(), "doc-1", SummaryOptions{}, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.CodeOf(err) != errors.ErrorHTTPStatus {
		t.Errorf("expected HTTP status error, got %v", errors.CodeOf(err))
	}
}

func TestUpdateOcrTextSendsTextContent(t *testing.T) {
	var gotText string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotText = r.PostFormValue("text_content")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"ocr_doc_id":"ocr-3"}`))
	}))

	result, err := client.UpdateOcrText(context.Background(), "doc-1", "nowa treść")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotText != "nowa treść" {
		t.Errorf("unexpected text: %q", gotText)
	}
	if result.OcrDocID != "ocr-3" {
		t.Errorf("unexpected ocr doc id: %q", result.OcrDocID)
	}
}
