/**
 * Fragment OCR Tests
 *
 * Validates the selection-to-fragment flow:
 * - drags under the pixel threshold are dropped silently
 * - fragment append merges with the separator and replicates to every page
 * - a failed persist rolls the display back and never touches the cache
 */

package viewer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stachuman/opiniowanie-serwis/internal/api"
	"github.com/stachuman/opiniowanie-serwis/internal/selection"
	"github.com/stachuman/opiniowanie-serwis/internal/ui"
)

func testMetrics() selection.CanvasMetrics {
	return selection.CanvasMetrics{
		IntrinsicWidth:  1000,
		IntrinsicHeight: 1000,
		DisplayWidth:    1000,
		DisplayHeight:   1000,
	}
}

func TestEndSelectionBelowThresholdIsDropped(t *testing.T) {
	client := &fakeClient{}
	v := newTestViewer(client, 1, false)
	m := testMetrics()

	v.BeginSelection(100, 100, m)
	v.UpdateSelection(104, 103, m)
	v.EndSelection(context.Background(), 105, 104, m)

	if v.Selecting() {
		t.Error("selection still active after EndSelection")
	}
	if client.selCalls != 0 {
		t.Errorf("threshold reject must not call OCR, got %d calls", client.selCalls)
	}
}

func TestEndSelectionTriggersFragmentOcr(t *testing.T) {
	client := &fakeClient{
		selResult: &api.OcrSelectionResult{Success: true, Text: "fragment"},
	}
	v := newTestViewer(client, 1, false)
	v.deps.Modals = ui.NewModalManager()
	m := testMetrics()

	v.BeginSelection(100, 100, m)
	v.EndSelection(context.Background(), 400, 300, m)

	if client.selCalls != 1 {
		t.Fatalf("expected one OCR call, got %d", client.selCalls)
	}
	req := client.selRequests[0]
	if !req.SkipPdfEmbed {
		t.Error("fragment OCR must skip PDF embedding")
	}
	if req.X1 != 0.1 || req.Y1 != 0.1 || req.X2 != 0.4 || req.Y2 != 0.3 {
		t.Errorf("unexpected region: %+v", req)
	}
}

func TestAddToFullTextAppendsWithSeparator(t *testing.T) {
	client := &fakeClient{
		textResult:   &api.OcrTextResult{Success: true, HasOcr: true, Text: "istniejacy tekst"},
		updateResult: &api.UpdateOcrTextResult{Success: true, OcrDocID: "ocr-9"},
	}
	v := newTestViewer(client, 3, true)
	if err := v.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if err := v.AddToFullText(context.Background(), "nowy fragment"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	want := "istniejacy tekst" + FragmentSeparator + "nowy fragment"
	if len(client.updateTexts) != 1 || client.updateTexts[0] != want {
		t.Fatalf("persisted %q, want %q", client.updateTexts, want)
	}
	if v.DisplayedText() != want {
		t.Errorf("display mismatch: %q", v.DisplayedText())
	}
	for page := 1; page <= 3; page++ {
		if text, _ := v.CachedText(page); text != want {
			t.Errorf("page %d not updated: %q", page, text)
		}
	}
}

func TestAddToFullTextReplacesBlankDisplay(t *testing.T) {
	client := &fakeClient{
		updateResult: &api.UpdateOcrTextResult{Success: true},
	}
	v := newTestViewer(client, 1, false)
	if err := v.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if err := v.AddToFullText(context.Background(), "pierwszy fragment"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if len(client.updateTexts) != 1 || client.updateTexts[0] != "pierwszy fragment" {
		t.Fatalf("persisted %q, want bare fragment", client.updateTexts)
	}
	if v.DisplayedText() != "pierwszy fragment" {
		t.Errorf("display mismatch: %q", v.DisplayedText())
	}
}

func TestAddToFullTextRollsBackOnPersistFailure(t *testing.T) {
	client := &fakeClient{
		textResult: &api.OcrTextResult{Success: true, HasOcr: true, Text: "stary tekst"},
		updateErr:  fmt.Errorf("500 internal"),
	}
	v := newTestViewer(client, 2, true)
	if err := v.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if err := v.AddToFullText(context.Background(), "fragment"); err == nil {
		t.Fatal("expected persist failure")
	}

	if v.DisplayedText() != "stary tekst" {
		t.Errorf("display not rolled back: %q", v.DisplayedText())
	}
	for page := 1; page <= 2; page++ {
		if text, _ := v.CachedText(page); text != "stary tekst" {
			t.Errorf("page %d cache changed: %q", page, text)
		}
	}
}

func TestAddToFullTextRollbackToNoOcrMessage(t *testing.T) {
	client := &fakeClient{
		updateErr: fmt.Errorf("500 internal"),
	}
	v := newTestViewer(client, 1, false)
	if err := v.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if err := v.AddToFullText(context.Background(), "fragment"); err == nil {
		t.Fatal("expected persist failure")
	}

	d := v.Display()
	if d.Kind != DisplayMessage || d.Text != NoOcrMessage {
		t.Errorf("expected no-OCR message after rollback, got kind=%d text=%q", d.Kind, d.Text)
	}
}

func TestSaveCurrentTextPersistsDisplay(t *testing.T) {
	client := &fakeClient{
		textResult:   &api.OcrTextResult{Success: true, HasOcr: true, Text: "tekst dokumentu"},
		updateResult: &api.UpdateOcrTextResult{Success: true},
	}
	v := newTestViewer(client, 1, true)
	if err := v.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if err := v.SaveCurrentText(context.Background()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if len(client.updateTexts) != 1 || client.updateTexts[0] != "tekst dokumentu" {
		t.Errorf("persisted %q", client.updateTexts)
	}
}
