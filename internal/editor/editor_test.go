/**
 * Text Editor Tests
 *
 * Validates the edit lifecycle:
 * - cancel restores the pre-edit snapshot
 * - save-and-exit rolls the display back when persistence fails
 * - an unchanged editor saves nothing and issues no duplicate write
 * - dirty notifications fire only on actual transitions
 */

package editor

import (
	"context"
	"fmt"
	"testing"

	"github.com/stachuman/opiniowanie-serwis/internal/api"
	"github.com/stachuman/opiniowanie-serwis/internal/ui"
)

// fakePersister scripts UpdateOcrText responses and records writes.
type fakePersister struct {
	err    error
	writes []string
}

func (f *fakePersister) UpdateOcrText(ctx context.Context, docID, textContent string) (*api.UpdateOcrTextResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.writes = append(f.writes, textContent)
	return &api.UpdateOcrTextResult{Success: true}, nil
}

func newTestEditor(p TextPersister, cb Callbacks) *TextEditor {
	return NewTextEditor(Config{
		DocID:  "doc-1",
		Client: p,
		Alerts: ui.NewAlertManager(0),
	}, cb)
}

func TestEnterEditModeSeedsDraft(t *testing.T) {
	e := newTestEditor(&fakePersister{}, Callbacks{})
	defer e.Close()

	e.SetText("oryginalny tekst")
	e.EnterEditMode()

	if !e.IsEditMode() {
		t.Fatal("not in edit mode")
	}
	if e.GetText() != "oryginalny tekst" {
		t.Errorf("draft not seeded: %q", e.GetText())
	}
}

func TestCancelRestoresSnapshot(t *testing.T) {
	var dirtyEvents []bool
	e := newTestEditor(&fakePersister{}, Callbacks{
		OnDirtyChange: func(d bool) { dirtyEvents = append(dirtyEvents, d) },
	})
	defer e.Close()

	e.SetText("oryginalny tekst")
	e.EnterEditMode()
	e.SetDraft("zmieniony tekst")

	if !e.HasChanges() {
		t.Fatal("expected dirty after draft change")
	}

	e.CancelEdit()

	if e.IsEditMode() {
		t.Error("still in edit mode")
	}
	if e.DisplayText() != "oryginalny tekst" {
		t.Errorf("display changed after cancel: %q", e.DisplayText())
	}
	if e.HasChanges() {
		t.Error("dirty flag survived cancel")
	}
	// true on first change, false on cancel.
	if len(dirtyEvents) != 2 || !dirtyEvents[0] || dirtyEvents[1] {
		t.Errorf("unexpected dirty transitions: %v", dirtyEvents)
	}
}

func TestSetDraftFiresDirtyOnlyOnEdges(t *testing.T) {
	var dirtyEvents []bool
	e := newTestEditor(&fakePersister{}, Callbacks{
		OnDirtyChange: func(d bool) { dirtyEvents = append(dirtyEvents, d) },
	})
	defer e.Close()

	e.SetText("abc")
	e.EnterEditMode()

	e.SetDraft("abcd")
	e.SetDraft("abcde")
	e.SetDraft("abcdef") // still dirty, no further events
	e.SetDraft("abc")    // back to the snapshot, clean again

	if len(dirtyEvents) != 2 || !dirtyEvents[0] || dirtyEvents[1] {
		t.Errorf("expected [true false], got %v", dirtyEvents)
	}
}

func TestSaveAndExitPersistsDraft(t *testing.T) {
	p := &fakePersister{}
	e := newTestEditor(p, Callbacks{})
	defer e.Close()

	e.SetText("stary")
	e.EnterEditMode()
	e.SetDraft("nowy")

	if !e.SaveAndExit(context.Background()) {
		t.Fatal("save reported failure")
	}
	if len(p.writes) != 1 || p.writes[0] != "nowy" {
		t.Fatalf("persisted %q", p.writes)
	}
	if e.DisplayText() != "nowy" {
		t.Errorf("display not applied: %q", e.DisplayText())
	}
	if e.HasChanges() {
		t.Error("dirty after successful save")
	}
	if e.IsEditMode() {
		t.Error("still in edit mode")
	}
}

func TestSaveAndExitRollsBackOnFailure(t *testing.T) {
	p := &fakePersister{err: fmt.Errorf("503 unavailable")}
	e := newTestEditor(p, Callbacks{})
	defer e.Close()

	e.SetText("stary")
	e.EnterEditMode()
	e.SetDraft("nowy")

	if e.SaveAndExit(context.Background()) {
		t.Fatal("save reported success despite persist failure")
	}
	if e.DisplayText() != "stary" {
		t.Errorf("display not rolled back: %q", e.DisplayText())
	}
	if e.IsEditMode() {
		t.Error("still in edit mode")
	}
	if e.HasChanges() {
		t.Error("dirty after rollback to last persisted text")
	}
}

func TestSaveChangesNothingToSave(t *testing.T) {
	p := &fakePersister{}
	e := newTestEditor(p, Callbacks{})
	defer e.Close()

	e.SetText("tekst")

	saved, err := e.SaveChanges(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved {
		t.Error("unchanged editor reported a save")
	}
	if len(p.writes) != 0 {
		t.Errorf("network write issued for unchanged text: %v", p.writes)
	}
}

func TestSaveChangesWithoutDocID(t *testing.T) {
	p := &fakePersister{}
	e := NewTextEditor(Config{Client: p, Alerts: ui.NewAlertManager(0)}, Callbacks{})
	defer e.Close()

	e.SetText("a")
	e.EnterEditMode()
	e.SetDraft("b")
	e.ExitEditMode(true)

	saved, err := e.SaveChanges(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved || len(p.writes) != 0 {
		t.Error("editor without a document ID must not persist")
	}
}

func TestSetTextMarksClean(t *testing.T) {
	e := newTestEditor(&fakePersister{}, Callbacks{})
	defer e.Close()

	e.SetText("a")
	e.EnterEditMode()
	e.SetDraft("b")
	e.ExitEditMode(true)

	if !e.HasChanges() {
		t.Fatal("applied draft should be dirty until persisted")
	}

	// External sync overrides local state and is clean by definition.
	e.SetText("tekst z serwera")
	if e.HasChanges() {
		t.Error("dirty after external SetText")
	}
	if e.DisplayText() != "tekst z serwera" {
		t.Errorf("display mismatch: %q", e.DisplayText())
	}
}

func TestReadOnlyBlocksEditMode(t *testing.T) {
	e := NewTextEditor(Config{
		DocID:    "doc-1",
		ReadOnly: true,
		Client:   &fakePersister{},
	}, Callbacks{})
	defer e.Close()

	e.EnterEditMode()
	if e.IsEditMode() {
		t.Error("read-only editor entered edit mode")
	}
}

func TestSetReadOnlyLeavesEditMode(t *testing.T) {
	e := newTestEditor(&fakePersister{}, Callbacks{})
	defer e.Close()

	e.SetText("tekst")
	e.EnterEditMode()
	e.SetReadOnly(true)

	if e.IsEditMode() {
		t.Error("edit mode survived SetReadOnly(true)")
	}
	e.EnterEditMode()
	if e.IsEditMode() {
		t.Error("read-only editor re-entered edit mode")
	}
}

func TestOnSavedCallback(t *testing.T) {
	var savedText string
	p := &fakePersister{}
	e := newTestEditor(p, Callbacks{
		OnSaved: func(text string, result *api.UpdateOcrTextResult) { savedText = text },
	})
	defer e.Close()

	e.SetText("a")
	e.EnterEditMode()
	e.SetDraft("b")
	if !e.SaveAndExit(context.Background()) {
		t.Fatal("save failed")
	}
	if savedText != "b" {
		t.Errorf("OnSaved got %q", savedText)
	}
}

func TestSetAutoSaveToggle(t *testing.T) {
	e := newTestEditor(&fakePersister{}, Callbacks{})
	defer e.Close()

	if e.AutoSaveEnabled() {
		t.Fatal("auto-save running without being enabled")
	}

	e.SetAutoSave(true)
	if !e.AutoSaveEnabled() {
		t.Fatal("auto-save not running after enable")
	}
	// Enabling twice must not leak a second loop.
	e.SetAutoSave(true)

	e.SetAutoSave(false)
	if e.AutoSaveEnabled() {
		t.Error("auto-save still running after disable")
	}
	e.SetAutoSave(false)
}

func TestSetAutoSaveRequiresDocID(t *testing.T) {
	e := NewTextEditor(Config{Client: &fakePersister{}, Alerts: ui.NewAlertManager(0)}, Callbacks{})
	defer e.Close()

	e.SetAutoSave(true)
	if e.AutoSaveEnabled() {
		t.Error("auto-save enabled without a document id")
	}
}
