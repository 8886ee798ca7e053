/**
 * Modal Manager Tests
 */

package ui

import (
	"testing"
)

func TestShowConfirmButtonCallbacks(t *testing.T) {
	m := NewModalManager()

	var confirmed, cancelled bool
	modal := m.ShowConfirm("Usunięcie opinii", "Czy na pewno?",
		func() { confirmed = true },
		func() { cancelled = true })

	if !modal.Visible {
		t.Fatal("modal not visible")
	}
	if len(modal.Options.Buttons) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(modal.Options.Buttons))
	}

	if err := m.ClickButton(modal.ID, 1); err != nil {
		t.Fatalf("click failed: %v", err)
	}
	if !confirmed || cancelled {
		t.Errorf("confirmed=%v cancelled=%v", confirmed, cancelled)
	}

	// Auto-destroy removes the dialog once it is hidden.
	if _, ok := m.Get(modal.ID); ok {
		t.Error("auto-destroy modal survived its dismissal")
	}
}

func TestShowFragmentTextButtonOrder(t *testing.T) {
	m := NewModalManager()

	// Without an add handler only the close button exists.
	modal := m.ShowFragmentText("rozpoznany fragment", nil)
	if len(modal.Options.Buttons) != 1 || modal.Options.Buttons[0].Text != "Zamknij" {
		t.Fatalf("unexpected buttons: %+v", modal.Options.Buttons)
	}
	m.Destroy(modal.ID)

	var added bool
	modal = m.ShowFragmentText("rozpoznany fragment", func() { added = true })
	if len(modal.Options.Buttons) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(modal.Options.Buttons))
	}
	if modal.Options.Buttons[0].Text != "Dodaj do pełnego tekstu" {
		t.Errorf("add button must come first, got %q", modal.Options.Buttons[0].Text)
	}
	if err := m.ClickButton(modal.ID, 0); err != nil {
		t.Fatalf("click failed: %v", err)
	}
	if !added {
		t.Error("add handler not invoked")
	}
}

func TestShowNoteEditSavesCurrentBody(t *testing.T) {
	m := NewModalManager()

	var saved string
	modal := m.ShowNoteEdit("op-1", "stara notatka", true, func(note string) { saved = note })
	if modal.Options.Title != "Edycja notatki opinii" {
		t.Errorf("unexpected title: %q", modal.Options.Title)
	}

	// The user edits the note body before saving.
	m.UpdateBody(modal.ID, "nowa notatka")
	if err := m.ClickButton(modal.ID, 1); err != nil {
		t.Fatalf("click failed: %v", err)
	}
	if saved != "nowa notatka" {
		t.Errorf("saved %q", saved)
	}
}

func TestShowReusesRegisteredModal(t *testing.T) {
	m := NewModalManager()

	m.Create("x", ModalOptions{Title: "Pierwszy", Body: "a"})
	modal := m.Show("x", ModalOptions{Body: "b"})

	if modal.Options.Title != "Pierwszy" {
		t.Errorf("title lost on re-show: %q", modal.Options.Title)
	}
	if modal.Options.Body != "b" {
		t.Errorf("body not updated: %q", modal.Options.Body)
	}
}

func TestHideAndClickErrors(t *testing.T) {
	m := NewModalManager()
	modal := m.Create("y", ModalOptions{Buttons: []ModalButton{{Text: "Ok"}}})

	if err := m.ClickButton("missing", 0); err == nil {
		t.Error("expected error for unknown modal")
	}
	if err := m.ClickButton("y", 5); err == nil {
		t.Error("expected error for unknown button")
	}

	m.Show("y", ModalOptions{})
	m.Hide("y")
	if modal.Visible {
		t.Error("modal still visible after Hide")
	}
	if _, ok := m.Get("y"); !ok {
		t.Error("non-auto-destroy modal removed by Hide")
	}
}
