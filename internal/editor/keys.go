package editor

import "context"

// KeyEvent is a keyboard event routed to the editor. Name follows the DOM
// key values the views use ("Enter", "Escape", "e", "s").
type KeyEvent struct {
	Name             string
	Ctrl             bool
	Alt              bool
	FocusInTextInput bool // focus sits in an input/textarea other than ours
}

// HandleKey applies the keyboard contract: Ctrl+Enter saves and exits,
// Escape cancels, Ctrl+S saves in place, a bare "e" (outside text inputs)
// toggles edit mode. Returns true when the event was consumed.
func (e *TextEditor) HandleKey(ctx context.Context, ev KeyEvent) bool {
	if e.IsEditMode() {
		switch {
		case ev.Ctrl && ev.Name == "Enter":
			e.SaveAndExit(ctx)
			return true
		case ev.Name == "Escape":
			e.CancelEdit()
			return true
		case ev.Ctrl && ev.Name == "s":
			e.SaveChanges(ctx, false)
			return true
		}
		return false
	}

	if ev.Name == "e" && !ev.Ctrl && !ev.Alt && !ev.FocusInTextInput {
		e.ToggleEditMode()
		return true
	}
	return false
}
