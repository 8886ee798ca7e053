/**
 * Clipboard Manager Tests
 */

package clipboard

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stachuman/opiniowanie-serwis/internal/errors"
)

// fakeCopier scripts one strategy in the chain.
type fakeCopier struct {
	name   string
	err    error
	copied []string
}

func (f *fakeCopier) Name() string { return f.name }

func (f *fakeCopier) Copy(text string) error {
	if f.err != nil {
		return f.err
	}
	f.copied = append(f.copied, text)
	return nil
}

func TestRejectsBlankText(t *testing.T) {
	first := &fakeCopier{name: "first"}
	m := NewManagerWithStrategies(first)

	testCases := []string{"", "   ", "\n\t "}
	for _, text := range testCases {
		err := m.CopyTextToClipboard(text)
		if err == nil {
			t.Errorf("blank text %q accepted", text)
			continue
		}
		if errors.CodeOf(err) != errors.ErrorValidation {
			t.Errorf("expected validation error, got %v", err)
		}
	}
	if len(first.copied) != 0 {
		t.Error("strategy ran for blank text")
	}
}

func TestFirstStrategyWins(t *testing.T) {
	first := &fakeCopier{name: "first"}
	second := &fakeCopier{name: "second"}
	m := NewManagerWithStrategies(first, second)

	if err := m.CopyTextToClipboard("tekst"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.copied) != 1 || first.copied[0] != "tekst" {
		t.Errorf("first strategy: %v", first.copied)
	}
	if len(second.copied) != 0 {
		t.Error("later strategy ran after a success")
	}
}

func TestFallsBackThroughChain(t *testing.T) {
	first := &fakeCopier{name: "first", err: fmt.Errorf("unsupported")}
	second := &fakeCopier{name: "second", err: fmt.Errorf("no tool")}
	third := &fakeCopier{name: "third"}
	m := NewManagerWithStrategies(first, second, third)

	if err := m.CopyTextToClipboard("tekst"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(third.copied) != 1 {
		t.Error("fallback strategy not reached")
	}
}

func TestAllStrategiesFail(t *testing.T) {
	first := &fakeCopier{name: "first", err: fmt.Errorf("unsupported")}
	second := &fakeCopier{name: "second", err: fmt.Errorf("no tool")}
	m := NewManagerWithStrategies(first, second)

	err := m.CopyTextToClipboard("tekst")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "no tool") {
		t.Errorf("last strategy error not wrapped: %v", err)
	}
}

func TestOsc52Sequence(t *testing.T) {
	var buf bytes.Buffer
	c := osc52Copier{out: &buf}

	if err := c.Copy("ala ma kota"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte("ala ma kota")) + "\x07"
	if buf.String() != want {
		t.Errorf("unexpected sequence: %q", buf.String())
	}
}
