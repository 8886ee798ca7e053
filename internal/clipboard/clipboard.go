/**
 * Clipboard manager
 *
 * Copies text to the system clipboard with graceful multi-strategy
 * fallback:
 * 1. native clipboard bindings (github.com/atotto/clipboard)
 * 2. an external clipboard tool (wl-copy, xclip, xsel, pbcopy)
 * 3. an OSC 52 escape sequence written to the attached terminal
 *
 * Empty or whitespace-only text is rejected before any strategy runs.
 * Success or failure is signaled through the error return only.
 */

package clipboard

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/stachuman/opiniowanie-serwis/internal/errors"
	"github.com/stachuman/opiniowanie-serwis/internal/logging"
)

// Copier is a single copy strategy.
type Copier interface {
	Name() string
	Copy(text string) error
}

// Manager tries its strategies in order until one succeeds.
type Manager struct {
	strategies []Copier
	logger     *logging.Logger
}

// NewManager builds a manager with the default strategy chain.
func NewManager() *Manager {
	return &Manager{
		strategies: []Copier{
			nativeCopier{},
			commandCopier{},
			osc52Copier{out: os.Stdout},
		},
		logger: logging.NewLogger("ClipboardManager"),
	}
}

// NewManagerWithStrategies builds a manager from explicit strategies.
func NewManagerWithStrategies(strategies ...Copier) *Manager {
	return &Manager{
		strategies: strategies,
		logger:     logging.NewLogger("ClipboardManager"),
	}
}

// CopyTextToClipboard copies text, falling back through the strategy chain.
func (m *Manager) CopyTextToClipboard(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.NewValidationError("Brak tekstu do skopiowania")
	}

	var lastErr error
	for _, s := range m.strategies {
		if err := s.Copy(text); err != nil {
			m.logger.Debug("Copy strategy failed", "strategy", s.Name(), "error", err)
			lastErr = err
			continue
		}
		m.logger.Debug("Text copied", "strategy", s.Name(), "length", len(text))
		return nil
	}

	return fmt.Errorf("nie udało się skopiować tekstu do schowka: %w", lastErr)
}

// nativeCopier uses the atotto/clipboard bindings.
type nativeCopier struct{}

func (nativeCopier) Name() string { return "native" }

func (nativeCopier) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("native clipboard unsupported on this platform")
	}
	return clipboard.WriteAll(text)
}

// commandCopier pipes the text into the first available clipboard tool.
type commandCopier struct{}

func (commandCopier) Name() string { return "command" }

func (commandCopier) Copy(text string) error {
	candidates := [][]string{
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
		{"pbcopy"},
	}

	for _, candidate := range candidates {
		path, err := exec.LookPath(candidate[0])
		if err != nil {
			continue
		}
		cmd := exec.Command(path, candidate[1:]...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s failed: %w", candidate[0], err)
		}
		return nil
	}

	return fmt.Errorf("no clipboard tool available")
}

// osc52Copier emits an OSC 52 sequence; terminals that support it place the
// payload on the host clipboard even over SSH.
type osc52Copier struct {
	out io.Writer
}

func (osc52Copier) Name() string { return "osc52" }

func (c osc52Copier) Copy(text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	_, err := fmt.Fprintf(c.out, "\x1b]52;c;%s\x07", encoded)
	return err
}
