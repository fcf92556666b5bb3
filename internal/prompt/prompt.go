// Package prompt asks yes/no questions on an interactive terminal.
package prompt

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/conn-castle/nodeswitch/internal/messages"
	"github.com/conn-castle/nodeswitch/internal/terminal"
)

// ErrNotInteractive is returned when a confirmation is requested without a terminal.
var ErrNotInteractive = errors.New(messages.PromptRequiresTerminal)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(title string) (bool, error)
}

// HuhConfirmer renders confirmations with charmbracelet/huh.
type HuhConfirmer struct {
	isTerminal func() bool
	output     io.Writer
}

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// NewHuhConfirmer returns a confirmer that draws on stderr.
func NewHuhConfirmer() *HuhConfirmer {
	return &HuhConfirmer{isTerminal: terminal.IsInteractive, output: os.Stderr}
}

// Confirm shows title and returns the answer. Esc and Ctrl+C count as no.
func (c *HuhConfirmer) Confirm(title string) (bool, error) {
	checker := c.isTerminal
	if checker == nil {
		checker = terminal.IsInteractive
	}
	if !checker() {
		return false, ErrNotInteractive
	}
	output := c.output
	if output == nil {
		output = os.Stderr
	}

	answer := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(messages.PromptAffirmative).
				Negative(messages.PromptNegative).
				Value(&answer),
		),
	)
	form.WithKeyMap(keyMap())
	form.WithProgramOptions(tea.WithOutput(output))

	err := runFormFunc(form)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return answer, nil
}

// keyMap aborts the form on Esc as well as Ctrl+C.
func keyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"))
	return km
}
