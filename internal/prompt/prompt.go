// Package prompt reads the Quay token from the user, interactively with
// charmbracelet/huh when stdin is a terminal and from piped input otherwise.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrCanceled is returned when the user cancels a prompt.
var ErrCanceled = errors.New("canceled by user")

// ErrEmpty is returned when no secret was entered.
var ErrEmpty = errors.New("no value entered")

// Prompter abstracts user interaction for testability.
type Prompter interface {
	// Secret prompts for secret input (no echo).
	Secret(prompt string) (string, error)
}

// New returns a HuhPrompter when in is a terminal and a LinePrompter otherwise.
func New(in *os.File) Prompter {
	if term.IsTerminal(int(in.Fd())) {
		return &HuhPrompter{}
	}
	return &LinePrompter{In: in}
}

// HuhPrompter implements Prompter using charmbracelet/huh for interactive forms.
type HuhPrompter struct{}

// Secret prompts for secret input with masked display.
func (p *HuhPrompter) Secret(prompt string) (string, error) {
	var value string

	err := huh.NewInput().
		Title(prompt).
		EchoMode(huh.EchoModePassword).
		Value(&value).
		Run()

	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCanceled
		}
		return "", fmt.Errorf("secret prompt: %w", err)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrEmpty
	}
	return value, nil
}

// LinePrompter reads the first line of In, for piped or redirected input.
type LinePrompter struct {
	In io.Reader
}

// Secret returns the first line of input, trimmed. The prompt is ignored.
func (p *LinePrompter) Secret(_ string) (string, error) {
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read secret: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrEmpty
	}
	return line, nil
}
