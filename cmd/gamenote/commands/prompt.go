package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrNoChoice is returned when no search result was selected.
var ErrNoChoice = errors.New("no choice selected")

// prompter asks the user for input on a terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r any) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ask prints label and returns the trimmed answer.
func (p *prompter) ask(label string) (string, error) {
	if _, err := fmt.Fprint(p.out, label); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// choose lists options and returns the 0-based index of the selected one.
func (p *prompter) choose(options []string) (int, error) {
	for i, option := range options {
		if _, err := fmt.Fprintf(p.out, "%3d) %s\n", i+1, option); err != nil {
			return 0, err
		}
	}

	answer, err := p.ask("Select a game: ")
	if err != nil {
		return 0, err
	}
	if answer == "" {
		return 0, ErrNoChoice
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(options) {
		return 0, fmt.Errorf("%w: %q is not between 1 and %d", ErrNoChoice, answer, len(options))
	}
	return n - 1, nil
}
