package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword reads without echo. Tests replace it.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func newPrompter() *prompter {
	return &prompter{r: bufio.NewReader(stdin), w: stdout}
}

// line reads one trimmed line. A final line without a newline is accepted.
func (p *prompter) line(label string) (string, error) {
	fmt.Fprintf(p.w, "%s: ", label)
	s, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && s != "" {
			return strings.TrimSpace(s), nil
		}
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(s), nil
}

func (p *prompter) password(label string) (string, error) {
	fmt.Fprintf(p.w, "%s: ", label)
	pw, err := readPassword()
	fmt.Fprintln(p.w)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(pw), nil
}
