package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInterrupted is returned by Ask when the user interrupts a prompt.
var ErrInterrupted = errors.New("interrupted")

type line struct {
	text string
	err  error
}

// Prompter reads one line of input per question. Input is read by a
// background goroutine so a pending read never outlives an interrupted
// prompt; the line is kept for the next question instead.
type Prompter struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan line
}

// NewPrompter returns a Prompter reading from in and writing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, lines: make(chan line)}
}

func (p *Prompter) read() {
	defer close(p.lines)
	r := bufio.NewReader(p.in)
	for {
		s, err := r.ReadString('\n')
		if s != "" {
			p.lines <- line{text: s}
		}
		if err != nil {
			p.lines <- line{err: err}
			return
		}
	}
}

// Ask prints prompt and returns the next input line with surrounding
// whitespace removed. It returns ErrInterrupted when ctx is done and io.EOF
// once input is exhausted.
func (p *Prompter) Ask(ctx context.Context, prompt string) (string, error) {
	p.once.Do(func() { go p.read() })

	fmt.Fprint(p.out, prompt)
	if ctx.Err() != nil {
		fmt.Fprintln(p.out)
		return "", ErrInterrupted
	}
	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ErrInterrupted
	case l, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			fmt.Fprintln(p.out)
			if errors.Is(l.err, io.EOF) {
				return "", io.EOF
			}
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}
