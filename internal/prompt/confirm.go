// Package prompt asks the operator questions. Library code depends on the
// Confirmer interface only; the CLI decides how questions are answered.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// ErrAborted is returned when the operator interrupts a question.
var ErrAborted = errors.New("prompt aborted")

// Confirmer answers yes/no questions and free-text questions.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
	Input(ctx context.Context, question, fallback string) (string, error)
}

// Static answers every question the same way. It never blocks.
type Static struct {
	Answer bool
	Text   string
}

// Confirm implements Confirmer.
func (s Static) Confirm(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.Answer, nil
}

// Input implements Confirmer. An empty Text yields fallback.
func (s Static) Input(ctx context.Context, _ string, fallback string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Text == "" {
		return fallback, nil
	}
	return s.Text, nil
}

// Recorder is a Static confirmer that remembers the questions it was asked.
type Recorder struct {
	Static

	mu        sync.Mutex
	Questions []string
}

// Confirm implements Confirmer.
func (r *Recorder) Confirm(ctx context.Context, question string) (bool, error) {
	r.mu.Lock()
	r.Questions = append(r.Questions, question)
	r.mu.Unlock()

	return r.Static.Confirm(ctx, question)
}

// Input implements Confirmer.
func (r *Recorder) Input(ctx context.Context, question, fallback string) (string, error) {
	r.mu.Lock()
	r.Questions = append(r.Questions, question)
	r.mu.Unlock()

	return r.Static.Input(ctx, question, fallback)
}

type lineResult struct {
	line string
	err  error
}

// LineConfirmer reads answers line by line. A yes/no answer is accepted when
// the line contains a "y". A line that arrives after a question was cancelled
// answers the next question.
type LineConfirmer struct {
	In  io.Reader
	Out io.Writer

	once    sync.Once
	reader  *bufio.Reader
	mu      sync.Mutex
	pending chan lineResult
}

// nextLine returns the channel of the read in flight, starting one if none is.
func (l *LineConfirmer) nextLine() chan lineResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending == nil {
		done := make(chan lineResult, 1)
		go func() {
			line, err := l.reader.ReadString('\n')
			done <- lineResult{line: line, err: err}
		}()
		l.pending = done
	}
	return l.pending
}

func (l *LineConfirmer) readLine(ctx context.Context, question string) (string, error) {
	l.once.Do(func() { l.reader = bufio.NewReader(l.In) })

	if l.Out != nil {
		fmt.Fprint(l.Out, question)
	}

	done := l.nextLine()

	select {
	case <-ctx.Done():
		return "", ErrAborted
	case r := <-done:
		l.mu.Lock()
		l.pending = nil
		l.mu.Unlock()
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return "", r.err
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}

// Confirm implements Confirmer.
func (l *LineConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	line, err := l.readLine(ctx, question+" (y/n) ")
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(line), "y"), nil
}

// Input implements Confirmer.
func (l *LineConfirmer) Input(ctx context.Context, question, fallback string) (string, error) {
	line, err := l.readLine(ctx, fmt.Sprintf("%s\n[Default: %s]\n", question, fallback))
	if err != nil {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return fallback, nil
	}
	return line, nil
}

// Terminal asks through interactive huh forms.
type Terminal struct{}

// Confirm implements Confirmer.
func (Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)

	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) || ctx.Err() != nil {
			return false, ErrAborted
		}
		return false, err
	}

	return ok, nil
}

// Input implements Confirmer.
func (Terminal) Input(ctx context.Context, question, fallback string) (string, error) {
	var answer string
	field := huh.NewInput().
		Title(question).
		Placeholder(fallback).
		Value(&answer)

	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) || ctx.Err() != nil {
			return "", ErrAborted
		}
		return "", err
	}

	if answer = strings.TrimSpace(answer); answer == "" {
		return fallback, nil
	}
	return answer, nil
}

// Default picks the interactive Terminal confirmer when stdin is a terminal
// and a LineConfirmer on stdin otherwise.
func Default() Confirmer {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return Terminal{}
	}
	return &LineConfirmer{In: os.Stdin, Out: os.Stderr}
}
