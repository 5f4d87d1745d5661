// Package ux provides terminal output styling for the docmux CLI.
//
// A Printer carries its own styles; nothing here is shared mutable state.
// Colour is dropped automatically when the writer is not a terminal.
package ux

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Palette
const (
	ColorHeader  = lipgloss.Color("#AF87FF")
	ColorInfo    = lipgloss.Color("#5F87FF")
	ColorSuccess = lipgloss.Color("#5FD787")
	ColorWarning = lipgloss.Color("#FFD75F")
	ColorError   = lipgloss.Color("#FF5F5F")
	ColorMuted   = lipgloss.Color("#6C6C6C")
)

// Styles is a set of pre-configured lipgloss styles.
type Styles struct {
	Header  lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
}

// NewStyles builds styles bound to renderer.
func NewStyles(renderer *lipgloss.Renderer) Styles {
	return Styles{
		Header:  renderer.NewStyle().Foreground(ColorHeader).Bold(true),
		Info:    renderer.NewStyle().Foreground(ColorInfo),
		Success: renderer.NewStyle().Foreground(ColorSuccess).Bold(true),
		Warning: renderer.NewStyle().Foreground(ColorWarning),
		Error:   renderer.NewStyle().Foreground(ColorError).Bold(true),
		Muted:   renderer.NewStyle().Foreground(ColorMuted),
		Bold:    renderer.NewStyle().Bold(true),
	}
}

// Printer writes styled lines to an output stream.
type Printer struct {
	out    io.Writer
	styles Styles
}

// NewPrinter creates a printer for out. Colour is enabled only when out is a
// terminal.
func NewPrinter(out io.Writer) *Printer {
	renderer := lipgloss.NewRenderer(out)
	if !IsTerminal(out) {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &Printer{out: out, styles: NewStyles(renderer)}
}

// Stdout returns a printer for os.Stdout.
func Stdout() *Printer {
	return NewPrinter(os.Stdout)
}

// Stderr returns a printer for os.Stderr.
func Stderr() *Printer {
	return NewPrinter(os.Stderr)
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w interface{}) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Styles exposes the printer's styles.
func (p *Printer) Styles() Styles {
	return p.styles
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) line(style lipgloss.Style, format string, args ...interface{}) {
	fmt.Fprintln(p.out, style.Render(fmt.Sprintf(format, args...)))
}

// Header prints a header line.
func (p *Printer) Header(format string, args ...interface{}) {
	p.line(p.styles.Header, format, args...)
}

// Info prints an informational line.
func (p *Printer) Info(format string, args ...interface{}) {
	p.line(p.styles.Info, format, args...)
}

// Success prints a success line.
func (p *Printer) Success(format string, args ...interface{}) {
	p.line(p.styles.Success, format, args...)
}

// Warning prints a warning line.
func (p *Printer) Warning(format string, args ...interface{}) {
	p.line(p.styles.Warning, format, args...)
}

// Fail prints a diagnostic line.
func (p *Printer) Fail(format string, args ...interface{}) {
	p.line(p.styles.Error, format, args...)
}

// Plain prints an unstyled line.
func (p *Printer) Plain(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
