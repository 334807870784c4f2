// Package output renders CLI results as styled text, markdown, or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// ParseMode maps a format string onto a Mode, defaulting to text.
func ParseMode(s string) Mode {
	switch strings.ToLower(s) {
	case "json":
		return ModeJSON
	case "md", "markdown":
		return ModeMarkdown
	default:
		return ModeText
	}
}

// Styles holds the lipgloss styles used across commands.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the standard style set.
func DefaultStyles() *Styles {
	return &Styles{
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer creates a renderer for the given writers and mode.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styles: DefaultStyles(),
	}
}

// Mode returns the renderer's output mode.
func (r *Renderer) Mode() Mode {
	return r.mode
}

// Styles returns the renderer's style set.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Println writes a plain line.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted output.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Success writes a success message.
func (r *Renderer) Success(s string) {
	if r.mode == ModeText {
		s = r.styles.Success.Render(s)
	}
	_, _ = fmt.Fprintln(r.out, s)
}

// Warning writes a warning message to the error stream.
func (r *Renderer) Warning(s string) {
	if r.mode == ModeText {
		s = r.styles.Warning.Render(s)
	}
	_, _ = fmt.Fprintln(r.errOut, s)
}

// Error writes an error message to the error stream.
func (r *Renderer) Error(s string) {
	if r.mode == ModeText {
		s = r.styles.Error.Render(s)
	}
	_, _ = fmt.Fprintln(r.errOut, s)
}

// StatusLine writes a name with a status marker and optional detail.
func (r *Renderer) StatusLine(name, status, detail string) {
	marker := status
	if r.mode == ModeText {
		switch status {
		case "success":
			marker = r.styles.Success.Render("ok")
		case "warning":
			marker = r.styles.Warning.Render("warn")
		case "error":
			marker = r.styles.Error.Render("fail")
		}
	}
	if detail != "" {
		_, _ = fmt.Fprintf(r.out, "  %s  %s (%s)\n", marker, name, detail)
		return
	}
	_, _ = fmt.Fprintf(r.out, "  %s  %s\n", marker, name)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table writes a header and rows as a table, in markdown form when the mode
// asks for it.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	if r.mode == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}
