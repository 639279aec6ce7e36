// Package diagfmt renders diagnostics for terminals. Identifier columns
// are display columns: pictographic identifiers are double-width, so caret
// alignment goes through runewidth, never through byte counts.
package diagfmt

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"emojicode/internal/diag"
	"emojicode/internal/source"
)

// ColorMode selects colorization.
type ColorMode uint8

const (
	ColorAuto ColorMode = iota
	ColorOn
	ColorOff
)

// ParseColorMode maps the --color flag value.
func ParseColorMode(s string) ColorMode {
	switch s {
	case "on", "always":
		return ColorOn
	case "off", "never":
		return ColorOff
	default:
		return ColorAuto
	}
}

// Renderer writes human-readable diagnostics.
type Renderer struct {
	fileSet *source.FileSet
	colored bool

	errColor  *color.Color
	warnColor *color.Color
	infoColor *color.Color
}

// NewRenderer builds a renderer for the file set. In ColorAuto mode color
// is enabled when out is a terminal.
func NewRenderer(fileSet *source.FileSet, mode ColorMode, out *os.File) *Renderer {
	colored := false
	switch mode {
	case ColorOn:
		colored = true
	case ColorAuto:
		colored = out != nil && term.IsTerminal(int(out.Fd()))
	case ColorOff:
	}
	return &Renderer{
		fileSet:   fileSet,
		colored:   colored,
		errColor:  color.New(color.FgRed, color.Bold),
		warnColor: color.New(color.FgYellow, color.Bold),
		infoColor: color.New(color.FgCyan),
	}
}

// Render writes every diagnostic of the bag, sorted, followed by a
// summary line when there is at least one error or warning.
func (r *Renderer) Render(w io.Writer, bag *diag.Bag) {
	bag.Sort()
	errs, warns := 0, 0
	for _, d := range bag.Items() {
		r.renderOne(w, d)
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		case diag.SevInfo:
		}
	}
	if errs > 0 || warns > 0 {
		fmt.Fprintf(w, "%d error(s), %d warning(s)\n", errs, warns)
	}
}

func (r *Renderer) renderOne(w io.Writer, d diag.Diagnostic) {
	path, lc := r.fileSet.Position(d.Primary)
	fmt.Fprintf(w, "%s:%d:%d: %s [%s]: %s\n",
		path, lc.Line, lc.Col, r.severity(d.Severity), d.Code.ID(), d.Message)
	r.renderSnippet(w, d.Primary, lc)
	for _, note := range d.Notes {
		npath, nlc := r.fileSet.Position(note.Span)
		fmt.Fprintf(w, "  note: %s:%d:%d: %s\n", npath, nlc.Line, nlc.Col, note.Msg)
	}
}

// renderSnippet prints the offending line with a caret run underneath.
// The caret offset and width are computed from the display width of the
// bytes before and inside the span.
func (r *Renderer) renderSnippet(w io.Writer, sp source.Span, lc source.LineCol) {
	line := r.fileSet.LineContent(sp.File, lc.Line)
	if line == nil {
		return
	}
	fmt.Fprintf(w, "  %s\n", line)

	before := string(line[:min(int(lc.Col)-1, len(line))])
	pad := runewidth.StringWidth(before)

	spanLen := int(sp.Len())
	end := min(int(lc.Col)-1+spanLen, len(line))
	marked := string(line[min(int(lc.Col)-1, len(line)):end])
	width := max(runewidth.StringWidth(marked), 1)

	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", pad), strings.Repeat("^", width))
}

func (r *Renderer) severity(s diag.Severity) string {
	if !r.colored {
		return s.String()
	}
	switch s {
	case diag.SevError:
		return r.errColor.Sprint(s.String())
	case diag.SevWarning:
		return r.warnColor.Sprint(s.String())
	default:
		return r.infoColor.Sprint(s.String())
	}
}
