package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/stencil/lang"
)

// contextLines is the number of source lines shown before the failing one.
const contextLines = 1

// Diagnostic writes err to w. A [lang.SyntaxError] that carries its source
// is followed by the failing line and the line before it:
//
//	error: Unknown "uper" filter. Did you mean "upper" in "page" at line 2?
//	  1 | a ~
//	> 2 | b|uper
func Diagnostic(w io.Writer, err error) error {
	_, werr := io.WriteString(w, FormatDiagnostic(lipgloss.NewRenderer(w), err))

	return werr
}

// FormatDiagnostic returns the text [Diagnostic] writes, styled for r.
func FormatDiagnostic(r *lipgloss.Renderer, err error) string {
	var (
		label  = r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
		gutter = r.NewStyle().Foreground(lipgloss.Color("8"))
		marker = r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	)

	var sb strings.Builder

	sb.WriteString(label.Render("error:"))
	sb.WriteString(" ")
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	for _, l := range snippet(err) {
		mark := " "
		if l.failed {
			mark = marker.Render(">")
		}

		fmt.Fprintf(&sb, "%s %s %s\n",
			mark,
			gutter.Render(l.number+" |"),
			Highlight(r, DefaultStyle, l.text),
		)
	}

	return sb.String()
}

type line struct {
	number string
	text   string
	failed bool
}

// snippet returns the numbered source lines around a syntax error, or nil
// when err has no known location.
func snippet(err error) []line {
	var se *lang.SyntaxError
	if !errors.As(err, &se) || se.Line <= 0 || se.Source.Code == "" {
		return nil
	}

	src := strings.Split(se.Source.Code, "\n")
	if se.Line > len(src) {
		return nil
	}

	first := max(se.Line-contextLines, 1)
	width := len(strconv.Itoa(se.Line))

	out := make([]line, 0, se.Line-first+1)
	for n := first; n <= se.Line; n++ {
		out = append(out, line{
			number: fmt.Sprintf("%*d", width, n),
			text:   strings.TrimRight(src[n-1], "\r"),
			failed: n == se.Line,
		})
	}

	return out
}
