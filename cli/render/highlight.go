package render

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// DefaultStyle is the chroma style used by [Highlight].
const DefaultStyle = "monokai"

// The Twig lexer only highlights inside a print tag, so expressions are
// tokenized between these delimiters and clipped back out.
const (
	tagOpen  = "{{ "
	tagClose = " }}"
)

//nolint:gochecknoglobals
var twig = sync.OnceValue(func() chroma.Lexer {
	l := lexers.Get("twig")
	if l == nil {
		l = lexers.Fallback
	}

	return chroma.Coalesce(l)
})

// Tokens splits a single-line expression into highlighting tokens. The
// token values always concatenate to code.
func Tokens(code string) []chroma.Token {
	plain := []chroma.Token{{Type: chroma.Text, Value: code}}

	if code == "" {
		return nil
	}

	it, err := twig().Tokenise(nil, tagOpen+code+tagClose)
	if err != nil {
		return plain
	}

	var (
		out    []chroma.Token
		sb     strings.Builder
		pos    int
		lo, hi = len(tagOpen), len(tagOpen) + len(code)
	)

	for _, t := range it.Tokens() {
		start, end := pos, pos+len(t.Value)
		pos = end

		s, e := max(start, lo), min(end, hi)
		if s >= e {
			continue
		}

		v := t.Value[s-start : e-start]
		sb.WriteString(v)
		out = append(out, chroma.Token{Type: t.Type, Value: v})
	}

	if sb.String() != code {
		return plain
	}

	return out
}

// Highlight colors a single-line expression with the named chroma style.
func Highlight(r *lipgloss.Renderer, style, code string) string {
	cs := styles.Get(style)

	var sb strings.Builder

	for _, t := range Tokens(code) {
		entry := cs.Get(t.Type)
		if !entry.Colour.IsSet() || strings.TrimSpace(t.Value) == "" {
			sb.WriteString(t.Value)

			continue
		}

		s := r.NewStyle().
			Foreground(lipgloss.Color(entry.Colour.String())).
			TabWidth(lipgloss.NoTabConversion)
		if entry.Bold == chroma.Yes {
			s = s.Bold(true)
		}

		sb.WriteString(s.Render(t.Value))
	}

	return sb.String()
}
