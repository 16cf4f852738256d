package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	key, str, num, yes, no, null, dur, time lipgloss.Style
	trace, debug, info, warn, err           lipgloss.Style
}

func makePalette(r *lipgloss.Renderer) palette {
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		null:  fg("8"),
		dur:   fg("5"),
		time:  fg("4"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// paint renders single-line text with s. Multi-line text is left alone so
// the renderer does not pad it into a block.
func paint(s lipgloss.Style, text string) string {
	if text == "" || strings.ContainsAny(text, "\n\t") {
		return text
	}

	return s.Render(text)
}

// prettyHandler writes colorized records, either as a single line of
// key=value pairs or, when indent is set, as an indented block.
type prettyHandler struct {
	opts   slog.HandlerOptions
	indent bool
	mu     *sync.Mutex
	w      io.Writer
	colors palette
	attrs  []slog.Attr
	groups []string
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, indent bool) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		indent: indent,
		mu:     &sync.Mutex{},
		w:      w,
		colors: makePalette(lipgloss.NewRenderer(w)),
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Clone(h.attrs)

	for _, a := range attrs {
		c.attrs = append(c.attrs, h.flatten(h.groups, a)...)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(slices.Clip(h.groups), name)

	return &c
}

// flatten resolves a and expands groups into dotted keys, applying
// ReplaceAttr to each leaf.
func (h *prettyHandler) flatten(groups []string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		g := groups
		if a.Key != "" {
			g = append(slices.Clip(groups), a.Key)
		}

		var out []slog.Attr
		for _, sub := range a.Value.Group() {
			out = append(out, h.flatten(g, sub)...)
		}

		return out
	}

	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(groups, a)
		a.Value = a.Value.Resolve()
	}

	if a.Key == "" {
		return nil
	}

	if len(groups) > 0 {
		a.Key = strings.Join(groups, ".") + "." + a.Key
	}

	return []slog.Attr{a}
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var fields []slog.Attr

	builtin := func(a slog.Attr) {
		fields = append(fields, h.flatten(nil, a)...)
	}

	if !r.Time.IsZero() {
		builtin(slog.Time(slog.TimeKey, r.Time))
	}

	builtin(slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			builtin(slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	builtin(slog.String(slog.MessageKey, r.Message))

	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, h.flatten(h.groups, a)...)

		return true
	})

	buf := new(bytes.Buffer)

	if h.indent {
		buf.WriteString("{\n")
	}

	for i, a := range fields {
		v := h.value(a.Value)
		if a.Key == slog.LevelKey {
			v = paint(h.colors.level(r.Level), a.Value.String())
		}

		if h.indent {
			if i > 0 {
				buf.WriteString(",\n")
			}

			buf.WriteString("  " + paint(h.colors.key, a.Key) + ": " + v)

			continue
		}

		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(paint(h.colors.key, a.Key) + "=" + v)
	}

	if h.indent {
		buf.WriteString("\n}")
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return paint(h.colors.str, v.String())

	case slog.KindInt64:
		return paint(h.colors.num, strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return paint(h.colors.num, strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return paint(h.colors.num, strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return paint(h.colors.yes, "true")
		}

		return paint(h.colors.no, "false")

	case slog.KindDuration:
		return paint(h.colors.dur, v.Duration().String())

	case slog.KindTime:
		return paint(h.colors.time, v.Time().String())

	case slog.KindAny:
		switch a := v.Any().(type) {
		case nil:
			return paint(h.colors.null, "null")

		case error:
			return paint(h.colors.no, a.Error())
		}
	}

	return paint(h.colors.str, v.String())
}
