package repl

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ardnew/stencil/lang"
	"github.com/ardnew/stencil/lang/runtime"
	"github.com/ardnew/stencil/lang/token"
	"github.com/ardnew/stencil/log"
)

// templateName names the expressions entered in a session in diagnostics.
const templateName = "repl"

// Session holds the variables of an interactive session and evaluates
// input against them.
type Session struct {
	rt     *runtime.Runtime
	vars   map[string]any
	logger log.Logger
}

// NewSession returns a session evaluating with rt, starting with a copy of
// vars.
func NewSession(rt *runtime.Runtime, vars map[string]any, logger log.Logger) *Session {
	v := maps.Clone(vars)
	if v == nil {
		v = make(map[string]any)
	}

	return &Session{rt: rt, vars: v, logger: logger}
}

func (s *Session) env() *lang.Environment { return s.rt.Environment() }

func source(code string) token.Source {
	return token.Source{Name: templateName, Code: code}
}

// Eval renders one expression.
func (s *Session) Eval(ctx context.Context, code string) (any, error) {
	return s.rt.Render(ctx, source(code), s.vars)
}

// Compile returns the expr-lang code of one expression.
func (s *Session) Compile(ctx context.Context, code string) (string, error) {
	return s.env().CompileSource(ctx, source(code))
}

// Tree returns the syntax tree dump of one expression.
func (s *Session) Tree(ctx context.Context, code string) (string, error) {
	n, err := s.env().Parse(ctx, source(code))
	if err != nil {
		return "", err
	}

	return n.String(), nil
}

// Set evaluates "a, b = x, y" and assigns each value to its name. The
// names are parsed as assignment targets, so reserved names are rejected.
func (s *Session) Set(ctx context.Context, line string) ([]string, error) {
	lhs, rhs, ok := splitAssignment(line)
	if !ok {
		return nil, ErrAssignment
	}

	targets, err := s.env().ParseAssignment(ctx, source(lhs))
	if err != nil {
		return nil, err
	}

	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}

	values := []any{nil}

	if len(names) == 1 {
		values[0], err = s.Eval(ctx, rhs)
		if err != nil {
			return nil, err
		}
	} else {
		out, err := s.Eval(ctx, "["+rhs+"]")
		if err != nil {
			return nil, err
		}

		values = lang.Values(out)
		if len(values) != len(names) {
			return nil, fmt.Errorf("%w: %d names, %d values",
				ErrAssignCount, len(names), len(values))
		}
	}

	for i, name := range names {
		s.vars[name] = values[i]
	}

	s.logger.TraceContext(ctx, "repl set", slog.Any("names", names))

	return names, nil
}

// splitAssignment cuts line at the first "=" that is not part of a
// comparison operator.
func splitAssignment(line string) (lhs, rhs string, ok bool) {
	for i := 0; i < len(line); i++ {
		if line[i] != '=' {
			continue
		}

		if i+1 < len(line) && line[i+1] == '=' {
			return "", "", false
		}

		if i > 0 && strings.ContainsRune("=!<>", rune(line[i-1])) {
			return "", "", false
		}

		lhs, rhs = strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])

		return lhs, rhs, lhs != "" && rhs != ""
	}

	return "", "", false
}

// Unset removes the named variables.
func (s *Session) Unset(names ...string) {
	for _, n := range names {
		delete(s.vars, n)
	}
}

// Vars returns a copy of the session variables.
func (s *Session) Vars() map[string]any { return maps.Clone(s.vars) }

// Replace swaps the session variables for vars.
func (s *Session) Replace(vars map[string]any) {
	s.vars = maps.Clone(vars)
	if s.vars == nil {
		s.vars = make(map[string]any)
	}
}

// Names returns the session variable names, globals included, in sorted
// order.
func (s *Session) Names() []string {
	keys := maps.Keys(s.vars)
	names := slices.Collect(keys)

	for k := range s.rt.Globals() {
		if _, ok := s.vars[k]; !ok {
			names = append(names, k)
		}
	}

	slices.Sort(names)

	return names
}

// Lookup resolves a dotted variable path such as "user.address".
func (s *Session) Lookup(path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	parts := strings.Split(path, ".")

	v, ok := s.vars[parts[0]]
	if !ok {
		v, ok = s.rt.Globals()[parts[0]]
		if !ok {
			return nil, false
		}
	}

	for _, p := range parts[1:] {
		if !lang.IsMapping(v) {
			return nil, false
		}

		next, ok := lang.ToMap(v)[p]
		if !ok {
			return nil, false
		}

		v = next
	}

	return v, true
}

// FormatResult renders a value as compact JSON, falling back to its
// string form for values JSON cannot encode.
func FormatResult(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return lang.ToString(v)
	}

	return string(b)
}
