package lang

import (
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// Callable implements a function, filter, or test. Wildcard captures are
// passed first, then (for filters and tests) the subject, then the call
// arguments in positional order.
type Callable func(args ...any) (any, error)

// Symbol describes a callable registered under a name or a wildcard
// pattern. A pattern contains one or more "*" segments, each matching a
// non-empty run of characters that is captured and passed to the callable.
type Symbol struct {
	Name     string
	Callable Callable
	// Params lists the parameter names accepted by Callable after the
	// captures and the subject. Named call arguments are only allowed when
	// Params is set.
	Params []string
	// Defaults holds values for optional Params, used when a later
	// parameter is passed by name.
	Defaults map[string]any
	Variadic bool
	// OneMandatoryArgument allows a test to take its single argument
	// without parentheses, as in "x is divisible by 3".
	OneMandatoryArgument bool
}

// IsPattern reports whether the symbol name contains a wildcard.
func (s *Symbol) IsPattern() bool { return strings.Contains(s.Name, "*") }

// Signature renders the name followed by the declared parameters.
func (s *Symbol) Signature() string {
	params := slices.Clone(s.Params)
	if s.Variadic {
		params = append(params, "...")
	}

	return s.Name + "(" + strings.Join(params, ", ") + ")"
}

// LogValue implements slog.LogValuer.
func (s *Symbol) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", s.Name),
		slog.Int("params", len(s.Params)),
		slog.Bool("variadic", s.Variadic),
	)
}

// Match is the result of a successful [Registry.Lookup].
type Match struct {
	Symbol *Symbol
	// Captures holds the text matched by each "*" of a pattern symbol.
	Captures []string
}

type pattern struct {
	symbol *Symbol
	re     *regexp.Regexp
}

// Registry maps names to symbols of a single kind (function, filter, or
// test). Exact names are consulted first, then patterns in registration
// order. A Registry is safe for concurrent lookups; [Environment] rejects
// additions once parsing has started.
type Registry struct {
	kind     string
	mu       sync.RWMutex
	exact    map[string]*Symbol
	patterns []pattern
}

// NewRegistry returns an empty registry. The kind ("function", "filter",
// or "test") is used in diagnostics.
func NewRegistry(kind string) *Registry {
	return &Registry{kind: kind, exact: make(map[string]*Symbol)}
}

// Kind returns the symbol kind held by the registry.
func (r *Registry) Kind() string { return r.kind }

// Add registers symbols. It fails on an empty or already registered name,
// or a symbol without a callable.
func (r *Registry) Add(symbols ...Symbol) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sym := range symbols {
		attr := slog.String(r.kind, sym.Name)

		if sym.Name == "" || sym.Callable == nil {
			return ErrInvalidSymbol.With(attr)
		}

		if r.has(sym.Name) {
			return ErrInvalidSymbol.With(attr, slog.String("reason", "duplicate"))
		}

		s := sym

		if !s.IsPattern() {
			r.exact[s.Name] = &s

			continue
		}

		quoted := regexp.QuoteMeta(s.Name)
		expr := "^" + strings.ReplaceAll(quoted, `\*`, "(.+?)") + "$"

		r.patterns = append(r.patterns, pattern{symbol: &s, re: regexp.MustCompile(expr)})
	}

	return nil
}

func (r *Registry) has(name string) bool {
	if _, ok := r.exact[name]; ok {
		return true
	}

	return slices.ContainsFunc(r.patterns, func(p pattern) bool {
		return p.symbol.Name == name
	})
}

// Lookup resolves name against exact names, then patterns.
func (r *Registry) Lookup(name string) (Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.exact[name]; ok {
		return Match{Symbol: s}, true
	}

	for _, p := range r.patterns {
		if m := p.re.FindStringSubmatch(name); m != nil {
			return Match{Symbol: p.symbol, Captures: m[1:]}, true
		}
	}

	return Match{}, false
}

// Get returns the symbol registered under exactly name, which may be a
// pattern.
func (r *Registry) Get(name string) (*Symbol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.exact[name]; ok {
		return s, true
	}

	for _, p := range r.patterns {
		if p.symbol.Name == name {
			return p.symbol, true
		}
	}

	return nil, false
}

// Names returns every exact name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.exact))
}

// Symbols returns every symbol, exact names in sorted order followed by
// patterns in registration order.
func (r *Registry) Symbols() []*Symbol {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Symbol, 0, len(r.exact)+len(r.patterns))
	for _, name := range slices.Sorted(maps.Keys(r.exact)) {
		out = append(out, r.exact[name])
	}

	for _, p := range r.patterns {
		out = append(out, p.symbol)
	}

	return out
}
