package runtime

import (
	"context"
	"log/slog"
	"maps"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/stencil/lang"
	"github.com/ardnew/stencil/lang/token"
	"github.com/ardnew/stencil/log"
)

// Unit identifies the template a fragment belongs to. It is bound as "this"
// and backs the _self name.
type Unit struct {
	Name string
}

// Scope is the data a single evaluation runs against.
type Scope struct {
	Context map[string]any
	Macros  map[any]any
	Unit    Unit
}

// Runtime evaluates compiled fragments against the registries of an
// [lang.Environment]. A Runtime is safe for concurrent use once built.
type Runtime struct {
	env     *lang.Environment
	logger  log.Logger
	globals map[string]any
	options []expr.Option
	cache   programCache
}

// Option configures a [Runtime].
type Option func(*Runtime)

// WithLogger sets the structured logger for trace-level debugging.
func WithLogger(logger log.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithGlobals adds variables visible to every evaluation. Scope variables
// shadow globals of the same name.
func WithGlobals(globals map[string]any) Option {
	return func(r *Runtime) {
		maps.Copy(r.globals, globals)
	}
}

// WithSystemGlobals adds the host description from [SystemGlobals].
func WithSystemGlobals() Option {
	return func(r *Runtime) {
		for k, v := range SystemGlobals() {
			if _, ok := r.globals[k]; !ok {
				r.globals[k] = v
			}
		}
	}
}

// New returns a Runtime that resolves functions, filters, and tests in env.
func New(env *lang.Environment, opts ...Option) *Runtime {
	r := &Runtime{
		env:     env,
		globals: make(map[string]any),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.options = append(
		[]expr.Option{expr.Env(r.env0(Scope{}))},
		r.helpers()...,
	)

	return r
}

// Environment returns the environment the runtime resolves symbols in.
func (r *Runtime) Environment() *lang.Environment { return r.env }

// Globals returns a copy of the variables visible to every evaluation.
func (r *Runtime) Globals() map[string]any { return maps.Clone(r.globals) }

func (r *Runtime) env0(s Scope) map[string]any {
	vars := maps.Clone(r.globals)
	maps.Copy(vars, s.Context)

	macros := s.Macros
	if macros == nil {
		macros = make(map[any]any)
	}

	return map[string]any{
		"context": vars,
		"macros":  macros,
		"this":    s.Unit,
	}
}

// Evaluate compiles code and runs it against s.
func (r *Runtime) Evaluate(ctx context.Context, code string, s Scope) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, lang.ErrEvaluate.Wrap(err)
	}

	program, hit, err := r.cache.load(code, func() (*vm.Program, error) {
		return expr.Compile(code, r.options...)
	})
	if err != nil {
		return nil, lang.ErrCompile.Wrap(err).With(slog.String("code", code))
	}

	r.logger.TraceContext(ctx, "program compiled",
		slog.String("code", code),
		slog.String("unit", s.Unit.Name),
		slog.Bool("cache_hit", hit))

	out, err := expr.Run(program, r.env0(s))
	if err != nil {
		return nil, lang.ErrEvaluate.Wrap(err).With(slog.String("code", code))
	}

	r.logger.TraceContext(ctx, "program evaluated", slog.Any("result", out))

	return out, nil
}

// ClearCache drops the compiled programs memoized by [Runtime.Evaluate].
func (r *Runtime) ClearCache() { r.cache.clear() }

// Render parses, compiles, and evaluates src with vars as the context.
func (r *Runtime) Render(
	ctx context.Context,
	src token.Source,
	vars map[string]any,
) (any, error) {
	code, err := r.env.CompileSource(ctx, src)
	if err != nil {
		return nil, err
	}

	return r.Evaluate(ctx, code, Scope{
		Context: vars,
		Unit:    Unit{Name: src.Name},
	})
}
