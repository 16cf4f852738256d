package lang

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ardnew/stencil/lang/lexer"
	"github.com/ardnew/stencil/lang/token"
	"github.com/ardnew/stencil/log"
)

// Environment holds the function, filter, and test registries consulted by
// the parser, plus parse and compile settings. Symbols can be added until
// the first parse; from then on the registries are read-only and the
// Environment may be shared by concurrent parses.
type Environment struct {
	mu     sync.RWMutex
	frozen bool

	functions *Registry
	filters   *Registry
	tests     *Registry

	stringConcat bool
	core         bool
	extra        [3][]Symbol
	logger       log.Logger
}

// Option configures an [Environment].
type Option func(*Environment)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(e *Environment) {
		e.logger = logger
	}
}

// WithStringConcat allows adjacent string literals, folding "a" "b" into a
// concatenation. Without it, adjacent literals are a syntax error.
func WithStringConcat(enable bool) Option {
	return func(e *Environment) {
		e.stringConcat = enable
	}
}

// WithFunctions registers additional functions.
func WithFunctions(symbols ...Symbol) Option {
	return func(e *Environment) {
		e.extra[0] = append(e.extra[0], symbols...)
	}
}

// WithFilters registers additional filters.
func WithFilters(symbols ...Symbol) Option {
	return func(e *Environment) {
		e.extra[1] = append(e.extra[1], symbols...)
	}
}

// WithTests registers additional tests.
func WithTests(symbols ...Symbol) Option {
	return func(e *Environment) {
		e.extra[2] = append(e.extra[2], symbols...)
	}
}

// WithoutCore leaves out the core functions, filters, and tests.
func WithoutCore() Option {
	return func(e *Environment) {
		e.core = false
	}
}

// NewEnvironment returns an Environment with the core symbols and the
// symbols given by opts. It fails if a symbol is invalid or registered
// twice.
func NewEnvironment(opts ...Option) (*Environment, error) {
	e := &Environment{
		functions: NewRegistry("function"),
		filters:   NewRegistry("filter"),
		tests:     NewRegistry("test"),
		core:      true,
	}

	for _, opt := range opts {
		opt(e)
	}

	regs := [3]*Registry{e.functions, e.filters, e.tests}

	if e.core {
		for i, syms := range coreSymbols() {
			if err := regs[i].Add(syms...); err != nil {
				return nil, err
			}
		}
	}

	for i, syms := range e.extra {
		if err := regs[i].Add(syms...); err != nil {
			return nil, err
		}
	}

	e.extra = [3][]Symbol{}

	e.logger.Trace("environment ready",
		slog.Int("functions", len(e.functions.Names())),
		slog.Int("filters", len(e.filters.Names())),
		slog.Int("tests", len(e.tests.Names())))

	return e, nil
}

// Logger returns the logger configured with [WithLogger].
func (e *Environment) Logger() log.Logger { return e.logger }

// Functions returns the function registry.
func (e *Environment) Functions() *Registry { return e.functions }

// Filters returns the filter registry.
func (e *Environment) Filters() *Registry { return e.filters }

// Tests returns the test registry.
func (e *Environment) Tests() *Registry { return e.tests }

// AddFunction registers a function. It fails once parsing has started.
func (e *Environment) AddFunction(s Symbol) error { return e.add(e.functions, s) }

// AddFilter registers a filter. It fails once parsing has started.
func (e *Environment) AddFilter(s Symbol) error { return e.add(e.filters, s) }

// AddTest registers a test. It fails once parsing has started.
func (e *Environment) AddTest(s Symbol) error { return e.add(e.tests, s) }

func (e *Environment) add(r *Registry, s Symbol) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.frozen {
		return ErrRegistryFrozen.With(slog.String(r.Kind(), s.Name))
	}

	return r.Add(s)
}

func (e *Environment) freeze() {
	e.mu.Lock()
	e.frozen = true
	e.mu.Unlock()
}

// Tokenize splits the code of src into a token stream.
func (e *Environment) Tokenize(src token.Source) (*Stream, error) {
	tokens, err := lexer.Tokenize(src.Code)
	if err != nil {
		var le *lexer.Error
		if errors.As(err, &le) {
			return nil, &SyntaxError{
				Kind:    ErrUnexpectedToken,
				Message: le.Message,
				Line:    le.Line,
				Source:  src,
			}
		}

		return nil, err
	}

	return NewStream(tokens, src), nil
}

// NewParser returns a parser reading from stream. Creating a parser
// freezes the registries.
func (e *Environment) NewParser(stream *Stream) *Parser {
	e.freeze()

	return &Parser{
		stream:       stream,
		functions:    e.functions,
		filters:      e.filters,
		tests:        e.tests,
		stringConcat: e.stringConcat,
	}
}

// parse tokenizes src, runs fn, and requires the whole input to be
// consumed. The source of any syntax error is set to src.
func (e *Environment) parse(
	ctx context.Context,
	src token.Source,
	what string,
	fn func(p *Parser) error,
) error {
	stream, err := e.Tokenize(src)
	if err != nil {
		return err
	}

	e.logger.TraceContext(ctx, "parse "+what,
		slog.String("template", src.Name),
		slog.Int("tokens", len(stream.tokens)))

	p := e.NewParser(stream)

	if err := fn(p); err != nil {
		return attachSource(err, src)
	}

	_, err = stream.Expect(token.EOF, "", "")

	return attachSource(err, src)
}

// Parse parses src as a single expression.
func (e *Environment) Parse(ctx context.Context, src token.Source) (*Node, error) {
	var node *Node

	err := e.parse(ctx, src, "expression", func(p *Parser) (err error) {
		node, err = p.ParseExpression(0)

		return err
	})
	if err != nil {
		return nil, err
	}

	node.SetSource(&src)

	return node, nil
}

// ParseAssignment parses src as a comma-separated list of assignment
// targets. Anything after the last target is rejected as an invalid
// assignment target.
func (e *Environment) ParseAssignment(ctx context.Context, src token.Source) ([]*Node, error) {
	var targets []*Node

	err := e.parse(ctx, src, "assignment", func(p *Parser) (err error) {
		targets, err = p.ParseAssignmentExpression()
		if err != nil {
			return err
		}

		_, err = p.stream.Expect(token.EOF, "", "Only variables can be assigned to")
		if err != nil {
			return err.(*SyntaxError).withKind(ErrInvalidAssignmentTarget)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, t := range targets {
		t.SetSource(&src)
	}

	return targets, nil
}

// ParseMacroArguments parses src as a parenthesized macro parameter list
// and returns the mapping from parameter name to default value.
func (e *Environment) ParseMacroArguments(ctx context.Context, src token.Source) (*Node, error) {
	var node *Node

	err := e.parse(ctx, src, "macro arguments", func(p *Parser) (err error) {
		node, err = p.ParseMacroArguments()

		return err
	})
	if err != nil {
		return nil, err
	}

	node.SetSource(&src)

	return node, nil
}

// Compile emits expr-lang code for node.
func (e *Environment) Compile(ctx context.Context, node *Node) (string, error) {
	code, err := NewCompiler().Compile(node)
	if err != nil {
		return "", err
	}

	e.logger.TraceContext(ctx, "compile",
		slog.Any("node", node),
		slog.Int("bytes", len(code)))

	return code, nil
}

// CompileSource parses src as an expression and compiles it.
func (e *Environment) CompileSource(ctx context.Context, src token.Source) (string, error) {
	node, err := e.Parse(ctx, src)
	if err != nil {
		return "", err
	}

	return e.Compile(ctx, node)
}
