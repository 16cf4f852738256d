package lang

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Compiler emits expr-lang source for expression trees. The emitted code
// runs against the environment built by package runtime:
//
//   - context: the render context, a map keyed by variable name
//   - macros:  the render unit's macro and local store
//   - this:    the render unit itself
//
// plus the helper functions named in [Helpers]. A Compiler is used by one
// goroutine; its temporary-name counter is private to it.
type Compiler struct {
	sb   strings.Builder
	salt int
	err  error
}

// NewCompiler returns an empty compiler.
func NewCompiler() *Compiler { return &Compiler{} }

// Helpers lists the runtime helper functions referenced by compiled code.
var Helpers = []string{
	"__attr", "__bool", "__compare", "__concat", "__endswith", "__filter",
	"__floordiv", "__function", "__in", "__map", "__matches", "__merge",
	"__range", "__startswith", "__test",
}

// Compile emits code for n and returns it, discarding anything written
// before.
func (c *Compiler) Compile(n *Node) (string, error) {
	c.sb.Reset()
	c.err = nil

	c.Subcompile(n)

	if c.err != nil {
		return "", c.err
	}

	return c.sb.String(), nil
}

// Source returns the code written so far.
func (c *Compiler) Source() string { return c.sb.String() }

// Err returns the first error recorded while compiling.
func (c *Compiler) Err() error { return c.err }

// Raw writes s verbatim.
func (c *Compiler) Raw(s string) *Compiler {
	if c.err == nil {
		c.sb.WriteString(s)
	}

	return c
}

// String writes s as a quoted string literal.
func (c *Compiler) String(s string) *Compiler {
	return c.Raw(strconv.Quote(s))
}

// Repr writes the literal form of a constant value.
func (c *Compiler) Repr(v any) *Compiler {
	return c.Raw(repr(v))
}

// VarName returns a fresh temporary name.
func (c *Compiler) VarName() string {
	name := "__internal_compile_" + strconv.Itoa(c.salt)
	c.salt++

	return name
}

// Subcompile writes the code of n.
func (c *Compiler) Subcompile(n *Node) *Compiler {
	if c.err != nil {
		return c
	}

	if n == nil {
		return c.fail(nil, "missing node")
	}

	switch n.Type {
	case TypeConstant:
		c.Repr(n.Value)

	case TypeName:
		c.compileName(n)

	case TypeAssignName:
		c.Raw("context[").String(n.Name).Raw("]")

	case TypeTemplateVariable:
		c.compileTemplateVariable(n)

	case TypeArray:
		c.compileArray(n)

	case TypeUnary:
		c.compileUnary(n)

	case TypeBinary:
		c.compileBinary(n)

	case TypeConditional:
		c.compileConditional(n)

	case TypeGetAttr:
		c.compileGetAttr(n)

	case TypeFunction:
		c.compileCall("__function", n)

	case TypeFilter:
		c.compileCall("__filter", n)

	case TypeTest:
		c.compileTest(n)

	case TypeSpread:
		c.fail(n, "a spread is only allowed inside a sequence or mapping")

	default:
		c.fail(n, "unknown node type "+n.Type.String())
	}

	return c
}

func (c *Compiler) fail(n *Node, msg string) *Compiler {
	if c.err != nil {
		return c
	}

	err := ErrCompile.With(slog.String("reason", msg))
	if n != nil {
		err = err.With(slog.String("type", n.Type.String()), slog.Int("line", n.Line))
	}

	c.err = err

	return c
}

func (c *Compiler) compileName(n *Node) {
	switch n.Name {
	case "_context":
		c.Raw("context")

	case "_self":
		c.Raw("this.Name")

	default:
		c.Raw("context[").String(n.Name).Raw("]")
	}
}

// compileTemplateVariable writes a lookup in the macro store. An anonymous
// variable is named on first compilation and keeps that name.
func (c *Compiler) compileTemplateVariable(n *Node) {
	if n.Value == nil {
		n.Value = c.VarName()
	}

	if n.Value == "_self" {
		c.Raw("this")

		return
	}

	c.Raw("macros[").Repr(n.Value).Raw("]")
}

// compileArray writes a literal for each run of plain pairs and merges the
// runs and the spread values in declaration order.
func (c *Compiler) compileArray(n *Node) {
	sequence := n.IsSequence()

	var (
		runs  [][][2]*Node
		parts []*Node // nil entries stand for the next run
		run   [][2]*Node
	)

	flush := func() {
		runs = append(runs, run)
		parts = append(parts, nil)
		run = nil
	}

	for _, p := range n.Pairs() {
		if p[1].Type != TypeSpread {
			run = append(run, p)

			continue
		}

		if len(parts) == 0 || len(run) > 0 {
			flush()
		}

		parts = append(parts, p[1].Expr)
	}

	if len(run) > 0 || len(parts) == 0 {
		flush()
	}

	c.Raw(strings.Repeat("__merge(", len(parts)-1))

	r := 0

	for i, part := range parts {
		if i > 0 {
			c.Raw(", ")
		}

		if part == nil {
			c.compileRun(runs[r], sequence)
			r++
		} else {
			c.Subcompile(part)
		}

		if i > 0 {
			c.Raw(")")
		}
	}
}

func (c *Compiler) compileRun(pairs [][2]*Node, sequence bool) {
	if sequence {
		c.Raw("[")

		for i, p := range pairs {
			if i > 0 {
				c.Raw(", ")
			}

			c.Subcompile(p[1])
		}

		c.Raw("]")

		return
	}

	stringKeys := true

	for _, p := range pairs {
		if _, ok := p[0].Value.(string); p[0].Type != TypeConstant || !ok {
			stringKeys = false

			break
		}
	}

	if stringKeys {
		c.Raw("{")

		for i, p := range pairs {
			if i > 0 {
				c.Raw(", ")
			}

			c.Subcompile(p[0]).Raw(": ").Subcompile(p[1])
		}

		c.Raw("}")

		return
	}

	c.Raw("__map(")

	for i, p := range pairs {
		if i > 0 {
			c.Raw(", ")
		}

		c.Subcompile(p[0]).Raw(", ").Subcompile(p[1])
	}

	c.Raw(")")
}

func (c *Compiler) compileUnary(n *Node) {
	switch n.Operator {
	case "not":
		c.Raw("(not ").boolean(n.Expr).Raw(")")

	case "-", "+":
		c.Raw("(" + n.Operator).Subcompile(n.Expr).Raw(")")

	default:
		c.fail(n, "unknown unary operator "+strconv.Quote(n.Operator))
	}
}

// infix operators map onto the same expr-lang operator.
var infix = map[string]string{
	"+": "+", "-": "-", "*": "*", "/": "/", "%": "%", "**": "**",
	"==": "==", "!=": "!=", "<": "<", ">": ">", "<=": "<=", ">=": ">=",
	"??": "??",
}

// calls maps operators onto two-argument helper or builtin functions.
var calls = map[string]string{
	"~":           "__concat",
	"..":          "__range",
	"//":          "__floordiv",
	"<=>":         "__compare",
	"in":          "__in",
	"matches":     "__matches",
	"starts with": "__startswith",
	"ends with":   "__endswith",
	"b-and":       "bitand",
	"b-or":        "bitor",
	"b-xor":       "bitxor",
}

func (c *Compiler) compileBinary(n *Node) {
	if op, ok := infix[n.Operator]; ok {
		c.Raw("(").Subcompile(n.Left).Raw(" " + op + " ").Subcompile(n.Right).Raw(")")

		return
	}

	if fn, ok := calls[n.Operator]; ok {
		c.Raw(fn + "(").Subcompile(n.Left).Raw(", ").Subcompile(n.Right).Raw(")")

		return
	}

	switch n.Operator {
	case "and", "or":
		c.Raw("(").boolean(n.Left).Raw(" " + n.Operator + " ").boolean(n.Right).Raw(")")

	case "xor":
		c.Raw("(").boolean(n.Left).Raw(" != ").boolean(n.Right).Raw(")")

	case "not in":
		c.Raw("(not __in(").Subcompile(n.Left).Raw(", ").Subcompile(n.Right).Raw("))")

	default:
		c.fail(n, "unknown binary operator "+strconv.Quote(n.Operator))
	}
}

// boolOperators yield a bool in the emitted code.
var boolOperators = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"and": true, "or": true, "xor": true, "not in": true,
}

// isBoolean reports whether the code emitted for n is already a bool.
func isBoolean(n *Node) bool {
	switch n.Type {
	case TypeUnary:
		return n.Operator == "not"
	case TypeBinary:
		return boolOperators[n.Operator]
	}

	return false
}

// boolean compiles n as a condition, converting it with __bool unless it
// is already a bool.
func (c *Compiler) boolean(n *Node) *Compiler {
	if isBoolean(n) {
		return c.Subcompile(n)
	}

	return c.Raw("__bool(").Subcompile(n).Raw(")")
}

func (c *Compiler) compileConditional(n *Node) {
	if n.Then != nil {
		c.Raw("(__bool(").Subcompile(n.Expr).Raw(") ? ").
			Subcompile(n.Then).Raw(" : ").Subcompile(n.Else).Raw(")")

		return
	}

	tmp := c.VarName()

	c.Raw("(let " + tmp + " = ").Subcompile(n.Expr).
		Raw("; __bool(" + tmp + ") ? " + tmp + " : ").Subcompile(n.Else).Raw(")")
}

func (c *Compiler) compileGetAttr(n *Node) {
	c.Raw("__attr(").Subcompile(n.Expr).Raw(", ").Subcompile(n.Attribute)

	if n.Access == AccessMethod {
		c.Raw(", [")
		c.compileArgs(n.Arguments, false)
		c.Raw("]")
	}

	c.Raw(")")
}

// compileCall writes helper("pattern", captures..., subject, args...).
func (c *Compiler) compileCall(helper string, n *Node) {
	if n.Symbol == nil {
		c.fail(n, "unresolved "+n.Type.String()+" "+strconv.Quote(n.Name))

		return
	}

	c.Raw(helper + "(").String(n.Symbol.Name)

	for _, capture := range n.Captures {
		c.Raw(", ").String(capture)
	}

	if n.Expr != nil {
		c.Raw(", ").Subcompile(n.Expr)
	}

	c.compileArgs(n.Arguments, true)
	c.Raw(")")
}

func (c *Compiler) compileArgs(args []*Node, leadingComma bool) {
	for i, a := range args {
		if i > 0 || leadingComma {
			c.Raw(", ")
		}

		c.Subcompile(a)
	}
}

func (c *Compiler) compileTest(n *Node) {
	if n.Name == "defined" && n.Symbol != nil && n.Symbol.Name == "defined" {
		switch n.Expr.Type {
		case TypeName:
			if n.Expr.Name == "_self" || n.Expr.Name == "_context" {
				c.Raw("true")
			} else {
				c.Raw("(").String(n.Expr.Name).Raw(" in context)")
			}

			return

		case TypeConstant, TypeArray:
			c.Raw("true")

			return
		}
	}

	c.compileCall("__test", n)
}

// repr returns the expr-lang literal for a constant value.
func repr(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"

	case bool:
		return strconv.FormatBool(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case int:
		return strconv.Itoa(v)

	case float64:
		switch {
		case math.IsInf(v, 1):
			return "(1.0 / 0.0)"

		case math.IsInf(v, -1):
			return "(-1.0 / 0.0)"

		case math.IsNaN(v):
			return "(0.0 / 0.0)"
		}

		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}

		return s

	case string:
		return strconv.Quote(v)

	default:
		return strconv.Quote("<unsupported>")
	}
}
