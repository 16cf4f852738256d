package lang

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ardnew/stencil/lang/token"
)

// Parser builds expression trees from a [Stream] by precedence climbing.
// A Parser is used for a single parse and is not safe for concurrent use.
// Every method returns at most one [SyntaxError] and leaves the stream at
// an unspecified position on failure.
type Parser struct {
	stream       *Stream
	functions    *Registry
	filters      *Registry
	tests        *Registry
	stringConcat bool
}

// Stream returns the token stream being parsed.
func (p *Parser) Stream() *Stream { return p.stream }

// ParseExpression parses an expression whose binary operators all bind at
// least as tightly as precedence. At precedence 0 a trailing conditional
// (?:) is parsed too.
func (p *Parser) ParseExpression(precedence int) (*Node, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		t := p.stream.Current()

		op, ok := binaryOperator(t)
		if !ok || op.Precedence < precedence {
			break
		}

		p.stream.Next()

		switch t.Value {
		case "is":
			expr, err = p.parseTest(expr)

		case "is not":
			expr, err = p.parseTest(expr)
			if err == nil {
				expr = NewUnary("not", expr, t.Line)
			}

		default:
			next := op.Precedence
			if op.Associativity == LeftAssoc {
				next++
			}

			var right *Node

			right, err = p.ParseExpression(next)
			if err == nil {
				expr = NewBinary(t.Value, expr, right, t.Line)
			}
		}

		if err != nil {
			return nil, err
		}
	}

	if precedence == 0 {
		return p.parseConditional(expr)
	}

	return expr, nil
}

func (p *Parser) parseConditional(expr *Node) (*Node, error) {
	for {
		t, ok := p.stream.NextIf(token.Punctuation, "?")
		if !ok {
			return expr, nil
		}

		if _, elvis := p.stream.NextIf(token.Punctuation, ":"); elvis {
			els, err := p.ParseExpression(0)
			if err != nil {
				return nil, err
			}

			expr = NewConditional(expr, nil, els, t.Line)

			continue
		}

		then, err := p.ParseExpression(0)
		if err != nil {
			return nil, err
		}

		var els *Node

		if _, ok := p.stream.NextIf(token.Punctuation, ":"); ok {
			els, err = p.ParseExpression(0)
			if err != nil {
				return nil, err
			}
		} else {
			els = NewConstant("", t.Line)
		}

		expr = NewConditional(expr, then, els, t.Line)
	}
}

// primary parses a prefix operation, a parenthesized expression, or a
// primary expression.
func (p *Parser) primary() (*Node, error) {
	t := p.stream.Current()

	if op, ok := unaryOperator(t); ok {
		p.stream.Next()

		expr, err := p.ParseExpression(op.Precedence)
		if err != nil {
			return nil, err
		}

		return p.parsePostfix(NewUnary(t.Value, expr, t.Line))
	}

	if t.Test(token.Punctuation, "(") {
		p.stream.Next()

		expr, err := p.ParseExpression(0)
		if err != nil {
			return nil, err
		}

		_, err = p.stream.Expect(token.Punctuation, ")",
			"An opened parenthesis is not properly closed")
		if err != nil {
			return nil, err
		}

		return p.parsePostfix(expr)
	}

	return p.ParsePrimaryExpression()
}

var nameRE = regexp.MustCompile(`^[a-zA-Z_\x{7f}-\x{10ffff}][a-zA-Z0-9_\x{7f}-\x{10ffff}]*$`)

// ParsePrimaryExpression parses a literal, a name, a function call, or a
// sequence or mapping literal, followed by any postfix operations.
func (p *Parser) ParsePrimaryExpression() (*Node, error) {
	t := p.stream.Current()

	var (
		node *Node
		err  error
	)

	switch {
	case t.Kind == token.Name:
		p.stream.Next()

		switch t.Value {
		case "true", "TRUE":
			node = NewConstant(true, t.Line)

		case "false", "FALSE":
			node = NewConstant(false, t.Line)

		case "none", "NONE", "null", "NULL":
			node = NewConstant(nil, t.Line)

		default:
			if p.stream.Test(token.Punctuation, "(") {
				node, err = p.parseFunction(t.Value, t.Line)
			} else {
				node = NewName(t.Value, t.Line)
			}
		}

	case t.Kind == token.Number:
		p.stream.Next()

		node = NewConstant(parseNumber(t.Value), t.Line)

	case t.Kind == token.String, t.Kind == token.InterpolationStart:
		node, err = p.parseString()

	case t.Kind == token.Operator && nameRE.MatchString(t.Value):
		// A word operator in operand position is a variable name.
		p.stream.Next()

		node = NewName(t.Value, t.Line)

	case t.Test(token.Punctuation, "["):
		node, err = p.parseSequence()

	case t.Test(token.Punctuation, "{"):
		node, err = p.parseMapping()

	case t.Test(token.Operator, "=") && p.stream.Look(-1).Test(token.Operator, "==", "!="):
		return nil, newSyntaxError(ErrUnexpectedToken,
			`Unexpected operator of value "`+t.Value+`". `+
				`Did you try to use "===" or "!==" for strict comparison? `+
				`Use "is same as(value)" instead.`,
			t.Line)

	default:
		return nil, newSyntaxError(ErrUnexpectedToken,
			"Unexpected token "+strconv.Quote(t.Kind.String())+
				" of value "+strconv.Quote(t.Value)+".",
			t.Line)
	}

	if err != nil {
		return nil, err
	}

	return p.parsePostfix(node)
}

func parseNumber(s string) any {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	}

	f, _ := strconv.ParseFloat(s, 64)

	return f
}

func (p *Parser) parsePostfix(node *Node) (*Node, error) {
	for {
		t := p.stream.Current()
		if t.Kind != token.Punctuation {
			return node, nil
		}

		var err error

		switch t.Value {
		case ".", "[":
			node, err = p.parseSubscript(node)

		case "|":
			node, err = p.parseFilters(node)

		default:
			return node, nil
		}

		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseSubscript(node *Node) (*Node, error) {
	t := p.stream.Next()
	line := t.Line

	if t.Value == "." {
		a := p.stream.Next()

		if a.Kind != token.Name && a.Kind != token.Number &&
			(a.Kind != token.Operator || !nameRE.MatchString(a.Value)) {
			return nil, newSyntaxError(ErrUnexpectedToken,
				"Expected name or number.", line)
		}

		var attr *Node
		if a.Kind == token.Number {
			attr = NewConstant(parseNumber(a.Value), line)
		} else {
			attr = NewConstant(a.Value, line)
		}

		if !p.stream.Test(token.Punctuation, "(") {
			return NewGetAttr(node, attr, nil, AccessAny, line), nil
		}

		args, names, err := p.ParseArguments(true, false)
		if err != nil {
			return nil, err
		}

		if err := rejectNamed(names, "method", a.Value, line); err != nil {
			return nil, err
		}

		return NewGetAttr(node, attr, args, AccessMethod, line), nil
	}

	var (
		arg   *Node
		slice bool
		err   error
	)

	if p.stream.Test(token.Punctuation, ":") {
		slice = true
		arg = NewConstant(int64(0), line)
	} else {
		arg, err = p.ParseExpression(0)
		if err != nil {
			return nil, err
		}
	}

	if _, ok := p.stream.NextIf(token.Punctuation, ":"); ok {
		slice = true
	}

	if slice {
		var length *Node

		if p.stream.Test(token.Punctuation, "]") {
			length = NewConstant(nil, line)
		} else {
			length, err = p.ParseExpression(0)
			if err != nil {
				return nil, err
			}
		}

		m, err := p.lookup(p.filters, "slice", line)
		if err != nil {
			return nil, err
		}

		_, err = p.stream.Expect(token.Punctuation, "]", "")
		if err != nil {
			return nil, err
		}

		return NewFilter(node, "slice", m, []*Node{arg, length}, line), nil
	}

	_, err = p.stream.Expect(token.Punctuation, "]", "")
	if err != nil {
		return nil, err
	}

	return NewGetAttr(node, arg, nil, AccessArray, line), nil
}

func (p *Parser) parseFilters(node *Node) (*Node, error) {
	for {
		p.stream.Next() // |

		t, err := p.stream.Expect(token.Name, "", "")
		if err != nil {
			return nil, err
		}

		var (
			args  []*Node
			names []string
		)

		if p.stream.Test(token.Punctuation, "(") {
			args, names, err = p.ParseArguments(true, false)
			if err != nil {
				return nil, err
			}
		}

		m, err := p.lookup(p.filters, t.Value, t.Line)
		if err != nil {
			return nil, err
		}

		args, err = bindArguments("filter", t.Value, m.Symbol, args, names, t.Line)
		if err != nil {
			return nil, err
		}

		node = NewFilter(node, t.Value, m, args, t.Line)

		if !p.stream.Test(token.Punctuation, "|") {
			return node, nil
		}
	}
}

func (p *Parser) parseFunction(name string, line int) (*Node, error) {
	args, names, err := p.ParseArguments(true, false)
	if err != nil {
		return nil, err
	}

	m, err := p.lookup(p.functions, name, line)
	if err != nil {
		return nil, err
	}

	args, err = bindArguments("function", name, m.Symbol, args, names, line)
	if err != nil {
		return nil, err
	}

	return NewFunction(name, m, args, line), nil
}

func (p *Parser) parseTest(node *Node) (*Node, error) {
	t, err := p.stream.Expect(token.Name, "", "")
	if err != nil {
		return nil, err
	}

	name := t.Value
	line := node.Line

	m, ok := Match{}, false

	// A two-word test wins over a one-word test sharing its first word.
	if next := p.stream.Current(); next.Kind == token.Name {
		if m, ok = p.tests.Lookup(name + " " + next.Value); ok {
			name += " " + next.Value
			p.stream.Next()
		}
	}

	if !ok {
		m, err = p.lookup(p.tests, name, line)
		if err != nil {
			return nil, err
		}
	}

	var (
		args  []*Node
		names []string
	)

	switch {
	case p.stream.Test(token.Punctuation, "("):
		args, names, err = p.ParseArguments(true, false)
		if err != nil {
			return nil, err
		}

	case m.Symbol.OneMandatoryArgument:
		arg, err := p.ParsePrimaryExpression()
		if err != nil {
			return nil, err
		}

		args = []*Node{arg}
	}

	args, err = bindArguments("test", name, m.Symbol, args, names, line)
	if err != nil {
		return nil, err
	}

	if name == "defined" {
		switch node.Type {
		case TypeName, TypeGetAttr, TypeConstant, TypeArray, TypeTemplateVariable:

		default:
			return nil, newSyntaxError(ErrUnexpectedToken,
				`The "defined" test only works with simple variables.`, line)
		}
	}

	return NewTest(node, name, m, args, p.stream.Current().Line), nil
}

// lookup resolves name in r or fails with an [ErrUnknownName] error
// carrying a suggestion drawn from the exact names of r.
func (p *Parser) lookup(r *Registry, name string, line int) (Match, error) {
	if m, ok := r.Lookup(name); ok {
		return m, nil
	}

	msg := "Unknown " + strconv.Quote(name) + " " + r.Kind() + "."

	return Match{}, newSyntaxError(ErrUnknownName, msg, line).
		suggest(name, r.Names())
}

// ParseAssignmentExpression parses a comma-separated list of assignment
// targets. Each target must be a single name that does not spell a
// constant literal.
func (p *Parser) ParseAssignmentExpression() ([]*Node, error) {
	var targets []*Node

	for {
		t := p.stream.Current()

		if t.Kind == token.Operator && nameRE.MatchString(t.Value) {
			// A word operator in target position is a variable name.
			p.stream.Next()
		} else {
			_, err := p.stream.Expect(token.Name, "", "Only variables can be assigned to")
			if err != nil {
				return nil, err.(*SyntaxError).withKind(ErrInvalidAssignmentTarget)
			}
		}

		target, err := NewAssignName(t.Value, t.Line)
		if err != nil {
			return nil, err
		}

		targets = append(targets, target)

		if _, ok := p.stream.NextIf(token.Punctuation, ","); !ok {
			return targets, nil
		}
	}
}
