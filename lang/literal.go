package lang

import (
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/stencil/lang/token"
)

func (p *Parser) parseSequence() (*Node, error) {
	_, err := p.stream.Expect(token.Punctuation, "[", "A sequence element was expected")
	if err != nil {
		return nil, err
	}

	node := NewArray(p.stream.Current().Line)

	for first := true; !p.stream.Test(token.Punctuation, "]"); first = false {
		if !first {
			_, err := p.stream.Expect(token.Punctuation, ",",
				"A sequence element must be followed by a comma")
			if err != nil {
				if p.stream.Test(token.Punctuation, ":") {
					return nil, err.(*SyntaxError).withKind(ErrMixedLiteralForm)
				}

				return nil, err
			}

			// trailing comma
			if p.stream.Test(token.Punctuation, "]") {
				break
			}
		}

		value, err := p.parseElement()
		if err != nil {
			return nil, err
		}

		node.AddElement(value, nil)
	}

	_, err = p.stream.Expect(token.Punctuation, "]",
		"An opened sequence is not properly closed")
	if err != nil {
		return nil, err
	}

	return node, nil
}

// parseElement parses an expression, or a spread of one when preceded by
// "...".
func (p *Parser) parseElement() (*Node, error) {
	t, spread := p.stream.NextIf(token.Spread)

	expr, err := p.ParseExpression(0)
	if err != nil {
		return nil, err
	}

	if spread {
		return NewSpread(expr, t.Line), nil
	}

	return expr, nil
}

func (p *Parser) parseMapping() (*Node, error) {
	_, err := p.stream.Expect(token.Punctuation, "{", "A mapping element was expected")
	if err != nil {
		return nil, err
	}

	node := NewArray(p.stream.Current().Line)

	for first := true; !p.stream.Test(token.Punctuation, "}"); first = false {
		if !first {
			_, err := p.stream.Expect(token.Punctuation, ",",
				"A mapping value must be followed by a comma")
			if err != nil {
				return nil, err
			}

			// trailing comma
			if p.stream.Test(token.Punctuation, "}") {
				break
			}
		}

		if p.stream.Test(token.Spread) {
			value, err := p.parseElement()
			if err != nil {
				return nil, err
			}

			// Spread pairs take a synthetic key, whatever the explicit keys.
			node.AddElement(value, nil)

			continue
		}

		var key *Node

		t := p.stream.Current()

		switch {
		case t.Kind == token.Name:
			p.stream.Next()

			key = NewConstant(t.Value, t.Line)

			// {a} is short for {"a": a}
			if p.stream.Test(token.Punctuation, ",", "}") {
				node.AddElement(NewName(t.Value, t.Line), key)

				continue
			}

		case t.Kind == token.String:
			p.stream.Next()

			key = NewConstant(t.Value, t.Line)

		case t.Kind == token.Number:
			p.stream.Next()

			key = NewConstant(parseNumber(t.Value), t.Line)

		case t.Test(token.Punctuation, "("):
			key, err = p.ParseExpression(0)
			if err != nil {
				return nil, err
			}

		default:
			return nil, newSyntaxError(ErrUnexpectedToken,
				"A mapping key must be a quoted string, a number, a name, "+
					"or an expression enclosed in parentheses (unexpected token "+
					strconv.Quote(t.Kind.String())+" of value "+
					strconv.Quote(t.Value)+".",
				t.Line)
		}

		_, err := p.stream.Expect(token.Punctuation, ":",
			"A mapping key must be followed by a colon (:)")
		if err != nil {
			return nil, err.(*SyntaxError).withKind(ErrMixedLiteralForm)
		}

		value, err := p.ParseExpression(0)
		if err != nil {
			return nil, err
		}

		node.AddElement(value, key)
	}

	_, err = p.stream.Expect(token.Punctuation, "}",
		"An opened mapping is not properly closed")
	if err != nil {
		return nil, err
	}

	return node, nil
}

// parseString folds a string literal and its interpolated segments into a
// left-leaning concatenation tree. Two literal segments may only follow
// each other when string concatenation is enabled.
func (p *Parser) parseString() (*Node, error) {
	var nodes []*Node

	for nextCanBeString := true; ; {
		if t, ok := p.stream.Current(), p.stream.Test(token.String); ok && nextCanBeString {
			p.stream.Next()

			nodes = append(nodes, NewConstant(t.Value, t.Line))
			nextCanBeString = p.stringConcat

			continue
		}

		if _, ok := p.stream.NextIf(token.InterpolationStart); ok {
			expr, err := p.ParseExpression(0)
			if err != nil {
				return nil, err
			}

			_, err = p.stream.Expect(token.InterpolationEnd, "", "")
			if err != nil {
				return nil, err
			}

			nodes = append(nodes, expr)
			nextCanBeString = true

			continue
		}

		break
	}

	expr := nodes[0]
	for _, n := range nodes[1:] {
		expr = NewConcat(expr, n, n.Line)
	}

	return expr, nil
}

// ParseArguments parses a parenthesized argument list. With named set,
// arguments may be given as name=value or name: value; names holds the
// argument name or "" for each positional argument.
//
// With definition set the list declares macro parameters: every argument
// must be a name, defaults must be constants, and a parameter without a
// default gets an implicit null constant. Use [Parser.ParseMacroArguments]
// to obtain the declaration as a mapping.
func (p *Parser) ParseArguments(named, definition bool) (args []*Node, names []string, err error) {
	_, err = p.stream.Expect(token.Punctuation, "(",
		"A list of arguments must begin with an opening parenthesis")
	if err != nil {
		return nil, nil, err
	}

	for !p.stream.Test(token.Punctuation, ")") {
		if len(args) > 0 {
			_, err = p.stream.Expect(token.Punctuation, ",",
				"Arguments must be separated by a comma")
			if err != nil {
				return nil, nil, err
			}

			// trailing comma
			if p.stream.Test(token.Punctuation, ")") {
				break
			}
		}

		var (
			value *Node
			line  = p.stream.Current().Line
		)

		if definition {
			t, err := p.stream.Expect(token.Name, "", "An argument must be a name")
			if err != nil {
				return nil, nil, err.(*SyntaxError).withKind(ErrInvalidAssignmentTarget)
			}

			value = NewName(t.Value, p.stream.Current().Line)
		} else {
			value, err = p.ParseExpression(0)
			if err != nil {
				return nil, nil, err
			}
		}

		name := ""

		if named {
			t, ok := p.stream.NextIf(token.Operator, "=")
			if !ok {
				t, ok = p.stream.NextIf(token.Punctuation, ":")
			}

			if ok {
				if value.Type != TypeName {
					return nil, nil, newSyntaxError(ErrInvalidArgument,
						"A parameter name must be a string, "+
							strconv.Quote(value.Type.String())+" given.",
						t.Line)
				}

				name = value.Name

				value, err = p.ParseExpression(0)
				if err != nil {
					return nil, nil, err
				}

				if definition && !value.IsConstant() {
					return nil, nil, newSyntaxError(ErrNonConstantDefault,
						"A default value for an argument must be a constant "+
							"(a boolean, a string, a number, a sequence, or a mapping).",
						t.Line)
				}
			}
		}

		if definition {
			if name == "" {
				name = value.Name
				value = NewConstant(nil, value.Line)
				value.Implicit = true
			}

			if _, err := NewAssignName(name, line); err != nil {
				return nil, nil, err
			}

			if slices.Contains(names, name) {
				return nil, nil, newSyntaxError(ErrInvalidArgument,
					"Argument "+strconv.Quote(name)+" is defined twice.", line)
			}
		}

		args = append(args, value)
		names = append(names, name)
	}

	_, err = p.stream.Expect(token.Punctuation, ")",
		"A list of arguments must be closed by a parenthesis")
	if err != nil {
		return nil, nil, err
	}

	return args, names, nil
}

// ParseMacroArguments parses a parenthesized macro parameter declaration
// and returns it as a mapping from parameter name to default value.
func (p *Parser) ParseMacroArguments() (*Node, error) {
	line := p.stream.Current().Line

	args, names, err := p.ParseArguments(true, true)
	if err != nil {
		return nil, err
	}

	node := NewArray(line)

	for i, a := range args {
		if names[i] == "" {
			continue
		}

		node.AddElement(a, NewConstant(names[i], a.Line))
	}

	return node, nil
}

// bindArguments reorders named arguments into the positional order declared
// by sym.Params. Arguments passed by name after a skipped optional
// parameter pull in that parameter's default. Extra named arguments go to a
// trailing mapping when sym is variadic.
func bindArguments(
	kind, name string,
	sym *Symbol,
	args []*Node,
	names []string,
	line int,
) ([]*Node, error) {
	named := 0
	for _, n := range names {
		if n != "" {
			named++
		}
	}

	if named == 0 {
		return args, nil
	}

	if sym == nil || len(sym.Params) == 0 {
		return nil, rejectNamed(names, kind, name, line)
	}

	var (
		positional []*Node
		byName     = make(map[string]*Node, named)
		order      []string
	)

	for i, a := range args {
		if names[i] == "" {
			if len(byName) > 0 {
				return nil, newSyntaxError(ErrInvalidArgument,
					"Positional arguments cannot be used after named arguments for "+
						kind+" "+strconv.Quote(name)+".",
					line)
			}

			positional = append(positional, a)

			continue
		}

		if _, dup := byName[names[i]]; dup {
			return nil, newSyntaxError(ErrInvalidArgument,
				"Argument "+strconv.Quote(names[i])+" is defined twice for "+
					kind+" "+strconv.Quote(name)+".",
				line)
		}

		byName[names[i]] = a
		order = append(order, names[i])
	}

	out := make([]*Node, 0, len(sym.Params)+1)
	var pending []*Node

	for i, param := range sym.Params {
		if i < len(positional) {
			if _, dup := byName[param]; dup {
				return nil, newSyntaxError(ErrInvalidArgument,
					"Argument "+strconv.Quote(param)+" is defined twice for "+
						kind+" "+strconv.Quote(name)+".",
					line)
			}

			out = append(out, positional[i])

			continue
		}

		if a, ok := byName[param]; ok {
			out = append(out, pending...)
			out = append(out, a)
			pending = nil

			delete(byName, param)

			continue
		}

		def, ok := sym.Defaults[param]
		if !ok {
			if len(byName) == 0 {
				break
			}

			return nil, newSyntaxError(ErrInvalidArgument,
				"Value for argument "+strconv.Quote(param)+" is required for "+
					kind+" "+strconv.Quote(name)+".",
				line)
		}

		pending = append(pending, NewConstant(def, line))
	}

	if len(positional) > len(sym.Params) {
		out = append(out, positional[len(sym.Params):]...)
	}

	if len(byName) == 0 {
		return out, nil
	}

	if sym.Variadic {
		extra := NewArray(line)

		for _, n := range order {
			if a, ok := byName[n]; ok {
				extra.AddElement(a, NewConstant(n, a.Line))
			}
		}

		return append(out, extra), nil
	}

	unknown := make([]string, 0, len(byName))
	for _, n := range order {
		if _, ok := byName[n]; ok {
			unknown = append(unknown, n)
		}
	}

	plural := ""
	if len(unknown) > 1 {
		plural = "s"
	}

	return nil, newSyntaxError(ErrInvalidArgument,
		"Unknown argument"+plural+` "`+strings.Join(unknown, `", "`)+`"`+
			" for "+kind+" "+strconv.Quote(name+"("+strings.Join(sym.Params, ", ")+")")+".",
		line)
}

// rejectNamed fails when any argument was passed by name.
func rejectNamed(names []string, kind, name string, line int) error {
	for _, n := range names {
		if n != "" {
			return newSyntaxError(ErrInvalidArgument,
				"Named arguments are not supported for "+kind+" "+
					strconv.Quote(name)+".",
				line)
		}
	}

	return nil
}
