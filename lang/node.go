package lang

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/ardnew/stencil/lang/token"
)

// Type identifies the variant of a [Node]. The set of variants is closed;
// each variant has a fixed set of child fields.
type Type int

// Node variants.
const (
	TypeConstant         Type = iota // Value
	TypeName                         // Name
	TypeAssignName                   // Name
	TypeTemplateVariable             // Value (string, int64, or nil until compiled)
	TypeArray                        // Elements
	TypeUnary                        // Operator, Expr
	TypeBinary                       // Operator, Left, Right
	TypeConditional                  // Expr, Then (nil for ?:), Else
	TypeGetAttr                      // Access, Expr, Attribute, Arguments
	TypeFunction                     // Name, Symbol, Captures, Arguments
	TypeFilter                       // Name, Symbol, Captures, Expr, Arguments
	TypeTest                         // Name, Symbol, Captures, Expr, Arguments
	TypeSpread                       // Expr
)

// String returns the lower-case variant name.
func (t Type) String() string {
	switch t {
	case TypeConstant:
		return "constant"

	case TypeName:
		return "name"

	case TypeAssignName:
		return "assign_name"

	case TypeTemplateVariable:
		return "template_variable"

	case TypeArray:
		return "array"

	case TypeUnary:
		return "unary"

	case TypeBinary:
		return "binary"

	case TypeConditional:
		return "conditional"

	case TypeGetAttr:
		return "get_attr"

	case TypeFunction:
		return "function"

	case TypeFilter:
		return "filter"

	case TypeTest:
		return "test"

	case TypeSpread:
		return "spread"

	default:
		return "unknown(" + strconv.Itoa(int(t)) + ")"
	}
}

// Access is the syntax used by a [TypeGetAttr] node.
type Access int

const (
	// AccessAny is obj.name.
	AccessAny Access = iota
	// AccessMethod is obj.name(args).
	AccessMethod
	// AccessArray is obj[expr].
	AccessArray
)

// String returns the access kind name.
func (a Access) String() string {
	switch a {
	case AccessMethod:
		return "method"

	case AccessArray:
		return "array"

	default:
		return "any"
	}
}

// Node is an expression or assignment target. Only the fields documented
// for its [Type] are used.
type Node struct {
	Type Type
	Line int
	// Source is assigned after parsing and is only used for diagnostics.
	Source *token.Source

	Value    any
	Name     string
	Operator string
	Access   Access
	// Implicit marks a constant synthesized for a macro argument declared
	// without a default.
	Implicit bool
	Symbol   *Symbol
	Captures []string

	Expr      *Node
	Left      *Node
	Right     *Node
	Then      *Node
	Else      *Node
	Attribute *Node
	Elements  []*Node
	Arguments []*Node

	// index is the last synthetic key handed out by AddElement.
	index int64
}

// NewConstant returns a constant holding nil, a bool, an int64, a float64,
// or a string.
func NewConstant(value any, line int) *Node {
	return &Node{Type: TypeConstant, Value: value, Line: line}
}

// NewName returns a reference to a variable of the render context.
func NewName(name string, line int) *Node {
	return &Node{Type: TypeName, Name: name, Line: line}
}

// isReservedLiteral reports whether name spells true, false, none, or null
// in any letter case.
func isReservedLiteral(name string) bool {
	switch strings.ToLower(name) {
	case "true", "false", "none", "null":
		return true
	}

	return false
}

// NewAssignName returns an assignment target in the render context. Names
// that spell a constant literal are rejected.
func NewAssignName(name string, line int) (*Node, error) {
	if isReservedLiteral(name) {
		return nil, newSyntaxError(ErrInvalidAssignmentTarget,
			"You cannot assign a value to "+strconv.Quote(name)+".", line)
	}

	return &Node{Type: TypeAssignName, Name: name, Line: line}, nil
}

var digits = regexp.MustCompile(`^[0-9]+$`)

// reservedNames are mangled so template variables never shadow the
// bindings of the compiled render unit.
var reservedNames = map[string]bool{
	"varargs": true,
	"context": true,
	"macros":  true,
	"blocks":  true,
	"this":    true,
}

// NewTemplateVariable returns a variable of the render unit's macro store.
// Digit-only names become integers and reserved names are wrapped in
// underscores. An empty name leaves the variable anonymous: a name is
// generated the first time it is compiled and kept from then on.
func NewTemplateVariable(name string, line int) (*Node, error) {
	n := &Node{Type: TypeTemplateVariable, Line: line}

	switch {
	case name == "":

	case isReservedLiteral(name):
		return nil, newSyntaxError(ErrInvalidAssignmentTarget,
			"You cannot assign a value to "+strconv.Quote(name)+".", line)

	case digits.MatchString(name):
		i, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			n.Value = name
		} else {
			n.Value = i
		}

	case reservedNames[name]:
		n.Value = "_" + name + "_"

	default:
		n.Value = name
	}

	return n, nil
}

// NewArray returns a sequence or mapping literal. elements alternate keys
// and values. The next synthetic key continues after the largest
// non-negative integer key among them.
func NewArray(line int, elements ...*Node) *Node {
	n := &Node{Type: TypeArray, Line: line, index: -1}

	for i := 0; i+1 < len(elements); i += 2 {
		k := elements[i]
		if k.Type != TypeConstant {
			continue
		}

		if v, ok := k.Value.(int64); ok && v > n.index {
			n.index = v
		}
	}

	n.Elements = append(n.Elements, elements...)

	return n
}

// AddElement appends a pair to an array literal. A nil key is replaced by
// the next synthetic integer key.
func (n *Node) AddElement(value, key *Node) {
	if key == nil {
		n.index++
		key = NewConstant(n.index, value.Line)
	}

	n.Elements = append(n.Elements, key, value)
}

// Pairs returns the key/value pairs of an array literal.
func (n *Node) Pairs() [][2]*Node {
	out := make([][2]*Node, 0, len(n.Elements)/2)
	for i := 0; i+1 < len(n.Elements); i += 2 {
		out = append(out, [2]*Node{n.Elements[i], n.Elements[i+1]})
	}

	return out
}

// IsSequence reports whether the keys of an array literal are the integers
// 0, 1, 2, ... in order.
func (n *Node) IsSequence() bool {
	for i, p := range n.Pairs() {
		if p[0].Type != TypeConstant || p[0].Value != any(int64(i)) {
			return false
		}
	}

	return true
}

// NewUnary returns a prefix operation.
func NewUnary(op string, expr *Node, line int) *Node {
	return &Node{Type: TypeUnary, Operator: op, Expr: expr, Line: line}
}

// NewBinary returns an infix operation.
func NewBinary(op string, left, right *Node, line int) *Node {
	return &Node{Type: TypeBinary, Operator: op, Left: left, Right: right, Line: line}
}

// NewConcat returns the string concatenation of left and right.
func NewConcat(left, right *Node, line int) *Node {
	return NewBinary("~", left, right, line)
}

// NewConditional returns cond ? then : els. A nil then yields cond ?: els.
func NewConditional(cond, then, els *Node, line int) *Node {
	return &Node{Type: TypeConditional, Expr: cond, Then: then, Else: els, Line: line}
}

// NewGetAttr returns an attribute, item, or method access on obj.
func NewGetAttr(obj, attr *Node, args []*Node, access Access, line int) *Node {
	return &Node{
		Type:      TypeGetAttr,
		Expr:      obj,
		Attribute: attr,
		Arguments: args,
		Access:    access,
		Line:      line,
	}
}

// NewSpread marks expr for merging into the enclosing literal.
func NewSpread(expr *Node, line int) *Node {
	return &Node{Type: TypeSpread, Expr: expr, Line: line}
}

// NewFunction returns a call to a resolved function.
func NewFunction(name string, m Match, args []*Node, line int) *Node {
	return &Node{
		Type:      TypeFunction,
		Name:      name,
		Symbol:    m.Symbol,
		Captures:  m.Captures,
		Arguments: args,
		Line:      line,
	}
}

// NewFilter returns subject|name(args).
func NewFilter(subject *Node, name string, m Match, args []*Node, line int) *Node {
	n := NewFunction(name, m, args, line)
	n.Type = TypeFilter
	n.Expr = subject

	return n
}

// NewTest returns subject is name(args).
func NewTest(subject *Node, name string, m Match, args []*Node, line int) *Node {
	n := NewFunction(name, m, args, line)
	n.Type = TypeTest
	n.Expr = subject

	return n
}

// Children returns the child nodes in evaluation order.
func (n *Node) Children() []*Node {
	var out []*Node

	add := func(c ...*Node) {
		for _, x := range c {
			if x != nil {
				out = append(out, x)
			}
		}
	}

	switch n.Type {
	case TypeBinary:
		add(n.Left, n.Right)

	case TypeConditional:
		add(n.Expr, n.Then, n.Else)

	case TypeGetAttr:
		add(n.Expr, n.Attribute)
		add(n.Arguments...)

	case TypeArray:
		add(n.Elements...)

	default:
		add(n.Expr)
		add(n.Arguments...)
	}

	return out
}

// SetSource assigns src to n and all of its descendants.
func (n *Node) SetSource(src *token.Source) {
	if n == nil {
		return
	}

	n.Source = src

	for _, c := range n.Children() {
		c.SetSource(src)
	}
}

// IsConstant reports whether n is a constant, a negated or positive
// constant, or a literal made only of such nodes.
func (n *Node) IsConstant() bool {
	switch n.Type {
	case TypeConstant:
		return true

	case TypeUnary:
		if n.Operator != "-" && n.Operator != "+" || n.Expr == nil ||
			n.Expr.Type != TypeConstant {
			return false
		}

		switch n.Expr.Value.(type) {
		case int64, float64:
			return true
		}

		return false

	case TypeArray:

	default:
		return false
	}

	for _, c := range n.Children() {
		if !c.IsConstant() {
			return false
		}
	}

	return true
}

// LogValue implements slog.LogValuer.
func (n *Node) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", n.Type.String()),
		slog.Int("line", n.Line),
	)
}

// String renders the tree as an indented dump, one node per line.
func (n *Node) String() string {
	var sb strings.Builder

	n.dump(&sb, "", "")

	return strings.TrimSuffix(sb.String(), "\n")
}

func (n *Node) dump(sb *strings.Builder, indent, label string) {
	sb.WriteString(indent)

	if label != "" {
		sb.WriteString(label)
		sb.WriteString(": ")
	}

	if n == nil {
		sb.WriteString("<nil>\n")

		return
	}

	sb.WriteString(n.Type.String())
	sb.WriteString("(")
	sb.WriteString(strings.Join(n.attrs(), ", "))
	sb.WriteString(")\n")

	in := indent + "  "

	switch n.Type {
	case TypeBinary:
		n.Left.dump(sb, in, "left")
		n.Right.dump(sb, in, "right")

	case TypeConditional:
		n.Expr.dump(sb, in, "expr")

		if n.Then != nil {
			n.Then.dump(sb, in, "then")
		}

		n.Else.dump(sb, in, "else")

	case TypeArray:
		for _, p := range n.Pairs() {
			p[0].dump(sb, in, "key")
			p[1].dump(sb, in, "value")
		}

	case TypeGetAttr:
		n.Expr.dump(sb, in, "node")
		n.Attribute.dump(sb, in, "attribute")

		for i, a := range n.Arguments {
			a.dump(sb, in, strconv.Itoa(i))
		}

	default:
		if n.Expr != nil {
			n.Expr.dump(sb, in, "node")
		}

		for i, a := range n.Arguments {
			a.dump(sb, in, strconv.Itoa(i))
		}
	}
}

func (n *Node) attrs() []string {
	var out []string

	switch n.Type {
	case TypeConstant, TypeTemplateVariable:
		out = append(out, "value: "+repr(n.Value))

		if n.Implicit {
			out = append(out, "implicit: true")
		}

	case TypeName, TypeAssignName, TypeFunction, TypeFilter, TypeTest:
		out = append(out, "name: "+strconv.Quote(n.Name))

		if n.Symbol != nil && n.Symbol.IsPattern() {
			out = append(out, "pattern: "+strconv.Quote(n.Symbol.Name))
		}

	case TypeUnary, TypeBinary:
		out = append(out, "operator: "+strconv.Quote(n.Operator))

	case TypeGetAttr:
		out = append(out, "access: "+n.Access.String())
	}

	return append(out, "line: "+strconv.Itoa(n.Line))
}

// ToMap renders the tree as nested maps and slices suitable for YAML or
// JSON encoding.
func (n *Node) ToMap() map[string]any {
	if n == nil {
		return nil
	}

	m := map[string]any{
		"type": n.Type.String(),
		"line": n.Line,
	}

	list := func(nodes []*Node) []any {
		out := make([]any, len(nodes))
		for i, c := range nodes {
			out[i] = c.ToMap()
		}

		return out
	}

	switch n.Type {
	case TypeConstant, TypeTemplateVariable:
		m["value"] = n.Value

		if n.Implicit {
			m["implicit"] = true
		}

	case TypeName, TypeAssignName:
		m["name"] = n.Name

	case TypeUnary:
		m["operator"] = n.Operator
		m["node"] = n.Expr.ToMap()

	case TypeBinary:
		m["operator"] = n.Operator
		m["left"] = n.Left.ToMap()
		m["right"] = n.Right.ToMap()

	case TypeConditional:
		m["expr"] = n.Expr.ToMap()
		if n.Then != nil {
			m["then"] = n.Then.ToMap()
		}

		m["else"] = n.Else.ToMap()

	case TypeArray:
		pairs := make([]any, 0, len(n.Elements)/2)
		for _, p := range n.Pairs() {
			pairs = append(pairs, map[string]any{
				"key":   p[0].ToMap(),
				"value": p[1].ToMap(),
			})
		}

		m["elements"] = pairs

	case TypeGetAttr:
		m["access"] = n.Access.String()
		m["node"] = n.Expr.ToMap()
		m["attribute"] = n.Attribute.ToMap()

		if n.Arguments != nil {
			m["arguments"] = list(n.Arguments)
		}

	case TypeSpread:
		m["node"] = n.Expr.ToMap()

	case TypeFunction, TypeFilter, TypeTest:
		m["name"] = n.Name
		if n.Symbol != nil && n.Symbol.IsPattern() {
			m["pattern"] = n.Symbol.Name
			m["captures"] = n.Captures
		}

		if n.Expr != nil {
			m["node"] = n.Expr.ToMap()
		}

		m["arguments"] = list(n.Arguments)
	}

	return m
}
