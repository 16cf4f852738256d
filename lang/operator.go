package lang

import "github.com/ardnew/stencil/lang/token"

// Associativity of a binary operator.
type Associativity int

const (
	LeftAssoc Associativity = iota
	RightAssoc
)

// Operator is an entry of the unary or binary operator table.
type Operator struct {
	Precedence    int
	Associativity Associativity
}

// UnaryOperators maps each prefix operator to its precedence.
var UnaryOperators = map[string]Operator{
	"not": {Precedence: 50},
	"-":   {Precedence: 500},
	"+":   {Precedence: 500},
}

// BinaryOperators maps each infix operator to its precedence and
// associativity. "is" and "is not" introduce a test rather than a right
// operand.
var BinaryOperators = map[string]Operator{
	"or":          {Precedence: 10},
	"xor":         {Precedence: 12},
	"and":         {Precedence: 15},
	"b-or":        {Precedence: 16},
	"b-xor":       {Precedence: 17},
	"b-and":       {Precedence: 18},
	"==":          {Precedence: 20},
	"!=":          {Precedence: 20},
	"<=>":         {Precedence: 20},
	"<":           {Precedence: 20},
	">":           {Precedence: 20},
	">=":          {Precedence: 20},
	"<=":          {Precedence: 20},
	"not in":      {Precedence: 20},
	"in":          {Precedence: 20},
	"matches":     {Precedence: 20},
	"starts with": {Precedence: 20},
	"ends with":   {Precedence: 20},
	"..":          {Precedence: 25},
	"+":           {Precedence: 30},
	"-":           {Precedence: 30},
	"~":           {Precedence: 40},
	"*":           {Precedence: 60},
	"/":           {Precedence: 60},
	"//":          {Precedence: 60},
	"%":           {Precedence: 60},
	"is":          {Precedence: 100},
	"is not":      {Precedence: 100},
	"**":          {Precedence: 200, Associativity: RightAssoc},
	"??":          {Precedence: 300, Associativity: RightAssoc},
}

func unaryOperator(t token.Token) (Operator, bool) {
	if t.Kind != token.Operator {
		return Operator{}, false
	}

	op, ok := UnaryOperators[t.Value]

	return op, ok
}

func binaryOperator(t token.Token) (Operator, bool) {
	if t.Kind != token.Operator {
		return Operator{}, false
	}

	op, ok := BinaryOperators[t.Value]

	return op, ok
}
