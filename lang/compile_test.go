package lang

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ardnew/stencil/lang/token"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  []Option
		want  string
	}{
		{name: "integer", input: "42", want: `42`},
		{name: "float", input: "1.5", want: `1.5`},
		{name: "whole float", input: "1e3", want: `1000.0`},
		{name: "string", input: `"x\"y"`, want: `"x\"y"`},
		{name: "null", input: "null", want: `nil`},
		{name: "bool", input: "TRUE", want: `true`},
		{name: "name", input: "user", want: `context["user"]`},
		{name: "whole context", input: "_context", want: `context`},
		{name: "self", input: "_self", want: `this.Name`},
		{name: "arithmetic", input: "1 + 2 * 3", want: `(1 + (2 * 3))`},
		{name: "power", input: "2 ** 3", want: `(2 ** 3)`},
		{name: "comparison", input: "a <= b", want: `(context["a"] <= context["b"])`},
		{name: "null coalescing", input: "a ?? b ?? c", want: `(context["a"] ?? (context["b"] ?? context["c"]))`},
		{name: "unary minus", input: "-1", want: `(-1)`},
		{name: "concat", input: "a ~ 'b'", want: `__concat(context["a"], "b")`},
		{name: "range", input: "1..3", want: `__range(1, 3)`},
		{name: "floor division", input: "7 // 2", want: `__floordiv(7, 2)`},
		{name: "spaceship", input: "a <=> b", want: `__compare(context["a"], context["b"])`},
		{name: "in", input: "a in [1, 2]", want: `__in(context["a"], [1, 2])`},
		{name: "not in", input: "a not in b", want: `(not __in(context["a"], context["b"]))`},
		{name: "matches", input: "a matches '/^x/'", want: `__matches(context["a"], "/^x/")`},
		{name: "starts with", input: "a starts with 'x'", want: `__startswith(context["a"], "x")`},
		{name: "ends with", input: "a ends with 'x'", want: `__endswith(context["a"], "x")`},
		{name: "bitwise", input: "a b-and 3", want: `bitand(context["a"], 3)`},
		{
			name:  "logical",
			input: "a and not b",
			want:  `(__bool(context["a"]) and (not __bool(context["b"])))`,
		},
		{
			name:  "logical comparisons",
			input: "a < 1 or not (b == 2)",
			want:  `((context["a"] < 1) or (not (context["b"] == 2)))`,
		},
		{
			name:  "double negation",
			input: "not not a",
			want:  `(not (not __bool(context["a"])))`,
		},
		{name: "xor", input: "a xor b", want: `(__bool(context["a"]) != __bool(context["b"]))`},
		{name: "conditional", input: "a ? 1 : 2", want: `(__bool(context["a"]) ? 1 : 2)`},
		{name: "conditional without else", input: "a ? b", want: `(__bool(context["a"]) ? context["b"] : "")`},
		{
			name:  "elvis",
			input: "a ?: 2",
			want:  `(let __internal_compile_0 = context["a"]; __bool(__internal_compile_0) ? __internal_compile_0 : 2)`,
		},
		{name: "attribute", input: "a.b", want: `__attr(context["a"], "b")`},
		{name: "item", input: "a[0]", want: `__attr(context["a"], 0)`},
		{name: "method", input: "a.b(1, c)", want: `__attr(context["a"], "b", [1, context["c"]])`},
		{name: "method without arguments", input: "a.b()", want: `__attr(context["a"], "b", [])`},
		{name: "filter", input: "a|upper", want: `__filter("upper", context["a"])`},
		{name: "filter with arguments", input: "a|join(', ')", want: `__filter("join", context["a"], ", ")`},
		{name: "slice", input: "a[1:2]", want: `__filter("slice", context["a"], 1, 2)`},
		{name: "function", input: "range(1, 3)", want: `__function("range", 1, 3)`},
		{
			name:  "pattern function",
			input: "asset_css('x')",
			opts:  []Option{WithFunctions(Symbol{Name: "asset_*", Callable: nop})},
			want:  `__function("asset_*", "css", "x")`,
		},
		{name: "defined name", input: "a is defined", want: `("a" in context)`},
		{name: "defined self", input: "_self is defined", want: `true`},
		{name: "defined literal", input: "[1] is defined", want: `true`},
		{name: "defined attribute", input: "a.b is defined", want: `__test("defined", __attr(context["a"], "b"))`},
		{name: "test with argument", input: "a is divisible by 3", want: `__test("divisible by", context["a"], 3)`},
		{name: "negated test", input: "a is not odd", want: `(not __bool(__test("odd", context["a"])))`},
		{name: "interpolation", input: `"a #{b}"`, want: `__concat("a ", context["b"])`},
		{name: "sequence", input: "[1, 'x']", want: `[1, "x"]`},
		{name: "empty sequence", input: "[]", want: `[]`},
		{name: "empty mapping", input: "{}", want: `[]`},
		{name: "mapping", input: "{a: 1, 'b': c}", want: `{"a": 1, "b": context["c"]}`},
		{name: "mapping with integer keys", input: "{1: 2}", want: `__map(1, 2)`},
		{name: "mapping with computed keys", input: "{(k): 1, a: 2}", want: `__map(context["k"], 1, "a", 2)`},
		{name: "leading spread", input: "[...a]", want: `__merge([], context["a"])`},
		{name: "inner spread", input: "[1, ...a, 2]", want: `__merge(__merge([1], context["a"]), [2])`},
		{name: "mapping spread", input: "{a: 1, ...b}", want: `__merge({"a": 1}, context["b"])`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.opts...)

			got, err := env.CompileSource(context.Background(), token.Source{Code: tt.input})
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected:\n  %s\ngot:\n  %s", tt.want, got)
			}
		})
	}
}

func TestCompile_Nodes(t *testing.T) {
	assign, err := NewAssignName("a", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	named := func(name string) *Node {
		n, err := NewTemplateVariable(name, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		return n
	}

	tests := []struct {
		name string
		node *Node
		want string
	}{
		{name: "assign name", node: assign, want: `context["a"]`},
		{name: "template variable", node: named("foo"), want: `macros["foo"]`},
		{name: "numeric template variable", node: named("3"), want: `macros[3]`},
		{name: "reserved template variable", node: named("this"), want: `macros["_this_"]`},
		{name: "self template variable", node: named("_self"), want: `this`},
		{name: "infinity", node: NewConstant(math.Inf(1), 1), want: `(1.0 / 0.0)`},
		{name: "negative infinity", node: NewConstant(math.Inf(-1), 1), want: `(-1.0 / 0.0)`},
		{name: "not a number", node: NewConstant(math.NaN(), 1), want: `(0.0 / 0.0)`},
		{name: "large float", node: NewConstant(1.5e300, 1), want: `1.5e+300`},
		{
			name: "array with preset keys",
			node: NewArray(1,
				NewConstant(int64(0), 1), NewConstant("a", 1),
				NewConstant(int64(1), 1), NewConstant("b", 1)),
			want: `["a", "b"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCompiler().Compile(tt.node)
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCompile_AnonymousVariable(t *testing.T) {
	v, err := NewTemplateVariable("", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := NewCompiler()
	c.VarName()

	first, err := c.Compile(v)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if first != `macros["__internal_compile_1"]` {
		t.Errorf("unexpected first compilation %s", first)
	}

	second, err := NewCompiler().Compile(v)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if second != first {
		t.Errorf("name changed between compilations: %s, then %s", first, second)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		node *Node
	}{
		{name: "nil", node: nil},
		{name: "bare spread", node: NewSpread(NewName("a", 1), 1)},
		{name: "unresolved function", node: NewFunction("f", Match{}, nil, 1)},
		{name: "unknown operator", node: NewBinary("===", NewName("a", 1), NewName("b", 1), 1)},
		{name: "nested failure", node: NewBinary("+", NewConstant(int64(1), 1), NewSpread(NewName("a", 1), 1), 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompiler()

			got, err := c.Compile(tt.node)
			if !errors.Is(err, ErrCompile) {
				t.Fatalf("expected compile error, got %v", err)
			}

			if got != "" {
				t.Errorf("expected no code, got %s", got)
			}

			if !errors.Is(c.Err(), ErrCompile) {
				t.Errorf("expected Err to report the failure, got %v", c.Err())
			}
		})
	}
}
