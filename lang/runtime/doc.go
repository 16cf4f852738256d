// Package runtime executes the expr-lang code emitted by package lang.
//
// A compiled fragment reads three bindings:
//
//	context  map[string]any  template variables, including globals
//	macros   map[any]any     template-scoped variables and imported macros
//	this     Unit            the template being rendered
//
// and calls the helper functions listed in [lang.Helpers]. [Runtime]
// provides both:
//
//	env, _ := lang.NewEnvironment()
//	rt := runtime.New(env, runtime.WithSystemGlobals())
//	out, err := rt.Render(ctx, token.Source{Name: "index", Code: `name|upper`},
//		map[string]any{"name": "ann"})
//	// "ANN"
//
// Helpers follow the loose semantics of the template language: a value is
// false when it is nil, false, zero, "", "0", or an empty collection;
// string conversion of nil is ""; the ~ operator concatenates string forms.
package runtime
