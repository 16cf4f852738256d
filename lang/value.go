package lang

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// The functions in this file define how compiled code treats the dynamic
// values it handles: nil, bools, numbers of any Go numeric type, strings,
// slices, maps, and structs.

// Truthy reports whether v counts as true in a condition. nil, false, zero
// numbers, "", "0", and empty collections are false.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false

	case bool:
		return v

	case string:
		return v != "" && v != "0"
	}

	if f, ok := toFloat(v); ok {
		return f != 0
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0

	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}

	return true
}

// Empty reports whether v is nil, false, "", or an empty collection.
// Unlike [Truthy], zero is not empty.
func Empty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true

	case bool:
		return !v

	case string:
		return v == ""
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}

	return false
}

// ToString converts v for output and concatenation. nil and false become
// "", true becomes "1".
func ToString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""

	case string:
		return v

	case bool:
		if v {
			return "1"
		}

		return ""

	case float32:
		return formatFloat(float64(v))

	case float64:
		return formatFloat(v)

	case fmt.Stringer:
		return v.String()
	}

	if i, ok := toInt(v); ok {
		return strconv.FormatInt(i, 10)
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return "Array"

	case reflect.Map:
		return "Array"
	}

	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	return strconv.FormatFloat(f, 'G', 14, 64)
}

// toInt converts integer kinds, and floats with no fractional part.
func toInt(v any) (int64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return int64(rv.Uint()), true

	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f), true
		}
	}

	return 0, false
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}

	if i, ok := toInt(v); ok {
		return float64(i), true
	}

	return 0, false
}

// ToNumber converts v to an int64 or a float64. Numeric strings are
// parsed; anything else converts to 0.
func ToNumber(v any) any {
	switch v := v.(type) {
	case nil:
		return int64(0)

	case bool:
		if v {
			return int64(1)
		}

		return int64(0)

	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}

		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}

		return int64(0)

	case float32, float64:
		f, _ := toFloat(v)

		return f
	}

	if i, ok := toInt(v); ok {
		return i
	}

	return int64(0)
}

// ToFloat converts v to a float64 through [ToNumber].
func ToFloat(v any) float64 {
	switch n := ToNumber(v).(type) {
	case int64:
		return float64(n)

	case float64:
		return n
	}

	return 0
}

// ToInt converts v to an int64 through [ToNumber], truncating floats.
func ToInt(v any) int64 {
	switch n := ToNumber(v).(type) {
	case int64:
		return n

	case float64:
		return int64(n)
	}

	return 0
}

func isNumeric(v any) bool {
	switch v := v.(type) {
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)

		return err == nil

	case bool:
		return false
	}

	_, ok := toFloat(v)

	return ok
}

// Compare orders a and b: numerically when both are numeric, otherwise by
// their string forms. It returns -1, 0, or 1.
func Compare(a, b any) int {
	if isNumeric(a) && isNumeric(b) {
		return cmp.Compare(ToFloat(a), ToFloat(b))
	}

	return cmp.Compare(ToString(a), ToString(b))
}

// IsSequence reports whether v is a slice or array.
func IsSequence(v any) bool {
	if v == nil {
		return false
	}

	k := reflect.ValueOf(v).Kind()

	return k == reflect.Slice || k == reflect.Array
}

// IsMapping reports whether v is a map.
func IsMapping(v any) bool {
	return v != nil && reflect.ValueOf(v).Kind() == reflect.Map
}

// Length returns the number of characters of a string, the number of
// elements of a collection, or the length of the string form of anything
// else.
func Length(v any) int {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s)
	}

	if v == nil {
		return 0
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	}

	return utf8.RuneCountInString(ToString(v))
}

// Keys returns the keys of a mapping in sorted order, or the indexes of a
// sequence.
func Keys(v any) []any {
	if v == nil {
		return []any{}
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = i
		}

		return out

	case reflect.Map:
		keys := rv.MapKeys()
		out := make([]any, len(keys))

		for i, k := range keys {
			out[i] = k.Interface()
		}

		slices.SortFunc(out, Compare)

		return out
	}

	return []any{}
}

// Values returns the elements of a sequence, or the values of a mapping in
// key order. A string yields its characters and a scalar yields itself.
func Values(v any) []any {
	if v == nil {
		return []any{}
	}

	if s, ok := v.(string); ok {
		out := make([]any, 0, len(s))
		for _, r := range s {
			out = append(out, string(r))
		}

		return out
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}

		return out

	case reflect.Map:
		keys := Keys(v)
		out := make([]any, len(keys))

		for i, k := range keys {
			out[i] = rv.MapIndex(reflect.ValueOf(k)).Interface()
		}

		return out
	}

	return []any{v}
}

// ToMap copies a mapping into a map keyed by the string form of its keys.
// A sequence is keyed by index.
func ToMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return maps.Clone(m)
	}

	out := make(map[string]any)

	if v == nil {
		return out
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			out[ToString(iter.Key().Interface())] = iter.Value().Interface()
		}

	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			out[strconv.Itoa(i)] = rv.Index(i).Interface()
		}
	}

	return out
}

// Attr returns the attribute, item, or method result named by key. Maps
// are indexed by key, sequences by integer index, and structs by field or
// method name; a lower-case name also matches its exported spelling.
// Missing attributes yield nil. args are passed to methods.
func Attr(obj, key any, args ...any) (any, error) {
	if obj == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(obj)

	switch rv.Kind() {
	case reflect.Map:
		if m, ok := obj.(map[string]any); ok {
			return m[ToString(key)], nil
		}

		return mapIndex(rv, key), nil

	case reflect.Slice, reflect.Array:
		if !isNumeric(key) {
			return nil, nil
		}

		i := ToInt(key)
		if i < 0 || i >= int64(rv.Len()) {
			return nil, nil
		}

		return rv.Index(int(i)).Interface(), nil
	}

	name := ToString(key)

	for _, n := range []string{name, exported(name)} {
		if m := rv.MethodByName(n); m.IsValid() {
			return callMethod(m, name, args)
		}

		sv := reflect.Indirect(rv)
		if sv.Kind() == reflect.Struct {
			if f := sv.FieldByName(n); f.IsValid() && f.CanInterface() {
				return f.Interface(), nil
			}
		}
	}

	return nil, nil
}

func mapIndex(rv reflect.Value, key any) any {
	kt := rv.Type().Key()

	var k reflect.Value

	switch {
	case key != nil && reflect.TypeOf(key).AssignableTo(kt):
		k = reflect.ValueOf(key)

	case kt.Kind() == reflect.String:
		k = reflect.ValueOf(ToString(key)).Convert(kt)

	case key != nil && isNumeric(key) && reflect.TypeOf(key).ConvertibleTo(kt):
		k = reflect.ValueOf(key).Convert(kt)

	case kt.Kind() == reflect.Interface:
		// Try the key as given, then its string form.
		if key != nil {
			if v := rv.MapIndex(reflect.ValueOf(key)); v.IsValid() {
				return v.Interface()
			}
		}

		k = reflect.ValueOf(ToString(key))

	default:
		return nil
	}

	if v := rv.MapIndex(k); v.IsValid() {
		return v.Interface()
	}

	return nil
}

func exported(name string) string {
	r, n := utf8.DecodeRuneInString(name)
	if n == 0 {
		return name
	}

	return string(unicode.ToUpper(r)) + name[n:]
}

func callMethod(m reflect.Value, name string, args []any) (any, error) {
	t := m.Type()
	in := make([]reflect.Value, len(args))

	for i, a := range args {
		var pt reflect.Type

		switch {
		case t.IsVariadic() && i >= t.NumIn()-1:
			pt = t.In(t.NumIn() - 1).Elem()

		case i < t.NumIn():
			pt = t.In(i)

		default:
			return nil, ErrEvaluate.With(
				slog.String("method", name),
				slog.String("reason", "too many arguments"))
		}

		if a == nil {
			in[i] = reflect.Zero(pt)

			continue
		}

		av := reflect.ValueOf(a)

		switch {
		case av.Type().AssignableTo(pt):
			in[i] = av

		case av.Type().ConvertibleTo(pt):
			in[i] = av.Convert(pt)

		default:
			return nil, ErrEvaluate.With(
				slog.String("method", name),
				slog.Int("argument", i),
				slog.String("type", av.Type().String()))
		}
	}

	if n := t.NumIn(); len(in) < n && !(t.IsVariadic() && len(in) == n-1) {
		return nil, ErrEvaluate.With(
			slog.String("method", name),
			slog.String("reason", "not enough arguments"))
	}

	out := m.Call(in)

	switch len(out) {
	case 0:
		return nil, nil

	case 1:
		return out[0].Interface(), nil
	}

	if err, ok := out[len(out)-1].Interface().(error); ok && err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("method", name))
	}

	return out[0].Interface(), nil
}
