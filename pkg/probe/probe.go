// Package probe resolves optional camera-source capabilities at runtime.
//
// The exact method surface of a camera source varies across hardware and
// firmware revisions, so optional metadata (intrinsics, per-frame
// timestamps) is looked up by name from an ordered candidate list rather
// than demanded from the Source interface. First candidate that yields a
// value wins; an unresolved probe is not an error.
package probe

import "reflect"

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Probe tries each candidate method name on handle, in order, and returns
// the first resolved value. Accepted method shapes:
//
//	func() T
//	func() (T, bool)
//	func(*T) bool
//
// A comma-ok or try-shape method returning false means "keep probing".
// Candidates that do not exist, or exist with an unsupported shape, are
// skipped silently.
func Probe(handle any, candidates []string) (any, bool) {
	if handle == nil {
		return nil, false
	}
	v := reflect.ValueOf(handle)
	for _, name := range candidates {
		m := v.MethodByName(name)
		if !m.IsValid() {
			continue
		}
		if val, ok := invoke(m); ok {
			return val, true
		}
	}

	return nil, false
}

func invoke(m reflect.Value) (any, bool) {
	t := m.Type()
	if t.IsVariadic() {
		return nil, false
	}
	switch {
	case t.NumIn() == 0 && t.NumOut() == 1:
		if t.Out(0).Implements(errType) {
			return nil, false
		}
		return accept(m.Call(nil)[0])
	case t.NumIn() == 0 && t.NumOut() == 2 && t.Out(1).Kind() == reflect.Bool:
		out := m.Call(nil)
		if !out[1].Bool() {
			return nil, false
		}
		return accept(out[0])
	case t.NumIn() == 1 && t.In(0).Kind() == reflect.Ptr &&
		t.NumOut() == 1 && t.Out(0).Kind() == reflect.Bool:
		dst := reflect.New(t.In(0).Elem())
		if !m.Call([]reflect.Value{dst})[0].Bool() {
			return nil, false
		}
		return accept(dst.Elem())
	}

	return nil, false
}

// accept rejects typed nils so an unset optional pointer reads as absent.
func accept(v reflect.Value) (any, bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil, false
		}
	}

	return v.Interface(), true
}
