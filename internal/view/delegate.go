package view

import (
	"fmt"
	"reflect"
	"sync"
)

// delegateMetaCache caches the exported method set per concrete Go type, so
// repeated materializations against the same delegate type skip the reflect
// walk.
var delegateMetaCache sync.Map // reflect.Type -> map[string]reflect.Method

// Delegate wraps a concrete Go value whose methods serve the delegate-bound
// accessors of an instance. Method dispatch is by name, resolved once per
// concrete type.
type Delegate struct {
	typeName string
	value    reflect.Value
	methods  map[string]reflect.Method
}

// NewDelegate wraps value as the delegate of the declared model type.
func NewDelegate(typeName string, value any) (*Delegate, error) {
	if value == nil {
		return nil, fmt.Errorf("delegate value for type %q is nil", typeName)
	}
	rv := reflect.ValueOf(value)
	return &Delegate{
		typeName: typeName,
		value:    rv,
		methods:  methodSet(rv.Type()),
	}, nil
}

func methodSet(t reflect.Type) map[string]reflect.Method {
	if cached, ok := delegateMetaCache.Load(t); ok {
		return cached.(map[string]reflect.Method)
	}
	methods := make(map[string]reflect.Method, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		methods[m.Name] = m
	}
	actual, _ := delegateMetaCache.LoadOrStore(t, methods)
	return actual.(map[string]reflect.Method)
}

// TypeName returns the declared model type the delegate stands for.
func (d *Delegate) TypeName() string {
	return d.typeName
}

// Call invokes the named method on the wrapped value, passing arguments and
// results through unmodified. A trailing error result is unwrapped.
func (d *Delegate) Call(method string, args ...any) (any, error) {
	m, ok := d.methods[method]
	if !ok {
		return nil, fmt.Errorf("delegate %q (%s) has no method %q", d.typeName, d.value.Type(), method)
	}

	mt := m.Func.Type()
	if len(args) != mt.NumIn()-1 {
		return nil, fmt.Errorf("delegate method %q expects %d argument(s), got %d", method, mt.NumIn()-1, len(args))
	}

	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, d.value)
	for i, arg := range args {
		if arg == nil {
			in = append(in, reflect.Zero(mt.In(i+1)))
			continue
		}
		av := reflect.ValueOf(arg)
		if pt := mt.In(i + 1); av.Type() != pt && av.Type().ConvertibleTo(pt) {
			av = av.Convert(pt)
		}
		in = append(in, av)
	}

	out := m.Func.Call(in)
	return splitResults(out)
}

func splitResults(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}
	last := out[len(out)-1]
	if last.Type().Implements(reflect.TypeFor[error]()) {
		var err error
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		if len(out) == 1 {
			return nil, err
		}
		return out[0].Interface(), err
	}
	return out[0].Interface(), nil
}
