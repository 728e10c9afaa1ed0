package view

import (
	"fmt"

	"github.com/modelcore/structbind/internal/binder"
	"github.com/modelcore/structbind/internal/schema"
)

// Instance is one materialized view: a backing-state handle, an optional
// delegate handle, the setter guard flag, and a reference to the factory's
// shared dispatch wiring. Wiring is fixed for the instance's lifetime; only
// the guard toggles per call. Not safe for concurrent use of one instance.
type Instance struct {
	factory  *Factory
	state    State
	delegate *Delegate

	settersBlocked bool
}

var _ schema.Caller = (*Instance)(nil)

// Get reads the named property through its bound realization.
func (i *Instance) Get(name string) (any, error) {
	pd := i.factory.props[name]
	if pd == nil || pd.get == nil {
		return nil, newUnknownMemberError("readable property", name)
	}
	return i.dispatch(pd.get, nil)
}

// Set writes the named property through its bound realization. Writing a
// generated property from within the instance's own view-method execution is
// a usage failure.
func (i *Instance) Set(name string, value any) error {
	pd := i.factory.props[name]
	if pd == nil || pd.set == nil {
		return newUnknownMemberError("writable property", name)
	}
	_, err := i.dispatch(pd.set, []any{value})
	return err
}

// SetCoerced is the loosely-typed setter overload: it coerces raw to the
// property's declared scalar type before forwarding to the typed setter.
func (i *Instance) SetCoerced(name string, raw any) error {
	pd := i.factory.props[name]
	if pd == nil || pd.set == nil {
		return newUnknownMemberError("writable property", name)
	}
	value, err := i.factory.coercer.Convert(raw, pd.valueType, pd.kind == schema.KindScalar)
	if err != nil {
		return fmt.Errorf("setting property %q: %w", name, err)
	}
	return i.Set(name, value)
}

// Apply invokes a configuration block against a nested composite property.
func (i *Instance) Apply(name string, configure func(nested State) error) error {
	pd := i.factory.props[name]
	if pd == nil {
		return newUnknownMemberError("property", name)
	}
	if pd.kind != schema.KindComposite {
		return &UsageError{
			Code:    ErrCodeUnknownMember,
			Member:  name,
			Message: fmt.Sprintf("property %q is not a composite and cannot be configured in place", name),
		}
	}
	return i.state.Apply(name, configure)
}

// Call invokes the named accessor or view method through the dispatch table.
func (i *Instance) Call(method string, args ...any) (any, error) {
	d := i.factory.methods[method]
	if d == nil {
		return nil, newUnknownMemberError("method", method)
	}
	return i.dispatch(d, args)
}

func (i *Instance) dispatch(d *methodDispatch, args []any) (any, error) {
	switch d.op {
	case opReadState:
		return i.state.Get(d.property)

	case opWriteState:
		if i.settersBlocked {
			return nil, newSelfSetterError(d.property)
		}
		if len(args) != 1 {
			return nil, fmt.Errorf("setter for property %q expects 1 argument, got %d", d.property, len(args))
		}
		return nil, i.state.Set(d.property, args[0])

	case opForwardDelegate:
		return i.delegate.Call(d.target.Name, args...)

	case opCallView:
		if d.body == nil {
			return nil, newNoBodyError(d.property)
		}
		if !d.guarded {
			return d.body(i, args)
		}
		restore := i.blockSetters()
		defer restore()
		return d.body(i, args)

	default:
		return nil, fmt.Errorf("property %q has an unknown dispatch op %d", d.property, d.op)
	}
}

// blockSetters raises the self-invocation guard and returns the restore
// function. Restoration runs on every exit path, including panics, via
// defer.
func (i *Instance) blockSetters() func() {
	prev := i.settersBlocked
	i.settersBlocked = true
	return func() { i.settersBlocked = prev }
}

// String prefers a view-implemented String method, then the delegate's
// display-name property, then the backing state's own display name.
func (i *Instance) String() string {
	if d, ok := i.factory.methods["String"]; ok && d.op == opCallView && d.body != nil {
		if v, err := i.dispatch(d, nil); err == nil {
			return fmt.Sprint(v)
		}
	}
	if i.delegate != nil && i.factory.binding.DelegateSchema.HasProperty("displayName") {
		dp := i.factory.binding.DelegateSchema.Property("displayName")
		if g := dp.Getter(); g != nil && !g.IsAbstract() {
			if v, err := i.delegate.Call(g.ImplementedBy().Name); err == nil {
				return fmt.Sprint(v)
			}
		}
	}
	return i.state.DisplayName()
}

// Equal reports backing-state identity: two instances are equal iff their
// state handles compare equal, regardless of which accessors are generated
// versus delegated.
func (i *Instance) Equal(other *Instance) bool {
	return other != nil && i.state.Equals(other.state)
}

// Hash delegates to the backing state.
func (i *Instance) Hash() uint64 {
	return i.state.Hash()
}

// SatisfiesView reports whether the instance can stand in for the named
// view, covering the requested views and everything the delegate's declared
// type transitively extends.
func (i *Instance) SatisfiesView(name string) bool {
	return i.factory.SupportsView(name)
}

// As returns the instance typed as the named view, or an UnsupportedViewError
// when the view is outside the bound set.
func (i *Instance) As(name string) (*Instance, error) {
	if !i.factory.SupportsView(name) {
		return nil, binder.NewUnsupportedViewError(name, i.factory.Views())
	}
	return i, nil
}

// BackingNode exposes the raw backing-state handle for the surrounding rule
// engine only.
func (i *Instance) BackingNode() any {
	return i.state.BackingNode()
}
