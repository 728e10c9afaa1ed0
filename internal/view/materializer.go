package view

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcore/structbind/internal/binder"
	"github.com/modelcore/structbind/internal/schema"
)

// op is the realization an accessor was routed to.
type op int

const (
	opReadState op = iota
	opWriteState
	opForwardDelegate
	opCallView
)

// methodDispatch routes one method name to its realization. Built once per
// binding, shared by every instance.
type methodDispatch struct {
	op       op
	property string
	target   *schema.Method // delegate implementation (opForwardDelegate)
	body     schema.Body    // view implementation (opCallView)
	guarded  bool           // opCallView: block setters for the call's duration
}

// propertyDispatch routes property-level access (Get/Set/Apply) to the
// method dispatch entries of the property's accessor roles.
type propertyDispatch struct {
	name      string
	kind      schema.ValueKind
	valueType string
	get       *methodDispatch
	set       *methodDispatch
}

// Factory materializes instances for one resolved binding. The dispatch
// wiring is fixed at build time; instances share it for their lifetime.
type Factory struct {
	binding *binder.StructBinding
	coercer Coercer

	methods map[string]*methodDispatch
	props   map[string]*propertyDispatch
	views   map[string]bool
	order   []string // supported view names, discovery order
}

// Materializer builds factories from struct bindings, memoized per binding.
type Materializer struct {
	store   schema.Store
	coercer Coercer
	logger  *slog.Logger

	mu        sync.Mutex
	factories map[*binder.StructBinding]*Factory
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithCoercer replaces the default weak coercer.
func WithCoercer(c Coercer) Option {
	return func(m *Materializer) { m.coercer = c }
}

// WithLogger sets the logger used for debug-level materialization logs.
func WithLogger(l *slog.Logger) Option {
	return func(m *Materializer) { m.logger = l }
}

// NewMaterializer creates a materializer backed by the given schema store.
func NewMaterializer(store schema.Store, opts ...Option) *Materializer {
	m := &Materializer{
		store:     store,
		coercer:   WeakCoercer{},
		logger:    slog.Default(),
		factories: make(map[*binder.StructBinding]*Factory),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Generate returns the factory for the binding, building the dispatch table
// on first request. Bindings are memoized by the resolver per input tuple, so
// binding identity is the memoization key here.
func (m *Materializer) Generate(binding *binder.StructBinding) (*Factory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.factories[binding]; ok {
		return f, nil
	}
	f, err := m.build(binding)
	if err != nil {
		return nil, err
	}
	m.factories[binding] = f
	return f, nil
}

func (m *Materializer) build(binding *binder.StructBinding) (*Factory, error) {
	f := &Factory{
		binding: binding,
		coercer: m.coercer,
		methods: make(map[string]*methodDispatch),
		props:   make(map[string]*propertyDispatch),
		views:   make(map[string]bool),
	}

	for _, p := range binding.GeneratedProperties() {
		pd := f.property(p.Name, p.Kind, p.Type())
		for _, acc := range p.Accessors() {
			d := &methodDispatch{property: p.Name}
			if acc.Role == schema.RoleSetter {
				d.op = opWriteState
				pd.set = d
			} else {
				d.op = opReadState
				if pd.get == nil {
					pd.get = d
				}
			}
			f.methods[acc.MostSpecific().Name] = d
		}
	}

	for _, db := range binding.DelegateBindings {
		target := db.Target.ImplementedBy()
		if target == nil {
			return nil, fmt.Errorf("delegate binding for property %q has no concrete target", db.Property)
		}
		d := &methodDispatch{op: opForwardDelegate, property: db.Property, target: target}
		f.methods[db.Source.MostSpecific().Name] = d
		pd := f.property(db.Property, schema.KindScalar, db.Source.MostSpecific().Returns)
		if db.Source.Role == schema.RoleSetter {
			pd.valueType = db.Source.MostSpecific().Params[0]
			pd.set = d
		} else if pd.get == nil {
			pd.get = d
		}
	}

	for _, vb := range binding.ViewBindings {
		impl := vb.Accessor.ImplementedBy()
		d := &methodDispatch{
			op:       opCallView,
			property: vb.Property,
			body:     impl.Body,
			guarded:  !vb.Accessor.IsFinal(),
		}
		f.methods[impl.Name] = d
		pd := f.property(vb.Property, schema.KindScalar, impl.Returns)
		if vb.Accessor.Role == schema.RoleSetter {
			if len(impl.Params) == 1 {
				pd.valueType = impl.Params[0]
			}
			pd.set = d
		} else if pd.get == nil {
			pd.get = d
		}
	}

	// The instance satisfies every requested view, plus everything the
	// delegate's concrete type transitively extends, so type checks against
	// the delegate's own views still succeed through a view reference.
	for _, s := range binding.ViewSchemas {
		f.addViews(m.store.Lineage(s.Type))
	}
	if binding.DelegateSchema != nil {
		f.addViews(m.store.Lineage(binding.DelegateSchema.Type))
	}

	m.logger.Debug("generated view factory",
		"requested", binding.RequestedType(),
		"methods", len(f.methods),
		"properties", len(f.props),
		"views", len(f.order))
	return f, nil
}

func (f *Factory) property(name string, kind schema.ValueKind, valueType string) *propertyDispatch {
	pd := f.props[name]
	if pd == nil {
		pd = &propertyDispatch{name: name, kind: kind, valueType: valueType}
		f.props[name] = pd
	}
	return pd
}

func (f *Factory) addViews(names []string) {
	for _, name := range names {
		if !f.views[name] {
			f.views[name] = true
			f.order = append(f.order, name)
		}
	}
}

// Binding returns the binding the factory was generated from.
func (f *Factory) Binding() *binder.StructBinding {
	return f.binding
}

// SupportsView reports whether instances satisfy the named view.
func (f *Factory) SupportsView(name string) bool {
	return f.views[name]
}

// Views returns the supported view names in discovery order.
func (f *Factory) Views() []string {
	return append([]string(nil), f.order...)
}

// New materializes an instance over the given backing state. A delegate value
// is required exactly when the binding carries a delegate schema.
func (f *Factory) New(state State, delegate any) (*Instance, error) {
	if state == nil {
		return nil, fmt.Errorf("materializing %q: backing state is nil", f.binding.RequestedType())
	}
	inst := &Instance{factory: f, state: state}
	if f.binding.DelegateSchema != nil {
		d, err := NewDelegate(f.binding.DelegateSchema.Type, delegate)
		if err != nil {
			return nil, fmt.Errorf("materializing %q: %w", f.binding.RequestedType(), err)
		}
		inst.delegate = d
	} else if delegate != nil {
		return nil, fmt.Errorf("materializing %q: binding has no delegate schema but a delegate was supplied", f.binding.RequestedType())
	}
	return inst, nil
}
