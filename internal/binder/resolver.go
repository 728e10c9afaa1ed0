// Package binder resolves how every declared property of a requested view set
// will be realized: synthesized storage, forwarding to a delegate, or an
// already-implemented pass-through. Resolution is deterministic and total —
// a binding is either fully validated or the whole request fails.
package binder

import (
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/modelcore/structbind/internal/schema"
)

// Resolver computes StructBindings from schemas. Results (successes and
// failures alike) are memoized per exact ordered input tuple; concurrent
// first-time requests for the same tuple compute it exactly once.
type Resolver struct {
	store  schema.Store
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*resolution
	group singleflight.Group
}

type resolution struct {
	binding *StructBinding
	err     error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug-level resolution logs.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a resolver backed by the given schema store.
func NewResolver(store schema.Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		logger: slog.Default(),
		cache:  make(map[string]*resolution),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetBinding resolves the binding for the requested type, any additional view
// types, and an optional delegate type (empty string for none). The same
// input tuple always yields the same *StructBinding value or the same error.
func (r *Resolver) GetBinding(requested string, additionalViews []string, delegateType string) (*StructBinding, error) {
	key := cacheKey(requested, additionalViews, delegateType)

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return cached.binding, cached.err
	}
	r.mu.Unlock()

	v, _, _ := r.group.Do(key, func() (any, error) {
		binding, err := r.resolve(requested, additionalViews, delegateType)
		res := &resolution{binding: binding, err: err}
		r.mu.Lock()
		r.cache[key] = res
		r.mu.Unlock()
		return res, nil
	})
	res := v.(*resolution)
	return res.binding, res.err
}

func cacheKey(requested string, additionalViews []string, delegateType string) string {
	var sb strings.Builder
	sb.WriteString(requested)
	for _, v := range additionalViews {
		sb.WriteByte(0x1f)
		sb.WriteString(v)
	}
	sb.WriteByte(0x1e)
	sb.WriteString(delegateType)
	return sb.String()
}

func (r *Resolver) resolve(requested string, additionalViews []string, delegateType string) (*StructBinding, error) {
	binding := &StructBinding{}

	viewTypes := append([]string{requested}, additionalViews...)
	for _, name := range viewTypes {
		s, err := r.store.GetSchema(name)
		if err != nil {
			return nil, err
		}
		binding.ViewSchemas = append(binding.ViewSchemas, s)
	}
	if delegateType != "" {
		s, err := r.store.GetSchema(delegateType)
		if err != nil {
			return nil, err
		}
		binding.DelegateSchema = s
	}

	for _, name := range propertyOrder(binding.ViewSchemas) {
		if err := r.resolveProperty(binding, name); err != nil {
			return nil, err
		}
	}

	r.logger.Debug("resolved struct binding",
		"requested", requested,
		"views", len(binding.ViewSchemas),
		"delegate", delegateType,
		"generated", len(binding.generatedNames),
		"view_bound", len(binding.ViewBindings),
		"delegate_bound", len(binding.DelegateBindings))
	return binding, nil
}

// propertyOrder returns every property name occurring in any view schema, in
// first-discovery order across the schemas as extracted.
func propertyOrder(views []*schema.Schema) []string {
	var order []string
	seen := make(map[string]bool)
	for _, s := range views {
		for _, p := range s.Properties() {
			if !seen[p.Name] {
				seen[p.Name] = true
				order = append(order, p.Name)
			}
		}
	}
	return order
}

// resolveProperty decides the realization of one property and records it on
// the binding, or fails the whole resolution.
func (r *Resolver) resolveProperty(binding *StructBinding, name string) error {
	agg, kind := r.aggregateViews(binding.ViewSchemas, name)

	getter := agg.MergeGetters()
	setter := agg.Accessor(schema.RoleSetter)

	// A lone abstract setter has nothing to pair its value with.
	if getter == nil && setter != nil {
		if setter.IsAbstract() {
			return newMissingGetterError(name)
		}
		binding.ViewBindings = append(binding.ViewBindings, ViewBinding{Property: name, Accessor: setter})
		return nil
	}

	// Both ends abstract: the narrowest getter return and setter parameter
	// types must agree after covariant narrowing.
	if getter != nil && getter.IsAbstract() && setter != nil && setter.IsAbstract() {
		got := getter.NarrowestReturn(r.store.AssignableTo).Returns
		want := setter.NarrowestParam(r.store.AssignableTo)
		if len(want.Params) != 1 || got != want.Params[0] {
			return newInconsistentTypeError(name)
		}
	}

	var abstract, implemented []*schema.Accessor
	for _, a := range agg.Accessors() {
		if a.IsAbstract() {
			abstract = append(abstract, a)
		} else {
			implemented = append(implemented, a)
		}
	}

	for _, a := range implemented {
		binding.ViewBindings = append(binding.ViewBindings, ViewBinding{Property: name, Accessor: a})
	}

	if len(abstract) == 0 {
		// Fully implemented by the view. A delegate implementing the same
		// property is a hard conflict, never a silent preference.
		if err := checkDelegateConflict(binding, name, implemented); err != nil {
			return err
		}
		return nil
	}

	if targets := delegateTargets(binding.DelegateSchema, name, abstract); targets != nil {
		for i, source := range abstract {
			binding.DelegateBindings = append(binding.DelegateBindings, DelegateBinding{
				Property: name,
				Source:   source,
				Target:   targets[i],
			})
		}
		return nil
	}

	binding.addGenerated(agg.Build(kind))
	return nil
}

// aggregateViews merges the named property's accessors across all view
// schemas into a resolution-scoped aggregator. When the same role appears on
// several views the declaration chains are concatenated in view order.
func (r *Resolver) aggregateViews(views []*schema.Schema, name string) (*schema.PropertyAggregator, schema.ValueKind) {
	agg := schema.NewPropertyAggregator(name)
	kind := schema.KindScalar
	first := true
	for _, s := range views {
		p := s.Property(name)
		if p == nil {
			continue
		}
		if first {
			kind = p.Kind
			first = false
		}
		for _, a := range p.Accessors() {
			if existing := agg.Accessor(a.Role); existing != nil {
				merged := &schema.Accessor{Role: a.Role, Chain: append(append([]*schema.Method{}, existing.Chain...), a.Chain...)}
				agg.AddAccessor(merged)
				continue
			}
			agg.AddAccessor(a)
		}
	}
	return agg, kind
}

// checkDelegateConflict fails when the delegate concretely implements an
// accessor role the view already implements for the same property.
func checkDelegateConflict(binding *StructBinding, name string, implemented []*schema.Accessor) error {
	if binding.DelegateSchema == nil {
		return nil
	}
	dp := binding.DelegateSchema.Property(name)
	if dp == nil {
		return nil
	}
	for _, viewAcc := range implemented {
		target := dp.Accessor(viewAcc.Role)
		if target == nil || target.IsAbstract() {
			continue
		}
		return newConflictError(name,
			viewAcc.ImplementedBy().Signature(),
			target.ImplementedBy().Signature())
	}
	return nil
}

// delegateTargets returns the delegate's concrete accessor for every required
// abstract role, or nil when the delegate cannot serve them all. Matching is
// by exact role: a boolean getter never binds to a conventional one.
func delegateTargets(delegate *schema.Schema, name string, abstract []*schema.Accessor) []*schema.Accessor {
	if delegate == nil {
		return nil
	}
	dp := delegate.Property(name)
	if dp == nil {
		return nil
	}
	targets := make([]*schema.Accessor, len(abstract))
	for i, source := range abstract {
		target := dp.Accessor(source.Role)
		if target == nil || target.IsAbstract() {
			return nil
		}
		targets[i] = target
	}
	return targets
}
