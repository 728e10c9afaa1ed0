package binder

import "github.com/modelcore/structbind/internal/schema"

// ViewBinding is one already-implemented accessor on a view. It needs only a
// guarded wrapper at materialization time, never generated storage.
type ViewBinding struct {
	Property string
	Accessor *schema.Accessor
}

// DelegateBinding forwards one view accessor to the delegate's most specific
// implementation of the same role.
type DelegateBinding struct {
	Property string
	Source   *schema.Accessor // view accessor
	Target   *schema.Accessor // delegate accessor
}

// StructBinding is the fully validated, per-property realization decision for
// one (view-set, delegate) pair. It is a pure function of its input tuple:
// the resolver memoizes one instance per tuple and instances are never
// mutated after resolution.
//
// Every abstract accessor across the view schemas appears in exactly one of
// generated properties or delegate bindings; every implemented accessor
// appears in view bindings and nowhere else.
type StructBinding struct {
	// ViewSchemas holds the bound view schemas, requested type first.
	ViewSchemas []*schema.Schema

	// DelegateSchema is nil when no delegate type was supplied.
	DelegateSchema *schema.Schema

	// ViewBindings lists implemented accessors in discovery order.
	ViewBindings []ViewBinding

	// DelegateBindings lists forwarded accessors in discovery order.
	DelegateBindings []DelegateBinding

	generatedNames []string
	generated      map[string]*schema.Property
}

// RequestedType returns the type the binding was requested for.
func (b *StructBinding) RequestedType() string {
	return b.ViewSchemas[0].Type
}

// GeneratedProperties returns the properties needing synthesized storage, in
// discovery order.
func (b *StructBinding) GeneratedProperties() []*schema.Property {
	out := make([]*schema.Property, 0, len(b.generatedNames))
	for _, name := range b.generatedNames {
		out = append(out, b.generated[name])
	}
	return out
}

// GeneratedProperty returns the named generated property, or nil.
func (b *StructBinding) GeneratedProperty(name string) *schema.Property {
	return b.generated[name]
}

// HasViewSchema reports whether the named type is among the bound view
// schemas.
func (b *StructBinding) HasViewSchema(name string) bool {
	for _, s := range b.ViewSchemas {
		if s.Type == name {
			return true
		}
	}
	return false
}

func (b *StructBinding) addGenerated(p *schema.Property) {
	if b.generated == nil {
		b.generated = make(map[string]*schema.Property)
	}
	if _, exists := b.generated[p.Name]; !exists {
		b.generatedNames = append(b.generatedNames, p.Name)
	}
	b.generated[p.Name] = p
}
