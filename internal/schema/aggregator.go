package schema

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// PropertyAggregator groups the raw accessor declarations discovered for one
// property name into roles. It is a short-lived builder: extraction uses one
// per property, and the resolver uses one per property per resolution to
// merge accessors across view schemas. Not safe for concurrent use.
type PropertyAggregator struct {
	name      string
	accessors map[Role]*Accessor
}

// NewPropertyAggregator creates an empty aggregator for the named property.
func NewPropertyAggregator(name string) *PropertyAggregator {
	return &PropertyAggregator{
		name:      name,
		accessors: make(map[Role]*Accessor, len(AllRoles)),
	}
}

// Name returns the property name.
func (p *PropertyAggregator) Name() string {
	return p.name
}

// AddAccessor registers an accessor under its role. A later registration for
// an already-occupied role silently replaces the earlier one; callers that
// want to combine chains instead must merge before re-adding.
func (p *PropertyAggregator) AddAccessor(a *Accessor) {
	p.accessors[a.Role] = a
}

// Accessor returns the accessor registered for the role, or nil.
func (p *PropertyAggregator) Accessor(role Role) *Accessor {
	return p.accessors[role]
}

// Accessors returns the registered accessors in canonical role order.
func (p *PropertyAggregator) Accessors() []*Accessor {
	out := make([]*Accessor, 0, len(p.accessors))
	for _, role := range AllRoles {
		if a := p.accessors[role]; a != nil {
			out = append(out, a)
		}
	}
	return out
}

// MergeGetters returns a synthetic getter whose chain is the concatenation of
// the conventional and boolean getter chains, for type-consistency checks.
// Returns nil when neither getter is present.
func (p *PropertyAggregator) MergeGetters() *Accessor {
	get := p.accessors[RoleGetGetter]
	is := p.accessors[RoleIsGetter]
	if get == nil && is == nil {
		return nil
	}
	var chain []*Method
	if get != nil {
		chain = append(chain, get.Chain...)
	}
	if is != nil {
		chain = append(chain, is.Chain...)
	}
	return &Accessor{Role: RoleGetGetter, Chain: chain}
}

// DeclaredAsUnmanaged reports whether the most specific getter declaration
// chain (conventional, else boolean) includes a method marked unmanaged.
// Unmanaged properties are excluded from generation and binding entirely.
func (p *PropertyAggregator) DeclaredAsUnmanaged() bool {
	getter := p.accessors[RoleGetGetter]
	if getter == nil {
		getter = p.accessors[RoleIsGetter]
	}
	if getter == nil {
		return false
	}
	for _, m := range getter.Chain {
		if m.Unmanaged {
			return true
		}
	}
	return false
}

// DeclaredBy returns the distinct declaring types across all roles, ordered
// by display name. Diagnostics only.
func (p *PropertyAggregator) DeclaredBy() []string {
	seen := make(map[string]bool)
	var types []string
	for _, role := range AllRoles {
		a := p.accessors[role]
		if a == nil {
			continue
		}
		for _, m := range a.Chain {
			if !seen[m.DeclaringType] {
				seen[m.DeclaringType] = true
				types = append(types, m.DeclaringType)
			}
		}
	}
	collate.New(language.Und).SortStrings(types)
	return types
}

// DropInvalidAccessor removes the accessor registered for the role, appending
// its most specific declaration to dropped. No-op when the role is empty.
func (p *PropertyAggregator) DropInvalidAccessor(role Role, dropped *[]*Method) {
	a := p.accessors[role]
	if a == nil {
		return
	}
	delete(p.accessors, role)
	*dropped = append(*dropped, a.MostSpecific())
}

// Build freezes the aggregator into an immutable Property of the given value
// kind.
func (p *PropertyAggregator) Build(kind ValueKind) *Property {
	accessors := make(map[Role]*Accessor, len(p.accessors))
	for role, a := range p.accessors {
		accessors[role] = a
	}
	return &Property{
		Name:       p.name,
		Kind:       kind,
		accessors:  accessors,
		DeclaredBy: p.DeclaredBy(),
	}
}
