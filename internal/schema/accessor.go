package schema

// Role identifies which accessor position a method occupies for a property.
type Role int

const (
	// RoleGetGetter is the conventional getter: `Name() T`.
	RoleGetGetter Role = iota
	// RoleIsGetter is the boolean getter: `IsName() bool`.
	RoleIsGetter
	// RoleSetter is the setter: `SetName(T)`.
	RoleSetter
)

// AllRoles lists accessor roles in canonical order. Iteration over a
// property's accessors always follows this order for determinism.
var AllRoles = []Role{RoleGetGetter, RoleIsGetter, RoleSetter}

func (r Role) String() string {
	switch r {
	case RoleGetGetter:
		return "getter"
	case RoleIsGetter:
		return "boolean getter"
	case RoleSetter:
		return "setter"
	default:
		return "unknown"
	}
}

// Assignable reports whether a value of type sub may stand in for type super.
type Assignable func(sub, super string) bool

// Accessor is one accessor role of a property together with the full ordered
// chain of method declarations that override each other across the type
// hierarchy, most specific first.
type Accessor struct {
	Role  Role
	Chain []*Method
}

// MostSpecific returns the first declaration in the chain.
func (a *Accessor) MostSpecific() *Method {
	return a.Chain[0]
}

// IsAbstract reports whether the accessor has no concrete implementation
// anywhere in its chain.
func (a *Accessor) IsAbstract() bool {
	return a.ImplementedBy() == nil
}

// ImplementedBy returns the most specific concrete declaration in the chain,
// or nil when every declaration is abstract.
func (a *Accessor) ImplementedBy() *Method {
	for _, m := range a.Chain {
		if !m.Abstract {
			return m
		}
	}
	return nil
}

// IsFinal reports whether the most specific declaration is marked final.
func (a *Accessor) IsFinal() bool {
	return a.MostSpecific().Final
}

// NarrowestReturn selects the declaration with the narrowest return type
// reachable along the chain: the one whose return type is assignable to every
// other return type declared for the accessor. Falls back to the most
// specific declaration when the chain disagrees in unrelated directions.
func (a *Accessor) NarrowestReturn(assignable Assignable) *Method {
	return narrowest(a.Chain, assignable, func(m *Method) string { return m.Returns })
}

// NarrowestParam selects the declaration with the narrowest single-parameter
// type along the chain. Only meaningful for setters.
func (a *Accessor) NarrowestParam(assignable Assignable) *Method {
	return narrowest(a.Chain, assignable, func(m *Method) string {
		if len(m.Params) == 0 {
			return ""
		}
		return m.Params[0]
	})
}

func narrowest(chain []*Method, assignable Assignable, typeOf func(*Method) string) *Method {
	best := chain[0]
	for _, candidate := range chain[1:] {
		if assignable(typeOf(candidate), typeOf(best)) && typeOf(candidate) != typeOf(best) {
			best = candidate
		}
	}
	return best
}
