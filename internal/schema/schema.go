package schema

import "sort"

// Property is one extracted property of a schema: its name, value kind, and
// accessors by role.
type Property struct {
	Name       string
	Kind       ValueKind
	DeclaredBy []string // distinct declaring types, collated order

	accessors map[Role]*Accessor
}

// Accessor returns the accessor for the role, or nil.
func (p *Property) Accessor(role Role) *Accessor {
	return p.accessors[role]
}

// Accessors returns the property's accessors in canonical role order.
func (p *Property) Accessors() []*Accessor {
	out := make([]*Accessor, 0, len(p.accessors))
	for _, role := range AllRoles {
		if a := p.accessors[role]; a != nil {
			out = append(out, a)
		}
	}
	return out
}

// Getter returns the conventional getter if present, else the boolean getter.
func (p *Property) Getter() *Accessor {
	if a := p.accessors[RoleGetGetter]; a != nil {
		return a
	}
	return p.accessors[RoleIsGetter]
}

// Type returns the property's declared value type: the most specific getter
// return type, else the setter parameter type.
func (p *Property) Type() string {
	if g := p.Getter(); g != nil {
		return g.MostSpecific().Returns
	}
	if s := p.accessors[RoleSetter]; s != nil && len(s.MostSpecific().Params) > 0 {
		return s.MostSpecific().Params[0]
	}
	return ""
}

// Schema is the extracted property surface of one type. Immutable once
// produced; owned and cached by the Registry.
type Schema struct {
	Type string
	Kind ValueKind

	names   []string
	props   map[string]*Property
	methods map[string]bool // every declared method signature, staleness checks
}

// Properties returns the schema's properties in extraction order.
func (s *Schema) Properties() []*Property {
	out := make([]*Property, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.props[name])
	}
	return out
}

// Property returns the named property, or nil.
func (s *Schema) Property(name string) *Property {
	return s.props[name]
}

// HasProperty reports whether the schema declares the named property.
func (s *Schema) HasProperty(name string) bool {
	_, ok := s.props[name]
	return ok
}

// AllMethods returns every method signature declared by the type and its
// supertypes, sorted. Used to detect stale cached schemas.
func (s *Schema) AllMethods() []string {
	out := make([]string, 0, len(s.methods))
	for sig := range s.methods {
		out = append(out, sig)
	}
	sort.Strings(out)
	return out
}

// HasMethod reports whether the signature is declared by the type.
func (s *Schema) HasMethod(signature string) bool {
	return s.methods[signature]
}
