package schema

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// accessorMatch is the result of classifying one method name against the
// accessor naming conventions.
type accessorMatch struct {
	role     Role
	property string
}

// classifyAccessor matches a method name against the accessor conventions:
// `SetX` is a setter, `IsX` a boolean getter, any other exported zero-param
// method with a return value is a conventional getter. Arity and return-type
// validation happens later so malformed accessors can be dropped with a
// diagnostic rather than silently treated as plain methods.
func classifyAccessor(m *Method) *accessorMatch {
	switch {
	case len(m.Name) > 3 && m.Name[:3] == "Set" && startsUpper(m.Name[3:]):
		return &accessorMatch{role: RoleSetter, property: propertyName(m.Name[3:])}
	case len(m.Name) > 2 && m.Name[:2] == "Is" && startsUpper(m.Name[2:]):
		return &accessorMatch{role: RoleIsGetter, property: propertyName(m.Name[2:])}
	case startsUpper(m.Name) && len(m.Params) == 0 && m.Returns != "":
		return &accessorMatch{role: RoleGetGetter, property: propertyName(m.Name)}
	default:
		return nil
	}
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// propertyName lowercases the first rune of an accessor suffix: "Name" ->
// "name", "URL" -> "uRL" (mirrors conventional bean naming, warts included).
func propertyName(suffix string) string {
	r, size := utf8.DecodeRuneInString(suffix)
	return string(unicode.ToLower(r)) + suffix[size:]
}

// validAccessor reports whether the accessor's declarations satisfy the
// shape its role requires.
func validAccessor(a *Accessor) bool {
	m := a.MostSpecific()
	switch a.Role {
	case RoleGetGetter:
		return len(m.Params) == 0 && m.Returns != ""
	case RoleIsGetter:
		return len(m.Params) == 0 && m.Returns == "bool"
	case RoleSetter:
		return len(m.Params) == 1 && m.Returns == ""
	default:
		return false
	}
}

// extract walks the declaration and its supertypes most-specific-first and
// produces the type's Schema plus the accessor declarations dropped for
// being malformed.
func extract(decl *TypeDecl, lookup func(name string) *TypeDecl) (*Schema, []*Method, error) {
	lineage, err := linearize(decl, lookup)
	if err != nil {
		return nil, nil, err
	}

	// Collect declaration chains per method name in walk order.
	var methodOrder []string
	chains := make(map[string][]*Method)
	allMethods := make(map[string]bool)
	for _, t := range lineage {
		for i := range t.Methods {
			md := &t.Methods[i]
			m := &Method{
				DeclaringType: t.Name,
				Name:          md.Name,
				Params:        md.Params,
				Returns:       md.Returns,
				Abstract:      md.Abstract,
				Final:         md.Final,
				Unmanaged:     md.Unmanaged,
				Body:          md.Body,
			}
			if chains[m.Name] == nil {
				methodOrder = append(methodOrder, m.Name)
			}
			chains[m.Name] = append(chains[m.Name], m)
			allMethods[m.Signature()] = true
		}
	}

	// Aggregate accessors per property in first-appearance order.
	var propOrder []string
	aggregators := make(map[string]*PropertyAggregator)
	var dropped []*Method
	for _, name := range methodOrder {
		chain := chains[name]
		match := classifyAccessor(chain[0])
		if match == nil {
			continue
		}
		agg := aggregators[match.property]
		if agg == nil {
			agg = NewPropertyAggregator(match.property)
			aggregators[match.property] = agg
			propOrder = append(propOrder, match.property)
		}
		accessor := &Accessor{Role: match.role, Chain: chain}
		agg.AddAccessor(accessor)
		if !validAccessor(accessor) {
			agg.DropInvalidAccessor(match.role, &dropped)
		}
	}

	kind := decl.Kind
	if kind == "" {
		kind = KindManaged
	}
	s := &Schema{
		Type:    decl.Name,
		Kind:    kind,
		props:   make(map[string]*Property),
		methods: allMethods,
	}
	for _, name := range propOrder {
		agg := aggregators[name]
		if len(agg.Accessors()) == 0 {
			continue // every role dropped
		}
		if agg.DeclaredAsUnmanaged() {
			continue
		}
		s.names = append(s.names, name)
		s.props[name] = agg.Build(kindOfType(propertyType(agg), lookup))
	}
	return s, dropped, nil
}

// propertyType resolves the declared value type from the aggregated
// accessors: merged getter return type, else setter parameter type.
func propertyType(agg *PropertyAggregator) string {
	if g := agg.MergeGetters(); g != nil {
		return g.MostSpecific().Returns
	}
	if s := agg.Accessor(RoleSetter); s != nil && len(s.MostSpecific().Params) > 0 {
		return s.MostSpecific().Params[0]
	}
	return ""
}

func kindOfType(name string, lookup func(string) *TypeDecl) ValueKind {
	if decl := lookup(name); decl != nil {
		if decl.Kind != "" {
			return decl.Kind
		}
		return KindManaged
	}
	return KindScalar
}

// linearize returns the declaration followed by its transitive supertypes in
// declared order, de-duplicated, most specific first.
func linearize(decl *TypeDecl, lookup func(string) *TypeDecl) ([]*TypeDecl, error) {
	var out []*TypeDecl
	seen := make(map[string]bool)
	var walk func(d *TypeDecl) error
	walk = func(d *TypeDecl) error {
		if seen[d.Name] {
			return nil
		}
		seen[d.Name] = true
		out = append(out, d)
		for _, super := range d.Extends {
			sd := lookup(super)
			if sd == nil {
				return fmt.Errorf("type %q extends unknown type %q", d.Name, super)
			}
			if err := walk(sd); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(decl); err != nil {
		return nil, err
	}
	return out, nil
}
