package schema

import (
	"fmt"
	"sync"
)

// Store supplies extracted schemas and type assignability to the resolver.
type Store interface {
	// GetSchema returns the cached immutable schema for the named type.
	GetSchema(typeName string) (*Schema, error)

	// AssignableTo reports whether a value of type sub may stand in for a
	// value of type super.
	AssignableTo(sub, super string) bool

	// Lineage returns the type followed by its transitive supertypes in
	// declared order.
	Lineage(typeName string) []string
}

// builtinScalars are preregistered value types every model may use.
var builtinScalars = []string{"string", "int", "int64", "float64", "bool"}

// Registry is the default Store: type declarations are registered once and
// schemas are extracted lazily, cached per type for the registry's lifetime.
// Registration is not expected after resolution starts; reads are safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	decls map[string]*TypeDecl

	schemas sync.Map // type name -> *extraction
}

type extraction struct {
	schema  *Schema
	dropped []*Method
}

// NewRegistry creates a registry with the builtin scalar types registered.
func NewRegistry() *Registry {
	r := &Registry{decls: make(map[string]*TypeDecl)}
	for _, name := range builtinScalars {
		r.decls[name] = &TypeDecl{Name: name, Kind: KindScalar}
	}
	return r
}

// Register adds a type declaration. Re-registering a name is an error; the
// extracted schema for a type must stay stable for the registry's lifetime.
func (r *Registry) Register(decl TypeDecl) error {
	if decl.Name == "" {
		return fmt.Errorf("type declaration has no name")
	}
	if decl.Kind != "" && !ValidKinds[decl.Kind] {
		return fmt.Errorf("type %q has invalid kind %q", decl.Name, decl.Kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decls[decl.Name]; exists {
		return fmt.Errorf("type %q is already registered", decl.Name)
	}
	d := decl
	r.decls[decl.Name] = &d
	return nil
}

// MustRegister is Register for fixture setup; panics on error.
func (r *Registry) MustRegister(decl TypeDecl) {
	if err := r.Register(decl); err != nil {
		panic(err)
	}
}

func (r *Registry) lookup(name string) *TypeDecl {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.decls[name]
}

// GetSchema returns the extracted schema for the named type, computing and
// caching it on first request.
func (r *Registry) GetSchema(typeName string) (*Schema, error) {
	e, err := r.extraction(typeName)
	if err != nil {
		return nil, err
	}
	return e.schema, nil
}

// DroppedMethods returns the malformed accessor declarations excluded while
// extracting the named type's schema.
func (r *Registry) DroppedMethods(typeName string) ([]*Method, error) {
	e, err := r.extraction(typeName)
	if err != nil {
		return nil, err
	}
	return e.dropped, nil
}

func (r *Registry) extraction(typeName string) (*extraction, error) {
	if cached, ok := r.schemas.Load(typeName); ok {
		return cached.(*extraction), nil
	}
	decl := r.lookup(typeName)
	if decl == nil {
		return nil, fmt.Errorf("unknown type %q", typeName)
	}
	s, dropped, err := extract(decl, r.lookup)
	if err != nil {
		return nil, err
	}
	e := &extraction{schema: s, dropped: dropped}
	// First extraction wins so concurrent callers observe one identity.
	actual, _ := r.schemas.LoadOrStore(typeName, e)
	return actual.(*extraction), nil
}

// AssignableTo reports nominal assignability: a type is assignable to itself
// and to every transitive supertype.
func (r *Registry) AssignableTo(sub, super string) bool {
	if sub == super {
		return true
	}
	for _, name := range r.Lineage(sub) {
		if name == super {
			return true
		}
	}
	return false
}

// Lineage returns the type and its transitive supertypes in declared order.
// Unknown types yield just themselves.
func (r *Registry) Lineage(typeName string) []string {
	decl := r.lookup(typeName)
	if decl == nil {
		return []string{typeName}
	}
	lineage, err := linearize(decl, r.lookup)
	if err != nil {
		return []string{typeName}
	}
	out := make([]string, len(lineage))
	for i, d := range lineage {
		out[i] = d.Name
	}
	return out
}
