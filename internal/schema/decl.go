package schema

import (
	"fmt"
	"strings"
)

// ValueKind classifies how values of a type are handled by the binding core.
type ValueKind string

const (
	// KindScalar marks directly storable values (string, int, bool, ...).
	KindScalar ValueKind = "scalar"

	// KindComposite marks nested structures configured in place via Apply.
	KindComposite ValueKind = "composite"

	// KindManaged marks references to other managed types.
	KindManaged ValueKind = "managed"
)

// ValidKinds defines the allowed value kinds for a type declaration.
var ValidKinds = map[ValueKind]bool{
	KindScalar:    true,
	KindComposite: true,
	KindManaged:   true,
}

// Caller is the invocation surface handed to implemented method bodies.
// A materialized view instance satisfies it.
type Caller interface {
	Get(name string) (any, error)
	Set(name string, value any) error
	Call(method string, args ...any) (any, error)
}

// Body is the executable implementation of a non-abstract method.
// Declarations loaded from model files carry no body; declarations
// registered from Go code may attach one.
type Body func(self Caller, args []any) (any, error)

// TypeDecl is the raw declaration of one model type: its value kind, the
// types it extends, and its declared methods in source order.
type TypeDecl struct {
	Name    string
	Kind    ValueKind    // defaults to KindManaged when empty
	Extends []string     // direct supertypes, declaration order
	Methods []MethodDecl // declaration order
}

// MethodDecl is one raw method declaration on a type.
type MethodDecl struct {
	Name      string
	Params    []string // parameter type names
	Returns   string   // return type name, empty for void
	Abstract  bool
	Final     bool // final accessors are invoked without the setter guard wrapper
	Unmanaged bool // on a getter: excludes the property from binding
	Body      Body
}

// Method is a method declaration resolved against the type that declares it.
// Extraction produces one Method per declaration encountered on the walk.
type Method struct {
	DeclaringType string
	Name          string
	Params        []string
	Returns       string
	Abstract      bool
	Final         bool
	Unmanaged     bool
	Body          Body
}

// Signature renders the method as a stable diagnostic string, e.g.
// "public Integer PersonRecord.Value()". All model methods are public.
func (m *Method) Signature() string {
	ret := m.Returns
	if ret == "" {
		ret = "void"
	}
	return fmt.Sprintf("public %s %s.%s(%s)", ret, m.DeclaringType, m.Name, strings.Join(m.Params, ", "))
}
