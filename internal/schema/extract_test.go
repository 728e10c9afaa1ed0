package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClassifiesAccessorRoles(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(TypeDecl{Name: "Person", Methods: []MethodDecl{
		{Name: "Name", Returns: "string", Abstract: true},
		{Name: "SetName", Params: []string{"string"}, Abstract: true},
		{Name: "IsActive", Returns: "bool", Abstract: true},
		{Name: "Greet", Params: []string{"string"}, Returns: "string"}, // plain method
	}})

	s, err := reg.GetSchema("Person")
	require.NoError(t, err)

	require.True(t, s.HasProperty("name"))
	name := s.Property("name")
	assert.NotNil(t, name.Accessor(RoleGetGetter))
	assert.NotNil(t, name.Accessor(RoleSetter))
	assert.Nil(t, name.Accessor(RoleIsGetter))
	assert.Equal(t, "string", name.Type())

	require.True(t, s.HasProperty("active"))
	active := s.Property("active")
	assert.NotNil(t, active.Accessor(RoleIsGetter))
	assert.Equal(t, "bool", active.Type())

	// Plain methods never become properties but stay visible as methods.
	assert.False(t, s.HasProperty("greet"))
	assert.True(t, s.HasMethod("public string Person.Greet(string)"))
}

func TestExtractPreservesDeclarationOrder(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(TypeDecl{Name: "Config", Methods: []MethodDecl{
		{Name: "Zeta", Returns: "string", Abstract: true},
		{Name: "Alpha", Returns: "string", Abstract: true},
		{Name: "Mid", Returns: "string", Abstract: true},
	}})

	s, err := reg.GetSchema("Config")
	require.NoError(t, err)

	var names []string
	for _, p := range s.Properties() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestExtractBuildsChainsAcrossHierarchy(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(TypeDecl{Name: "Number", Kind: KindScalar})
	reg.MustRegister(TypeDecl{Name: "Integer", Kind: KindScalar, Extends: []string{"Number"}})
	reg.MustRegister(TypeDecl{Name: "Base", Methods: []MethodDecl{
		{Name: "Value", Returns: "Number", Abstract: true},
	}})
	reg.MustRegister(TypeDecl{Name: "Derived", Extends: []string{"Base"}, Methods: []MethodDecl{
		{Name: "Value", Returns: "Integer", Abstract: true},
	}})

	s, err := reg.GetSchema("Derived")
	require.NoError(t, err)

	g := s.Property("value").Accessor(RoleGetGetter)
	require.NotNil(t, g)
	require.Len(t, g.Chain, 2)
	assert.Equal(t, "Derived", g.Chain[0].DeclaringType)
	assert.Equal(t, "Base", g.Chain[1].DeclaringType)

	// Narrowest return honors covariant narrowing.
	assert.Equal(t, "Integer", g.NarrowestReturn(reg.AssignableTo).Returns)
}

func TestExtractDropsMalformedAccessors(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(TypeDecl{Name: "Odd", Methods: []MethodDecl{
		{Name: "SetName", Params: []string{"string", "string"}, Abstract: true}, // bad arity
		{Name: "IsTall", Returns: "string", Abstract: true},                     // non-bool
		{Name: "Age", Returns: "int", Abstract: true},
	}})

	s, err := reg.GetSchema("Odd")
	require.NoError(t, err)
	dropped, err := reg.DroppedMethods("Odd")
	require.NoError(t, err)

	assert.False(t, s.HasProperty("name"))
	assert.False(t, s.HasProperty("tall"))
	assert.True(t, s.HasProperty("age"))

	var sigs []string
	for _, m := range dropped {
		sigs = append(sigs, m.Signature())
	}
	assert.ElementsMatch(t, []string{
		"public void Odd.SetName(string, string)",
		"public string Odd.IsTall()",
	}, sigs)
}

func TestExtractExcludesUnmanagedProperties(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(TypeDecl{Name: "Person", Methods: []MethodDecl{
		{Name: "Name", Returns: "string", Abstract: true},
		{Name: "Scratch", Returns: "string", Abstract: true, Unmanaged: true},
	}})

	s, err := reg.GetSchema("Person")
	require.NoError(t, err)

	assert.True(t, s.HasProperty("name"))
	assert.False(t, s.HasProperty("scratch"))
	// The raw method stays visible for staleness checks.
	assert.True(t, s.HasMethod("public string Person.Scratch()"))
}

func TestExtractPropertyKinds(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(TypeDecl{Name: "Address", Kind: KindComposite})
	reg.MustRegister(TypeDecl{Name: "Person", Methods: []MethodDecl{
		{Name: "Name", Returns: "string", Abstract: true},
		{Name: "Address", Returns: "Address", Abstract: true},
		{Name: "Friend", Returns: "Person", Abstract: true},
	}})

	s, err := reg.GetSchema("Person")
	require.NoError(t, err)

	assert.Equal(t, KindScalar, s.Property("name").Kind)
	assert.Equal(t, KindComposite, s.Property("address").Kind)
	assert.Equal(t, KindManaged, s.Property("friend").Kind)
	assert.Equal(t, KindManaged, s.Kind)
}

func TestAllMethodsSorted(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(TypeDecl{Name: "Person", Methods: []MethodDecl{
		{Name: "Name", Returns: "string", Abstract: true},
		{Name: "SetName", Params: []string{"string"}, Abstract: true},
	}})

	s, err := reg.GetSchema("Person")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"public string Person.Name()",
		"public void Person.SetName(string)",
	}, s.AllMethods())
}
