package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelcore/structbind/internal/binder"
	"github.com/modelcore/structbind/internal/schema"
)

// resolveBinding builds a registry from the declarations, resolves the
// binding, and generates its factory.
func resolveBinding(t *testing.T, requested, delegate string, decls ...schema.TypeDecl) (*schema.Registry, *Factory) {
	t.Helper()
	reg := schema.NewRegistry()
	for _, d := range decls {
		require.NoError(t, reg.Register(d))
	}
	binding, err := binder.NewResolver(reg).GetBinding(requested, nil, delegate)
	require.NoError(t, err)
	factory, err := NewMaterializer(reg).Generate(binding)
	require.NoError(t, err)
	return reg, factory
}

func personDecl() schema.TypeDecl {
	return schema.TypeDecl{Name: "Person", Methods: []schema.MethodDecl{
		{Name: "Name", Returns: "string", Abstract: true},
		{Name: "SetName", Params: []string{"string"}, Abstract: true},
		{Name: "Age", Returns: "int", Abstract: true},
		{Name: "SetAge", Params: []string{"int"}, Abstract: true},
	}}
}

func TestGeneratedPropertyRoundtrip(t *testing.T) {
	_, factory := resolveBinding(t, "Person", "", personDecl())

	inst, err := factory.New(NewMapState("person"), nil)
	require.NoError(t, err)

	require.NoError(t, inst.Set("name", "alice"))
	got, err := inst.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	// Accessor-level dispatch routes through the same storage.
	_, err = inst.Call("SetAge", 30)
	require.NoError(t, err)
	age, err := inst.Call("Age")
	require.NoError(t, err)
	assert.Equal(t, 30, age)
}

func TestFactoryIsMemoizedPerBinding(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(personDecl()))
	binding, err := binder.NewResolver(reg).GetBinding("Person", nil, "")
	require.NoError(t, err)

	m := NewMaterializer(reg)
	first, err := m.Generate(binding)
	require.NoError(t, err)
	second, err := m.Generate(binding)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestSetCoercedRoutesThroughCoercion(t *testing.T) {
	_, factory := resolveBinding(t, "Person", "", personDecl())
	inst, err := factory.New(NewMapState("person"), nil)
	require.NoError(t, err)

	require.NoError(t, inst.SetCoerced("age", "42"))
	got, err := inst.Get("age")
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	err = inst.SetCoerced("age", "not a number")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `setting property "age"`)

	err = inst.SetCoerced("age", nil)
	require.Error(t, err)
}

func TestSelfInvocationOfGeneratedSetterIsRejected(t *testing.T) {
	decl := personDecl()
	decl.Methods = append(decl.Methods, schema.MethodDecl{
		// Implemented accessor whose body mutates managed state mid-call.
		Name: "Shout", Returns: "string",
		Body: func(self schema.Caller, args []any) (any, error) {
			if err := self.Set("name", "LOUD"); err != nil {
				return nil, err
			}
			return "ok", nil
		},
	})
	_, factory := resolveBinding(t, "Person", "", decl)
	inst, err := factory.New(NewMapState("person"), nil)
	require.NoError(t, err)

	_, err = inst.Call("Shout")
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
	assert.Contains(t, err.Error(), "calling setters of a managed type on itself is not allowed")

	// The guard is restored after the failed call.
	require.NoError(t, inst.Set("name", "alice"))
}

func TestFinalViewMethodSkipsTheGuard(t *testing.T) {
	decl := personDecl()
	decl.Methods = append(decl.Methods, schema.MethodDecl{
		Name: "Seed", Returns: "string", Final: true,
		Body: func(self schema.Caller, args []any) (any, error) {
			return "seeded", self.Set("name", "seed")
		},
	})
	_, factory := resolveBinding(t, "Person", "", decl)
	inst, err := factory.New(NewMapState("person"), nil)
	require.NoError(t, err)

	got, err := inst.Call("Seed")
	require.NoError(t, err)
	assert.Equal(t, "seeded", got)

	name, err := inst.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "seed", name)
}

func TestGuardIsRestoredOnPanic(t *testing.T) {
	decl := personDecl()
	decl.Methods = append(decl.Methods, schema.MethodDecl{
		Name: "Explode", Returns: "string",
		Body: func(self schema.Caller, args []any) (any, error) {
			panic("boom")
		},
	})
	_, factory := resolveBinding(t, "Person", "", decl)
	inst, err := factory.New(NewMapState("person"), nil)
	require.NoError(t, err)

	require.Panics(t, func() { _, _ = inst.Call("Explode") })
	require.NoError(t, inst.Set("name", "still works"))
}

func TestViewMethodWithoutBodyFails(t *testing.T) {
	decl := schema.TypeDecl{Name: "Person", Methods: []schema.MethodDecl{
		{Name: "Name", Returns: "string"}, // implemented, declaration-only
	}}
	_, factory := resolveBinding(t, "Person", "", decl)
	inst, err := factory.New(NewMapState("person"), nil)
	require.NoError(t, err)

	_, err = inst.Call("Name")
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
	assert.Contains(t, err.Error(), "no executable body")
}

type personRecord struct {
	name string
}

func (r *personRecord) Name() string        { return r.name }
func (r *personRecord) SetName(name string) { r.name = name }

func TestDelegateBoundAccessorsForwardUnmodified(t *testing.T) {
	_, factory := resolveBinding(t, "Person", "PersonRecord",
		schema.TypeDecl{Name: "Person", Methods: []schema.MethodDecl{
			{Name: "Name", Returns: "string", Abstract: true},
			{Name: "SetName", Params: []string{"string"}, Abstract: true},
		}},
		schema.TypeDecl{Name: "PersonRecord", Methods: []schema.MethodDecl{
			{Name: "Name", Returns: "string"},
			{Name: "SetName", Params: []string{"string"}},
		}},
	)

	rec := &personRecord{name: "initial"}
	inst, err := factory.New(NewMapState("person"), rec)
	require.NoError(t, err)

	got, err := inst.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "initial", got)

	require.NoError(t, inst.Set("name", "updated"))
	assert.Equal(t, "updated", rec.name)
}

func TestNewValidatesStateAndDelegatePresence(t *testing.T) {
	_, plain := resolveBinding(t, "Person", "", personDecl())

	_, err := plain.New(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backing state is nil")

	_, err = plain.New(NewMapState("p"), &personRecord{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no delegate schema")

	_, delegated := resolveBinding(t, "Person", "PersonRecord",
		schema.TypeDecl{Name: "Person", Methods: []schema.MethodDecl{
			{Name: "Name", Returns: "string", Abstract: true},
		}},
		schema.TypeDecl{Name: "PersonRecord", Methods: []schema.MethodDecl{
			{Name: "Name", Returns: "string"},
		}},
	)
	_, err = delegated.New(NewMapState("p"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")
}

func TestEqualityDelegatesToBackingStateIdentity(t *testing.T) {
	_, factory := resolveBinding(t, "Person", "", personDecl())

	shared := NewMapState("person")
	a, err := factory.New(shared, nil)
	require.NoError(t, err)
	b, err := factory.New(shared, nil)
	require.NoError(t, err)
	c, err := factory.New(NewMapState("other"), nil)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestStringPrefersViewImplementation(t *testing.T) {
	decl := personDecl()
	decl.Methods = append(decl.Methods, schema.MethodDecl{
		Name: "String", Returns: "string",
		Body: func(self schema.Caller, args []any) (any, error) {
			return "person-by-view", nil
		},
	})
	_, factory := resolveBinding(t, "Person", "", decl)
	inst, err := factory.New(NewMapState("state-name"), nil)
	require.NoError(t, err)
	assert.Equal(t, "person-by-view", inst.String())
}

type displayRecord struct{}

func (displayRecord) Title() string       { return "title" }
func (displayRecord) DisplayName() string { return "record display name" }

func TestStringFallsBackToDelegateDisplayName(t *testing.T) {
	_, factory := resolveBinding(t, "Titled", "TitledRecord",
		schema.TypeDecl{Name: "Titled", Methods: []schema.MethodDecl{
			{Name: "Title", Returns: "string", Abstract: true},
		}},
		schema.TypeDecl{Name: "TitledRecord", Methods: []schema.MethodDecl{
			{Name: "Title", Returns: "string"},
			{Name: "DisplayName", Returns: "string"},
		}},
	)
	inst, err := factory.New(NewMapState("state-name"), displayRecord{})
	require.NoError(t, err)
	assert.Equal(t, "record display name", inst.String())
}

func TestStringFallsBackToStateDisplayName(t *testing.T) {
	_, factory := resolveBinding(t, "Person", "", personDecl())
	inst, err := factory.New(NewMapState("person 'alice'"), nil)
	require.NoError(t, err)
	assert.Equal(t, "person 'alice'", inst.String())
}

func TestSatisfiesViewCoversDelegateLineage(t *testing.T) {
	_, factory := resolveBinding(t, "Person", "EmployeeRecord",
		schema.TypeDecl{Name: "Person", Methods: []schema.MethodDecl{
			{Name: "Name", Returns: "string", Abstract: true},
		}},
		schema.TypeDecl{Name: "Identified"},
		schema.TypeDecl{Name: "EmployeeRecord", Extends: []string{"Identified"}, Methods: []schema.MethodDecl{
			{Name: "Name", Returns: "string"},
		}},
	)
	inst, err := factory.New(NewMapState("p"), &personRecord{})
	require.NoError(t, err)

	assert.True(t, inst.SatisfiesView("Person"))
	assert.True(t, inst.SatisfiesView("EmployeeRecord"))
	assert.True(t, inst.SatisfiesView("Identified"))
	assert.False(t, inst.SatisfiesView("Unrelated"))

	_, err = inst.As("Identified")
	require.NoError(t, err)
	_, err = inst.As("Unrelated")
	require.Error(t, err)
	assert.True(t, binder.IsUnsupportedViewError(err))
}

func TestApplyConfiguresCompositeProperty(t *testing.T) {
	_, factory := resolveBinding(t, "Person", "",
		schema.TypeDecl{Name: "Address", Kind: schema.KindComposite},
		schema.TypeDecl{Name: "Person", Methods: []schema.MethodDecl{
			{Name: "Address", Returns: "Address", Abstract: true},
			{Name: "Name", Returns: "string", Abstract: true},
			{Name: "SetName", Params: []string{"string"}, Abstract: true},
		}},
	)
	inst, err := factory.New(NewMapState("person"), nil)
	require.NoError(t, err)

	err = inst.Apply("address", func(nested State) error {
		return nested.Set("city", "Oslo")
	})
	require.NoError(t, err)

	err = inst.Apply("name", func(State) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a composite")
}

func TestUnknownMembersAreUsageErrors(t *testing.T) {
	_, factory := resolveBinding(t, "Person", "", personDecl())
	inst, err := factory.New(NewMapState("person"), nil)
	require.NoError(t, err)

	_, err = inst.Get("ghost")
	assert.True(t, IsUsageError(err))
	assert.True(t, IsUsageError(inst.Set("ghost", 1)))
	_, err = inst.Call("Ghost")
	assert.True(t, IsUsageError(err))
}

func TestBackingNodeExposesStateHandle(t *testing.T) {
	_, factory := resolveBinding(t, "Person", "", personDecl())
	state := NewMapState("person")
	inst, err := factory.New(state, nil)
	require.NoError(t, err)
	assert.Equal(t, state.BackingNode(), inst.BackingNode())
}
