package mirror

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typegraph/internal/fixture"
	"typegraph/internal/graph"
	"typegraph/internal/source"
)

const fixturePath = "typegraph/internal/fixture"

func newRegistry() (*Backend, *graph.Registry) {
	b := NewBackend()
	return b, graph.New(b)
}

func TestBackend_Classify(t *testing.T) {
	b, reg := newRegistry()

	entity := reg.Intern(b.TypeHandleOf(fixture.Entity{}))
	assert.Equal(t, graph.KindStruct, entity.Kind())
	assert.Equal(t, fixturePath+".Entity", entity.FullName())
	assert.Equal(t, fixturePath, entity.Namespace())
	assert.False(t, entity.Position().IsKnown(), "metadata carries no positions")

	t.Run("interface", func(t *testing.T) {
		it := reflect.TypeOf((*fixture.Identifier)(nil)).Elem()
		ident := reg.Intern(b.TypeHandle(it))
		assert.Equal(t, graph.KindInterface, ident.Kind())
	})

	t.Run("enum", func(t *testing.T) {
		color := reg.Intern(b.TypeHandleOf(fixture.Red))
		assert.Equal(t, graph.KindEnum, color.Kind())
		require.NotNil(t, color.EnumUnderlying())
		assert.Equal(t, "int", color.EnumUnderlying().FullName())
	})

	t.Run("pointer collapses to pointee", func(t *testing.T) {
		direct := reg.Intern(b.TypeHandleOf(fixture.Entity{}))
		viaPtr := reg.Intern(b.TypeHandleOf(&fixture.Entity{}))
		assert.NotSame(t, direct, viaPtr, "the pointer type is its own node")
		assert.Equal(t, graph.KindStruct, viaPtr.Kind())
	})
}

func TestBackend_Members(t *testing.T) {
	b, reg := newRegistry()
	entity := reg.Intern(b.TypeHandleOf(fixture.Entity{}))

	members := entity.Members()
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.SimpleName())
	}
	// Same walk as the semantic backend: Entity's own level first, then the
	// embedded base's. Promoted methods (Kind, ID) stay with their declaring
	// level instead of repeating here.
	assert.Equal(t,
		[]string{"Identifier", "Title", "Tags", "Color", "traced", "Describe", "CreatedAt", "Kind"},
		names)

	require.NotNil(t, entity.Base())
	assert.Equal(t, fixturePath+".Base", entity.Base().FullName())

	t.Run("unexported field", func(t *testing.T) {
		traced, ok := reg.Lookup(fixturePath + ".Entity.traced")
		require.True(t, ok)
		assert.False(t, traced.IsPublic())
		assert.Empty(t, traced.Attributes(), "infrastructure tags are filtered")
	})

	t.Run("tagged field", func(t *testing.T) {
		title, ok := reg.Lookup(fixturePath + ".Entity.Title")
		require.True(t, ok)
		attrs := title.Attributes()
		require.Len(t, attrs, 2)
		assert.Equal(t, "json", attrs[0].FullName)
		assert.False(t, attrs[0].Position.IsKnown())
	})
}

func TestBackend_Cycles(t *testing.T) {
	b, reg := newRegistry()

	node := reg.Intern(b.TypeHandleOf(fixture.Node{}))
	members := node.Members()
	require.Len(t, members, 2)
	next := members[1]
	assert.Same(t, node, next.TypeObject())
	assert.Equal(t, graph.NullabilityAnnotated, next.Nullable().Annotation)
	assert.True(t, graph.DeepEqual(node, node))
}

func TestBackend_GenericInstantiation(t *testing.T) {
	b, reg := newRegistry()

	list := reg.Intern(b.TypeHandleOf(fixture.PairList{}))
	members := list.Members()
	require.Len(t, members, 1)
	inst := members[0].TypeObject()
	assert.Equal(t, graph.ClosedGeneric, inst.GenericsKind())
	assert.Equal(t, "Pair", inst.SimpleName())
	assert.Equal(t, "Pair[string,int]", inst.LocalName())
	// Runtime metadata keeps no link to the open definition and no argument
	// list; the instantiation is its own original definition here.
	assert.Empty(t, inst.GenericArguments())
	assert.Same(t, inst, inst.OriginalDefinition())
}

func TestBackend_InterfaceFlattening(t *testing.T) {
	b, reg := newRegistry()

	it := reflect.TypeOf((*fixture.Auditable)(nil)).Elem()
	aud := reg.Intern(b.TypeHandle(it))
	// Reflection flattens embedded interfaces: the inherited method surfaces
	// on this level and the embedding link is gone.
	assert.Nil(t, aud.Base())
	names := make([]string, 0, 2)
	for _, m := range aud.Members() {
		names = append(names, m.SimpleName())
	}
	assert.Equal(t, []string{"AuditTag", "ID"}, names)
}

func TestBackend_ForeignHandlePanics(t *testing.T) {
	b, _ := newRegistry()
	assert.Panics(t, func() {
		b.Classify(42)
	})
}

// The equivalence suite interns the same fixture declarations through both
// production backends and checks that every shared facet agrees. Facets that
// are documented as metadata-only losses (positions, generic arguments,
// interface embedding links) are exercised separately above.
func TestBackendEquivalence(t *testing.T) {
	pkg, err := source.Load(fixturePath, []string{"../fixture/fixture.go"})
	require.NoError(t, err)
	srcReg := graph.New(pkg.Backend())

	b, mirReg := newRegistry()

	mirrorTypes := map[string]reflect.Type{
		"Identifier": reflect.TypeOf((*fixture.Identifier)(nil)).Elem(),
		"Color":      reflect.TypeOf(fixture.Red),
		"Base":       reflect.TypeOf(fixture.Base{}),
		"Node":       reflect.TypeOf(fixture.Node{}),
		"Blob":       reflect.TypeOf(fixture.Blob{}),
		"Manifest":   reflect.TypeOf(fixture.Manifest{}),
		"Entity":     reflect.TypeOf(fixture.Entity{}),
	}

	for name, rt := range mirrorTypes {
		t.Run(name, func(t *testing.T) {
			sh, ok := pkg.TypeHandle(name)
			require.True(t, ok)
			src := srcReg.Intern(sh)
			mir := mirReg.Intern(b.TypeHandle(rt))

			assert.True(t, graph.DeepEqual(src, mir),
				"source and mirror views of %s disagree", name)
		})
	}

	t.Run("facets", func(t *testing.T) {
		sh, ok := pkg.TypeHandle("Entity")
		require.True(t, ok)
		src := srcReg.Intern(sh)
		mir := mirReg.Intern(b.TypeHandle(mirrorTypes["Entity"]))

		assert.Equal(t, src.FullName(), mir.FullName())
		assert.Equal(t, src.Kind(), mir.Kind())
		assert.Equal(t, src.Namespace(), mir.Namespace())
		assert.Equal(t, src.Interfaces(), mir.Interfaces())
		assert.Equal(t, src.IsPublic(), mir.IsPublic())
		assert.Equal(t, src.IsSystem(), mir.IsSystem())

		srcMembers := src.Members()
		mirMembers := mir.Members()
		require.Equal(t, len(srcMembers), len(mirMembers))
		for i := range srcMembers {
			assert.Equal(t, srcMembers[i].FullName(), mirMembers[i].FullName())
			assert.Equal(t, srcMembers[i].Kind(), mirMembers[i].Kind())
			assert.Equal(t, srcMembers[i].Nullable().Annotation, mirMembers[i].Nullable().Annotation)
		}
	})
}
