package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typegraph/internal/graph"
)

const fixturePath = "typegraph/internal/fixture"

func loadFixture(t *testing.T) (*Package, *graph.Registry) {
	t.Helper()
	pkg, err := Load(fixturePath, []string{"../fixture/fixture.go"})
	require.NoError(t, err)
	return pkg, graph.New(pkg.Backend())
}

func internType(t *testing.T, pkg *Package, reg *graph.Registry, name string) *graph.Object {
	t.Helper()
	h, ok := pkg.TypeHandle(name)
	require.True(t, ok, "fixture type %s not found", name)
	o := reg.Intern(h)
	require.NotNil(t, o)
	return o
}

func TestBackend_StructClassification(t *testing.T) {
	pkg, reg := loadFixture(t)

	entity := internType(t, pkg, reg, "Entity")
	assert.Equal(t, graph.KindStruct, entity.Kind())
	assert.Equal(t, fixturePath+".Entity", entity.FullName())
	assert.Equal(t, "Entity", entity.SimpleName())
	assert.Equal(t, fixturePath, entity.Namespace())
	assert.True(t, entity.IsPublic())
	assert.False(t, entity.IsSystem())
	assert.True(t, entity.Position().IsKnown(), "source handles carry positions")

	t.Run("interface", func(t *testing.T) {
		ident := internType(t, pkg, reg, "Identifier")
		assert.Equal(t, graph.KindInterface, ident.Kind())
	})

	t.Run("enum", func(t *testing.T) {
		color := internType(t, pkg, reg, "Color")
		assert.Equal(t, graph.KindEnum, color.Kind())
		require.NotNil(t, color.EnumUnderlying())
		assert.Equal(t, "int", color.EnumUnderlying().FullName())
		assert.True(t, color.EnumUnderlying().IsPrimitive())
	})
}

func TestBackend_EntityMembers(t *testing.T) {
	pkg, reg := loadFixture(t)
	entity := internType(t, pkg, reg, "Entity")

	members := entity.Members()
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.SimpleName())
	}
	// Entity level first (fields in declaration order, then methods), then
	// the embedded base's level. Base itself surfaces as the base, not as a
	// member.
	assert.Equal(t,
		[]string{"Identifier", "Title", "Tags", "Color", "traced", "Describe", "CreatedAt", "Kind"},
		names)

	require.NotNil(t, entity.Base())
	assert.Equal(t, fixturePath+".Base", entity.Base().FullName())

	t.Run("member facts", func(t *testing.T) {
		byName := map[string]*graph.Object{}
		for _, m := range members {
			byName[m.SimpleName()] = m
		}

		title := byName["Title"]
		assert.Equal(t, graph.KindField, title.Kind())
		assert.True(t, title.IsPublic())
		assert.True(t, title.IsSerializable())
		assert.Equal(t, "string", title.TypeObject().FullName())
		assert.Equal(t, "Entity.Title", title.RegionalName())

		traced := byName["traced"]
		assert.False(t, traced.IsPublic())

		describe := byName["Describe"]
		assert.Equal(t, graph.KindMethod, describe.Kind())
		assert.True(t, describe.IsReadable())
		assert.False(t, describe.IsWritable())
		assert.Empty(t, describe.MethodParameters())
	})

	t.Run("slice field has array facets", func(t *testing.T) {
		tags, ok := reg.Lookup(fixturePath + ".Entity.Tags")
		require.True(t, ok)
		typeObj := tags.TypeObject()
		assert.Equal(t, "[]string", typeObj.FullName())
		assert.Equal(t, 1, typeObj.ArrayRank())
		require.NotNil(t, typeObj.ArrayElement())
		assert.Equal(t, "string", typeObj.ArrayElement().FullName())
	})
}

func TestBackend_Attributes(t *testing.T) {
	pkg, reg := loadFixture(t)
	entity := internType(t, pkg, reg, "Entity")
	_ = entity.Members()

	title, ok := reg.Lookup(fixturePath + ".Entity.Title")
	require.True(t, ok)
	attrs := title.Attributes()
	require.Len(t, attrs, 2)
	assert.Equal(t, "json", attrs[0].FullName)
	assert.Equal(t, "yaml", attrs[1].FullName)
	got, ok := attrs[0].Argument(0, "")
	require.True(t, ok)
	assert.Equal(t, "title", got)
	assert.True(t, attrs[0].Position.IsKnown())

	t.Run("infrastructure tags are filtered", func(t *testing.T) {
		traced, ok := reg.Lookup(fixturePath + ".Entity.traced")
		require.True(t, ok)
		assert.Empty(t, traced.Attributes())
	})
}

func TestBackend_Interfaces(t *testing.T) {
	pkg, reg := loadFixture(t)

	entity := internType(t, pkg, reg, "Entity")
	assert.Equal(t, []string{fixturePath + ".Identifier"}, entity.Interfaces())
	assert.True(t, entity.Implements(fixturePath+".Identifier"))

	t.Run("interface embedding is transitive", func(t *testing.T) {
		aud := internType(t, pkg, reg, "Auditable")
		assert.Contains(t, aud.Interfaces(), fixturePath+".Identifier")
		require.NotNil(t, aud.Base())
		assert.Equal(t, fixturePath+".Identifier", aud.Base().FullName())
	})
}

func TestBackend_Cycles(t *testing.T) {
	pkg, reg := loadFixture(t)

	t.Run("self referential", func(t *testing.T) {
		node := internType(t, pkg, reg, "Node")
		members := node.Members()
		require.Len(t, members, 2)
		next := members[1]
		assert.Same(t, node, next.TypeObject(), "the field's type interns to the node itself")
		assert.Equal(t, graph.NullabilityAnnotated, next.Nullable().Annotation)
		assert.True(t, graph.DeepEqual(node, node))
	})

	t.Run("mutually recursive", func(t *testing.T) {
		blob := internType(t, pkg, reg, "Blob")
		manifest := internType(t, pkg, reg, "Manifest")
		require.Len(t, blob.Members(), 1)
		assert.Same(t, manifest, blob.Members()[0].TypeObject())
		assert.Same(t, blob, manifest.Members()[0].TypeObject())
		assert.True(t, graph.DeepEqual(blob, blob))
		assert.False(t, graph.DeepEqual(blob, manifest))
	})
}

func TestBackend_Generics(t *testing.T) {
	pkg, reg := loadFixture(t)

	t.Run("open definition", func(t *testing.T) {
		pair := internType(t, pkg, reg, "Pair")
		assert.Equal(t, graph.OpenGeneric, pair.GenericsKind())
		assert.Equal(t, "Pair[K,V]", pair.LocalName())
		args := pair.GenericArguments()
		require.Len(t, args, 2)
		assert.Equal(t, graph.KindTypeParameter, args[0].Kind())
		assert.Equal(t, graph.OpenGeneric, args[0].GenericsKind())
	})

	t.Run("closed instantiation", func(t *testing.T) {
		list := internType(t, pkg, reg, "PairList")
		members := list.Members()
		require.Len(t, members, 1)
		inst := members[0].TypeObject()
		assert.Equal(t, graph.ClosedGeneric, inst.GenericsKind())
		assert.Equal(t, "Pair[string,int]", inst.LocalName())

		args := inst.GenericArguments()
		require.Len(t, args, 2)
		assert.Equal(t, "string", args[0].FullName())
		assert.Equal(t, "int", args[1].FullName())

		def := inst.OriginalDefinition()
		require.NotNil(t, def)
		assert.NotSame(t, inst, def)
		assert.Equal(t, graph.OpenGeneric, def.GenericsKind())
		assert.Equal(t, "Pair", def.SimpleName())
	})
}

func TestBackend_IdentityAcrossHandles(t *testing.T) {
	pkg, reg := loadFixture(t)

	h1, ok := pkg.TypeHandle("Entity")
	require.True(t, ok)
	h2, ok := pkg.TypeHandle("Entity")
	require.True(t, ok)

	assert.Same(t, reg.Intern(h1), reg.Intern(h2))
}

func TestLoadDir(t *testing.T) {
	pkg, err := LoadDir(fixturePath, "../fixture", nil)
	require.NoError(t, err)
	assert.Equal(t, fixturePath, pkg.Path())

	handles := pkg.TypeHandles()
	assert.NotEmpty(t, handles)

	t.Run("keep filter excludes files", func(t *testing.T) {
		_, err := LoadDir(fixturePath, "../fixture", func(string) bool { return false })
		assert.Error(t, err, "filtering out every file leaves nothing to load")
	})
}

func TestLoad_BadInput(t *testing.T) {
	_, err := Load(fixturePath, nil)
	assert.Error(t, err)

	_, err = Load(fixturePath, []string{"../fixture/no_such_file.go"})
	assert.Error(t, err)
}

func TestBackend_ForeignHandlePanics(t *testing.T) {
	pkg, _ := loadFixture(t)
	assert.Panics(t, func() {
		pkg.Backend().Classify("not a handle")
	})
}
