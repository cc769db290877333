package source

import (
	"fmt"
	"go/types"

	"typegraph/internal/graph"
)

// typeHandle wraps one go/types type as an opaque engine handle.
type typeHandle struct {
	t types.Type
}

// memberHandle wraps one declared member of a named type: a struct field
// (*types.Var) or a declared method (*types.Func). The owner and raw struct
// tag travel with the handle because go/types keeps tags on the struct, not
// on the field object.
type memberHandle struct {
	obj   types.Object
	owner *types.Named
	tag   string
}

func (b *Backend) typeHandle(h graph.Handle) typeHandle {
	if th, ok := h.(typeHandle); ok {
		return th
	}
	panic(fmt.Sprintf("source: foreign handle %T", h))
}

// anyHandle accepts either handle shape; members answer most questions
// through their object, types through their type.
func (b *Backend) anyHandle(h graph.Handle) (typeHandle, memberHandle, bool) {
	switch v := h.(type) {
	case typeHandle:
		return v, memberHandle{}, true
	case memberHandle:
		return typeHandle{}, v, false
	default:
		panic(fmt.Sprintf("source: foreign handle %T", h))
	}
}
