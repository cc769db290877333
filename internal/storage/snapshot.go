// Package storage persists a flattened, denormalized copy of an interned
// graph to SQLite for offline consumers. The engine itself never reads a
// snapshot back; every session rebuilds its graph from a live backend.
package storage

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"typegraph/internal/graph"
)

// Edge kinds written to a snapshot.
const (
	EdgeBase               = "base"
	EdgeMember             = "member"
	EdgeType               = "type"
	EdgeInterface          = "interface"
	EdgeGenericArgument    = "generic-argument"
	EdgeArrayElement       = "array-element"
	EdgeEnumUnderlying     = "enum-underlying"
	EdgeOriginalDefinition = "original-definition"
)

// NodeRow is one node flattened for persistence.
type NodeRow struct {
	FullName     string
	Kind         string
	SimpleName   string
	LocalName    string
	RegionalName string
	Namespace    string
	GenericsKind string
	ArrayRank    int
	IsPublic     bool
	IsSystem     bool
	IsPrimitive  bool
	File         string
	Line         int
	Fingerprint  string
}

// EdgeRow is one relation between two nodes, by full name.
type EdgeRow struct {
	From string
	To   string
	Kind string
}

// AttrRow is one reified attribute application, arguments serialized as JSON.
type AttrRow struct {
	Owner    string
	FullName string
	Args     string
	File     string
	Line     int
}

// Snapshot is the flattened form of one graph walk.
type Snapshot struct {
	RunID     string
	Package   string
	Backend   string
	CreatedAt time.Time
	Nodes     []NodeRow
	Edges     []EdgeRow
	Attrs     []AttrRow
}

// Build walks the graph reachable from the roots and flattens it. The context
// is checked between nodes, never mid-property; partial snapshots are
// discarded on cancellation.
func Build(ctx context.Context, pkg, backendName string, roots []*graph.Object) (*Snapshot, error) {
	snap := &Snapshot{
		RunID:     uuid.NewString(),
		Package:   pkg,
		Backend:   backendName,
		CreatedAt: time.Now().UTC(),
	}

	visited := make(map[string]bool)
	queue := make([]*graph.Object, 0, len(roots))
	for _, o := range roots {
		if o != nil {
			queue = append(queue, o)
		}
	}

	push := func(from *graph.Object, to *graph.Object, kind string) {
		if to == nil {
			return
		}
		snap.Edges = append(snap.Edges, EdgeRow{From: from.FullName(), To: to.FullName(), Kind: kind})
		if !visited[to.FullName()] {
			queue = append(queue, to)
		}
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o := queue[0]
		queue = queue[1:]
		if visited[o.FullName()] {
			continue
		}
		visited[o.FullName()] = true

		snap.Nodes = append(snap.Nodes, nodeRow(o))
		for _, a := range o.Attributes() {
			args, err := json.Marshal(a)
			if err != nil {
				return nil, err
			}
			snap.Attrs = append(snap.Attrs, AttrRow{
				Owner:    o.FullName(),
				FullName: a.FullName,
				Args:     string(args),
				File:     a.Position.File,
				Line:     a.Position.Line,
			})
		}

		push(o, o.Base(), EdgeBase)
		for _, m := range o.Members() {
			push(o, m, EdgeMember)
		}
		if t := o.TypeObject(); t != o {
			push(o, t, EdgeType)
		}
		for _, name := range o.Interfaces() {
			snap.Edges = append(snap.Edges, EdgeRow{From: o.FullName(), To: name, Kind: EdgeInterface})
		}
		for _, a := range o.GenericArguments() {
			push(o, a, EdgeGenericArgument)
		}
		push(o, o.ArrayElement(), EdgeArrayElement)
		push(o, o.EnumUnderlying(), EdgeEnumUnderlying)
		if def := o.OriginalDefinition(); def != o {
			push(o, def, EdgeOriginalDefinition)
		}
	}

	slog.Debug("snapshot built",
		"run", snap.RunID,
		"package", pkg,
		"nodes", len(snap.Nodes),
		"edges", len(snap.Edges))
	return snap, nil
}

func nodeRow(o *graph.Object) NodeRow {
	pos := o.Position()
	row := NodeRow{
		FullName:     o.FullName(),
		Kind:         o.Kind().String(),
		SimpleName:   o.SimpleName(),
		LocalName:    o.LocalName(),
		RegionalName: o.RegionalName(),
		Namespace:    o.Namespace(),
		GenericsKind: o.GenericsKind().String(),
		ArrayRank:    o.ArrayRank(),
		IsPublic:     o.IsPublic(),
		IsSystem:     o.IsSystem(),
		IsPrimitive:  o.IsPrimitive(),
		File:         pos.File,
		Line:         pos.Line,
	}
	row.Fingerprint = fingerprint(row)
	return row
}

// fingerprint hashes the identity-bearing columns so offline consumers can
// diff snapshots without comparing every field.
func fingerprint(row NodeRow) string {
	var b strings.Builder
	for _, part := range []string{
		row.FullName, row.Kind, row.SimpleName, row.LocalName,
		row.RegionalName, row.Namespace, row.GenericsKind,
		strconv.Itoa(row.ArrayRank),
		strconv.FormatBool(row.IsPublic),
		strconv.FormatBool(row.IsSystem),
		strconv.FormatBool(row.IsPrimitive),
	} {
		b.WriteString(part)
		b.WriteByte(0)
	}
	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
