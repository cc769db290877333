package storage

import (
	"context"
	"fmt"
	"sort"
)

// SubgraphOptions controls neighborhood extraction over a stored run.
type SubgraphOptions struct {
	// MaxHops bounds the traversal depth; 0 returns only the root.
	MaxHops int
	// Kinds restricts which edge kinds are walked; empty admits every kind.
	Kinds map[string]bool
}

// Subgraph is the bounded neighborhood of one node in a stored run. Edges are
// walked in both directions: a member reaches its owner just as an owner
// reaches its members.
type Subgraph struct {
	Root    string
	MaxHops int
	Names   []string
	Depths  map[string]int
	Edges   []EdgeRow
}

type hop struct {
	name  string
	depth int
}

// Subgraph extracts the neighborhood of one node from a stored run. The walk
// happens in memory over the run's edge set; snapshot runs are small enough
// that a single query beats per-hop round trips.
func (s *Store) Subgraph(ctx context.Context, runID, root string, opt SubgraphOptions) (*Subgraph, error) {
	if opt.MaxHops < 0 {
		opt.MaxHops = 0
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT from_name, to_name, kind FROM edges WHERE run_id = ?", runID)
	if err != nil {
		return nil, fmt.Errorf("query run edges: %w", err)
	}
	defer rows.Close()

	adj := make(map[string][]EdgeRow)
	for rows.Next() {
		var e EdgeRow
		if err := rows.Scan(&e.From, &e.To, &e.Kind); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		if len(opt.Kinds) > 0 && !opt.Kinds[e.Kind] {
			continue
		}
		adj[e.From] = append(adj[e.From], e)
		adj[e.To] = append(adj[e.To], e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	depths := map[string]int{root: 0}
	queue := []hop{{name: root, depth: 0}}
	edgeSeen := make(map[string]bool)
	var edges []EdgeRow

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= opt.MaxHops {
			continue
		}
		for _, e := range adj[cur.name] {
			key := e.From + "->" + e.To + ":" + e.Kind
			if !edgeSeen[key] {
				edgeSeen[key] = true
				edges = append(edges, e)
			}
			next := e.To
			if next == cur.name {
				next = e.From
			}
			if d, seen := depths[next]; !seen || cur.depth+1 < d {
				depths[next] = cur.depth + 1
				queue = append(queue, hop{name: next, depth: cur.depth + 1})
			}
		}
	}

	names := make([]string, 0, len(depths))
	for name := range depths {
		names = append(names, name)
	}
	sort.Strings(names)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Kind < edges[j].Kind
	})

	return &Subgraph{
		Root:    root,
		MaxHops: opt.MaxHops,
		Names:   names,
		Depths:  depths,
		Edges:   edges,
	}, nil
}
