package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite snapshot sink.
type Store struct {
	db *sql.DB
}

// NewStore creates or opens a snapshot database.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			package TEXT,
			backend TEXT,
			created_at TEXT,
			node_count INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS nodes (
			run_id TEXT,
			full_name TEXT,
			kind TEXT,
			simple_name TEXT,
			local_name TEXT,
			regional_name TEXT,
			namespace TEXT,
			generics_kind TEXT,
			array_rank INTEGER,
			is_public INTEGER,
			is_system INTEGER,
			is_primitive INTEGER,
			file TEXT,
			line INTEGER,
			fingerprint TEXT,
			PRIMARY KEY (run_id, full_name)
		);`,
		`CREATE TABLE IF NOT EXISTS edges (
			run_id TEXT,
			from_name TEXT,
			to_name TEXT,
			kind TEXT,
			PRIMARY KEY (run_id, from_name, to_name, kind)
		);`,
		`CREATE TABLE IF NOT EXISTS attributes (
			run_id TEXT,
			owner_name TEXT,
			full_name TEXT,
			args JSON,
			file TEXT,
			line INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(run_id, kind);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(run_id, from_name);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot writes one snapshot in a single transaction. Re-saving the
// same run id upserts its rows, which supports resumed exports.
func (s *Store) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, package, backend, created_at, node_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			package=excluded.package,
			backend=excluded.backend,
			created_at=excluded.created_at,
			node_count=excluded.node_count
	`, snap.RunID, snap.Package, snap.Backend, snap.CreatedAt.Format(time.RFC3339), len(snap.Nodes)); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (run_id, full_name, kind, simple_name, local_name,
			regional_name, namespace, generics_kind, array_rank,
			is_public, is_system, is_primitive, file, line, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, full_name) DO UPDATE SET
			kind=excluded.kind,
			simple_name=excluded.simple_name,
			local_name=excluded.local_name,
			regional_name=excluded.regional_name,
			namespace=excluded.namespace,
			generics_kind=excluded.generics_kind,
			array_rank=excluded.array_rank,
			is_public=excluded.is_public,
			is_system=excluded.is_system,
			is_primitive=excluded.is_primitive,
			file=excluded.file,
			line=excluded.line,
			fingerprint=excluded.fingerprint
	`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close()

	for _, n := range snap.Nodes {
		if _, err := nodeStmt.Exec(snap.RunID, n.FullName, n.Kind, n.SimpleName,
			n.LocalName, n.RegionalName, n.Namespace, n.GenericsKind, n.ArrayRank,
			n.IsPublic, n.IsSystem, n.IsPrimitive, n.File, n.Line, n.Fingerprint); err != nil {
			return fmt.Errorf("save node %s: %w", n.FullName, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (run_id, from_name, to_name, kind) VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, from_name, to_name, kind) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for _, e := range snap.Edges {
		if _, err := edgeStmt.Exec(snap.RunID, e.From, e.To, e.Kind); err != nil {
			return fmt.Errorf("save edge %s->%s: %w", e.From, e.To, err)
		}
	}

	// Attribute rows have no natural key; replace the run's rows wholesale.
	if _, err := tx.ExecContext(ctx, "DELETE FROM attributes WHERE run_id = ?", snap.RunID); err != nil {
		return fmt.Errorf("clear attributes: %w", err)
	}
	attrStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attributes (run_id, owner_name, full_name, args, file, line)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer attrStmt.Close()

	for _, a := range snap.Attrs {
		if _, err := attrStmt.Exec(snap.RunID, a.Owner, a.FullName, a.Args, a.File, a.Line); err != nil {
			return fmt.Errorf("save attribute %s on %s: %w", a.FullName, a.Owner, err)
		}
	}

	return tx.Commit()
}

// RunInfo describes one stored snapshot run.
type RunInfo struct {
	ID        string
	Package   string
	Backend   string
	CreatedAt time.Time
	NodeCount int
}

// Runs lists stored snapshot runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, package, backend, created_at, node_count FROM runs ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var r RunInfo
		var created string
		if err := rows.Scan(&r.ID, &r.Package, &r.Backend, &created, &r.NodeCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Nodes reads the node rows of one run, in full-name order.
func (s *Store) Nodes(ctx context.Context, runID string) ([]NodeRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT full_name, kind, simple_name, local_name, regional_name,
			namespace, generics_kind, array_rank, is_public, is_system,
			is_primitive, file, line, fingerprint
		FROM nodes WHERE run_id = ? ORDER BY full_name
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var out []NodeRow
	for rows.Next() {
		var n NodeRow
		if err := rows.Scan(&n.FullName, &n.Kind, &n.SimpleName, &n.LocalName,
			&n.RegionalName, &n.Namespace, &n.GenericsKind, &n.ArrayRank,
			&n.IsPublic, &n.IsSystem, &n.IsPrimitive, &n.File, &n.Line,
			&n.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Edges reads the outgoing edges of one node in one run.
func (s *Store) Edges(ctx context.Context, runID, fromName string) ([]EdgeRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT from_name, to_name, kind FROM edges WHERE run_id = ? AND from_name = ? ORDER BY kind, to_name",
		runID, fromName)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var out []EdgeRow
	for rows.Next() {
		var e EdgeRow
		if err := rows.Scan(&e.From, &e.To, &e.Kind); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
