// Package sqlite implements store.Store on an SQLite database file.
//
// The schema mirrors the CSV layout: nodes, edges, and network_summary
// tables, with node metadata kept as a JSON column. No foreign keys are
// declared; referential integrity is checked downstream by graph.Load,
// which needs to observe dangling edge references rather than have the
// database reject them.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/store"

	_ "modernc.org/sqlite"
)

// Store is an SQLite-backed table store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open database %s", path)
	}
	db.SetMaxOpenConns(4)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "enable WAL on %s", path)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "set busy timeout on %s", path)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "migrate database %s", path)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		node_id    TEXT NOT NULL,
		network_id INTEGER NOT NULL,
		node_type  TEXT NOT NULL,
		node_label TEXT NOT NULL DEFAULT '',
		meta       JSON
	);

	CREATE TABLE IF NOT EXISTS edges (
		source_id  TEXT NOT NULL,
		target_id  TEXT NOT NULL,
		network_id INTEGER NOT NULL,
		edge_type  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS network_summary (
		network_id         INTEGER PRIMARY KEY,
		disease            TEXT NOT NULL,
		treatment_name     TEXT NOT NULL,
		grant_id           TEXT NOT NULL,
		grant_year         INTEGER NOT NULL,
		approval_year      INTEGER NOT NULL,
		funding_amount     INTEGER NOT NULL,
		total_publications INTEGER NOT NULL,
		research_duration  INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_network ON nodes(network_id);
	CREATE INDEX IF NOT EXISTS idx_edges_network ON edges(network_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Tables reads the complete dataset. Row order follows insertion order,
// so fingerprints survive a round trip through the database.
func (s *Store) Tables(ctx context.Context) (*store.Tables, error) {
	t := &store.Tables{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, network_id, node_type, node_label, meta
		FROM nodes ORDER BY rowid
	`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "query nodes")
	}
	defer rows.Close()

	for rows.Next() {
		var node graph.Node
		var meta []byte
		if err := rows.Scan(&node.ID, &node.NetworkID, &node.Role, &node.Label, &meta); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "scan node row")
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &node.Meta); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err,
					"decode meta for node %s", node.ID)
			}
		}
		t.Nodes = append(t.Nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "iterate nodes")
	}

	edgeRows, err := s.db.QueryContext(ctx, `
		SELECT source_id, target_id, network_id, edge_type
		FROM edges ORDER BY rowid
	`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "query edges")
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var edge graph.Edge
		if err := edgeRows.Scan(&edge.Source, &edge.Target, &edge.NetworkID, &edge.Kind); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "scan edge row")
		}
		t.Edges = append(t.Edges, edge)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "iterate edges")
	}

	sumRows, err := s.db.QueryContext(ctx, `
		SELECT network_id, disease, treatment_name, grant_id, grant_year,
		       approval_year, funding_amount, total_publications, research_duration
		FROM network_summary ORDER BY network_id
	`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "query summaries")
	}
	defer sumRows.Close()

	for sumRows.Next() {
		var row store.SummaryRow
		if err := sumRows.Scan(
			&row.NetworkID, &row.Disease, &row.TreatmentName, &row.GrantID,
			&row.GrantYear, &row.ApprovalYear, &row.FundingAmount,
			&row.TotalPublications, &row.ResearchDuration,
		); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "scan summary row")
		}
		t.Summaries = append(t.Summaries, row)
	}
	if err := sumRows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "iterate summaries")
	}

	return t, nil
}

// Replace swaps the entire dataset inside one transaction.
func (s *Store) Replace(ctx context.Context, t *store.Tables) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "begin transaction")
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "edges", "network_summary"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "clear %s", table)
		}
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (node_id, network_id, node_type, node_label, meta)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "prepare node insert")
	}
	defer nodeStmt.Close()

	for _, node := range t.Nodes {
		var meta any
		if len(node.Meta) > 0 {
			data, err := json.Marshal(node.Meta)
			if err != nil {
				return errors.Wrap(errors.ErrCodeStore, err, "encode meta for node %s", node.ID)
			}
			meta = string(data)
		}
		if _, err := nodeStmt.ExecContext(ctx,
			node.ID, node.NetworkID, string(node.Role), node.Label, meta); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "insert node %s", node.ID)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (source_id, target_id, network_id, edge_type)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "prepare edge insert")
	}
	defer edgeStmt.Close()

	for _, edge := range t.Edges {
		if _, err := edgeStmt.ExecContext(ctx,
			edge.Source, edge.Target, edge.NetworkID, string(edge.Kind)); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "insert edge %s->%s", edge.Source, edge.Target)
		}
	}

	sumStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO network_summary (
			network_id, disease, treatment_name, grant_id, grant_year,
			approval_year, funding_amount, total_publications, research_duration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "prepare summary insert")
	}
	defer sumStmt.Close()

	for _, row := range t.Summaries {
		if _, err := sumStmt.ExecContext(ctx,
			row.NetworkID, row.Disease, row.TreatmentName, row.GrantID,
			row.GrantYear, row.ApprovalYear, row.FundingAmount,
			row.TotalPublications, row.ResearchDuration,
		); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "insert summary for network %d", row.NetworkID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "commit transaction")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.Store = (*Store)(nil)
