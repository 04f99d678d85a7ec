package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"hexflow/internal/geom"
	"hexflow/internal/graph"
)

// Store implements store.Graph on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path and migrates it.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		endpoint TEXT,
		position_x REAL,
		position_y REAL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS connections (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		source_point INTEGER NOT NULL,
		target_point INTEGER NOT NULL,
		type TEXT NOT NULL DEFAULT 'default',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (source_id) REFERENCES nodes(id) ON DELETE CASCADE,
		FOREIGN KEY (target_id) REFERENCES nodes(id) ON DELETE CASCADE,
		UNIQUE (source_id, target_id, source_point, target_point)
	);

	CREATE INDEX IF NOT EXISTS idx_connections_source ON connections(source_id);
	CREATE INDEX IF NOT EXISTS idx_connections_target ON connections(target_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListNodes(ctx context.Context) ([]graph.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, status, endpoint, position_x, position_y
		FROM nodes ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []graph.Node
	for rows.Next() {
		var (
			n          graph.Node
			status     string
			endpoint   sql.NullString
			posX, posY sql.NullFloat64
		)
		if err := rows.Scan(&n.ID, &n.Name, &n.Type, &status, &endpoint, &posX, &posY); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n.Status = graph.Status(status)
		n.Endpoint = nullToString(endpoint)
		if posX.Valid && posY.Valid {
			p := geom.Pt(posX.Float64, posY.Float64)
			n.Position = &p
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	return nodes, nil
}

func (s *Store) ListConnections(ctx context.Context) ([]graph.Connection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_id, target_id, source_point, target_point, type
		FROM connections ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	var conns []graph.Connection
	for rows.Next() {
		var (
			c     graph.Connection
			ctype string
		)
		if err := rows.Scan(&c.ID, &c.SourceID, &c.TargetID, &c.SourcePoint, &c.TargetPoint, &ctype); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		c.Type = graph.ConnectionType(ctype)
		conns = append(conns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}
	return conns, nil
}

// UpsertNode inserts a node or updates its descriptive columns. A nil
// position leaves the stored position alone; status is only written when set.
func (s *Store) UpsertNode(ctx context.Context, n graph.Node) error {
	if n.ID == "" {
		return fmt.Errorf("node id is required")
	}
	status := n.Status
	if status == "" {
		status = graph.StatusPending
	}
	var posX, posY sql.NullFloat64
	if n.Position != nil {
		posX = sql.NullFloat64{Float64: n.Position.X, Valid: true}
		posY = sql.NullFloat64{Float64: n.Position.Y, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO nodes (id, seq, name, type, status, endpoint, position_x, position_y)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM nodes), ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			status = CASE WHEN ? THEN excluded.status ELSE nodes.status END,
			endpoint = excluded.endpoint,
			position_x = COALESCE(excluded.position_x, nodes.position_x),
			position_y = COALESCE(excluded.position_y, nodes.position_y),
			updated_at = CURRENT_TIMESTAMP
	`, n.ID, n.Name, n.Type, string(status), stringToNull(n.Endpoint), posX, posY, n.Status != "")
	if err != nil {
		return fmt.Errorf("failed to upsert node: %w", err)
	}
	return nil
}

func (s *Store) DeleteNode(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	return expectRow(res, "node", id)
}

func (s *Store) UpdateNodePosition(ctx context.Context, id string, x, y float64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE nodes SET position_x = ?, position_y = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, x, y, id)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	return expectRow(res, "node", id)
}

func (s *Store) UpdateNodeStatus(ctx context.Context, id string, status graph.Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE nodes SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return expectRow(res, "node", id)
}

// CreateConnection inserts req under a new id. The unique index rejects a
// second connection between the same points.
func (s *Store) CreateConnection(ctx context.Context, req graph.ConnectionRequest) (graph.Connection, error) {
	if req.SourceID == req.TargetID {
		return graph.Connection{}, graph.ErrSelfLoop
	}
	if req.Type == "" {
		req.Type = graph.ConnDefault
	}
	c := req.Connection()
	c.ID = uuid.New().String()

	if err := insertConnection(ctx, s.db, c); err != nil {
		return graph.Connection{}, err
	}
	return c, nil
}

func (s *Store) DeleteConnection(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	return expectRow(res, "connection", id)
}

// Import replaces the whole graph in one transaction.
func (s *Store) Import(ctx context.Context, nodes []graph.Node, conns []graph.Connection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM connections`); err != nil {
		return fmt.Errorf("failed to clear connections: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}

	for i, n := range nodes {
		status := n.Status
		if status == "" {
			status = graph.StatusPending
		}
		var posX, posY sql.NullFloat64
		if n.Position != nil {
			posX = sql.NullFloat64{Float64: n.Position.X, Valid: true}
			posY = sql.NullFloat64{Float64: n.Position.Y, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO nodes (id, seq, name, type, status, endpoint, position_x, position_y)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, n.ID, i+1, n.Name, n.Type, string(status), stringToNull(n.Endpoint), posX, posY)
		if err != nil {
			return fmt.Errorf("failed to insert node %s: %w", n.ID, err)
		}
	}

	for _, c := range conns {
		if c.SourceID == c.TargetID {
			return fmt.Errorf("connection %s: %w", c.SourceID, graph.ErrSelfLoop)
		}
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if c.Type == "" {
			c.Type = graph.ConnDefault
		}
		if err := insertConnection(ctx, tx, c); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertConnection(ctx context.Context, db execer, c graph.Connection) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO connections (id, seq, source_id, target_id, source_point, target_point, type)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM connections), ?, ?, ?, ?, ?)
	`, c.ID, c.SourceID, c.TargetID, c.SourcePoint, c.TargetPoint, string(c.Type))
	if err != nil {
		return fmt.Errorf("failed to insert connection: %w", mapConstraint(err))
	}
	return nil
}

// mapConstraint turns SQLite constraint failures into graph errors.
func mapConstraint(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %v", graph.ErrDuplicate, err)
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %v", graph.ErrNotFound, err)
	}
	return err
}

func expectRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, graph.ErrNotFound)
	}
	return nil
}

func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
