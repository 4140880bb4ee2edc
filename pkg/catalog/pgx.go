package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// docTable is a thin JSONB-document accessor shared by the three stores.
// Each catalog collection (intents, meta_nodes, meta_workflows) maps to
// one Postgres table of shape (id text primary key, doc jsonb, updated_at
// timestamptz); meta_nodes additionally derives family_id and is_latest
// from doc as generated columns for its index. Persistence format is intentionally opaque to callers
// (§4.2): they marshal/unmarshal their own metamodel structs.
type docTable struct {
	pool  *pgxpool.Pool
	table string
}

func newDocTable(pool *pgxpool.Pool, table string) *docTable {
	return &docTable{pool: pool, table: table}
}

func (t *docTable) get(ctx context.Context, id string) (json.RawMessage, bool, error) {
	var doc json.RawMessage
	row := t.pool.QueryRow(ctx, fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, t.table), id)
	if err := row.Scan(&doc); err != nil {
		return nil, false, nil
	}
	return doc, true, nil
}

func (t *docTable) getAll(ctx context.Context) ([]json.RawMessage, error) {
	rows, err := t.pool.Query(ctx, fmt.Sprintf(`SELECT doc FROM %s ORDER BY updated_at DESC`, t.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var doc json.RawMessage
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (t *docTable) upsert(ctx context.Context, id string, doc json.RawMessage) error {
	_, err := t.pool.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, doc, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`, t.table),
		id, doc)
	return err
}

func (t *docTable) delete(ctx context.Context, id string) error {
	_, err := t.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.table), id)
	return err
}

func (t *docTable) exists(ctx context.Context, id string) (bool, error) {
	var found bool
	row := t.pool.QueryRow(ctx, fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, t.table), id)
	if err := row.Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// Schema returns the DDL for this module's three catalog tables. Callers
// (cmd/orchestratord) run it once at startup against a fresh database.
const Schema = `
CREATE TABLE IF NOT EXISTS intents (
	id text PRIMARY KEY,
	doc jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS meta_nodes (
	id text PRIMARY KEY,
	family_id text GENERATED ALWAYS AS (doc->>'family_id') STORED,
	is_latest boolean GENERATED ALWAYS AS ((doc->>'is_latest')::boolean) STORED,
	doc jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS meta_nodes_family_latest_idx ON meta_nodes (family_id, is_latest);
CREATE TABLE IF NOT EXISTS meta_workflows (
	id text PRIMARY KEY,
	doc jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);
`
