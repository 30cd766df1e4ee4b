// Package sqlitepersist stores the dataset in SQLite, one row per top-level
// resource, for deployments that prefer a database file to a JSON document.
package sqlitepersist

import (
	"context"
	"database/sql"
	"fmt"
	"mockserver/internal/adapters/driven/jsonrepo"
	"mockserver/internal/core/domain"

	"github.com/Masterminds/squirrel"
	"github.com/go-json-experiment/json/jsontext"
	_ "github.com/mattn/go-sqlite3"
)

const (
	table = "resources"

	createTable = `CREATE TABLE IF NOT EXISTS resources (
	name     TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	body     TEXT NOT NULL
)`
)

// Persister keeps each resource's JSON in its own row. Row position preserves
// the document order of resources.
type Persister struct {
	path string
	db   *sql.DB
	sq   squirrel.StatementBuilderType
}

var _ jsonrepo.Persister = (*Persister)(nil)

// New opens (creating if needed) the database at path.
func New(ctx context.Context, path string) (*Persister, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// a single connection serialises writers and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema in %s: %w", path, err)
	}

	return &Persister{
		path: path,
		db:   db,
		sq:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

func (p *Persister) Location() string {
	return p.path
}

func (p *Persister) Close() error {
	return p.db.Close()
}

func (p *Persister) Load(ctx context.Context) (*domain.Dataset, error) {
	query, args, err := p.sq.Select("name", "body").From(table).OrderBy("position").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", p.path, err)
	}
	defer rows.Close()

	ds := domain.NewDataset()
	for rows.Next() {
		var name, body string
		if err := rows.Scan(&name, &body); err != nil {
			return nil, fmt.Errorf("error reading %s: %w", p.path, err)
		}
		if err := ds.Put(name, jsontext.Value(body)); err != nil {
			return nil, fmt.Errorf("error parsing JSON from %s: %w", p.path, err)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", p.path, err)
	}
	return ds, nil
}

// Persist replaces every row in a single transaction.
func (p *Persister) Persist(ctx context.Context, ds *domain.Dataset) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction on %s: %w", p.path, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := p.sq.Delete(table).ToSql()
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error clearing %s: %w", p.path, err)
	}

	for position, name := range ds.Names() {
		raw, _, entryErr := ds.Entry(name)
		if entryErr != nil {
			err = fmt.Errorf("error encoding resource '%s': %w", name, entryErr)
			return err
		}

		query, args, err = p.sq.Insert(table).
			Columns("name", "position", "body").
			Values(name, position, string(raw)).
			ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("error writing resource '%s' to %s: %w", name, p.path, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing to %s: %w", p.path, err)
	}
	return nil
}
