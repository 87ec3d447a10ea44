package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool the store runs on.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres keeps every collection in the documents table (see postgres.Migrate).
type Postgres struct{ DB Querier }

func (p *Postgres) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := p.DB.Query(ctx, `SELECT id, data FROM documents
	                              WHERE collection=$1 ORDER BY created_at, id`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		data, err := decodeObject(raw)
		if err != nil {
			return nil, fmt.Errorf("list %s: document %s: %w", collection, id, err)
		}
		out = append(out, Document{ID: id, Data: data})
	}
	return out, rows.Err()
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := p.DB.QueryRow(ctx, `SELECT data FROM documents WHERE collection=$1 AND id=$2`,
		collection, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	data, err := decodeObject(raw)
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Data: data}, nil
}

func (p *Postgres) Add(ctx context.Context, collection string, data any) (string, error) {
	b, err := fields(data)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if _, err := p.DB.Exec(ctx, `INSERT INTO documents(collection, id, data) VALUES ($1,$2,$3::jsonb)`,
		collection, id, string(b)); err != nil {
		return "", fmt.Errorf("add %s: %w", collection, err)
	}
	return id, nil
}

func (p *Postgres) Set(ctx context.Context, collection, id string, data any) error {
	b, err := fields(data)
	if err != nil {
		return err
	}
	_, err = p.DB.Exec(ctx, `
		INSERT INTO documents(collection, id, data) VALUES ($1,$2,$3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data=EXCLUDED.data, updated_at=now()
	`, collection, id, string(b))
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, collection, id string, fieldsIn map[string]any) error {
	b, err := fields(fieldsIn)
	if err != nil {
		return err
	}
	ct, err := p.DB.Exec(ctx, `UPDATE documents SET data = data || $3::jsonb, updated_at=now()
	                           WHERE collection=$1 AND id=$2`, collection, id, string(b))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	ct, err := p.DB.Exec(ctx, `DELETE FROM documents WHERE collection=$1 AND id=$2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
