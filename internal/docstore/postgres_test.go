package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id   string
	data string
}

type fakeRows struct {
	rows []row
	i    int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.i >= len(r.rows) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	cur := r.rows[r.i-1]
	*dest[0].(*string) = cur.id
	*dest[1].(*[]byte) = []byte(cur.data)
	return nil
}

type fakeRow struct {
	data string
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = []byte(r.data)
	return nil
}

type fakeDB struct {
	rows  []row
	row   fakeRow
	tag   string
	sql   string
	args  []any
	fails error
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.sql, f.args = sql, args
	if f.fails != nil {
		return nil, f.fails
	}
	return &fakeRows{rows: f.rows}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.sql, f.args = sql, args
	return f.row
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql, f.args = sql, args
	if f.fails != nil {
		return pgconn.CommandTag{}, f.fails
	}
	return pgconn.NewCommandTag(f.tag), nil
}

func TestPostgresList_KeepsRowOrderAndExactNumbers(t *testing.T) {
	db := &fakeDB{rows: []row{
		{id: "b", data: `{"userid":"u2","sotien":12345678901234567}`},
		{id: "a", data: `{"userid":"u1","name":"An"}`},
	}}
	store := &Postgres{DB: db}

	docs, err := store.List(context.Background(), "user")
	require.NoError(t, err)
	assert.Contains(t, db.sql, "ORDER BY created_at, id")
	assert.Equal(t, []any{"user"}, db.args)

	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].ID)
	assert.Equal(t, json.Number("12345678901234567"), docs[0].Data["sotien"])
	assert.Equal(t, "a", docs[1].ID)
	assert.Equal(t, "An", docs[1].Data["name"])
}

func TestPostgresList_MalformedDocument(t *testing.T) {
	db := &fakeDB{rows: []row{{id: "x", data: `[1,2]`}}}

	_, err := (&Postgres{DB: db}).List(context.Background(), "user")
	assert.ErrorContains(t, err, "document x")
}

func TestPostgresList_QueryError(t *testing.T) {
	db := &fakeDB{fails: errors.New("conn refused")}

	_, err := (&Postgres{DB: db}).List(context.Background(), "user")
	assert.ErrorContains(t, err, "conn refused")
}

func TestPostgresGet(t *testing.T) {
	db := &fakeDB{row: fakeRow{data: `{"name":"An"}`}}
	doc, err := (&Postgres{DB: db}).Get(context.Background(), "user", "a")
	require.NoError(t, err)
	assert.Equal(t, Document{ID: "a", Data: map[string]any{"name": "An"}}, doc)

	db.row = fakeRow{err: pgx.ErrNoRows}
	_, err = (&Postgres{DB: db}).Get(context.Background(), "user", "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresUpdate_MergesAndReportsMissing(t *testing.T) {
	db := &fakeDB{tag: "UPDATE 1"}
	store := &Postgres{DB: db}

	require.NoError(t, store.Update(context.Background(), "shop", "s1", map[string]any{"name": "UIT"}))
	assert.Contains(t, db.sql, "data || $3::jsonb")
	assert.Equal(t, []any{"shop", "s1", `{"name":"UIT"}`}, db.args)

	db.tag = "UPDATE 0"
	assert.ErrorIs(t, store.Update(context.Background(), "shop", "s1", map[string]any{"name": "UIT"}), ErrNotFound)
}

func TestPostgresDelete_Missing(t *testing.T) {
	db := &fakeDB{tag: "DELETE 0"}
	assert.ErrorIs(t, (&Postgres{DB: db}).Delete(context.Background(), "shop", "s1"), ErrNotFound)
}

func TestPostgresSet_RejectsNonObject(t *testing.T) {
	db := &fakeDB{tag: "INSERT 0 1"}
	err := (&Postgres{DB: db}).Set(context.Background(), "product", "p1", []int{1})
	assert.Error(t, err)
	assert.Empty(t, db.sql)
}
