package s0_snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockbalance/backend/pkg/logger"
)

// fakeRows is an in-memory pgx.Rows
type fakeRows struct {
	fields []pgconn.FieldDescription
	values [][]any
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *fakeRows) Scan(dest ...any) error                       { return errors.New("not implemented") }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.pos-1], nil
}

type fakeQuerier struct {
	rows  *fakeRows
	err   error
	query string
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.query = sql
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestRepository_Fetch(t *testing.T) {
	rows := &fakeRows{
		fields: []pgconn.FieldDescription{{Name: "nk_entidade"}, {Name: "saldo"}},
		values: [][]any{{"S1", int64(3)}, {"S2", int64(5)}},
	}
	q := &fakeQuerier{rows: rows}

	repo := NewRepository(q, "select * from estoque", logger.Nop())
	table, err := repo.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "select * from estoque", q.query)
	assert.Equal(t, []string{"nk_entidade", "saldo"}, table.Columns)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []any{"S2", int64(5)}, table.Rows[1])
	assert.True(t, rows.closed)
}

func TestRepository_FetchErrors(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		_, err := NewRepository(&fakeQuerier{}, "", logger.Nop()).Fetch(context.Background())
		assert.Error(t, err)
	})

	t.Run("query fails", func(t *testing.T) {
		boom := errors.New("connection refused")
		_, err := NewRepository(&fakeQuerier{err: boom}, "select 1", logger.Nop()).Fetch(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("iteration fails", func(t *testing.T) {
		boom := errors.New("conn reset")
		rows := &fakeRows{fields: []pgconn.FieldDescription{{Name: "a"}}, err: boom}
		_, err := NewRepository(&fakeQuerier{rows: rows}, "select 1", logger.Nop()).Fetch(context.Background())
		assert.ErrorIs(t, err, boom)
	})
}
