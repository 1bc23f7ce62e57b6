package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db)
	n := 0
	s.newID = func() string { n++; return fmt.Sprintf("gen-%d", n) }
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Migrate(context.Background()), "migrate must be repeatable")
	return s
}

func TestApplyUpsertCities(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	res, err := s.Apply(ctx, Batch{Table: TableCities, Mode: Upsert, Rows: []map[string]any{
		{"id": "c1", "name": "Joinville", "population": int64(616317), "status": "aliado"},
		{"id": "c2", "name": "Blumenau"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Upserted)

	// partial upsert only touches the columns present
	_, err = s.Apply(ctx, Batch{Table: TableCities, Mode: Upsert, Rows: []map[string]any{
		{"id": "c1", "name": "Joinville", "mayor": "Adriano Silva"},
	}})
	require.NoError(t, err)

	c, err := s.City(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, c)
	require.NotNil(t, c.Mayor)
	assert.Equal(t, "Adriano Silva", *c.Mayor)
	require.NotNil(t, c.Population)
	assert.Equal(t, int64(616317), *c.Population)
	require.NotNil(t, c.Status)
	assert.Equal(t, "aliado", *c.Status)

	statuses, err := s.CityStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "c1", statuses[0].ID)
	assert.Nil(t, statuses[1].Status)

	missing, err := s.City(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestApplyInsertGeneratesIDsAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Apply(ctx, Batch{Table: TableCities, Mode: Upsert, Rows: []map[string]any{{"id": "c1", "name": "Joinville"}}})
	require.NoError(t, err)

	res, err := s.Apply(ctx,
		Batch{Table: TableCouncil, Mode: Insert, Rows: []map[string]any{
			{"city_id": "c1", "name": "Maria Souza", "votes": int64(4215)},
			{"city_id": "c1", "name": "José Lima"},
		}},
		Batch{Table: TableCities, Mode: Update, Rows: []map[string]any{
			{"id": "c1", "valid_votes": int64(310500)},
			{"id": "ghost", "valid_votes": int64(1)},
			{"id": "c1"},
		}},
	)
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 2, Updated: 1}, res)

	n, err := s.CountRows(ctx, TableCouncil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	c, err := s.City(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, c.ValidVotes)
	assert.Equal(t, int64(310500), *c.ValidVotes)
}

func TestApplyRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Apply(ctx,
		Batch{Table: TableCities, Mode: Upsert, Rows: []map[string]any{{"id": "c1", "name": "Joinville"}}},
		Batch{Table: TablePress, Mode: Insert, Rows: []map[string]any{{"name": "A Notícia", "bogus": "x"}}},
	)
	require.ErrorIs(t, err, ErrUnknownColumn)

	n, err := s.CountRows(ctx, TableCities)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestApplyUnknownTable(t *testing.T) {
	_, err := newTestStore(t).Apply(context.Background(), Batch{Table: "users", Mode: Insert})
	assert.Error(t, err)
}

func TestUpsertSQLDialects(t *testing.T) {
	def := tables[TableCities]
	cols := []string{"id", "name"}

	pg := &Store{dialect: "postgres"}
	assert.Equal(t,
		"INSERT INTO cities (id, name) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET name = excluded.name, updated_at = CURRENT_TIMESTAMP",
		pg.upsertSQL(def, cols))

	my := &Store{dialect: "mysql"}
	assert.Equal(t,
		"INSERT INTO cities (id, name) VALUES (?, ?) ON DUPLICATE KEY UPDATE name = VALUES(name), updated_at = CURRENT_TIMESTAMP",
		my.upsertSQL(def, cols))
}

func TestColumnsOrderIDFirst(t *testing.T) {
	cols, args, err := tables[TableCities].columns(map[string]any{"name": "X", "id": "1", "mayor": "Y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "mayor", "name"}, cols)
	assert.Equal(t, []any{"1", "Y", "X"}, args)
}

func TestOpenSqliteCreatesDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "nested", "mapa.db")

	s, err := Open(ctx, "sqlite", "file:"+path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSqliteFile(t *testing.T) {
	cases := []struct{ dsn, want string }{
		{":memory:", ""},
		{"file::memory:?cache=shared", ""},
		{"file:mem.db?mode=memory&cache=shared", ""},
		{"file:data/mapa.db", "data/mapa.db"},
		{"file:data/mapa.db?_pragma=busy_timeout(5000)", "data/mapa.db"},
		{"/var/lib/mapa/mapa.db", "/var/lib/mapa/mapa.db"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sqliteFile(tc.dsn), tc.dsn)
	}
}
