package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"mapa-service/internal/importer/model"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type Mode int

const (
	Upsert Mode = iota // insert or update by id
	Insert             // plain insert, id generated when absent
	Update             // update existing rows by id
)

func (m Mode) String() string {
	switch m {
	case Upsert:
		return "upsert"
	case Insert:
		return "insert"
	case Update:
		return "update"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Batch is a list of partial rows for one table. Only the columns
// present in a row are written.
type Batch struct {
	Table string
	Mode  Mode
	Rows  []map[string]any
}

type Result struct {
	Upserted int `json:"upserted"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

func (r Result) Total() int { return r.Upserted + r.Inserted + r.Updated }

var ErrUnknownColumn = errors.New("unknown column")

type Store struct {
	db      *sqlx.DB
	dialect string
	newID   func() string
}

// Open connects with one of the supported drivers: postgres, mysql, sqlite.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if driver == "sqlite" {
		if p := sqliteFile(dsn); p != "" {
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// one writer; also keeps ":memory:" on a single database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return New(db), nil
}

// sqliteFile returns the database file a sqlite DSN points at, or ""
// for in-memory databases.
func sqliteFile(dsn string) string {
	p, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if p == "" || p == ":memory:" || strings.Contains(query, "mode=memory") {
		return ""
	}
	return p
}

func New(db *sqlx.DB) *Store {
	d := db.DriverName()
	switch d {
	case "pgx", "postgres":
		d = "postgres"
	case "sqlite3", "sqlite":
		d = "sqlite"
	}
	return &Store{db: db, dialect: d, newID: uuid.NewString}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Apply writes every batch in one transaction; any failure rolls back
// the whole commit.
func (s *Store) Apply(ctx context.Context, batches ...Batch) (Result, error) {
	var res Result
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, b := range batches {
		def, ok := tables[b.Table]
		if !ok {
			return Result{}, fmt.Errorf("unknown table %q", b.Table)
		}
		for i, row := range b.Rows {
			n, err := s.writeRow(ctx, tx, def, b.Mode, row)
			if err != nil {
				return Result{}, fmt.Errorf("%s %s row %d: %w", b.Mode, b.Table, i+1, err)
			}
			switch b.Mode {
			case Upsert:
				res.Upserted += n
			case Insert:
				res.Inserted += n
			case Update:
				res.Updated += n
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

func (s *Store) writeRow(ctx context.Context, tx *sqlx.Tx, def tableDef, mode Mode, row map[string]any) (int, error) {
	if mode == Insert {
		if id, _ := row["id"].(string); id == "" {
			row = withID(row, s.newID())
		}
	}
	cols, args, err := def.columns(row)
	if err != nil {
		return 0, err
	}
	if mode != Insert && row["id"] == nil {
		return 0, errors.New("missing id")
	}

	var q string
	switch mode {
	case Insert:
		q = insertSQL(def.name, cols)
	case Upsert:
		q = s.upsertSQL(def, cols)
	case Update:
		q, args = updateSQL(def, cols, args)
		if q == "" {
			return 0, nil
		}
	}
	r, err := tx.ExecContext(ctx, tx.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	if mode == Update {
		n, err := r.RowsAffected()
		if err != nil {
			return 0, err
		}
		return int(n), nil
	}
	return 1, nil
}

func withID(row map[string]any, id string) map[string]any {
	out := make(map[string]any, len(row)+1)
	for k, v := range row {
		out[k] = v
	}
	out["id"] = id
	return out
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func insertSQL(table string, cols []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders(len(cols)))
}

func (s *Store) upsertSQL(def tableDef, cols []string) string {
	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == "id" {
			continue
		}
		if s.dialect == "mysql" {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
		} else {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	if def.stamped {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	}
	q := insertSQL(def.name, cols)
	if len(sets) == 0 {
		if s.dialect == "mysql" {
			return q + " ON DUPLICATE KEY UPDATE id = id"
		}
		return q + " ON CONFLICT (id) DO NOTHING"
	}
	if s.dialect == "mysql" {
		return q + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	return q + " ON CONFLICT (id) DO UPDATE SET " + strings.Join(sets, ", ")
}

// updateSQL moves id to the WHERE clause; a row with nothing but an id
// yields an empty query.
func updateSQL(def tableDef, cols []string, args []any) (string, []any) {
	var (
		sets  []string
		out   []any
		idArg any
	)
	for i, c := range cols {
		if c == "id" {
			idArg = args[i]
			continue
		}
		sets = append(sets, c+" = ?")
		out = append(out, args[i])
	}
	if len(sets) == 0 {
		return "", nil
	}
	if def.stamped {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", def.name, strings.Join(sets, ", ")), append(out, idArg)
}

// CityReferences lists what name matching needs.
func (s *Store) CityReferences(ctx context.Context) ([]model.CityRef, error) {
	var out []model.CityRef
	err := s.db.SelectContext(ctx, &out, `SELECT id, name, mayor FROM cities ORDER BY name, id`)
	return out, err
}

// CityStatuses returns only id and status, for colouring the map.
func (s *Store) CityStatuses(ctx context.Context) ([]model.CityStatus, error) {
	out := []model.CityStatus{}
	err := s.db.SelectContext(ctx, &out, `SELECT id, status FROM cities ORDER BY id`)
	return out, err
}

func (s *Store) Cities(ctx context.Context) ([]model.City, error) {
	out := []model.City{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, name, ibge_code, mayor, vice_mayor, party, population,
		       voters, valid_votes, mayor_votes, status, region
		FROM cities
		ORDER BY name, id`)
	return out, err
}

func (s *Store) City(ctx context.Context, id string) (*model.City, error) {
	var c model.City
	err := s.db.GetContext(ctx, &c, s.db.Rebind(`
		SELECT id, name, ibge_code, mayor, vice_mayor, party, population,
		       voters, valid_votes, mayor_votes, status, region
		FROM cities
		WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountRows backs the table report of `importctl migrate`.
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	def, ok := tables[table]
	if !ok {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+def.name)
	return n, err
}

type tableDef struct {
	name    string
	cols    map[string]bool
	stamped bool // has updated_at
}

// columns returns the row's keys (id first, then sorted) and their values.
func (d tableDef) columns(row map[string]any) ([]string, []any, error) {
	cols := make([]string, 0, len(row))
	for k := range row {
		if !d.cols[k] {
			return nil, nil, fmt.Errorf("%w %s.%s", ErrUnknownColumn, d.name, k)
		}
		cols = append(cols, k)
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i] == "id" || cols[j] == "id" {
			return cols[i] == "id"
		}
		return cols[i] < cols[j]
	})
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = row[c]
	}
	return cols, args, nil
}

func colSet(cols ...string) map[string]bool {
	out := make(map[string]bool, len(cols))
	for _, c := range cols {
		out[c] = true
	}
	return out
}

const (
	TableCities   = "cities"
	TableCouncil  = "council_members"
	TablePress    = "press_outlets"
	TableContacts = "business_contacts"
)

var tables = map[string]tableDef{
	TableCities: {
		name: TableCities,
		cols: colSet("id", "name", "ibge_code", "mayor", "vice_mayor", "party", "population",
			"voters", "valid_votes", "mayor_votes", "status", "region"),
		stamped: true,
	},
	TableCouncil: {
		name: TableCouncil,
		cols: colSet("id", "city_id", "name", "party", "votes", "phone", "email", "elected"),
	},
	TablePress: {
		name: TablePress,
		cols: colSet("id", "city_id", "name", "kind", "phone", "email", "website"),
	},
	TableContacts: {
		name: TableContacts,
		cols: colSet("id", "city_id", "name", "company", "role", "phone", "email"),
	},
}
