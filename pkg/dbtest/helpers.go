package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	_ "github.com/jackc/pgx/v4/stdlib"

	. "github.com/onsi/gomega"
)

// DB is used to help test interactions with Postgres. Migrations change global structure
// (tables, constraints, the goose version table) so every test suite works inside its own
// schema, which is dropped and recreated before each test.
//
// Connection parameters come from the standard libpq environment variables (PGHOST,
// PGUSER, ...), with the search_path pinned to the test schema so nothing leaks into
// public.
type DB struct {
	db          *sql.DB
	schema      string
	createFuncs []func(context.Context, *sql.DB) error
	cleanFuncs  []func(context.Context, *sql.DB) error
}

func Configure(opts ...func(*DB)) *DB {
	dbtest := &DB{}
	for _, opt := range opts {
		opt(dbtest)
	}

	return dbtest
}

func (d *DB) Setup(ctx context.Context, timeout time.Duration) (context.Context, func()) {
	ctx, cancel := context.WithTimeout(ctx, timeout)

	// Force close the pool, so sessions from previous tests can't hold locks on the
	// schema we're about to drop
	if d.db != nil {
		Expect(d.db.Close()).To(Succeed(), "closing database should always succeed")
	}

	var err error
	d.db, err = sql.Open("pgx", fmt.Sprintf("search_path=%s", d.schema))
	Expect(err).NotTo(HaveOccurred(), "failed to open database connection")

	// In case previous tests exited abruptly, clean-up before we begin
	for _, clean := range d.cleanFuncs {
		Expect(clean(ctx, d.db)).To(Succeed(), "failed to run cleanup before test start")
	}

	// Just before we begin testing, run all the creation functions
	for _, create := range d.createFuncs {
		Expect(create(ctx, d.db)).To(Succeed(), "failed to run creation before test start")
	}

	return ctx, cancel
}

func (d *DB) MustExec(ctx context.Context, query string, args ...interface{}) {
	_, err := d.db.ExecContext(ctx, query, args...)
	Expect(err).NotTo(HaveOccurred())
}

// Exec runs the query, returning the error for tests that expect failure.
func (d *DB) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := d.db.ExecContext(ctx, query, args...)
	return err
}

// MustCount returns the number of rows in table.
func (d *DB) MustCount(ctx context.Context, table string) int {
	var count int
	err := d.db.QueryRowContext(ctx, fmt.Sprintf(`select count(*) from %s;`, pgx.Identifier{table}.Sanitize())).Scan(&count)
	Expect(err).NotTo(HaveOccurred())

	return count
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) GetSchema() string {
	return d.schema
}

type Option func(*DB)

func (o Option) And(other func(*DB)) Option {
	return func(db *DB) {
		o(db)
		other(db)
	}
}

func WithLifecycle(createFunc, cleanFunc func(context.Context, *sql.DB) error) func(*DB) {
	return func(db *DB) {
		if createFunc != nil {
			db.createFuncs = append(db.createFuncs, createFunc)
		}
		if cleanFunc != nil {
			db.cleanFuncs = append(db.cleanFuncs, cleanFunc)
		}
	}
}

func exec(ctx context.Context, db *sql.DB, query string) error {
	_, err := db.ExecContext(ctx, query)
	return err
}

func WithSchema(name string) func(*DB) {
	return func(db *DB) {
		db.schema = name

		WithLifecycle(
			func(ctx context.Context, db *sql.DB) error {
				return exec(ctx, db, fmt.Sprintf(`create schema %s;`, pgx.Identifier{name}.Sanitize()))
			},
			func(ctx context.Context, db *sql.DB) error {
				return exec(ctx, db, fmt.Sprintf(`drop schema if exists %s cascade;`, pgx.Identifier{name}.Sanitize()))
			},
		)(db)
	}
}

func WithTable(schema, name string, fieldDefinitions ...string) func(*DB) {
	qualified := pgx.Identifier{schema, name}.Sanitize()
	return WithLifecycle(
		func(ctx context.Context, db *sql.DB) error {
			return exec(ctx, db, fmt.Sprintf("create table %s (%s);", qualified, strings.Join(fieldDefinitions, ", ")))
		},
		func(ctx context.Context, db *sql.DB) error {
			return exec(ctx, db, fmt.Sprintf(`drop table if exists %s cascade;`, qualified))
		},
	)
}
