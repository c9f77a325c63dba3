package schema

import (
	"context"
	"database/sql"

	isv "github.com/getajob/jobdb/internal/dbschema/information_schema/view"
	pgv "github.com/getajob/jobdb/internal/dbschema/pg_catalog/view"

	pg "github.com/go-jet/jet/v2/postgres"
	"github.com/jackc/pgtype"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// Queryer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Inspect reads the tables, columns, constraints and indexes of schemaName. Views and
// other non-table relations are ignored.
func Inspect(ctx context.Context, db Queryer, schemaName string) (*Catalog, error) {
	ctx, span := trace.StartSpan(ctx, "pkg/schema.Inspect")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("schema", schemaName))

	catalog := &Catalog{Schema: schemaName, Tables: map[string]*Table{}}
	for _, step := range []struct {
		name string
		fn   func(context.Context, Queryer, *Catalog) error
	}{
		{"tables", inspectTables},
		{"columns", inspectColumns},
		{"constraints", inspectConstraints},
		{"indexes", inspectIndexes},
	} {
		if err := step.fn(ctx, db, catalog); err != nil {
			return nil, errors.Wrapf(err, "failed to inspect %s", step.name)
		}
	}

	return catalog, nil
}

func inspectTables(ctx context.Context, db Queryer, catalog *Catalog) error {
	query, args := isv.Tables.
		SELECT(isv.Tables.TableName).
		WHERE(
			isv.Tables.TableSchema.EQ(pg.String(catalog.Schema)).
				AND(isv.Tables.TableType.EQ(pg.String("BASE TABLE"))),
		).
		ORDER_BY(isv.Tables.TableName.ASC()).
		Sql()

	return scanEach(ctx, db, query, args, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}

		catalog.getOrCreate(name)
		return nil
	})
}

func inspectColumns(ctx context.Context, db Queryer, catalog *Catalog) error {
	query, args := isv.Columns.
		SELECT(
			isv.Columns.TableName,
			isv.Columns.ColumnName,
			isv.Columns.DataType,
			isv.Columns.CharacterMaximumLength,
			isv.Columns.IsNullable,
			isv.Columns.ColumnDefault,
		).
		WHERE(isv.Columns.TableSchema.EQ(pg.String(catalog.Schema))).
		ORDER_BY(isv.Columns.TableName.ASC(), isv.Columns.OrdinalPosition.ASC()).
		Sql()

	return scanEach(ctx, db, query, args, func(rows *sql.Rows) error {
		var (
			tableName, isNullable string
			column                Column
			maxLength             pgtype.Int4
			columnDefault         pgtype.Text
		)
		if err := rows.Scan(&tableName, &column.Name, &column.DataType, &maxLength, &isNullable, &columnDefault); err != nil {
			return err
		}

		// information_schema.columns includes views, which we don't track
		table := catalog.Table(tableName)
		if table == nil {
			return nil
		}

		column.Nullable = isNullable == "YES"
		if maxLength.Status == pgtype.Present {
			column.MaxLength = &maxLength.Int
		}
		if columnDefault.Status == pgtype.Present {
			column.Default = &columnDefault.String
		}

		table.Columns = append(table.Columns, column)
		return nil
	})
}

func inspectConstraints(ctx context.Context, db Queryer, catalog *Catalog) error {
	tc, kcu, rc, ccu := isv.TableConstraints, isv.KeyColumnUsage, isv.ReferentialConstraints, isv.ConstraintColumnUsage

	query, args := tc.
		INNER_JOIN(kcu, kcu.ConstraintSchema.EQ(tc.ConstraintSchema).
			AND(kcu.ConstraintName.EQ(tc.ConstraintName))).
		LEFT_JOIN(rc, rc.ConstraintSchema.EQ(tc.ConstraintSchema).
			AND(rc.ConstraintName.EQ(tc.ConstraintName))).
		// constraint_column_usage lists every column a constraint touches, which for a
		// foreign key is the referenced side. Only join it for foreign keys, otherwise
		// multi-column unique constraints multiply out.
		LEFT_JOIN(ccu, ccu.ConstraintSchema.EQ(tc.ConstraintSchema).
			AND(ccu.ConstraintName.EQ(tc.ConstraintName)).
			AND(tc.ConstraintType.EQ(pg.String("FOREIGN KEY")))).
		SELECT(
			tc.TableName,
			tc.ConstraintName,
			tc.ConstraintType,
			kcu.ColumnName,
			ccu.TableName,
			ccu.ColumnName,
			rc.DeleteRule,
		).
		WHERE(
			tc.TableSchema.EQ(pg.String(catalog.Schema)).
				AND(tc.ConstraintType.IN(pg.String("PRIMARY KEY"), pg.String("UNIQUE"), pg.String("FOREIGN KEY"))),
		).
		ORDER_BY(tc.TableName.ASC(), tc.ConstraintName.ASC(), kcu.OrdinalPosition.ASC()).
		Sql()

	return scanEach(ctx, db, query, args, func(rows *sql.Rows) error {
		var (
			tableName, constraintName, constraintType, columnName string
			refTable, refColumn, deleteRule                       pgtype.Text
		)
		if err := rows.Scan(&tableName, &constraintName, &constraintType, &columnName, &refTable, &refColumn, &deleteRule); err != nil {
			return err
		}

		table := catalog.Table(tableName)
		if table == nil {
			return nil
		}

		switch constraintType {
		case "PRIMARY KEY":
			table.PrimaryKey = append(table.PrimaryKey, columnName)
		case "UNIQUE":
			// Rows arrive grouped by constraint, in column order
			if n := len(table.Uniques); n > 0 && table.Uniques[n-1].Name == constraintName {
				table.Uniques[n-1].Columns = append(table.Uniques[n-1].Columns, columnName)
			} else {
				table.Uniques = append(table.Uniques, Unique{Name: constraintName, Columns: []string{columnName}})
			}
		case "FOREIGN KEY":
			if fk := table.ForeignKey(columnName); fk != nil && fk.Name == constraintName {
				return nil // composite reference, we only track the first column
			}

			table.ForeignKeys = append(table.ForeignKeys, ForeignKey{
				Name:             constraintName,
				Column:           columnName,
				ReferencedTable:  refTable.String,
				ReferencedColumn: refColumn.String,
				DeleteRule:       deleteRule.String,
			})
		}

		return nil
	})
}

func inspectIndexes(ctx context.Context, db Queryer, catalog *Catalog) error {
	query, args := pgv.PgIndexes.
		SELECT(pgv.PgIndexes.Tablename, pgv.PgIndexes.Indexname, pgv.PgIndexes.Indexdef).
		WHERE(pgv.PgIndexes.Schemaname.EQ(pg.String(catalog.Schema))).
		ORDER_BY(pgv.PgIndexes.Tablename.ASC(), pgv.PgIndexes.Indexname.ASC()).
		Sql()

	return scanEach(ctx, db, query, args, func(rows *sql.Rows) error {
		var (
			tableName string
			index     Index
		)
		if err := rows.Scan(&tableName, &index.Name, &index.Definition); err != nil {
			return err
		}

		if table := catalog.Table(tableName); table != nil {
			table.Indexes = append(table.Indexes, index)
		}

		return nil
	})
}

func scanEach(ctx context.Context, db Queryer, query string, args []interface{}, fn func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}

	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}
