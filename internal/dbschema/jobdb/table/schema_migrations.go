package table

import (
	"github.com/go-jet/jet/v2/postgres"
)

// SchemaMigrationsTableName is the goose version table, created inside whichever schema
// jobdb is managing.
const SchemaMigrationsTableName = "schema_migrations"

type SchemaMigrationsTable struct {
	postgres.Table

	//Columns
	ID        postgres.ColumnInteger
	VersionID postgres.ColumnInteger
	IsApplied postgres.ColumnBool
	Tstamp    postgres.ColumnTimestamp

	AllColumns     postgres.ColumnList
	MutableColumns postgres.ColumnList
}

// SchemaMigrations returns the goose version table within schemaName. Unlike the other
// dbschema packages the schema isn't fixed, as jobdb can manage any schema it is pointed
// at.
func SchemaMigrations(schemaName string) *SchemaMigrationsTable {
	var (
		IDColumn        = postgres.IntegerColumn("id")
		VersionIDColumn = postgres.IntegerColumn("version_id")
		IsAppliedColumn = postgres.BoolColumn("is_applied")
		TstampColumn    = postgres.TimestampColumn("tstamp")
	)

	return &SchemaMigrationsTable{
		Table: postgres.NewTable(schemaName, SchemaMigrationsTableName, IDColumn, VersionIDColumn, IsAppliedColumn, TstampColumn),

		//Columns
		ID:        IDColumn,
		VersionID: VersionIDColumn,
		IsApplied: IsAppliedColumn,
		Tstamp:    TstampColumn,

		AllColumns:     postgres.ColumnList{IDColumn, VersionIDColumn, IsAppliedColumn, TstampColumn},
		MutableColumns: postgres.ColumnList{VersionIDColumn, IsAppliedColumn, TstampColumn},
	}
}
