package view

import (
	"github.com/go-jet/jet/v2/postgres"
)

var PgIndexes = newPgIndexesTable()

type PgIndexesTable struct {
	postgres.Table

	//Columns
	Schemaname postgres.ColumnString
	Tablename  postgres.ColumnString
	Indexname  postgres.ColumnString
	Indexdef   postgres.ColumnString

	AllColumns     postgres.ColumnList
	MutableColumns postgres.ColumnList
}

func newPgIndexesTable() *PgIndexesTable {
	var (
		SchemanameColumn = postgres.StringColumn("schemaname")
		TablenameColumn  = postgres.StringColumn("tablename")
		IndexnameColumn  = postgres.StringColumn("indexname")
		IndexdefColumn   = postgres.StringColumn("indexdef")
	)

	return &PgIndexesTable{
		Table: postgres.NewTable("pg_catalog", "pg_indexes", SchemanameColumn, TablenameColumn, IndexnameColumn, IndexdefColumn),

		//Columns
		Schemaname: SchemanameColumn,
		Tablename:  TablenameColumn,
		Indexname:  IndexnameColumn,
		Indexdef:   IndexdefColumn,

		AllColumns:     postgres.ColumnList{SchemanameColumn, TablenameColumn, IndexnameColumn, IndexdefColumn},
		MutableColumns: postgres.ColumnList{SchemanameColumn, TablenameColumn, IndexnameColumn, IndexdefColumn},
	}
}
