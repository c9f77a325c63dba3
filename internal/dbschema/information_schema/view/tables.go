package view

import (
	"github.com/go-jet/jet/v2/postgres"
)

var Tables = newTablesTable()

type TablesTable struct {
	postgres.Table

	//Columns
	TableSchema postgres.ColumnString
	TableName   postgres.ColumnString
	TableType   postgres.ColumnString

	AllColumns     postgres.ColumnList
	MutableColumns postgres.ColumnList
}

func newTablesTable() *TablesTable {
	var (
		TableSchemaColumn = postgres.StringColumn("table_schema")
		TableNameColumn   = postgres.StringColumn("table_name")
		TableTypeColumn   = postgres.StringColumn("table_type")
	)

	return &TablesTable{
		Table: postgres.NewTable("information_schema", "tables", TableSchemaColumn, TableNameColumn, TableTypeColumn),

		//Columns
		TableSchema: TableSchemaColumn,
		TableName:   TableNameColumn,
		TableType:   TableTypeColumn,

		AllColumns:     postgres.ColumnList{TableSchemaColumn, TableNameColumn, TableTypeColumn},
		MutableColumns: postgres.ColumnList{TableSchemaColumn, TableNameColumn, TableTypeColumn},
	}
}
