package view

import (
	"github.com/go-jet/jet/v2/postgres"
)

var ConstraintColumnUsage = newConstraintColumnUsageTable()

type ConstraintColumnUsageTable struct {
	postgres.Table

	//Columns
	TableSchema      postgres.ColumnString
	TableName        postgres.ColumnString
	ColumnName       postgres.ColumnString
	ConstraintSchema postgres.ColumnString
	ConstraintName   postgres.ColumnString

	AllColumns     postgres.ColumnList
	MutableColumns postgres.ColumnList
}

func newConstraintColumnUsageTable() *ConstraintColumnUsageTable {
	var (
		TableSchemaColumn      = postgres.StringColumn("table_schema")
		TableNameColumn        = postgres.StringColumn("table_name")
		ColumnNameColumn       = postgres.StringColumn("column_name")
		ConstraintSchemaColumn = postgres.StringColumn("constraint_schema")
		ConstraintNameColumn   = postgres.StringColumn("constraint_name")
	)

	return &ConstraintColumnUsageTable{
		Table: postgres.NewTable("information_schema", "constraint_column_usage", TableSchemaColumn, TableNameColumn, ColumnNameColumn, ConstraintSchemaColumn, ConstraintNameColumn),

		//Columns
		TableSchema:      TableSchemaColumn,
		TableName:        TableNameColumn,
		ColumnName:       ColumnNameColumn,
		ConstraintSchema: ConstraintSchemaColumn,
		ConstraintName:   ConstraintNameColumn,

		AllColumns:     postgres.ColumnList{TableSchemaColumn, TableNameColumn, ColumnNameColumn, ConstraintSchemaColumn, ConstraintNameColumn},
		MutableColumns: postgres.ColumnList{TableSchemaColumn, TableNameColumn, ColumnNameColumn, ConstraintSchemaColumn, ConstraintNameColumn},
	}
}
