package view

import (
	"github.com/go-jet/jet/v2/postgres"
)

var KeyColumnUsage = newKeyColumnUsageTable()

type KeyColumnUsageTable struct {
	postgres.Table

	//Columns
	ConstraintSchema postgres.ColumnString
	ConstraintName   postgres.ColumnString
	TableSchema      postgres.ColumnString
	TableName        postgres.ColumnString
	ColumnName       postgres.ColumnString
	OrdinalPosition  postgres.ColumnInteger

	AllColumns     postgres.ColumnList
	MutableColumns postgres.ColumnList
}

func newKeyColumnUsageTable() *KeyColumnUsageTable {
	var (
		ConstraintSchemaColumn = postgres.StringColumn("constraint_schema")
		ConstraintNameColumn   = postgres.StringColumn("constraint_name")
		TableSchemaColumn      = postgres.StringColumn("table_schema")
		TableNameColumn        = postgres.StringColumn("table_name")
		ColumnNameColumn       = postgres.StringColumn("column_name")
		OrdinalPositionColumn  = postgres.IntegerColumn("ordinal_position")
	)

	return &KeyColumnUsageTable{
		Table: postgres.NewTable("information_schema", "key_column_usage", ConstraintSchemaColumn, ConstraintNameColumn, TableSchemaColumn, TableNameColumn, ColumnNameColumn, OrdinalPositionColumn),

		//Columns
		ConstraintSchema: ConstraintSchemaColumn,
		ConstraintName:   ConstraintNameColumn,
		TableSchema:      TableSchemaColumn,
		TableName:        TableNameColumn,
		ColumnName:       ColumnNameColumn,
		OrdinalPosition:  OrdinalPositionColumn,

		AllColumns:     postgres.ColumnList{ConstraintSchemaColumn, ConstraintNameColumn, TableSchemaColumn, TableNameColumn, ColumnNameColumn, OrdinalPositionColumn},
		MutableColumns: postgres.ColumnList{ConstraintSchemaColumn, ConstraintNameColumn, TableSchemaColumn, TableNameColumn, ColumnNameColumn, OrdinalPositionColumn},
	}
}
