package view

import (
	"github.com/go-jet/jet/v2/postgres"
)

var Columns = newColumnsTable()

type ColumnsTable struct {
	postgres.Table

	//Columns
	TableSchema            postgres.ColumnString
	TableName              postgres.ColumnString
	ColumnName             postgres.ColumnString
	OrdinalPosition        postgres.ColumnInteger
	ColumnDefault          postgres.ColumnString
	IsNullable             postgres.ColumnString
	DataType               postgres.ColumnString
	CharacterMaximumLength postgres.ColumnInteger

	AllColumns     postgres.ColumnList
	MutableColumns postgres.ColumnList
}

func newColumnsTable() *ColumnsTable {
	var (
		TableSchemaColumn            = postgres.StringColumn("table_schema")
		TableNameColumn              = postgres.StringColumn("table_name")
		ColumnNameColumn             = postgres.StringColumn("column_name")
		OrdinalPositionColumn        = postgres.IntegerColumn("ordinal_position")
		ColumnDefaultColumn          = postgres.StringColumn("column_default")
		IsNullableColumn             = postgres.StringColumn("is_nullable")
		DataTypeColumn               = postgres.StringColumn("data_type")
		CharacterMaximumLengthColumn = postgres.IntegerColumn("character_maximum_length")
	)

	return &ColumnsTable{
		Table: postgres.NewTable("information_schema", "columns", TableSchemaColumn, TableNameColumn, ColumnNameColumn, OrdinalPositionColumn, ColumnDefaultColumn, IsNullableColumn, DataTypeColumn, CharacterMaximumLengthColumn),

		//Columns
		TableSchema:            TableSchemaColumn,
		TableName:              TableNameColumn,
		ColumnName:             ColumnNameColumn,
		OrdinalPosition:        OrdinalPositionColumn,
		ColumnDefault:          ColumnDefaultColumn,
		IsNullable:             IsNullableColumn,
		DataType:               DataTypeColumn,
		CharacterMaximumLength: CharacterMaximumLengthColumn,

		AllColumns:     postgres.ColumnList{TableSchemaColumn, TableNameColumn, ColumnNameColumn, OrdinalPositionColumn, ColumnDefaultColumn, IsNullableColumn, DataTypeColumn, CharacterMaximumLengthColumn},
		MutableColumns: postgres.ColumnList{TableSchemaColumn, TableNameColumn, ColumnNameColumn, OrdinalPositionColumn, ColumnDefaultColumn, IsNullableColumn, DataTypeColumn, CharacterMaximumLengthColumn},
	}
}
