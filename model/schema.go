package model

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

type Datatype string

const (
	DatatypeCodeDiffs Datatype = "code_diffs"
	DatatypeCodeReads Datatype = "code_reads"
)

const (
	ColumnBlockNumber      = "block_number"
	ColumnTransactionIndex = "transaction_index"
	ColumnTransactionHash  = "transaction_hash"
	ColumnAddress          = "address"
	ColumnFromValue        = "from_value"
	ColumnToValue          = "to_value"
	ColumnContractAddress  = "contract_address"
	ColumnCode             = "code"
	ColumnChainID          = "chain_id"
)

// Datatypes lists every datatype in freeze order.
var Datatypes = []Datatype{DatatypeCodeDiffs, DatatypeCodeReads}

var datatypeColumns = map[Datatype][]string{
	DatatypeCodeDiffs: {
		ColumnBlockNumber,
		ColumnTransactionIndex,
		ColumnTransactionHash,
		ColumnAddress,
		ColumnFromValue,
		ColumnToValue,
		ColumnChainID,
	},
	DatatypeCodeReads: {
		ColumnBlockNumber,
		ColumnTransactionIndex,
		ColumnTransactionHash,
		ColumnContractAddress,
		ColumnCode,
		ColumnChainID,
	},
}

func ParseDatatype(name string) (Datatype, error) {
	dt := Datatype(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := datatypeColumns[dt]; !ok {
		return "", fmt.Errorf("unknown datatype %q", name)
	}
	return dt, nil
}

// AllColumns returns the columns of a datatype in table order.
func (dt Datatype) AllColumns() []string {
	return append([]string{}, datatypeColumns[dt]...)
}

// Table is the set of columns requested for one datatype. It is never
// modified after construction.
type Table struct {
	Datatype Datatype
	columns  mapset.Set[string]
}

// optionalColumns are left out of a table unless explicitly included.
var optionalColumns = mapset.NewSet[string](ColumnChainID)

// NewTable starts from the default columns of the datatype, adds include
// and then drops exclude. Unknown names are rejected.
func NewTable(dt Datatype, include, exclude []string) (*Table, error) {
	all, ok := datatypeColumns[dt]
	if !ok {
		return nil, fmt.Errorf("unknown datatype %q", dt)
	}
	known := mapset.NewSet[string](all...)
	for _, name := range append(append([]string{}, include...), exclude...) {
		if !known.Contains(name) {
			return nil, fmt.Errorf("datatype %s has no column %q", dt, name)
		}
	}
	columns := known.Difference(optionalColumns)
	for _, name := range include {
		columns.Add(name)
	}
	for _, name := range exclude {
		columns.Remove(name)
	}
	return &Table{Datatype: dt, columns: columns}, nil
}

// NewTableWithColumns builds a table holding exactly the given columns.
func NewTableWithColumns(dt Datatype, columns ...string) (*Table, error) {
	all, ok := datatypeColumns[dt]
	if !ok {
		return nil, fmt.Errorf("unknown datatype %q", dt)
	}
	known := mapset.NewSet[string](all...)
	set := mapset.NewSet[string]()
	for _, name := range columns {
		if !known.Contains(name) {
			return nil, fmt.Errorf("datatype %s has no column %q", dt, name)
		}
		set.Add(name)
	}
	return &Table{Datatype: dt, columns: set}, nil
}

func (t *Table) HasColumn(name string) bool {
	return t.columns.Contains(name)
}

// Columns returns the requested columns in table order.
func (t *Table) Columns() []string {
	columns := []string{}
	for _, name := range datatypeColumns[t.Datatype] {
		if t.columns.Contains(name) {
			columns = append(columns, name)
		}
	}
	return columns
}

type Schemas map[Datatype]*Table

func (s Schemas) Get(dt Datatype) (*Table, bool) {
	table, ok := s[dt]
	return table, ok && table != nil
}

// Datatypes returns the datatypes with a schema in freeze order.
func (s Schemas) Datatypes() []Datatype {
	dts := []Datatype{}
	for _, dt := range Datatypes {
		if _, ok := s.Get(dt); ok {
			dts = append(dts, dt)
		}
	}
	return dts
}

// store appends value to column only when the schema requests it.
func store[T any](schema *Table, name string, column *[]T, value T) {
	if schema.HasColumn(name) {
		*column = append(*column, value)
	}
}
