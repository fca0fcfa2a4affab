package exporter

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/exvulsec/codetrace/datastore"
	"github.com/exvulsec/codetrace/model"
	"github.com/exvulsec/codetrace/utils"
)

type copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type postgresExporter struct {
	conn    copier
	schema  string
	schemas model.Schemas
}

func NewPostgresExporter(schema string, schemas model.Schemas) Exporter {
	return &postgresExporter{conn: datastore.PGX(), schema: schema, schemas: schemas}
}

func (pe *postgresExporter) Name() string {
	return "PostgresExporter"
}

func (pe *postgresExporter) Export(data any) error {
	var (
		dt   model.Datatype
		rows func(columns []string) [][]any
	)
	switch columns := data.(type) {
	case *model.CodeDiffs:
		dt, rows = model.DatatypeCodeDiffs, func(names []string) [][]any { return codeDiffsValues(columns, names) }
	case *model.CodeReads:
		dt, rows = model.DatatypeCodeReads, func(names []string) [][]any { return codeReadsValues(columns, names) }
	default:
		return nil
	}
	schema, ok := pe.schemas.Get(dt)
	if !ok {
		return model.ErrSchemaNotProvided
	}
	values := rows(schema.Columns())
	if len(values) == 0 {
		return nil
	}
	startTime := time.Now()
	tableName := pgx.Identifier{string(dt)}
	if pe.schema != "" {
		tableName = pgx.Identifier{pe.schema, string(dt)}
	}
	count, err := pe.conn.CopyFrom(context.Background(), tableName, schema.Columns(), pgx.CopyFromRows(values))
	if err != nil {
		return fmt.Errorf("copy %d rows into %s is err: %w", len(values), utils.ComposeTableName(pe.schema, string(dt)), err)
	}
	logrus.Infof("insert %d rows into %s, elapsed: %s", count, utils.ComposeTableName(pe.schema, string(dt)), utils.ElapsedTime(startTime))
	return nil
}

func codeDiffsValues(columns *model.CodeDiffs, names []string) [][]any {
	values := make([][]any, columns.NRows)
	for i := range values {
		row := make([]any, 0, len(names))
		for _, name := range names {
			switch name {
			case model.ColumnBlockNumber:
				row = append(row, blockNumberValue(columns.BlockNumber[i]))
			case model.ColumnTransactionIndex:
				row = append(row, int64(columns.TransactionIndex[i]))
			case model.ColumnTransactionHash:
				row = append(row, hashValue(columns.TransactionHash[i]))
			case model.ColumnAddress:
				row = append(row, columns.Address[i].Bytes())
			case model.ColumnFromValue:
				row = append(row, columns.FromValue[i])
			case model.ColumnToValue:
				row = append(row, columns.ToValue[i])
			case model.ColumnChainID:
				row = append(row, int64(columns.ChainID[i]))
			}
		}
		values[i] = row
	}
	return values
}

func codeReadsValues(columns *model.CodeReads, names []string) [][]any {
	values := make([][]any, columns.NRows)
	for i := range values {
		row := make([]any, 0, len(names))
		for _, name := range names {
			switch name {
			case model.ColumnBlockNumber:
				row = append(row, blockNumberValue(columns.BlockNumber[i]))
			case model.ColumnTransactionIndex:
				row = append(row, int64(columns.TransactionIndex[i]))
			case model.ColumnTransactionHash:
				row = append(row, hashValue(columns.TransactionHash[i]))
			case model.ColumnContractAddress:
				row = append(row, columns.ContractAddress[i].Bytes())
			case model.ColumnCode:
				row = append(row, columns.Code[i])
			case model.ColumnChainID:
				row = append(row, int64(columns.ChainID[i]))
			}
		}
		values[i] = row
	}
	return values
}

func blockNumberValue(blockNumber *uint32) any {
	if blockNumber == nil {
		return nil
	}
	return int64(*blockNumber)
}

func hashValue(hash *common.Hash) any {
	if hash == nil {
		return nil
	}
	return hash.Bytes()
}
