package extractor

import (
	"context"

	"github.com/exvulsec/codetrace/model"
)

type CodeReadsByBlock struct{}

func (CodeReadsByBlock) Extract(ctx context.Context, params model.Params, source Source, query *Query) (model.BlockTxPrestates, error) {
	schema, err := schemaOf(query, model.DatatypeCodeReads)
	if err != nil {
		return model.BlockTxPrestates{}, err
	}
	includeTxs := schema.HasColumn(model.ColumnTransactionHash)
	blockNumber, err := blockNumberOf(params)
	if err != nil {
		return model.BlockTxPrestates{}, err
	}
	return source.TraceBlockPrestate(ctx, blockNumber, includeTxs)
}

func (CodeReadsByBlock) Transform(response model.BlockTxPrestates, columns *model.CodeReads, query *Query) error {
	return model.ProcessCodeReads(response, columns, query.Schemas)
}

type CodeReadsByTransaction struct{}

func (CodeReadsByTransaction) Extract(ctx context.Context, params model.Params, source Source, query *Query) (model.BlockTxPrestates, error) {
	schema, err := schemaOf(query, model.DatatypeCodeReads)
	if err != nil {
		return model.BlockTxPrestates{}, err
	}
	includeBlockNumber := schema.HasColumn(model.ColumnBlockNumber)
	txHash, err := params.TransactionHashValue()
	if err != nil {
		return model.BlockTxPrestates{}, err
	}
	return source.TraceTransactionPrestate(ctx, txHash, includeBlockNumber)
}

func (CodeReadsByTransaction) Transform(response model.BlockTxPrestates, columns *model.CodeReads, query *Query) error {
	return model.ProcessCodeReads(response, columns, query.Schemas)
}

func CollectCodeReads(ctx context.Context, params model.Params, source Source, query *Query) (*model.CodeReads, error) {
	var collector Collector[model.BlockTxPrestates, model.CodeReads] = CodeReadsByTransaction{}
	if params.BlockNumber != nil {
		collector = CodeReadsByBlock{}
	}
	columns, err := collect(ctx, collector, params, source, query)
	if err != nil {
		return nil, err
	}
	schema, err := schemaOf(query, model.DatatypeCodeReads)
	if err != nil {
		return nil, err
	}
	columns.Finalize(schema, query.ChainID)
	return columns, nil
}
