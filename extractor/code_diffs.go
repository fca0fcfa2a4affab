package extractor

import (
	"context"

	"github.com/exvulsec/codetrace/model"
)

type CodeDiffsByBlock struct{}

func (CodeDiffsByBlock) Extract(ctx context.Context, params model.Params, source Source, query *Query) (model.BlockTxTraces, error) {
	schema, err := schemaOf(query, model.DatatypeCodeDiffs)
	if err != nil {
		return model.BlockTxTraces{}, err
	}
	includeTxs := schema.HasColumn(model.ColumnTransactionHash)
	blockNumber, err := blockNumberOf(params)
	if err != nil {
		return model.BlockTxTraces{}, err
	}
	return source.TraceBlockStateDiffs(ctx, blockNumber, includeTxs)
}

func (CodeDiffsByBlock) Transform(response model.BlockTxTraces, columns *model.CodeDiffs, query *Query) error {
	return model.ProcessCodeDiffs(response, columns, query.Schemas)
}

type CodeDiffsByTransaction struct{}

func (CodeDiffsByTransaction) Extract(ctx context.Context, params model.Params, source Source, _ *Query) (model.BlockTxTraces, error) {
	txHash, err := params.TransactionHashValue()
	if err != nil {
		return model.BlockTxTraces{}, err
	}
	return source.TraceTransactionStateDiffs(ctx, txHash)
}

func (CodeDiffsByTransaction) Transform(response model.BlockTxTraces, columns *model.CodeDiffs, query *Query) error {
	return model.ProcessCodeDiffs(response, columns, query.Schemas)
}

// CollectCodeDiffs runs params by block when it names a block, by
// transaction otherwise, and returns the finalized columns of that request.
func CollectCodeDiffs(ctx context.Context, params model.Params, source Source, query *Query) (*model.CodeDiffs, error) {
	var collector Collector[model.BlockTxTraces, model.CodeDiffs] = CodeDiffsByTransaction{}
	if params.BlockNumber != nil {
		collector = CodeDiffsByBlock{}
	}
	columns, err := collect(ctx, collector, params, source, query)
	if err != nil {
		return nil, err
	}
	schema, err := schemaOf(query, model.DatatypeCodeDiffs)
	if err != nil {
		return nil, err
	}
	columns.Finalize(schema, query.ChainID)
	return columns, nil
}
