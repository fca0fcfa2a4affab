package extractor

import (
	"context"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"

	"github.com/exvulsec/codetrace/model"
)

// Source performs the trace calls. Implementations own transport, batching
// and retry policy; errors are passed through untouched.
type Source interface {
	TraceBlockStateDiffs(ctx context.Context, blockNumber uint32, includeTxHashes bool) (model.BlockTxTraces, error)
	TraceTransactionStateDiffs(ctx context.Context, txHash common.Hash) (model.BlockTxTraces, error)
	TraceBlockPrestate(ctx context.Context, blockNumber uint32, includeTxHashes bool) (model.BlockTxPrestates, error)
	TraceTransactionPrestate(ctx context.Context, txHash common.Hash, includeBlockNumber bool) (model.BlockTxPrestates, error)
}

// Query is shared read-only by every request of a run.
type Query struct {
	Schemas model.Schemas
	ChainID uint64
}

// Collector is one collection strategy of one datatype: Extract fetches the
// response, Transform turns it into rows of columns.
type Collector[R any, C any] interface {
	Extract(ctx context.Context, params model.Params, source Source, query *Query) (R, error)
	Transform(response R, columns *C, query *Query) error
}

// collect only allocates the buffer once the response has been fetched.
func collect[R any, C any](
	ctx context.Context,
	collector Collector[R, C],
	params model.Params,
	source Source,
	query *Query,
) (*C, error) {
	response, err := collector.Extract(ctx, params, source, query)
	if err != nil {
		return nil, err
	}
	columns := new(C)
	if err := collector.Transform(response, columns, query); err != nil {
		return nil, err
	}
	return columns, nil
}

func schemaOf(query *Query, dt model.Datatype) (*model.Table, error) {
	schema, ok := query.Schemas.Get(dt)
	if !ok {
		return nil, model.ErrSchemaNotProvided
	}
	return schema, nil
}

func blockNumberOf(params model.Params) (uint32, error) {
	blockNumber, err := params.BlockNumberValue()
	if err != nil {
		return 0, err
	}
	if blockNumber > math.MaxUint32 {
		return 0, fmt.Errorf("block %d: %w", blockNumber, model.ErrBlockNumberOutOfRange)
	}
	return uint32(blockNumber), nil
}
