package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"

	"github.com/exvulsec/codetrace/config"
	"github.com/exvulsec/codetrace/model"
)

const (
	traceTypeStateDiff = "stateDiff"
	prestateTracer     = "prestateTracer"
)

// RPCSource fetches code diffs and code reads from a node exposing the
// trace_ and debug_ namespaces. Workers caps the calls in flight.
type RPCSource struct {
	Workers chan int
	Client  *rpc.Client
}

var rpcSource *RPCInstance

type RPCInstance struct {
	initializer func() any
	instance    any
	once        sync.Once
}

func (ri *RPCInstance) Instance() any {
	ri.once.Do(func() {
		ri.instance = ri.initializer()
	})
	return ri.instance
}

func initRPCSource() any {
	client, err := rpc.Dial(config.Conf.ETL.ProviderURL)
	if err != nil {
		logrus.Fatalf("failed to connect provider url %s with rpcClient, err is %v", config.Conf.ETL.ProviderURL, err)
	}
	logrus.Infof("connect to provider with rpcClient is successfully")
	return NewRPCSource(client, config.Conf.ETL.Workers)
}

func RPCClient() *RPCSource {
	return rpcSource.Instance().(*RPCSource)
}

func init() {
	rpcSource = &RPCInstance{initializer: initRPCSource}
}

func NewRPCSource(client *rpc.Client, workers int) *RPCSource {
	if workers < 1 {
		workers = 1
	}
	return &RPCSource{
		Workers: make(chan int, workers),
		Client:  client,
	}
}

func (rs *RPCSource) call(ctx context.Context, result any, method string, args ...any) error {
	select {
	case rs.Workers <- 1:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() {
		<-rs.Workers
	}()
	if err := rs.Client.CallContext(ctx, result, method, args...); err != nil {
		return fmt.Errorf("call %s is err: %w", method, err)
	}
	return nil
}

type rpcTransaction struct {
	BlockNumber *hexutil.Big `json:"blockNumber"`
}

// blockNumberOfTransaction returns nil for a pending transaction.
func (rs *RPCSource) blockNumberOfTransaction(ctx context.Context, txHash common.Hash) (*uint32, error) {
	var tx *rpcTransaction
	if err := rs.call(ctx, &tx, "eth_getTransactionByHash", txHash); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %s is not found", txHash.Hex())
	}
	if tx.BlockNumber == nil {
		return nil, nil
	}
	blockNumber := uint32(tx.BlockNumber.ToInt().Uint64())
	return &blockNumber, nil
}

func (rs *RPCSource) TraceBlockStateDiffs(ctx context.Context, blockNumber uint32, includeTxHashes bool) (model.BlockTxTraces, error) {
	var results []model.TraceResults
	err := rs.call(ctx, &results, "trace_replayBlockTransactions",
		hexutil.EncodeUint64(uint64(blockNumber)), []string{traceTypeStateDiff})
	if err != nil {
		return model.BlockTxTraces{}, err
	}
	txHashes := make([]*common.Hash, len(results))
	if includeTxHashes {
		for index := range results {
			txHashes[index] = results[index].TransactionHash
		}
	}
	return model.BlockTxTraces{
		BlockNumber: &blockNumber,
		TxHashes:    txHashes,
		Traces:      results,
	}, nil
}

func (rs *RPCSource) TraceTransactionStateDiffs(ctx context.Context, txHash common.Hash) (model.BlockTxTraces, error) {
	var result model.TraceResults
	err := rs.call(ctx, &result, "trace_replayTransaction", txHash, []string{traceTypeStateDiff})
	if err != nil {
		return model.BlockTxTraces{}, err
	}
	blockNumber, err := rs.blockNumberOfTransaction(ctx, txHash)
	if err != nil {
		return model.BlockTxTraces{}, err
	}
	return model.BlockTxTraces{
		BlockNumber: blockNumber,
		TxHashes:    []*common.Hash{&txHash},
		Traces:      []model.TraceResults{result},
	}, nil
}

type prestateTxResult struct {
	TxHash *common.Hash      `json:"txHash"`
	Result model.PrestateMap `json:"result"`
	Error  string            `json:"error"`
}

func (rs *RPCSource) TraceBlockPrestate(ctx context.Context, blockNumber uint32, includeTxHashes bool) (model.BlockTxPrestates, error) {
	var results []prestateTxResult
	err := rs.call(ctx, &results, "debug_traceBlockByNumber",
		hexutil.EncodeUint64(uint64(blockNumber)), map[string]any{"tracer": prestateTracer})
	if err != nil {
		return model.BlockTxPrestates{}, err
	}
	txHashes := make([]*common.Hash, len(results))
	traces := make([]model.PrestateMap, len(results))
	for index, result := range results {
		if result.Error != "" {
			return model.BlockTxPrestates{}, fmt.Errorf("trace prestate of block %d tx %d is err: %s", blockNumber, index, result.Error)
		}
		if includeTxHashes {
			txHashes[index] = result.TxHash
		}
		traces[index] = result.Result
	}
	return model.BlockTxPrestates{
		BlockNumber: &blockNumber,
		TxHashes:    txHashes,
		Traces:      traces,
	}, nil
}

func (rs *RPCSource) TraceTransactionPrestate(ctx context.Context, txHash common.Hash, includeBlockNumber bool) (model.BlockTxPrestates, error) {
	var result model.PrestateMap
	err := rs.call(ctx, &result, "debug_traceTransaction", txHash, map[string]any{"tracer": prestateTracer})
	if err != nil {
		return model.BlockTxPrestates{}, err
	}
	var blockNumber *uint32
	if includeBlockNumber {
		if blockNumber, err = rs.blockNumberOfTransaction(ctx, txHash); err != nil {
			return model.BlockTxPrestates{}, err
		}
	}
	return model.BlockTxPrestates{
		BlockNumber: blockNumber,
		TxHashes:    []*common.Hash{&txHash},
		Traces:      []model.PrestateMap{result},
	}, nil
}
