package extractor

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/magiconair/properties/assert"

	"github.com/exvulsec/codetrace/model"
)

var (
	addrA  = common.HexToAddress("0x000000000000000000000000000000000000000a")
	txHash = common.HexToHash("0x037522e093aeb89104f1dcdf8bb1dcfeb6c001617c3515bed66d5a566a3aa52b")
)

type fakeCall struct {
	method             string
	blockNumber        uint32
	txHash             common.Hash
	includeTxHashes    bool
	includeBlockNumber bool
}

type fakeSource struct {
	calls     []fakeCall
	traces    model.BlockTxTraces
	prestates model.BlockTxPrestates
	err       error
}

func (fs *fakeSource) TraceBlockStateDiffs(_ context.Context, blockNumber uint32, includeTxHashes bool) (model.BlockTxTraces, error) {
	fs.calls = append(fs.calls, fakeCall{method: "TraceBlockStateDiffs", blockNumber: blockNumber, includeTxHashes: includeTxHashes})
	if fs.err != nil {
		return model.BlockTxTraces{}, fs.err
	}
	traces := fs.traces
	if !includeTxHashes {
		traces.TxHashes = make([]*common.Hash, len(traces.Traces))
	}
	return traces, nil
}

func (fs *fakeSource) TraceTransactionStateDiffs(_ context.Context, hash common.Hash) (model.BlockTxTraces, error) {
	fs.calls = append(fs.calls, fakeCall{method: "TraceTransactionStateDiffs", txHash: hash})
	return fs.traces, fs.err
}

func (fs *fakeSource) TraceBlockPrestate(_ context.Context, blockNumber uint32, includeTxHashes bool) (model.BlockTxPrestates, error) {
	fs.calls = append(fs.calls, fakeCall{method: "TraceBlockPrestate", blockNumber: blockNumber, includeTxHashes: includeTxHashes})
	return fs.prestates, fs.err
}

func (fs *fakeSource) TraceTransactionPrestate(_ context.Context, hash common.Hash, includeBlockNumber bool) (model.BlockTxPrestates, error) {
	fs.calls = append(fs.calls, fakeCall{method: "TraceTransactionPrestate", txHash: hash, includeBlockNumber: includeBlockNumber})
	prestates := fs.prestates
	if !includeBlockNumber {
		prestates.BlockNumber = nil
	}
	return prestates, fs.err
}

func newQuery(t *testing.T, dt model.Datatype, exclude ...string) *Query {
	table, err := model.NewTable(dt, nil, exclude)
	assert.Equal(t, err, nil)
	return &Query{Schemas: model.Schemas{dt: table}, ChainID: 1}
}

func blockTraces() model.BlockTxTraces {
	blockNumber := uint32(100)
	hash := txHash
	return model.BlockTxTraces{
		BlockNumber: &blockNumber,
		TxHashes:    []*common.Hash{&hash},
		Traces: []model.TraceResults{
			{StateDiff: model.StateDiff{addrA: {Code: model.Added([]byte{0xaa, 0xbb})}}},
		},
	}
}

func blockPrestates() model.BlockTxPrestates {
	blockNumber := uint32(100)
	hash := txHash
	empty := hexutil.Bytes{}
	return model.BlockTxPrestates{
		BlockNumber: &blockNumber,
		TxHashes:    []*common.Hash{&hash},
		Traces:      []model.PrestateMap{{addrA: {Code: &empty}}},
	}
}

func TestCollectCodeDiffsByBlock(t *testing.T) {
	source := &fakeSource{traces: blockTraces()}
	columns, err := CollectCodeDiffs(context.Background(), model.BlockParams(100), source, newQuery(t, model.DatatypeCodeDiffs))
	assert.Equal(t, err, nil)
	assert.Equal(t, source.calls, []fakeCall{{method: "TraceBlockStateDiffs", blockNumber: 100, includeTxHashes: true}})
	assert.Equal(t, columns.NRows, 1)
	assert.Equal(t, *columns.BlockNumber[0], uint32(100))
	assert.Equal(t, columns.TransactionIndex[0], uint32(0))
	assert.Equal(t, *columns.TransactionHash[0], txHash)
	assert.Equal(t, columns.Address[0], addrA)
	assert.Equal(t, columns.FromValue[0], []byte{})
	assert.Equal(t, columns.ToValue[0], []byte{0xaa, 0xbb})
}

func TestCollectCodeDiffsByBlockSkipsTxHashes(t *testing.T) {
	source := &fakeSource{traces: blockTraces()}
	query := newQuery(t, model.DatatypeCodeDiffs, model.ColumnTransactionHash)
	columns, err := CollectCodeDiffs(context.Background(), model.BlockParams(100), source, query)
	assert.Equal(t, err, nil)
	assert.Equal(t, source.calls[0].includeTxHashes, false)
	assert.Equal(t, columns.NRows, 1)
	assert.Equal(t, len(columns.TransactionHash), 0)
}

func TestCollectCodeDiffsByTransaction(t *testing.T) {
	source := &fakeSource{traces: blockTraces()}
	columns, err := CollectCodeDiffs(context.Background(), model.TransactionParams(txHash), source, newQuery(t, model.DatatypeCodeDiffs))
	assert.Equal(t, err, nil)
	assert.Equal(t, source.calls, []fakeCall{{method: "TraceTransactionStateDiffs", txHash: txHash}})
	assert.Equal(t, columns.NRows, 1)
	assert.Equal(t, columns.TransactionIndex, []uint32{0})
}

func TestCollectCodeReadsByTransaction(t *testing.T) {
	source := &fakeSource{prestates: blockPrestates()}
	query := newQuery(t, model.DatatypeCodeReads, model.ColumnBlockNumber)
	columns, err := CollectCodeReads(context.Background(), model.TransactionParams(txHash), source, query)
	assert.Equal(t, err, nil)
	assert.Equal(t, source.calls, []fakeCall{{method: "TraceTransactionPrestate", txHash: txHash, includeBlockNumber: false}})
	assert.Equal(t, columns.NRows, 1)
	assert.Equal(t, columns.Code, [][]byte{{}})
	assert.Equal(t, len(columns.BlockNumber), 0)
}

func TestCollectCodeReadsByBlock(t *testing.T) {
	source := &fakeSource{prestates: blockPrestates()}
	columns, err := CollectCodeReads(context.Background(), model.BlockParams(100), source, newQuery(t, model.DatatypeCodeReads))
	assert.Equal(t, err, nil)
	assert.Equal(t, source.calls, []fakeCall{{method: "TraceBlockPrestate", blockNumber: 100, includeTxHashes: true}})
	assert.Equal(t, columns.NRows, 1)
	assert.Equal(t, *columns.BlockNumber[0], uint32(100))
}

func TestCollectMissingSchema(t *testing.T) {
	source := &fakeSource{traces: blockTraces(), prestates: blockPrestates()}
	query := &Query{Schemas: model.Schemas{}}

	columns, err := CollectCodeDiffs(context.Background(), model.BlockParams(1), source, query)
	assert.Equal(t, errors.Is(err, model.ErrSchemaNotProvided), true)
	assert.Equal(t, columns == nil, true)

	_, err = CollectCodeReads(context.Background(), model.BlockParams(1), source, query)
	assert.Equal(t, errors.Is(err, model.ErrSchemaNotProvided), true)

	_, err = CollectCodeReads(context.Background(), model.TransactionParams(txHash), source, query)
	assert.Equal(t, errors.Is(err, model.ErrSchemaNotProvided), true)
	assert.Equal(t, len(source.calls), 0)
}

func TestCollectMissingRequestField(t *testing.T) {
	source := &fakeSource{}
	_, err := CodeDiffsByBlock{}.Extract(context.Background(), model.TransactionParams(txHash), source, newQuery(t, model.DatatypeCodeDiffs))
	assert.Equal(t, errors.Is(err, model.ErrMissingBlockNumber), true)

	_, err = CodeReadsByTransaction{}.Extract(context.Background(), model.BlockParams(1), source, newQuery(t, model.DatatypeCodeReads))
	assert.Equal(t, errors.Is(err, model.ErrMissingTransactionHash), true)

	_, err = CollectCodeDiffs(context.Background(), model.Params{}, source, newQuery(t, model.DatatypeCodeDiffs))
	assert.Equal(t, errors.Is(err, model.ErrMissingTransactionHash), true)
	assert.Equal(t, len(source.calls), 0)
}

func TestCollectSourceError(t *testing.T) {
	sourceErr := errors.New("connection refused")
	source := &fakeSource{err: sourceErr}
	columns, err := CollectCodeDiffs(context.Background(), model.BlockParams(1), source, newQuery(t, model.DatatypeCodeDiffs))
	assert.Equal(t, err, sourceErr)
	assert.Equal(t, columns == nil, true)

	_, err = CollectCodeReads(context.Background(), model.TransactionParams(txHash), source, newQuery(t, model.DatatypeCodeReads))
	assert.Equal(t, err, sourceErr)
}

func TestCollectFillsEveryIncludedColumn(t *testing.T) {
	source := &fakeSource{traces: blockTraces(), prestates: blockPrestates()}

	diffsTable, err := model.NewTable(model.DatatypeCodeDiffs, []string{model.ColumnChainID}, nil)
	assert.Equal(t, err, nil)
	diffs, err := CollectCodeDiffs(context.Background(), model.BlockParams(100), source,
		&Query{Schemas: model.Schemas{model.DatatypeCodeDiffs: diffsTable}, ChainID: 10})
	assert.Equal(t, err, nil)
	assert.Equal(t, diffs.NRows, 1)
	for name, length := range map[string]int{
		model.ColumnBlockNumber:      len(diffs.BlockNumber),
		model.ColumnTransactionIndex: len(diffs.TransactionIndex),
		model.ColumnTransactionHash:  len(diffs.TransactionHash),
		model.ColumnAddress:          len(diffs.Address),
		model.ColumnFromValue:        len(diffs.FromValue),
		model.ColumnToValue:          len(diffs.ToValue),
		model.ColumnChainID:          len(diffs.ChainID),
	} {
		assert.Equal(t, length, diffs.NRows, name)
	}
	assert.Equal(t, diffs.ChainID, []uint64{10})

	readsTable, err := model.NewTable(model.DatatypeCodeReads, []string{model.ColumnChainID}, nil)
	assert.Equal(t, err, nil)
	reads, err := CollectCodeReads(context.Background(), model.BlockParams(100), source,
		&Query{Schemas: model.Schemas{model.DatatypeCodeReads: readsTable}, ChainID: 10})
	assert.Equal(t, err, nil)
	assert.Equal(t, reads.NRows, 1)
	for name, length := range map[string]int{
		model.ColumnBlockNumber:      len(reads.BlockNumber),
		model.ColumnTransactionIndex: len(reads.TransactionIndex),
		model.ColumnTransactionHash:  len(reads.TransactionHash),
		model.ColumnContractAddress:  len(reads.ContractAddress),
		model.ColumnCode:             len(reads.Code),
		model.ColumnChainID:          len(reads.ChainID),
	} {
		assert.Equal(t, length, reads.NRows, name)
	}
	assert.Equal(t, reads.ChainID, []uint64{10})
}

func TestCollectBlockNumberOutOfRange(t *testing.T) {
	source := &fakeSource{traces: blockTraces(), prestates: blockPrestates()}
	_, err := CollectCodeDiffs(context.Background(), model.BlockParams(1<<32+100), source, newQuery(t, model.DatatypeCodeDiffs))
	assert.Equal(t, errors.Is(err, model.ErrBlockNumberOutOfRange), true)

	_, err = CollectCodeReads(context.Background(), model.BlockParams(1<<32), source, newQuery(t, model.DatatypeCodeReads))
	assert.Equal(t, errors.Is(err, model.ErrBlockNumberOutOfRange), true)
	assert.Equal(t, len(source.calls), 0)

	_, err = CollectCodeDiffs(context.Background(), model.BlockParams(math.MaxUint32), source, newQuery(t, model.DatatypeCodeDiffs))
	assert.Equal(t, err, nil)
	assert.Equal(t, source.calls[0].blockNumber, uint32(math.MaxUint32))
}
