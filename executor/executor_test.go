package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/magiconair/properties/assert"

	"github.com/exvulsec/codetrace/exporter"
	"github.com/exvulsec/codetrace/extractor"
	"github.com/exvulsec/codetrace/model"
	"github.com/exvulsec/codetrace/notifier"
)

var codeAddr = common.HexToAddress("0x58e3b3ac35351d3f3a51e7d63216a279662377e0")

type stubSource struct{}

func (stubSource) TraceBlockStateDiffs(_ context.Context, blockNumber uint32, _ bool) (model.BlockTxTraces, error) {
	if blockNumber == 13 {
		return model.BlockTxTraces{}, errors.New("header not found")
	}
	return model.BlockTxTraces{
		BlockNumber: &blockNumber,
		TxHashes:    []*common.Hash{nil},
		Traces: []model.TraceResults{
			{StateDiff: model.StateDiff{codeAddr: {Code: model.Added([]byte{byte(blockNumber)})}}},
		},
	}, nil
}

func (stubSource) TraceTransactionStateDiffs(context.Context, common.Hash) (model.BlockTxTraces, error) {
	return model.BlockTxTraces{}, errors.New("not supported")
}

func (stubSource) TraceBlockPrestate(_ context.Context, blockNumber uint32, _ bool) (model.BlockTxPrestates, error) {
	code := []byte{0x60}
	return model.BlockTxPrestates{
		BlockNumber: &blockNumber,
		TxHashes:    []*common.Hash{nil},
		Traces:      []model.PrestateMap{{codeAddr: {Code: (*hexutil.Bytes)(&code)}}},
	}, nil
}

func (stubSource) TraceTransactionPrestate(context.Context, common.Hash, bool) (model.BlockTxPrestates, error) {
	return model.BlockTxPrestates{}, errors.New("not supported")
}

type captureExporter struct {
	data []any
}

func (ce *captureExporter) Name() string {
	return "CaptureExporter"
}

func (ce *captureExporter) Export(data any) error {
	ce.data = append(ce.data, data)
	return nil
}

type failingExporter struct{}

func (failingExporter) Name() string {
	return "FailingExporter"
}

func (failingExporter) Export(data any) error {
	if _, ok := data.(*model.FreezeRun); ok {
		return nil
	}
	return errors.New("copy failed")
}

type recordExporter struct {
	keys []string
}

func (re *recordExporter) Name() string {
	return "RecordExporter"
}

func (re *recordExporter) Export(data any) error {
	if params, ok := data.(model.Params); ok {
		re.keys = append(re.keys, params.Key())
	}
	return nil
}

type captureNotifier struct {
	runs []*model.FreezeRun
}

func (cn *captureNotifier) Name() string {
	return "CaptureNotifier"
}

func (cn *captureNotifier) Notify(data any) {
	cn.runs = append(cn.runs, data.(*model.FreezeRun))
}

func newTestExecutor(t *testing.T, capture *captureExporter, notify *captureNotifier, saved *[]*model.FreezeRun) *Executor {
	diffs, err := model.NewTable(model.DatatypeCodeDiffs, nil, nil)
	assert.Equal(t, err, nil)
	reads, err := model.NewTable(model.DatatypeCodeReads, nil, nil)
	assert.Equal(t, err, nil)
	return &Executor{
		Source:    stubSource{},
		Query:     &extractor.Query{Schemas: model.Schemas{model.DatatypeCodeDiffs: diffs, model.DatatypeCodeReads: reads}, ChainID: 1},
		Chain:     "ethereum",
		Workers:   2,
		Exporters: []exporter.Exporter{capture},
		Notifiers: []notifier.Notifier{notify},
		SaveRun: func(run *model.FreezeRun) error {
			*saved = append(*saved, run)
			return nil
		},
	}
}

func TestExecutorRunCodeDiffs(t *testing.T) {
	capture, notify, saved := &captureExporter{}, &captureNotifier{}, []*model.FreezeRun{}
	e := newTestExecutor(t, capture, notify, &saved)

	run, err := e.Run(context.Background(), model.DatatypeCodeDiffs, []model.Params{model.BlockParams(12), model.BlockParams(13), model.BlockParams(14)})
	assert.Equal(t, err, nil)
	assert.Equal(t, run.Succeeded, 2)
	assert.Equal(t, run.Failed, 1)
	assert.Equal(t, len(capture.data), 2)

	columns := capture.data[0].(*model.CodeDiffs)
	assert.Equal(t, columns.NRows, 2)
	assert.Equal(t, columns.ToValue, [][]byte{{12}, {14}})
	assert.Equal(t, *columns.BlockNumber[1], uint32(14))
	assert.Equal(t, capture.data[1].(*model.FreezeRun), run)

	assert.Equal(t, saved, []*model.FreezeRun{run})
	assert.Equal(t, notify.runs, []*model.FreezeRun{run})
}

func TestExecutorRunCodeReadsWithoutFailures(t *testing.T) {
	capture, notify, saved := &captureExporter{}, &captureNotifier{}, []*model.FreezeRun{}
	e := newTestExecutor(t, capture, notify, &saved)

	run, err := e.Run(context.Background(), model.DatatypeCodeReads, []model.Params{model.BlockParams(7)})
	assert.Equal(t, err, nil)
	assert.Equal(t, run.Rows, 1)
	columns := capture.data[0].(*model.CodeReads)
	assert.Equal(t, columns.Code, [][]byte{{0x60}})
	assert.Equal(t, len(notify.runs), 0)
	assert.Equal(t, len(saved), 1)
}

func TestExecutorRunMissingSchema(t *testing.T) {
	capture, notify, saved := &captureExporter{}, &captureNotifier{}, []*model.FreezeRun{}
	e := newTestExecutor(t, capture, notify, &saved)
	e.Query.Schemas = model.Schemas{}

	_, err := e.Run(context.Background(), model.DatatypeCodeDiffs, []model.Params{model.BlockParams(12)})
	assert.Equal(t, errors.Is(err, model.ErrSchemaNotProvided), true)
	assert.Equal(t, len(capture.data), 0)
	assert.Equal(t, len(saved), 0)
}

func TestExecutorRunMarksRequestsAfterExport(t *testing.T) {
	capture, notify, saved := &captureExporter{}, &captureNotifier{}, []*model.FreezeRun{}
	e := newTestExecutor(t, capture, notify, &saved)
	checkpoint := newFakeCheckpoint("block:11")
	records := &recordExporter{}
	e.Checkpoint = func(dt model.Datatype) Checkpointer { return checkpoint }
	e.RequestExporters = func(dt model.Datatype) []exporter.Exporter { return []exporter.Exporter{records} }

	run, err := e.Run(context.Background(), model.DatatypeCodeDiffs, blockRequests(11, 12, 13, 14))
	assert.Equal(t, err, nil)
	assert.Equal(t, run.Skipped, 1)
	assert.Equal(t, run.Failed, 1)
	assert.Equal(t, records.keys, []string{"block:11", "block:12", "block:14"})
	for number, want := range map[uint64]bool{11: true, 12: true, 13: false, 14: true} {
		done, _ := checkpoint.Done(context.Background(), model.BlockParams(number))
		assert.Equal(t, done, want, model.BlockParams(number).Key())
	}
}

func TestExecutorRunKeepsRequestsUnmarkedWhenExportFails(t *testing.T) {
	capture, notify, saved := &captureExporter{}, &captureNotifier{}, []*model.FreezeRun{}
	e := newTestExecutor(t, capture, notify, &saved)
	checkpoint := newFakeCheckpoint()
	records := &recordExporter{}
	e.Exporters = []exporter.Exporter{failingExporter{}}
	e.Checkpoint = func(dt model.Datatype) Checkpointer { return checkpoint }
	e.RequestExporters = func(dt model.Datatype) []exporter.Exporter { return []exporter.Exporter{records} }

	run, err := e.Run(context.Background(), model.DatatypeCodeDiffs, blockRequests(1, 2))
	assert.Equal(t, err != nil, true)
	assert.Matches(t, err.Error(), "copy failed")
	assert.Equal(t, run.Succeeded, 2)
	assert.Equal(t, len(records.keys), 0)
	done, _ := checkpoint.Done(context.Background(), model.BlockParams(1))
	assert.Equal(t, done, false)
	done, _ = checkpoint.Done(context.Background(), model.BlockParams(2))
	assert.Equal(t, done, false)

	assert.Equal(t, len(run.Failures), 1)
	assert.Equal(t, notify.runs, []*model.FreezeRun{run})
	assert.Equal(t, len(saved), 1)
}

func TestExecutorRunAdvancesProgressOverSkippedBlocks(t *testing.T) {
	capture, notify, saved := &captureExporter{}, &captureNotifier{}, []*model.FreezeRun{}
	e := newTestExecutor(t, capture, notify, &saved)
	checkpoints := map[model.Datatype]*fakeCheckpoint{
		model.DatatypeCodeDiffs: newFakeCheckpoint("block:1"),
		model.DatatypeCodeReads: newFakeCheckpoint(),
	}
	dir := t.TempDir()
	e.Checkpoint = func(dt model.Datatype) Checkpointer { return checkpoints[dt] }
	e.RequestExporters = func(dt model.Datatype) []exporter.Exporter {
		return []exporter.Exporter{exporter.NewBlockToFileExporter(filepath.Join(dir, string(dt)), 0)}
	}

	run, err := e.Run(context.Background(), model.DatatypeCodeDiffs, blockRequests(1, 2, 3))
	assert.Equal(t, err, nil)
	assert.Equal(t, run.Skipped, 1)
	assert.Equal(t, run.Succeeded, 2)
	progress, err := os.ReadFile(filepath.Join(dir, string(model.DatatypeCodeDiffs)))
	assert.Equal(t, err, nil)
	assert.Equal(t, string(progress), "3")

	// each datatype keeps its own progress
	_, err = e.Run(context.Background(), model.DatatypeCodeReads, blockRequests(1, 2))
	assert.Equal(t, err, nil)
	progress, err = os.ReadFile(filepath.Join(dir, string(model.DatatypeCodeReads)))
	assert.Equal(t, err, nil)
	assert.Equal(t, string(progress), "2")
}
