package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/exvulsec/codetrace/model"
	"github.com/exvulsec/codetrace/utils"
)

type Checkpointer interface {
	Done(ctx context.Context, params model.Params) (bool, error)
	MarkDone(ctx context.Context, params model.Params) error
}

// CollectFunc freezes one request into a buffer of its own.
type CollectFunc[C any] func(ctx context.Context, params model.Params) (*C, error)

type buffer[C any] interface {
	*C
	Merge(other *C)
	RowCount() int
}

type RequestResult[C any] struct {
	index   int
	Params  model.Params
	Columns *C
	Err     error
	Skipped bool
}

// Completed is a request whose rows are in the merged buffer, or one an
// earlier run already froze.
type Completed struct {
	Params  model.Params
	Skipped bool
}

type item struct {
	index  int
	params model.Params
}

// Freezer runs the requests of one datatype on a pool of workers. Each
// request writes its own buffer; buffers are merged in request order once
// every request has finished, so a failed request never affects another.
// Freeze only reads the checkpoint; the caller marks requests done once the
// merged rows are stored.
type Freezer[C any, P buffer[C]] struct {
	datatype   model.Datatype
	chain      string
	workers    int
	collect    CollectFunc[C]
	checkpoint Checkpointer
}

func NewFreezer[C any, P buffer[C]](
	datatype model.Datatype,
	chain string,
	workers int,
	collect CollectFunc[C],
	checkpoint Checkpointer,
) *Freezer[C, P] {
	if workers < 1 {
		workers = 1
	}
	return &Freezer[C, P]{
		datatype:   datatype,
		chain:      chain,
		workers:    workers,
		collect:    collect,
		checkpoint: checkpoint,
	}
}

// Freeze returns the merged columns, the run summary and the completed
// requests in request order.
func (f *Freezer[C, P]) Freeze(ctx context.Context, requests []model.Params) (*C, *model.FreezeRun, []Completed) {
	startTime := time.Now()
	run := &model.FreezeRun{Chain: f.chain, Datatype: f.datatype, Requests: len(requests), Failures: []string{}}

	items := make(chan item, len(requests))
	for index, params := range requests {
		items <- item{index: index, params: params}
	}
	close(items)

	results := make(chan RequestResult[C], f.workers)
	wg := sync.WaitGroup{}
	for workerID := 0; workerID < f.workers; workerID++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			f.execute(ctx, workerID, items, results)
		}(workerID)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]RequestResult[C], len(requests))
	for result := range results {
		ordered[result.index] = result
		f.handleResult(run, result)
	}

	merged := P(new(C))
	completed := []Completed{}
	for _, result := range ordered {
		if result.Err != nil {
			continue
		}
		if result.Columns != nil {
			merged.Merge(result.Columns)
		}
		completed = append(completed, Completed{Params: result.Params, Skipped: result.Skipped})
	}
	run.Rows = merged.RowCount()
	run.Elapsed = utils.ElapsedTime(startTime)
	logrus.Infof("chain %s: froze %s, requests: %d, succeeded: %d, failed: %d, skipped: %d, rows: %d, elapsed: %s",
		f.chain, f.datatype, run.Requests, run.Succeeded, run.Failed, run.Skipped, run.Rows, run.Elapsed)
	return (*C)(merged), run, completed
}

func (f *Freezer[C, P]) execute(ctx context.Context, workerID int, items <-chan item, results chan<- RequestResult[C]) {
	for it := range items {
		result := RequestResult[C]{index: it.index, Params: it.params}
		if f.checkpoint != nil {
			done, err := f.checkpoint.Done(ctx, it.params)
			if err != nil {
				logrus.Errorf("thread %d: check %s checkpoint is err: %v", workerID, it.params.Key(), err)
			}
			if done {
				result.Skipped = true
				results <- result
				continue
			}
		}

		startTime := time.Now()
		result.Columns, result.Err = f.collect(ctx, it.params)
		if result.Err != nil {
			logrus.Errorf("thread %d: freeze %s of %s is err: %v", workerID, f.datatype, it.params.Key(), result.Err)
		} else {
			logrus.Debugf("thread %d: froze %s of %s, rows: %d, elapsed: %s",
				workerID, f.datatype, it.params.Key(), P(result.Columns).RowCount(), utils.ElapsedTime(startTime))
		}
		results <- result
	}
}

// handleResult runs on the collecting goroutine only.
func (f *Freezer[C, P]) handleResult(run *model.FreezeRun, result RequestResult[C]) {
	switch {
	case result.Skipped:
		run.Skipped += 1
	case result.Err != nil:
		run.Failed += 1
		run.Failures = append(run.Failures, fmt.Sprintf("%s: %v", result.Params.Key(), result.Err))
	default:
		run.Succeeded += 1
	}
}
