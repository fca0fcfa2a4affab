package executor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/exvulsec/codetrace/exporter"
	"github.com/exvulsec/codetrace/extractor"
	"github.com/exvulsec/codetrace/model"
	"github.com/exvulsec/codetrace/notifier"
)

// Executor freezes datatypes from one source and hands the merged columns
// and the run summary to its exporters.
type Executor struct {
	Source  extractor.Source
	Query   *extractor.Query
	Chain   string
	Workers int

	// Checkpoint returns the checkpoint of a datatype, nil disables it.
	Checkpoint       func(dt model.Datatype) Checkpointer
	// RequestExporters returns the exporters of a datatype that are handed
	// each completed request once its rows are stored.
	RequestExporters func(dt model.Datatype) []exporter.Exporter
	Exporters        []exporter.Exporter
	Notifiers        []notifier.Notifier
	SaveRun          func(run *model.FreezeRun) error
}

func (e *Executor) Run(ctx context.Context, dt model.Datatype, requests []model.Params) (*model.FreezeRun, error) {
	if _, ok := e.Query.Schemas.Get(dt); !ok {
		return nil, fmt.Errorf("freeze %s is err: %w", dt, model.ErrSchemaNotProvided)
	}
	var checkpoint Checkpointer
	if e.Checkpoint != nil {
		checkpoint = e.Checkpoint(dt)
	}

	var (
		columns   any
		run       *model.FreezeRun
		completed []Completed
	)
	switch dt {
	case model.DatatypeCodeDiffs:
		collect := func(ctx context.Context, params model.Params) (*model.CodeDiffs, error) {
			return extractor.CollectCodeDiffs(ctx, params, e.Source, e.Query)
		}
		columns, run, completed = NewFreezer[model.CodeDiffs, *model.CodeDiffs](dt, e.Chain, e.Workers, collect, checkpoint).
			Freeze(ctx, requests)
	case model.DatatypeCodeReads:
		collect := func(ctx context.Context, params model.Params) (*model.CodeReads, error) {
			return extractor.CollectCodeReads(ctx, params, e.Source, e.Query)
		}
		columns, run, completed = NewFreezer[model.CodeReads, *model.CodeReads](dt, e.Chain, e.Workers, collect, checkpoint).
			Freeze(ctx, requests)
	default:
		return nil, fmt.Errorf("unsupported datatype %s", dt)
	}

	var exportErr error
	for _, exp := range e.Exporters {
		for _, data := range []any{columns, run} {
			if err := exp.Export(data); err != nil {
				logrus.Errorf("%s export %s is err: %v", exp.Name(), dt, err)
				exportErr = fmt.Errorf("%s export %s is err: %w", exp.Name(), dt, err)
			}
		}
	}
	if exportErr != nil {
		logrus.Errorf("rows of %s are not stored, %d completed requests stay unmarked", dt, len(completed))
		run.Failures = append(run.Failures, exportErr.Error())
	} else {
		e.commit(ctx, dt, checkpoint, completed)
	}
	e.finish(run, exportErr)
	return run, exportErr
}

// commit marks the frozen requests done and hands every completed request,
// skipped ones included, to the request exporters in request order.
func (e *Executor) commit(ctx context.Context, dt model.Datatype, checkpoint Checkpointer, completed []Completed) {
	var requestExporters []exporter.Exporter
	if e.RequestExporters != nil {
		requestExporters = e.RequestExporters(dt)
	}
	for _, c := range completed {
		if checkpoint != nil && !c.Skipped {
			if err := checkpoint.MarkDone(ctx, c.Params); err != nil {
				logrus.Errorf("mark %s of %s done is err: %v", c.Params.Key(), dt, err)
			}
		}
		for _, exp := range requestExporters {
			if err := exp.Export(c.Params); err != nil {
				logrus.Errorf("%s export %s of %s is err: %v", exp.Name(), c.Params.Key(), dt, err)
			}
		}
	}
}

func (e *Executor) finish(run *model.FreezeRun, exportErr error) {
	if e.SaveRun != nil {
		if err := e.SaveRun(run); err != nil {
			logrus.Errorf("save freeze run of %s is err: %v", run.Datatype, err)
		}
	}
	if run.Failed == 0 && exportErr == nil {
		return
	}
	for _, n := range e.Notifiers {
		n.Notify(run)
	}
}
