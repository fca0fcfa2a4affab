package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/exvulsec/codetrace/client"
	"github.com/exvulsec/codetrace/config"
	"github.com/exvulsec/codetrace/datastore"
	"github.com/exvulsec/codetrace/executor"
	"github.com/exvulsec/codetrace/exporter"
	"github.com/exvulsec/codetrace/extractor"
	"github.com/exvulsec/codetrace/log"
	"github.com/exvulsec/codetrace/model"
	"github.com/exvulsec/codetrace/notifier"
	"github.com/exvulsec/codetrace/utils"
)

var freezeCmd = &cobra.Command{
	Use:   "freeze",
	Short: "freeze code diffs or code reads of blocks or transactions",
	Run: func(cmd *cobra.Command, args []string) {
		config.SetupConfig()
		log.InitLog(config.Conf.ETL.LogPath)

		datasets, _ := cmd.Flags().GetString("dataset")
		blocks, _ := cmd.Flags().GetString("blocks")
		txs, _ := cmd.Flags().GetString("txs")
		include, _ := cmd.Flags().GetString("include")
		exclude, _ := cmd.Flags().GetString("exclude")
		workers, _ := cmd.Flags().GetInt("workers")
		progressFile, _ := cmd.Flags().GetString("progress_file")
		if workers > 0 {
			config.Conf.ETL.Workers = workers
		}

		schemas, err := buildSchemas(utils.SplitColumns(datasets), utils.SplitColumns(include), utils.SplitColumns(exclude))
		if err != nil {
			logrus.Fatalf("build schemas is err: %v", err)
		}
		requests, err := planRequests(blocks, txs)
		if err != nil {
			logrus.Fatalf("plan requests is err: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		e := newExecutor(schemas, requests, progressFile)
		for _, dt := range schemas.Datatypes() {
			if _, err := e.Run(ctx, dt, requests); err != nil {
				logrus.Errorf("freeze %s is err: %v", dt, err)
				os.Exit(1)
			}
		}
	},
}

// buildSchemas applies every include and exclude column to the datatypes
// that have it. A column no selected datatype has is an error.
func buildSchemas(datasets, include, exclude []string) (model.Schemas, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("required at least one dataset")
	}
	known := mapset.NewSet[string]()
	tables := model.Schemas{}
	for _, name := range datasets {
		dt, err := model.ParseDatatype(name)
		if err != nil {
			return nil, err
		}
		columns := mapset.NewSet(dt.AllColumns()...)
		known = known.Union(columns)
		table, err := model.NewTable(dt, filterColumns(include, columns), filterColumns(exclude, columns))
		if err != nil {
			return nil, err
		}
		tables[dt] = table
	}
	for _, name := range append(append([]string{}, include...), exclude...) {
		if !known.Contains(name) {
			return nil, fmt.Errorf("no dataset of %v has column %q", datasets, name)
		}
	}
	return tables, nil
}

func filterColumns(names []string, columns mapset.Set[string]) []string {
	filtered := []string{}
	for _, name := range names {
		if columns.Contains(name) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

// planRequests turns the block ranges and transaction hashes into one
// request each, blocks first.
func planRequests(blocks, txs string) ([]model.Params, error) {
	requests := []model.Params{}
	if blocks != "" {
		numbers, err := utils.ParseBlockNumbers(blocks)
		if err != nil {
			return nil, err
		}
		for _, number := range numbers {
			requests = append(requests, model.BlockParams(number))
		}
	}
	if txs != "" {
		hashes, err := utils.ParseTxHashes(txs)
		if err != nil {
			return nil, err
		}
		for _, hash := range hashes {
			requests = append(requests, model.TransactionParams(hash))
		}
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("required blocks or txs to freeze")
	}
	return requests, nil
}

// previousBlockOf returns the block before the first requested block, the
// progress file starts counting from there.
func previousBlockOf(requests []model.Params) uint64 {
	first := uint64(0)
	found := false
	for _, params := range requests {
		if params.BlockNumber != nil && (!found || *params.BlockNumber < first) {
			first, found = *params.BlockNumber, true
		}
	}
	if first == 0 {
		return 0
	}
	return first - 1
}

// progressPath keeps one progress file per datatype when several are frozen.
func progressPath(progressFile string, dt model.Datatype, datatypes int) string {
	if datatypes > 1 {
		return fmt.Sprintf("%s.%s", progressFile, dt)
	}
	return progressFile
}

func progressExporters(progressFile string, datatypes int, previousBlock uint64) func(dt model.Datatype) []exporter.Exporter {
	return func(dt model.Datatype) []exporter.Exporter {
		return []exporter.Exporter{exporter.NewBlockToFileExporter(progressPath(progressFile, dt, datatypes), previousBlock)}
	}
}

func newExecutor(schemas model.Schemas, requests []model.Params, progressFile string) *executor.Executor {
	e := &executor.Executor{
		Source:    client.RPCClient(),
		Query:     &extractor.Query{Schemas: schemas, ChainID: config.Conf.ETL.ChainID},
		Chain:     config.Conf.ETL.Chain,
		Workers:   config.Conf.ETL.Workers,
		Exporters: []exporter.Exporter{exporter.NewLogExporter(config.Conf.ETL.Chain)},
	}
	if progressFile != "" {
		e.RequestExporters = progressExporters(progressFile, len(schemas.Datatypes()), previousBlockOf(requests))
	}
	if config.Conf.Postgresql.Host != "" {
		e.Exporters = append(e.Exporters, exporter.NewPostgresExporter(config.Conf.Postgresql.Schema, schemas))
		e.SaveRun = func(run *model.FreezeRun) error {
			return run.Create(config.Conf.Postgresql.Schema)
		}
	}
	if config.Conf.ETL.Checkpoint {
		e.Checkpoint = func(dt model.Datatype) executor.Checkpointer {
			return model.NewCheckpoint(datastore.Redis(), config.Conf.ETL.Chain, dt)
		}
	}
	if config.Conf.Notifier.LarkWebHook != "" {
		e.Notifiers = append(e.Notifiers, notifier.NewLarkNotifier(config.Conf.Notifier.LarkWebHook))
	}
	if config.Conf.Notifier.SlackWebHook != "" {
		e.Notifiers = append(e.Notifiers, notifier.NewSlackNotifier(config.Conf.Notifier.SlackWebHook))
	}
	return e
}

func init() {
	freezeCmd.Flags().StringVarP(&config.CfgPath, "config", "c", "", "set config file path")
	freezeCmd.Flags().StringVarP(&config.Env, "env", "e", "dev", "environment type, available: dev, prod")
	freezeCmd.Flags().String("dataset", "", "datasets to freeze, split by comma, available: code_diffs, code_reads")
	freezeCmd.Flags().String("blocks", "", "block numbers and half open ranges, e.g. 100:110,200")
	freezeCmd.Flags().String("txs", "", "transaction hashes, split by comma")
	freezeCmd.Flags().String("include", "", "optional columns to add, split by comma")
	freezeCmd.Flags().String("exclude", "", "columns to drop, split by comma")
	freezeCmd.Flags().Int("workers", 0, "concurrent requests, overrides etl.workers when > 0")
	freezeCmd.Flags().String("progress_file", "", "file to record the latest contiguous frozen block, suffixed by the dataset when several are frozen")
}
