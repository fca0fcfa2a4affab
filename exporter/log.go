package exporter

import (
	"github.com/sirupsen/logrus"

	"github.com/exvulsec/codetrace/model"
)

type logExporter struct {
	chain string
}

func NewLogExporter(chain string) Exporter {
	return &logExporter{chain: chain}
}

func (le *logExporter) Name() string {
	return "LogExporter"
}

func (le *logExporter) Export(data any) error {
	switch columns := data.(type) {
	case *model.CodeDiffs:
		logrus.Infof("chain %s: froze %d rows of %s", le.chain, columns.NRows, model.DatatypeCodeDiffs)
	case *model.CodeReads:
		logrus.Infof("chain %s: froze %d rows of %s", le.chain, columns.NRows, model.DatatypeCodeReads)
	}
	return nil
}
