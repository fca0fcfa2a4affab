package exporter

// Exporter receives either a frozen dataset (*model.CodeDiffs or
// *model.CodeReads) or a finished request (model.Params). Exporters ignore
// data they do not handle.
type Exporter interface {
	Name() string
	Export(data any) error
}
