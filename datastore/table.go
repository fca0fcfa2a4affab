package datastore

const (
	TableFreezeRuns = "freeze_runs"
)
