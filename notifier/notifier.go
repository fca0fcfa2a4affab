package notifier

import (
	"fmt"
	"strings"

	"github.com/exvulsec/codetrace/model"
)

const (
	LarkNotifierName  = "LarkNotifier"
	SlackNotifierName = "SlackNotifier"
)

// maxFailures caps the failed requests listed in one message.
const maxFailures = 10

type Notifier interface {
	Name() string
	Notify(data any)
}

func failureLines(run *model.FreezeRun) string {
	failures := run.Failures
	more := 0
	if len(failures) > maxFailures {
		more = len(failures) - maxFailures
		failures = failures[:maxFailures]
	}
	text := strings.Join(failures, "\n")
	if more > 0 {
		text += fmt.Sprintf("\n... and %d more", more)
	}
	return text
}

func runTitle(run *model.FreezeRun) string {
	return fmt.Sprintf("%s %s freeze: %d of %d requests failed", run.Chain, run.Datatype, run.Failed, run.Requests)
}
