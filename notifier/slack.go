package notifier

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/exvulsec/codetrace/model"
)

type slackNotifier struct {
	webHookURL string
}

func NewSlackNotifier(webHookURL string) Notifier {
	return &slackNotifier{webHookURL: webHookURL}
}

func (sn *slackNotifier) Name() string {
	return SlackNotifierName
}

func (sn *slackNotifier) Notify(data any) {
	run, ok := data.(*model.FreezeRun)
	if !ok {
		return
	}
	if err := slack.PostWebhook(sn.webHookURL, ComposeSlackMessage(run)); err != nil {
		logrus.Errorf("send message to slack is err: %v", err)
	}
}

func ComposeSlackMessage(run *model.FreezeRun) *slack.WebhookMessage {
	return &slack.WebhookMessage{
		Text: runTitle(run),
		Attachments: []slack.Attachment{
			{
				Color: "danger",
				Fields: []slack.AttachmentField{
					{Title: "Succeeded", Value: fmt.Sprintf("%d", run.Succeeded), Short: true},
					{Title: "Skipped", Value: fmt.Sprintf("%d", run.Skipped), Short: true},
					{Title: "Failures", Value: failureLines(run)},
				},
			},
		},
	}
}
