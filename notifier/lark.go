package notifier

import (
	"fmt"
	"strconv"

	"github.com/go-lark/lark"
	"github.com/go-lark/lark/card"
	"github.com/sirupsen/logrus"

	"github.com/exvulsec/codetrace/model"
)

type larkNotifier struct {
	larkBot *lark.Bot
}

type LarkCard struct {
	Title      string
	ColumnSets []LarkColumnSet
}

type LarkColumnSet struct {
	Name    string
	Columns []LarkColumn
}

type LarkColumn struct {
	Name   string
	Value  string
	Weight int
}

func NewLarkNotifier(webHookURL string) Notifier {
	return &larkNotifier{larkBot: lark.NewNotificationBot(webHookURL)}
}

func (ln *larkNotifier) Name() string {
	return LarkNotifierName
}

func (ln *larkNotifier) Notify(larkData any) {
	outMsg, ok := ln.GetOutComingMsg(larkData)
	if !ok {
		return
	}
	_, err := ln.larkBot.PostNotificationV2(outMsg)
	if err != nil {
		logrus.Errorf("send message to lark is err: %v", err)
		return
	}
}

func (ln *larkNotifier) GetOutComingMsg(larkData any) (lark.OutcomingMessage, bool) {
	switch data := larkData.(type) {
	case *model.FreezeRun:
		return ln.composeCardOutComingMsg(ComposeFreezeRunCard(data)), true
	case LarkCard:
		return ln.composeCardOutComingMsg(data), true
	}
	return lark.OutcomingMessage{}, false
}

func ComposeFreezeRunCard(run *model.FreezeRun) LarkCard {
	return LarkCard{
		Title: runTitle(run),
		ColumnSets: []LarkColumnSet{
			{Columns: []LarkColumn{
				{Name: "Chain", Value: run.Chain, Weight: 1},
				{Name: "Datatype", Value: string(run.Datatype), Weight: 1},
			}},
			{Columns: []LarkColumn{
				{Name: "Succeeded", Value: strconv.Itoa(run.Succeeded), Weight: 1},
				{Name: "Failed", Value: strconv.Itoa(run.Failed), Weight: 1},
				{Name: "Skipped", Value: strconv.Itoa(run.Skipped), Weight: 1},
			}},
			{Name: "HR"},
			{Columns: []LarkColumn{
				{Name: "Failures", Value: failureLines(run), Weight: 1},
			}},
		},
	}
}

func (ln *larkNotifier) composeCardOutComingMsg(data LarkCard) lark.OutcomingMessage {
	msg := lark.NewMsgBuffer(lark.MsgInteractive)
	cardString := ln.ComposeCard(data).String()
	return msg.Card(cardString).Build()
}

func (ln *larkNotifier) ComposeCard(data LarkCard) *card.Block {
	builder := lark.NewCardBuilder()
	elements := []card.Element{}
	for _, set := range data.ColumnSets {
		if set.Name == "HR" {
			elements = append(elements, builder.Hr())
		} else {
			elements = append(elements, ln.ComposeColumnSet(builder, set.Columns))
		}
	}

	return builder.Card(elements...).Title(data.Title).Red()
}

func (ln *larkNotifier) ComposeColumnSet(builder *lark.CardBuilder, larkColumns []LarkColumn) *card.ColumnSetBlock {
	columns := []*card.ColumnBlock{}
	for _, column := range larkColumns {
		columns = append(columns, ln.ComposeColumn(builder, column.Name, column.Value, column.Weight))
	}

	return builder.ColumnSet(columns...).
		FlexMode("bisect").
		HorizontalSpacing("default")
}

func (ln *larkNotifier) ComposeColumn(builder *lark.CardBuilder, key string, value string, weight int) *card.ColumnBlock {
	text := builder.Text(fmt.Sprintf("**%s:**\n%s", key, value)).LarkMd()

	return builder.Column(
		builder.Div().Text(text)).
		VerticalAlign("top").
		Width("weighted").
		Weight(weight)
}
