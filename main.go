package main

import (
	"github.com/sirupsen/logrus"

	"github.com/exvulsec/codetrace/cmd"
)

func main() {
	defer func() {
		if panicResp := recover(); panicResp != nil {
			logrus.Fatalf("got an panic err: %v", panicResp)
		}
	}()
	cmd.Execute()
}
