package exporter

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/exvulsec/codetrace/model"
)

// blockToFileExporter records the highest block up to which every block
// request has finished. Blocks finishing out of order wait in waitList.
type blockToFileExporter struct {
	latestBlockNumber uint64
	waitList          []uint64
	filePath          string
}

func NewBlockToFileExporter(filePath string, latestBlockNumber uint64) Exporter {
	return &blockToFileExporter{
		latestBlockNumber: latestBlockNumber,
		filePath:          filePath,
		waitList:          []uint64{},
	}
}

func (fe *blockToFileExporter) Name() string {
	return "BlockToFileExporter"
}

func (fe *blockToFileExporter) Export(data any) error {
	params, ok := data.(model.Params)
	if !ok || params.BlockNumber == nil {
		return nil
	}
	blockNumber := *params.BlockNumber
	if fe.isLatestBlock(blockNumber) {
		if err := fe.WriteBlockNumberToFile(blockNumber); err != nil {
			return err
		}
		fe.latestBlockNumber = blockNumber
		return fe.writeBlockFromWaitList()
	}
	if blockNumber > fe.latestBlockNumber {
		fe.waitList = append(fe.waitList, blockNumber)
		sort.SliceStable(fe.waitList, func(i, j int) bool {
			return fe.waitList[i] < fe.waitList[j]
		})
	}
	return nil
}

func (fe *blockToFileExporter) writeBlockFromWaitList() error {
	var index int
	for index < len(fe.waitList) {
		waitBlock := fe.waitList[index]
		if !fe.isLatestBlock(waitBlock) {
			break
		}
		if err := fe.WriteBlockNumberToFile(waitBlock); err != nil {
			return err
		}
		fe.latestBlockNumber = waitBlock
		index += 1
	}
	fe.waitList = fe.waitList[index:]
	return nil
}

func (fe *blockToFileExporter) isLatestBlock(blockNumber uint64) bool {
	return fe.latestBlockNumber+1 == blockNumber
}

func (fe *blockToFileExporter) WriteBlockNumberToFile(blockNumber uint64) error {
	blockNumberString := strconv.FormatUint(blockNumber, 10)
	if err := os.WriteFile(fe.filePath, []byte(blockNumberString), 0o644); err != nil {
		return fmt.Errorf("failed to write blocknumber %d to file, err is %w", blockNumber, err)
	}
	return nil
}
