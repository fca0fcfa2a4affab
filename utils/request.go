package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseBlockNumbers accepts comma separated block numbers and half-open
// ranges, e.g. "100:105,200" gives 100..104 and 200. Block numbers are
// uint32.
func ParseBlockNumbers(blocks string) ([]uint64, error) {
	blockNumbers := []uint64{}
	for _, part := range strings.Split(blocks, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		start, end, isRange := strings.Cut(part, ":")
		from, err := strconv.ParseUint(strings.TrimSpace(start), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse block number %q is err: %w", part, err)
		}
		if !isRange {
			blockNumbers = append(blockNumbers, from)
			continue
		}
		to, err := strconv.ParseUint(strings.TrimSpace(end), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse block range %q is err: %w", part, err)
		}
		if to > math.MaxUint32+1 {
			return nil, fmt.Errorf("block range %q exceeds uint32", part)
		}
		if to <= from {
			return nil, fmt.Errorf("block range %q is empty", part)
		}
		for blockNumber := from; blockNumber < to; blockNumber++ {
			blockNumbers = append(blockNumbers, blockNumber)
		}
	}
	return blockNumbers, nil
}

func ParseTxHashes(txs string) ([]common.Hash, error) {
	hashes := []common.Hash{}
	for _, part := range strings.Split(txs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !isHexHash(part) {
			return nil, fmt.Errorf("invalid transaction hash %q", part)
		}
		hashes = append(hashes, common.HexToHash(part))
	}
	return hashes, nil
}

func isHexHash(s string) bool {
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == common.HashLength
}

// SplitColumns splits a comma separated column list.
func SplitColumns(columns string) []string {
	names := []string{}
	for _, name := range strings.Split(columns, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
