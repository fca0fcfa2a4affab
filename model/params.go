package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Params is one collection request: a block for by-block collection or a
// transaction hash for by-transaction collection.
type Params struct {
	BlockNumber     *uint64
	TransactionHash *common.Hash
}

func BlockParams(blockNumber uint64) Params {
	return Params{BlockNumber: &blockNumber}
}

func TransactionParams(txHash common.Hash) Params {
	return Params{TransactionHash: &txHash}
}

func (p Params) BlockNumberValue() (uint64, error) {
	if p.BlockNumber == nil {
		return 0, ErrMissingBlockNumber
	}
	return *p.BlockNumber, nil
}

func (p Params) TransactionHashValue() (common.Hash, error) {
	if p.TransactionHash == nil {
		return common.Hash{}, ErrMissingTransactionHash
	}
	return *p.TransactionHash, nil
}

// Key identifies the request in checkpoints and logs.
func (p Params) Key() string {
	switch {
	case p.BlockNumber != nil:
		return fmt.Sprintf("block:%d", *p.BlockNumber)
	case p.TransactionHash != nil:
		return fmt.Sprintf("tx:%s", p.TransactionHash.Hex())
	}
	return "empty"
}
