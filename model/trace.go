package model

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AccountDiff is the parity stateDiff entry of one address. Balance and
// nonce deltas carry quantities and are kept undecoded.
type AccountDiff struct {
	Balance json.RawMessage       `json:"balance"`
	Nonce   json.RawMessage       `json:"nonce"`
	Code    Delta                 `json:"code"`
	Storage map[common.Hash]Delta `json:"storage"`
}

type StateDiff map[common.Address]AccountDiff

func (sd StateDiff) Addresses() []common.Address {
	return sortedAddresses(sd)
}

// TraceResults is one transaction's result of trace_replay* with the
// stateDiff trace type requested.
type TraceResults struct {
	Output          hexutil.Bytes `json:"output"`
	StateDiff       StateDiff     `json:"stateDiff"`
	TransactionHash *common.Hash  `json:"transactionHash,omitempty"`
}

// AccountState is the prestateTracer record of one address. A nil Code
// means the code was not read; an empty one means the account had none.
type AccountState struct {
	Balance *hexutil.Big                `json:"balance,omitempty"`
	Nonce   uint64                      `json:"nonce,omitempty"`
	Code    *hexutil.Bytes              `json:"code,omitempty"`
	Storage map[common.Hash]common.Hash `json:"storage,omitempty"`
}

type PrestateMap map[common.Address]AccountState

func (pm PrestateMap) Addresses() []common.Address {
	return sortedAddresses(pm)
}

// BlockTxTraces is a block or transaction worth of state diff traces.
// TxHashes and Traces are index aligned; a hash is nil when it was not fetched.
type BlockTxTraces struct {
	BlockNumber *uint32
	TxHashes    []*common.Hash
	Traces      []TraceResults
}

type BlockTxPrestates struct {
	BlockNumber *uint32
	TxHashes    []*common.Hash
	Traces      []PrestateMap
}

func sortedAddresses[V any](m map[common.Address]V) []common.Address {
	addrs := make([]common.Address, 0, len(m))
	for addr := range m {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
	return addrs
}
