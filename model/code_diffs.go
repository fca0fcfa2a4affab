package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// CodeDiffs holds the columns of the code_diffs datatype. A column the
// schema does not request stays empty.
type CodeDiffs struct {
	NRows            int
	BlockNumber      []*uint32
	TransactionIndex []uint32
	TransactionHash  []*common.Hash
	Address          []common.Address
	FromValue        [][]byte
	ToValue          [][]byte
	ChainID          []uint64
}

type CodeDiffRow struct {
	BlockNumber      *uint32         `json:"block_number,omitempty"`
	TransactionIndex *uint32         `json:"transaction_index,omitempty"`
	TransactionHash  *common.Hash    `json:"transaction_hash,omitempty"`
	Address          *common.Address `json:"address,omitempty"`
	FromValue        *hexutil.Bytes  `json:"from_value,omitempty"`
	ToValue          *hexutil.Bytes  `json:"to_value,omitempty"`
	ChainID          *uint64         `json:"chain_id,omitempty"`
}

// ProcessCodeDiffs writes one row per code change found in the response.
func ProcessCodeDiffs(response BlockTxTraces, columns *CodeDiffs, schemas Schemas) error {
	schema, ok := schemas.Get(DatatypeCodeDiffs)
	if !ok {
		return ErrSchemaNotProvided
	}
	for index, trace := range response.Traces {
		if index >= len(response.TxHashes) {
			break
		}
		tx := response.TxHashes[index]
		if trace.StateDiff == nil {
			continue
		}
		for _, addr := range trace.StateDiff.Addresses() {
			diff := trace.StateDiff[addr]
			processCodeDiff(addr, diff.Code, response.BlockNumber, tx, index, columns, schema)
		}
	}
	return nil
}

func processCodeDiff(
	addr common.Address,
	diff Delta,
	blockNumber *uint32,
	transactionHash *common.Hash,
	transactionIndex int,
	columns *CodeDiffs,
	schema *Table,
) {
	var from, to []byte
	switch diff.Kind {
	case DeltaUnchanged:
		return
	case DeltaAdded:
		// skips EOAs and self-destruct remnants
		if len(diff.To) == 0 {
			return
		}
		from, to = []byte{}, copyBytes(diff.To)
	case DeltaRemoved:
		from, to = copyBytes(diff.From), []byte{}
	case DeltaChanged:
		from, to = copyBytes(diff.From), copyBytes(diff.To)
	default:
		return
	}
	columns.NRows += 1
	store(schema, ColumnBlockNumber, &columns.BlockNumber, copyUint32(blockNumber))
	store(schema, ColumnTransactionIndex, &columns.TransactionIndex, uint32(transactionIndex))
	store(schema, ColumnTransactionHash, &columns.TransactionHash, copyHash(transactionHash))
	store(schema, ColumnAddress, &columns.Address, addr)
	store(schema, ColumnFromValue, &columns.FromValue, from)
	store(schema, ColumnToValue, &columns.ToValue, to)
}

// Finalize fills the chain_id column up to NRows when the schema requests it.
func (c *CodeDiffs) Finalize(schema *Table, chainID uint64) {
	for i := len(c.ChainID); i < c.NRows; i++ {
		store(schema, ColumnChainID, &c.ChainID, chainID)
	}
}

// Merge appends the rows of other, which must come from the same schema.
func (c *CodeDiffs) Merge(other *CodeDiffs) {
	if other == nil {
		return
	}
	c.NRows += other.NRows
	c.BlockNumber = append(c.BlockNumber, other.BlockNumber...)
	c.TransactionIndex = append(c.TransactionIndex, other.TransactionIndex...)
	c.TransactionHash = append(c.TransactionHash, other.TransactionHash...)
	c.Address = append(c.Address, other.Address...)
	c.FromValue = append(c.FromValue, other.FromValue...)
	c.ToValue = append(c.ToValue, other.ToValue...)
	c.ChainID = append(c.ChainID, other.ChainID...)
}

func (c *CodeDiffs) RowCount() int {
	return c.NRows
}

func (c *CodeDiffs) Rows() []CodeDiffRow {
	rows := make([]CodeDiffRow, c.NRows)
	for i := range rows {
		row := &rows[i]
		if len(c.BlockNumber) == c.NRows {
			row.BlockNumber = c.BlockNumber[i]
		}
		if len(c.TransactionIndex) == c.NRows {
			row.TransactionIndex = &c.TransactionIndex[i]
		}
		if len(c.TransactionHash) == c.NRows {
			row.TransactionHash = c.TransactionHash[i]
		}
		if len(c.Address) == c.NRows {
			row.Address = &c.Address[i]
		}
		if len(c.FromValue) == c.NRows {
			from := hexutil.Bytes(c.FromValue[i])
			row.FromValue = &from
		}
		if len(c.ToValue) == c.NRows {
			to := hexutil.Bytes(c.ToValue[i])
			row.ToValue = &to
		}
		if len(c.ChainID) == c.NRows {
			row.ChainID = &c.ChainID[i]
		}
	}
	return rows
}

func copyBytes(b []byte) []byte {
	return append([]byte{}, b...)
}

func copyUint32(v *uint32) *uint32 {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}

func copyHash(h *common.Hash) *common.Hash {
	if h == nil {
		return nil
	}
	value := *h
	return &value
}
