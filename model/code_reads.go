package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// CodeReads holds the columns of the code_reads datatype.
type CodeReads struct {
	NRows            int
	BlockNumber      []*uint32
	TransactionIndex []uint32
	TransactionHash  []*common.Hash
	ContractAddress  []common.Address
	Code             [][]byte
	ChainID          []uint64
}

type CodeReadRow struct {
	BlockNumber      *uint32         `json:"block_number,omitempty"`
	TransactionIndex *uint32         `json:"transaction_index,omitempty"`
	TransactionHash  *common.Hash    `json:"transaction_hash,omitempty"`
	ContractAddress  *common.Address `json:"contract_address,omitempty"`
	Code             *hexutil.Bytes  `json:"code,omitempty"`
	ChainID          *uint64         `json:"chain_id,omitempty"`
}

// ProcessCodeReads writes one row per account whose code was read.
func ProcessCodeReads(response BlockTxPrestates, columns *CodeReads, schemas Schemas) error {
	schema, ok := schemas.Get(DatatypeCodeReads)
	if !ok {
		return ErrSchemaNotProvided
	}
	for index, trace := range response.Traces {
		if index >= len(response.TxHashes) {
			break
		}
		tx := response.TxHashes[index]
		for _, addr := range trace.Addresses() {
			processCodeRead(addr, trace[addr], response.BlockNumber, tx, index, columns, schema)
		}
	}
	return nil
}

func processCodeRead(
	addr common.Address,
	accountState AccountState,
	blockNumber *uint32,
	transactionHash *common.Hash,
	transactionIndex int,
	columns *CodeReads,
	schema *Table,
) {
	if accountState.Code == nil {
		return
	}
	columns.NRows += 1
	store(schema, ColumnBlockNumber, &columns.BlockNumber, copyUint32(blockNumber))
	store(schema, ColumnTransactionIndex, &columns.TransactionIndex, uint32(transactionIndex))
	store(schema, ColumnTransactionHash, &columns.TransactionHash, copyHash(transactionHash))
	store(schema, ColumnContractAddress, &columns.ContractAddress, addr)
	store(schema, ColumnCode, &columns.Code, copyBytes(*accountState.Code))
}

func (c *CodeReads) Finalize(schema *Table, chainID uint64) {
	for i := len(c.ChainID); i < c.NRows; i++ {
		store(schema, ColumnChainID, &c.ChainID, chainID)
	}
}

func (c *CodeReads) Merge(other *CodeReads) {
	if other == nil {
		return
	}
	c.NRows += other.NRows
	c.BlockNumber = append(c.BlockNumber, other.BlockNumber...)
	c.TransactionIndex = append(c.TransactionIndex, other.TransactionIndex...)
	c.TransactionHash = append(c.TransactionHash, other.TransactionHash...)
	c.ContractAddress = append(c.ContractAddress, other.ContractAddress...)
	c.Code = append(c.Code, other.Code...)
	c.ChainID = append(c.ChainID, other.ChainID...)
}

func (c *CodeReads) RowCount() int {
	return c.NRows
}

func (c *CodeReads) Rows() []CodeReadRow {
	rows := make([]CodeReadRow, c.NRows)
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
		if len(c.ContractAddress) == c.NRows {
			row.ContractAddress = &c.ContractAddress[i]
		}
		if len(c.Code) == c.NRows {
			code := hexutil.Bytes(c.Code[i])
			row.Code = &code
		}
		if len(c.ChainID) == c.NRows {
			row.ChainID = &c.ChainID[i]
		}
	}
	return rows
}
