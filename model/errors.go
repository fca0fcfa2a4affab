package model

import "errors"

var (
	ErrSchemaNotProvided      = errors.New("schema not provided")
	ErrMissingBlockNumber     = errors.New("request has no block number")
	ErrBlockNumberOutOfRange  = errors.New("block number exceeds uint32")
	ErrMissingTransactionHash = errors.New("request has no transaction hash")
)
