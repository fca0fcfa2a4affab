package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"

	"github.com/exvulsec/codetrace/extractor"
	"github.com/exvulsec/codetrace/model"
	"github.com/exvulsec/codetrace/utils"
)

// CodeController serves the code diffs and code reads of a single block or
// transaction straight from the source.
type CodeController struct {
	Source  extractor.Source
	ChainID uint64
}

var _ Controller = (*CodeController)(nil)

func (cc *CodeController) Routers(routers gin.IRouter) {
	diffs := routers.Group("/code_diffs")
	{
		diffs.GET("/block/:number", cc.codeDiffsHandler(blockParams))
		diffs.GET("/tx/:hash", cc.codeDiffsHandler(txParams))
	}
	reads := routers.Group("/code_reads")
	{
		reads.GET("/block/:number", cc.codeReadsHandler(blockParams))
		reads.GET("/tx/:hash", cc.codeReadsHandler(txParams))
	}
}

type paramsParser func(c *gin.Context) (model.Params, error)

func blockParams(c *gin.Context) (model.Params, error) {
	number, err := strconv.ParseUint(c.Param("number"), 10, 32)
	if err != nil {
		return model.Params{}, fmt.Errorf("invalid block number %s", c.Param("number"))
	}
	return model.BlockParams(number), nil
}

func txParams(c *gin.Context) (model.Params, error) {
	hash, err := hexutil.Decode(c.Param("hash"))
	if err != nil || len(hash) != common.HashLength {
		return model.Params{}, fmt.Errorf("invalid transaction hash %s", c.Param("hash"))
	}
	return model.TransactionParams(common.BytesToHash(hash)), nil
}

func (cc *CodeController) query(c *gin.Context, dt model.Datatype) (*extractor.Query, error) {
	schema, err := model.NewTable(dt, nil, utils.SplitColumns(c.Query("exclude")))
	if err != nil {
		return nil, err
	}
	return &extractor.Query{Schemas: model.Schemas{dt: schema}, ChainID: cc.ChainID}, nil
}

func (cc *CodeController) codeDiffsHandler(parse paramsParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		cc.serve(c, model.DatatypeCodeDiffs, parse, func(ctx context.Context, params model.Params, query *extractor.Query) (any, error) {
			columns, err := extractor.CollectCodeDiffs(ctx, params, cc.Source, query)
			if err != nil {
				return nil, err
			}
			return columns.Rows(), nil
		})
	}
}

func (cc *CodeController) codeReadsHandler(parse paramsParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		cc.serve(c, model.DatatypeCodeReads, parse, func(ctx context.Context, params model.Params, query *extractor.Query) (any, error) {
			columns, err := extractor.CollectCodeReads(ctx, params, cc.Source, query)
			if err != nil {
				return nil, err
			}
			return columns.Rows(), nil
		})
	}
}

func (cc *CodeController) serve(
	c *gin.Context,
	dt model.Datatype,
	parse paramsParser,
	collect func(ctx context.Context, params model.Params, query *extractor.Query) (any, error),
) {
	params, err := parse(c)
	if err != nil {
		c.JSON(http.StatusOK, model.Message{Code: http.StatusBadRequest, Msg: err.Error()})
		return
	}
	query, err := cc.query(c, dt)
	if err != nil {
		c.JSON(http.StatusOK, model.Message{Code: http.StatusBadRequest, Msg: err.Error()})
		return
	}
	rows, err := collect(c, params, query)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, model.ErrSchemaNotProvided) {
			code = http.StatusBadRequest
		}
		c.JSON(http.StatusOK, model.Message{
			Code: int64(code),
			Msg:  fmt.Sprintf("get %s of %s is err: %v", dt, params.Key(), err),
		})
		return
	}
	c.JSON(http.StatusOK, model.Message{Code: http.StatusOK, Data: rows})
}
