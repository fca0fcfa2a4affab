package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/exvulsec/codetrace/extractor"
	"github.com/exvulsec/codetrace/http/controller"
	"github.com/exvulsec/codetrace/middleware"
)

func addRouters(r gin.IRouter, source extractor.Source, chainID uint64, apiKey string) {
	addHealthRouter(r)
	apiV1 := setV1Group(r, apiKey)
	codeCtrl := controller.CodeController{Source: source, ChainID: chainID}
	codeCtrl.Routers(apiV1)
}

func setV1Group(r gin.IRouter, apiKey string) gin.IRouter {
	return r.Group("/api/v1", middleware.CheckAPIKEY(apiKey))
}

func addHealthRouter(r gin.IRouter) {
	r.GET("/health", func(context *gin.Context) {
		context.JSON(http.StatusOK, fmt.Sprintf("running on %v", time.Now()))
	})
}
