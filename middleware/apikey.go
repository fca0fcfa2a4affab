package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exvulsec/codetrace/model"
)

const APIKEY = "apikey"

// CheckAPIKEY rejects requests whose apikey query does not match. An empty
// key leaves the api open.
func CheckAPIKEY(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey != "" && c.Query(APIKEY) != apiKey {
			c.AbortWithStatusJSON(http.StatusOK, model.Message{
				Code: http.StatusUnauthorized,
				Msg:  "invalid api key",
			})
			return
		}
		c.Next()
	}
}
