package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	paysheet "github.com/paysheet/paysheet/go"
	paysheethttp "github.com/paysheet/paysheet/go/http"
)

// InitHandler is the Gin handler for the init endpoint.
// It accepts a JSON paysheet.InitRequest and writes a paysheet.ResultView.
func InitHandler(initializer paysheet.Initializer, opts ...paysheethttp.Options) gin.HandlerFunc {
	options := paysheethttp.NewHandlerOptions(opts...)

	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, options.MaxBodyBytes)

		var req paysheet.InitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, paysheet.NewInvalidRequestView(err))
			return
		}

		status, view := paysheethttp.Respond(c.Request.Context(), initializer, req, options)
		c.JSON(status, view)
	}
}

// Register mounts InitHandler at POST path
func Register(router gin.IRoutes, path string, initializer paysheet.Initializer, opts ...paysheethttp.Options) {
	router.POST(path, InitHandler(initializer, opts...))
}
