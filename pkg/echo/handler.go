package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	paysheet "github.com/paysheet/paysheet/go"
	paysheethttp "github.com/paysheet/paysheet/go/http"
)

// InitHandler is the Echo handler for the init endpoint.
// It accepts a JSON paysheet.InitRequest and writes a paysheet.ResultView.
func InitHandler(initializer paysheet.Initializer, opts ...paysheethttp.Options) echo.HandlerFunc {
	options := paysheethttp.NewHandlerOptions(opts...)

	return func(c echo.Context) error {
		req := c.Request()
		req.Body = http.MaxBytesReader(c.Response(), req.Body, options.MaxBodyBytes)

		initReq, err := paysheethttp.DecodeInitRequest(req.Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, paysheet.NewInvalidRequestView(err))
		}

		status, view := paysheethttp.Respond(req.Context(), initializer, initReq, options)
		return c.JSON(status, view)
	}
}

// Register mounts InitHandler at POST path
func Register(e *echo.Echo, path string, initializer paysheet.Initializer, opts ...paysheethttp.Options) {
	e.POST(path, InitHandler(initializer, opts...))
}
