// Package http exposes a FlowInitializer over HTTP.
// The gin and echo packages adapt the same request and response contract.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	paysheet "github.com/paysheet/paysheet/go"
)

// ErrCodeCancelled is reported when the request ended before initialization completed
const ErrCodeCancelled = "cancelled"

// DefaultMaxBodyBytes bounds request bodies
const DefaultMaxBodyBytes = 64 << 10

// HandlerOptions is the options for the init handlers.
type HandlerOptions struct {
	Logger       *zap.Logger
	Timeout      time.Duration
	MaxBodyBytes int64
}

// Options is the type for the options for the init handlers.
type Options func(*HandlerOptions)

// WithLogger is an option to set the logger.
func WithLogger(logger *zap.Logger) Options {
	return func(options *HandlerOptions) {
		options.Logger = logger
	}
}

// WithTimeout is an option to bound each initialization.
func WithTimeout(timeout time.Duration) Options {
	return func(options *HandlerOptions) {
		options.Timeout = timeout
	}
}

// WithMaxBodyBytes is an option to set the request body limit.
func WithMaxBodyBytes(n int64) Options {
	return func(options *HandlerOptions) {
		options.MaxBodyBytes = n
	}
}

// NewHandlerOptions applies opts over the defaults
func NewHandlerOptions(opts ...Options) *HandlerOptions {
	options := &HandlerOptions{
		Logger:       zap.NewNop(),
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return options
}

// Respond runs one initialization and returns the status code and body to write.
//
//	200 success, 422 failure, 503 when ctx ended before a result
func Respond(ctx context.Context, initializer paysheet.Initializer, req paysheet.InitRequest, options *HandlerOptions) (int, paysheet.ResultView) {
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	result, err := initializer.Init(ctx, req.ClientSecret, req.Configuration())
	if err != nil {
		options.Logger.Info("initialization did not complete", zap.Error(err))
		return http.StatusServiceUnavailable, paysheet.ResultView{
			Status: paysheet.ViewStatusFailure,
			Error:  &paysheet.ErrorView{Code: ErrCodeCancelled, Message: err.Error()},
		}
	}

	view := paysheet.NewResultView(result)
	if view.Status != paysheet.ViewStatusSuccess {
		options.Logger.Info("initialization failed", zap.String("code", view.Error.Code))
		return http.StatusUnprocessableEntity, view
	}
	return http.StatusOK, view
}

// DecodeInitRequest reads a JSON InitRequest from body
func DecodeInitRequest(body io.Reader) (paysheet.InitRequest, error) {
	var req paysheet.InitRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return paysheet.InitRequest{}, fmt.Errorf("failed to decode request: %w", err)
	}
	return req, nil
}

// InitHandler serves the init endpoint with net/http
func InitHandler(initializer paysheet.Initializer, opts ...Options) http.Handler {
	options := NewHandlerOptions(opts...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, paysheet.NewInvalidRequestView(errors.New("method not allowed")))
			return
		}

		req, err := DecodeInitRequest(http.MaxBytesReader(w, r.Body, options.MaxBodyBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, paysheet.NewInvalidRequestView(err))
			return
		}

		status, view := Respond(r.Context(), initializer, req, options)
		writeJSON(w, status, view)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
