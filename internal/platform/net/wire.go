// Package net holds the transport envelope and the request scoped ids the
// HTTP layers share
package net

import (
	"context"
	"net/http"

	perr "showroom/internal/platform/errors"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Wire is the JSON envelope every endpoint answers with
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

func envelope(status int, reqID string, data any) (int, Wire) {
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		RequestID:  reqID,
		Data:       data,
	}
}

// OK builds a 200 envelope around data
func OK(data any, reqID string) (int, Wire) { return envelope(http.StatusOK, reqID, data) }

// Created builds a 201 envelope around data
func Created(data any, reqID string) (int, Wire) { return envelope(http.StatusCreated, reqID, data) }

// Error maps err to its status and an envelope carrying the error code.
// A nil err is a plain 200
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return OK(nil, reqID)
	}
	status, w := envelope(perr.HTTPStatus(err), reqID, nil)
	wire := perr.WireFrom(err)
	w.Code, w.Error = wire.Code, wire.Message
	return status, w
}

// WithRequest puts reqID where chi's RequestID middleware would
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// RequestID returns the request id on ctx, empty when none was set
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }
