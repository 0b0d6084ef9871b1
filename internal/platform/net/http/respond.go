// Package http provides helpers for writing JSON responses with a consistent envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"

	pnet "showroom/internal/platform/net"
)

// Envelope is the standard response body for all endpoints
type Envelope struct {
	pnet.Wire
	Page *Page `json:"page,omitempty"`
}

// Page describes an incrementally loaded listing window
// Total is nil until a count is known
type Page struct {
	Size    int    `json:"size"`
	Loaded  int    `json:"loaded"`
	Matched int    `json:"matched"`
	Total   *int   `json:"total,omitempty"`
	HasMore bool   `json:"has_more"`
	Cursor  string `json:"cursor,omitempty"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is a functional response object for return-style handlers
type Response struct {
	Status int
	Body   any
	Page   *Page
	// optional headers if a handler wants to add any
	Header stdhttp.Header
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}

	reqID := pnet.RequestID(r.Context())

	// an error body decides the status itself
	if err, ok := resp.Body.(error); ok && err != nil {
		status, wire := pnet.Error(err, reqID)
		JSON(w, status, Envelope{Wire: wire})
		return
	}

	var (
		status int
		wire   pnet.Wire
	)
	switch resp.Status {
	case stdhttp.StatusNoContent:
		w.WriteHeader(stdhttp.StatusNoContent)
		return
	case stdhttp.StatusCreated:
		status, wire = pnet.Created(resp.Body, reqID)
	default:
		status, wire = pnet.OK(resp.Body, reqID)
	}
	JSON(w, status, Envelope{Wire: wire, Page: resp.Page})
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Created returns a 201 response
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }

// NoContent returns a 204 response
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error returns a response that maps the error to status and envelope
func Error(err error) Response { return Response{Body: err} }

// List returns a 200 response with items and the window they came from
func List(items any, page Page) Response {
	return Response{Status: stdhttp.StatusOK, Body: items, Page: &page}
}
