// Package httpkit is the handler and routing surface modules build on, so
// they never import the platform http package directly
package httpkit

import (
	"net/http"

	phttp "showroom/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type (
	// Envelope is the response body every endpoint writes
	Envelope = phttp.Envelope
	// Page describes the listing window a List response belongs to
	Page = phttp.Page
	// Response is what return style handlers produce
	Response = phttp.Response
	// Handler is the platform handler type
	Handler = phttp.Handler
	// Router is the platform router seam
	Router = phttp.Router
)

// OK is a 200 around data
func OK(data any) Response { return phttp.OK(data) }

// Created is a 201 around data
func Created(data any) Response { return phttp.Created(data) }

// NoContent is an empty 204
func NoContent() Response { return phttp.NoContent() }

// Error maps err to its status and error envelope
func Error(err error) Response { return phttp.Error(err) }

// List is a 200 around items plus the window they came from
func List(items any, page Page) Response { return phttp.List(items, page) }

// Param returns a route parameter, empty when the route has none by that name
func Param(r *http.Request, name string) string { return chi.URLParam(r, name) }

// Call adapts a body-less handler. A returned Response is written as is,
// any other value is wrapped in OK
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}

// Get mounts a body-less GET
func Get(r Router, path string, h func(*http.Request) (any, error)) { r.Get(path, Call(h)) }

// Post mounts a body-less POST
func Post(r Router, path string, h func(*http.Request) (any, error)) { r.Post(path, Call(h)) }

// Delete mounts a DELETE
func Delete(r Router, path string, h func(*http.Request) (any, error)) { r.Delete(path, Call(h)) }

// PostJSON mounts a POST whose body is decoded and validated into T
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// PutJSON mounts a PUT whose body is decoded and validated into T
func PutJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Put(path, phttp.JSONHandler(h))
}
