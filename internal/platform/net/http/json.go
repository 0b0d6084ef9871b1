package http

import (
	"net/http"

	"showroom/internal/platform/net/http/bind"
)

// JSONHandler decodes and validates a T body before calling fn. A Response
// returned as the value is written as is, anything else is wrapped in OK
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		out, err := fn(r, in)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return OK(out)
	})
}
