package modkit

import (
	"net/http"

	"showroom/internal/modkit/httpkit"
)

// Option adjusts how a module is built
type Option func(*Built)

// Built is the resolved option set a module constructor reads
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler

	// Register attaches extra routes after the module's own
	Register func(httpkit.Router)
}

// WithName sets the module name used in logs and the port registry
func WithName(name string) Option {
	return func(b *Built) { b.Name = name }
}

// WithPrefix sets the path the module mounts under
func WithPrefix(prefix string) Option {
	return func(b *Built) { b.Prefix = prefix }
}

// WithMiddlewares appends per module middleware, outermost first
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithRegister adds routes next to the module's own
func WithRegister(fn func(httpkit.Router)) Option {
	return func(b *Built) { b.Register = fn }
}

// Build applies opts in order. Later options win, middleware accumulates
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	b.Mw = append([]func(http.Handler) http.Handler(nil), b.Mw...)
	if b.Register == nil {
		b.Register = func(httpkit.Router) {}
	}
	return b
}
