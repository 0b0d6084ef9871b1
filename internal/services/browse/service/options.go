package service

import (
	"time"

	"showroom/internal/core/filter"
)

// Options tune one browse session
type Options struct {
	PageSize        int
	ViewStep        int
	DefaultViewSize int
	MaxViewSize     int
	FallbackLimit   int
	Debounce        time.Duration

	// RemotePrice pushes the price range down to the store as part of the
	// query key; otherwise price is filtered locally like everything else
	RemotePrice bool

	Schema filter.Schema
}

// DefaultOptions are the marketplace defaults
func DefaultOptions() Options {
	return Options{
		PageSize:        60,
		ViewStep:        24,
		DefaultViewSize: 24,
		MaxViewSize:     480,
		FallbackLimit:   500,
		Debounce:        300 * time.Millisecond,
		Schema:          filter.DefaultSchema(),
	}
}

// normalized fills zero values from the defaults
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.PageSize <= 0 {
		o.PageSize = d.PageSize
	}
	if o.ViewStep <= 0 {
		o.ViewStep = d.ViewStep
	}
	if o.DefaultViewSize <= 0 {
		o.DefaultViewSize = d.DefaultViewSize
	}
	if o.MaxViewSize < o.DefaultViewSize {
		o.MaxViewSize = max(d.MaxViewSize, o.DefaultViewSize)
	}
	if o.FallbackLimit <= 0 {
		o.FallbackLimit = d.FallbackLimit
	}
	if o.Debounce < 0 {
		o.Debounce = 0
	}
	if len(o.Schema.Fields) == 0 && len(o.Schema.Text) == 0 {
		o.Schema = d.Schema
	}
	return o
}
