package domain

import (
	"showroom/internal/core/filter"
	"showroom/internal/core/listing"
	"showroom/internal/core/sorting"
)

// ViewMode is the listing layout
type ViewMode string

const (
	// Grid is the default layout
	Grid ViewMode = "grid"
	// List is the row layout
	List ViewMode = "list"
)

// ViewModes are the accepted layouts
func ViewModes() []ViewMode { return []ViewMode{Grid, List} }

// View is what a page renders after each update
type View struct {
	Items       []listing.Record `json:"items"`
	Loaded      int              `json:"loaded" example:"60"`
	Matched     int              `json:"matched" example:"41"`
	Total       *int             `json:"total" example:"145"`
	HasMore     bool             `json:"has_more"`
	LoadingMore bool             `json:"loading_more"`
	Error       string           `json:"error,omitempty"`
	Fallback    bool             `json:"fallback,omitempty"`

	Target   Target       `json:"target"`
	Location string       `json:"location" example:"/browse/watches?sort=priceAsc"`
	Sort     sorting.Mode `json:"sort"`
	ViewMode ViewMode     `json:"view"`
	ViewSize int          `json:"size" example:"24"`
	Filters  filter.State `json:"filters"`
}
