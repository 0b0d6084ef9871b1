// Package listing holds the browse record model and attribute coercion
package listing

import (
	"time"

	ptime "showroom/internal/platform/time"
)

// Well known attribute names
const (
	AttrTitle            = "title"
	AttrCategoryID       = "categoryId"
	AttrCategoryLabel    = "categoryLabel"
	AttrSubCategoryID    = "subCategoryId"
	AttrSubCategoryLabel = "subCategoryLabel"
	AttrBrandID          = "brandId"
	AttrModelID          = "modelId"
	AttrStatus           = "status"

	// AttrPrice and AttrCreatedAt address the typed Record fields by name
	AttrPrice     = "price"
	AttrCreatedAt = "createdAt"
)

// Record is one listing. Records are shared between caches and views and
// must not be mutated once fetched
type Record struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Price     Value            `json:"price"`
	Attrs     map[string]Value `json:"attrs,omitempty"`
}

// Attr looks up an attribute by name, price included. Missing names are Null
func (r Record) Attr(name string) Value {
	if name == AttrPrice {
		return r.Price
	}
	return r.Attrs[name]
}

// CreatedMillis is the creation time in unix milliseconds, 0 when unknown
func (r Record) CreatedMillis() int64 { return ptime.Millis(r.CreatedAt) }

// PriceFloat is the finite price, if any
func (r Record) PriceFloat() (float64, bool) { return r.Price.Float() }
