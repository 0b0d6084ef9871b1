package repo

import (
	"context"
	"strings"

	"showroom/internal/core/listing"
	perr "showroom/internal/platform/errors"
	"showroom/internal/platform/store"
	"showroom/internal/services/browse/domain"
)

// countsTable is a SummingMergeTree of listing counts per taxonomy path
const countsTable = "showroom.listing_counts"

// chColumns are the rollup dimensions; counts only answer equality on these
var chColumns = map[string]string{
	listing.AttrCategoryID:    "category_id",
	listing.AttrSubCategoryID: "sub_category_id",
	listing.AttrBrandID:       "brand_id",
	listing.AttrModelID:       "model_id",
}

// CHCounter answers counts from the clickhouse rollup
type CHCounter struct{ ch store.Clickhouse }

// NewCHCounter wraps a clickhouse seam
func NewCHCounter(ch store.Clickhouse) *CHCounter { return &CHCounter{ch: ch} }

var _ domain.Counter = (*CHCounter)(nil)

// Count sums the rollup rows matching every constraint. Constraints the
// rollup has no column for are refused rather than silently ignored
func (c *CHCounter) Count(ctx context.Context, cs []domain.Constraint) (int, error) {
	var (
		where []string
		args  []any
	)
	for _, k := range cs {
		col, ok := chColumns[k.Field]
		if !ok || k.Op != domain.Eq {
			return 0, perr.InvalidArgf("counts cannot filter on %s", k)
		}
		where = append(where, col+" = ?")
		args = append(args, k.Value.Text())
	}
	sql := "SELECT toUInt64(sum(n)) FROM " + countsTable
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := c.ch.Query(ctx, sql, args...)
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeUnavailable, "count listings")
	}
	defer rows.Close()

	var n uint64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, perr.Wrap(err, perr.ErrorCodeDB, "scan listing count")
		}
	}
	if err := rows.Err(); err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeDB, "read listing count")
	}
	return int(n), nil
}

// Record adds one count row per document to the rollup
func (c *CHCounter) Record(ctx context.Context, docs []listing.Record) error {
	if len(docs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []any{
			d.Attr(listing.AttrCategoryID).Text(),
			d.Attr(listing.AttrSubCategoryID).Text(),
			d.Attr(listing.AttrBrandID).Text(),
			d.Attr(listing.AttrModelID).Text(),
			uint64(1),
		})
	}
	if err := c.ch.Insert(ctx, countsTable, rows); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "record listing counts")
	}
	return nil
}

// Ensure creates the rollup database and table when missing
func (c *CHCounter) Ensure(ctx context.Context) error {
	for _, ddl := range []string{"CREATE DATABASE IF NOT EXISTS showroom", countsDDL} {
		if err := c.ch.Exec(ctx, ddl); err != nil {
			return perr.Wrap(err, perr.ErrorCodeUnavailable, "create listing counts")
		}
	}
	return nil
}

const countsDDL = `CREATE TABLE IF NOT EXISTS showroom.listing_counts
(
    category_id     String,
    sub_category_id String,
    brand_id        String,
    model_id        String,
    n               UInt64
)
ENGINE = SummingMergeTree(n)
ORDER BY (category_id, sub_category_id, brand_id, model_id)`
