// Package repo provides postgres and clickhouse access for browse
package repo

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"showroom/internal/core/listing"
	"showroom/internal/modkit/repokit"
	perr "showroom/internal/platform/errors"
	"showroom/internal/platform/store"
	str "showroom/internal/platform/strings"
	ptime "showroom/internal/platform/time"
	"showroom/internal/services/browse/domain"
)

// Repo is the listings persistence surface
type Repo interface {
	domain.Store
	domain.Counter
	Insert(ctx context.Context, docs []listing.Record) (int, error)
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{ Indexes Indexes }
	// queries implements the Repo interface
	queries struct {
		q  repokit.Queryer
		ix Indexes
	}
)

// NewPG returns a binder serving sorted queries only from ix
func NewPG(ix Indexes) repokit.Binder[Repo] { return PG{Indexes: ix} }

// Bind wires a Queryer to the repo
func (p PG) Bind(q repokit.Queryer) Repo { return &queries{q: q, ix: p.Indexes} }

// columns maps record fields to typed columns; anything else is read from doc
var columns = map[string]string{
	listing.AttrCategoryID:    "category_id",
	listing.AttrSubCategoryID: "sub_category_id",
	listing.AttrBrandID:       "brand_id",
	listing.AttrModelID:       "model_id",
	listing.AttrStatus:        "status",
	listing.AttrPrice:         "price",
	listing.AttrCreatedAt:     "created_at",
}

// order is a sort expression with its missing value stand in
type order struct {
	expr string
	desc bool
}

func orderFor(q domain.Query) order {
	if q.SortField == listing.AttrPrice {
		if q.SortDesc {
			return order{expr: "coalesce(price, '-Infinity'::float8)", desc: true}
		}
		return order{expr: "coalesce(price, 'Infinity'::float8)"}
	}
	return order{expr: "coalesce(created_at, 'epoch'::timestamptz)", desc: true}
}

// afterValue is the cursor record's sort key in the same terms as orderFor
func afterValue(q domain.Query, r listing.Record) any {
	if q.SortField == listing.AttrPrice {
		if p, ok := r.PriceFloat(); ok {
			return p
		}
		if q.SortDesc {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	if r.CreatedAt.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return r.CreatedAt
}

// builder collects where clauses and positional args
type builder struct {
	where []string
	args  []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *builder) constrain(cs []domain.Constraint) {
	for _, c := range cs {
		var lhs, rhs string
		switch col, typed := columns[c.Field]; {
		case c.Field == listing.AttrPrice:
			lhs = col
			f, _ := c.Value.Float()
			rhs = b.arg(f)
		case c.Field == listing.AttrCreatedAt:
			lhs = col
			f, _ := c.Value.Float()
			rhs = b.arg(ptime.FromMillis(int64(f)))
		case typed:
			lhs = col
			rhs = b.arg(c.Value.Text())
		case c.Op != domain.Eq:
			lhs = "(doc->'attrs'->>" + b.arg(c.Field) + ")::float8"
			f, _ := c.Value.Float()
			rhs = b.arg(f)
		default:
			lhs = "doc->'attrs'->>" + b.arg(c.Field)
			rhs = b.arg(c.Value.Text())
		}
		b.where = append(b.where, lhs+" "+c.Op.String()+" "+rhs)
	}
}

func (b *builder) clause() string {
	if len(b.where) == 0 {
		return ""
	}
	return " where " + strings.Join(b.where, " and ")
}

// Query runs one page. Sorted queries use keyset pagination on the sort
// expression and id; sorted queries no declared index covers are refused
func (r *queries) Query(ctx context.Context, q domain.Query) ([]listing.Record, error) {
	if err := r.ix.Check(q); err != nil {
		return nil, err
	}

	var b builder
	b.constrain(q.Constraints)
	sql := "select doc from listings"
	if q.Sorted {
		o := orderFor(q)
		dir, cmp := "asc", ">"
		if o.desc {
			dir, cmp = "desc", "<"
		}
		if q.After != nil {
			b.where = append(b.where, "("+o.expr+", id) "+cmp+" ("+b.arg(afterValue(q, *q.After))+", "+b.arg(q.After.ID)+")")
		}
		sql += b.clause() + " order by " + o.expr + " " + dir + ", id " + dir
	} else {
		sql += b.clause()
	}
	sql += " limit " + b.arg(max(q.Limit, 1))

	recs, err := store.Many(ctx, r.q, scanDoc, sql, b.args...)
	if err != nil {
		if _, ok := perr.As(err); ok {
			return nil, err
		}
		return nil, perr.FromPostgres(err, "query listings")
	}
	return recs, nil
}

// Count runs count(*) under the same constraints
func (r *queries) Count(ctx context.Context, cs []domain.Constraint) (int, error) {
	var b builder
	b.constrain(cs)
	n, err := store.Scalar[int64](ctx, r.q, "select count(*) from listings"+b.clause(), b.args...)
	if err != nil {
		return 0, perr.FromPostgres(err, "count listings")
	}
	return int(n), nil
}

// Insert upserts documents and reports how many rows changed
func (r *queries) Insert(ctx context.Context, docs []listing.Record) (int, error) {
	const sql = `
insert into listings (id, created_at, price, category_id, sub_category_id, brand_id, model_id, status, doc)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
on conflict (id) do update set
  created_at = excluded.created_at,
  price = excluded.price,
  category_id = excluded.category_id,
  sub_category_id = excluded.sub_category_id,
  brand_id = excluded.brand_id,
  model_id = excluded.model_id,
  status = excluded.status,
  doc = excluded.doc`

	n := 0
	for _, d := range docs {
		if d.ID == "" {
			return n, perr.InvalidArgf("listing without id")
		}
		raw, err := json.Marshal(d)
		if err != nil {
			return n, perr.Wrap(err, perr.ErrorCodeJSON, "encode listing "+d.ID)
		}
		var price any
		if p, ok := d.PriceFloat(); ok {
			price = p
		}
		var created any
		if !d.CreatedAt.IsZero() {
			created = d.CreatedAt
		}
		tag, err := store.Exec(ctx, r.q, sql, d.ID, created, price,
			text(d, listing.AttrCategoryID), text(d, listing.AttrSubCategoryID),
			text(d, listing.AttrBrandID), text(d, listing.AttrModelID),
			text(d, listing.AttrStatus), raw)
		if err != nil {
			return n, perr.FromPostgres(err, "upsert listing "+d.ID)
		}
		n += int(tag.RowsAffected())
	}
	return n, nil
}

// text is an attribute as a nullable column value
func text(d listing.Record, attr string) any { return str.SQLNull(d.Attr(attr).Text()) }

func scanDoc(row store.Row) (listing.Record, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return listing.Record{}, err
	}
	var rec listing.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return listing.Record{}, perr.Wrap(err, perr.ErrorCodeJSON, "decode listing doc")
	}
	return rec, nil
}
