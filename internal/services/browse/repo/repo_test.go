package repo

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"showroom/internal/core/listing"
	perr "showroom/internal/platform/errors"
	"showroom/internal/platform/store"
	"showroom/internal/platform/testkit"
	"showroom/internal/services/browse/domain"
)

type tag int64

func (t tag) String() string      { return "INSERT 0 1" }
func (t tag) RowsAffected() int64 { return int64(t) }

// docRows yields encoded listing documents
type docRows struct {
	docs [][]byte
	i    int
}

func (r *docRows) Next() bool             { r.i++; return r.i <= len(r.docs) }
func (r *docRows) Scan(dest ...any) error { *(dest[0].(*[]byte)) = r.docs[r.i-1]; return nil }
func (r *docRows) Err() error             { return nil }
func (r *docRows) Close()                 {}

type countRow struct{ n int64 }

func (r countRow) Scan(dest ...any) error { *(dest[0].(*int64)) = r.n; return nil }

type fakeQ struct {
	sqls  []string
	args  [][]any
	docs  [][]byte
	err   error
	count int64
}

func (f *fakeQ) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.sqls, f.args = append(f.sqls, sql), append(f.args, args)
	return tag(1), f.err
}

func (f *fakeQ) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.sqls, f.args = append(f.sqls, sql), append(f.args, args)
	if f.err != nil {
		return nil, f.err
	}
	return &docRows{docs: f.docs}, nil
}

func (f *fakeQ) QueryRow(_ context.Context, sql string, args ...any) store.Row {
	f.sqls, f.args = append(f.sqls, sql), append(f.args, args)
	return countRow{n: f.count}
}

func category(id string) domain.Constraint {
	return domain.Equal(listing.AttrCategoryID, listing.String(id))
}

func doc(t *testing.T, r listing.Record) []byte {
	t.Helper()
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestParseIndexes(t *testing.T) {
	ix, err := ParseIndexes(" brandId+categoryId:createdAt , categoryId:price,")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ix) != 2 || ix[0].String() != "brandId+categoryId:createdAt" || ix[1].String() != "categoryId:price" {
		t.Fatalf("indexes = %v", ix)
	}
	for _, bad := range []string{"categoryId", ":createdAt", "categoryId:"} {
		if _, err := ParseIndexes(bad); err == nil {
			t.Fatalf("%q should not parse", bad)
		}
	}
}

func TestIndexes_Check(t *testing.T) {
	ix := DefaultIndexes()
	sorted := func(sort string, cs ...domain.Constraint) domain.Query {
		return domain.Query{Constraints: cs, SortField: sort, Sorted: true, Limit: 60}
	}
	brand := domain.Equal(listing.AttrBrandID, listing.String("seiko"))
	sub := domain.Equal(listing.AttrSubCategoryID, listing.String("dive"))
	minPrice := domain.Constraint{Field: listing.AttrPrice, Op: domain.Gte, Value: listing.Number(100)}

	cases := []struct {
		name string
		q    domain.Query
		ok   bool
	}{
		{"unconstrained", sorted(listing.AttrCreatedAt), true},
		{"category", sorted(listing.AttrCreatedAt, category("watches")), true},
		{"category brand", sorted(listing.AttrCreatedAt, brand, category("watches")), true},
		{"category sub", sorted(listing.AttrCreatedAt, category("watches"), sub), false},
		{"price range on price sort", sorted(listing.AttrPrice, minPrice), true},
		{"category on price sort", sorted(listing.AttrPrice, category("watches")), false},
		{"unsorted never refused", domain.Query{Constraints: []domain.Constraint{category("watches"), sub}}, true},
	}
	for _, tc := range cases {
		err := ix.Check(tc.q)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected %v", tc.name, err)
		}
		if !tc.ok && !perr.IsCode(err, perr.ErrorCodeIndexMissing) {
			t.Fatalf("%s: want index missing, got %v", tc.name, err)
		}
	}
}

func TestQuery_KeysetNewest(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	want := listing.Record{ID: "l-2", CreatedAt: at, Price: listing.Number(250)}
	q := &fakeQ{docs: [][]byte{doc(t, want)}}
	r := NewPG(DefaultIndexes()).Bind(q)

	after := listing.Record{ID: "l-1", CreatedAt: at.Add(time.Hour)}
	got, err := r.Query(context.Background(), domain.Query{
		Constraints: []domain.Constraint{category("watches")},
		SortField:   listing.AttrCreatedAt, SortDesc: true, Sorted: true,
		Limit: 60, After: &after,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].ID != "l-2" || !got[0].CreatedAt.Equal(at) {
		t.Fatalf("records = %+v", got)
	}

	sql, args := q.sqls[0], q.args[0]
	testkit.MustContain(t, sql, "category_id = $1")
	testkit.MustContain(t, sql, "(coalesce(created_at, 'epoch'::timestamptz), id) < ($2, $3)")
	testkit.MustContain(t, sql, "order by coalesce(created_at, 'epoch'::timestamptz) desc, id desc")
	testkit.MustContain(t, sql, "limit $4")
	if args[0] != "watches" || args[2] != "l-1" || args[3] != 60 {
		t.Fatalf("args = %v", args)
	}
	if ts, ok := args[1].(time.Time); !ok || !ts.Equal(after.CreatedAt) {
		t.Fatalf("cursor arg = %v", args[1])
	}
}

func TestQuery_PriceCursorForMissingPrice(t *testing.T) {
	q := &fakeQ{}
	r := NewPG(nil).Bind(q)

	after := listing.Record{ID: "l-9"}
	if _, err := r.Query(context.Background(), domain.Query{
		SortField: listing.AttrPrice, Sorted: true, Limit: 60, After: &after,
	}); err != nil {
		t.Fatalf("query: %v", err)
	}
	testkit.MustContain(t, q.sqls[0], "(coalesce(price, 'Infinity'::float8), id) > ($1, $2)")
	testkit.MustContain(t, q.sqls[0], "id asc")
	if f, ok := q.args[0][0].(float64); !ok || !math.IsInf(f, 1) {
		t.Fatalf("missing price should sort last, got %v", q.args[0][0])
	}

	q = &fakeQ{}
	if _, err := NewPG(nil).Bind(q).Query(context.Background(), domain.Query{
		SortField: listing.AttrPrice, SortDesc: true, Sorted: true, Limit: 60, After: &after,
	}); err != nil {
		t.Fatalf("query: %v", err)
	}
	testkit.MustContain(t, q.sqls[0], "coalesce(price, '-Infinity'::float8)")
	if f, _ := q.args[0][0].(float64); !math.IsInf(f, -1) {
		t.Fatalf("descending cursor = %v", q.args[0][0])
	}
}

func TestQuery_UnsortedAndAttrConstraints(t *testing.T) {
	q := &fakeQ{}
	r := NewPG(nil).Bind(q)
	_, err := r.Query(context.Background(), domain.Query{
		Constraints: []domain.Constraint{
			category("watches"),
			domain.Equal("gender", listing.String("women")),
			{Field: "year", Op: domain.Gte, Value: listing.Number(1990)},
		},
		Limit: 500,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	sql := q.sqls[0]
	if strings.Contains(sql, "order by") {
		t.Fatalf("unsorted query ordered: %s", sql)
	}
	testkit.MustContain(t, sql, "doc->'attrs'->>$2 = $3")
	testkit.MustContain(t, sql, "(doc->'attrs'->>$4)::float8 >= $5")
	if q.args[0][1] != "gender" || q.args[0][4] != 1990.0 {
		t.Fatalf("args = %v", q.args[0])
	}
}

func TestQuery_MissingIndexSkipsDatabase(t *testing.T) {
	q := &fakeQ{}
	_, err := NewPG(DefaultIndexes()).Bind(q).Query(context.Background(), domain.Query{
		Constraints: []domain.Constraint{category("watches"), domain.Equal(listing.AttrModelID, listing.String("skx007"))},
		SortField:   listing.AttrCreatedAt, SortDesc: true, Sorted: true, Limit: 60,
	})
	if !perr.IsCode(err, perr.ErrorCodeIndexMissing) {
		t.Fatalf("want index missing, got %v", err)
	}
	if len(q.sqls) != 0 {
		t.Fatalf("database touched: %v", q.sqls)
	}
}

func TestQuery_WrapsDriverErrors(t *testing.T) {
	boom := errors.New("conn reset")
	_, err := NewPG(nil).Bind(&fakeQ{err: boom}).Query(context.Background(), domain.Query{Limit: 1})
	if !errors.Is(err, boom) || perr.CodeOf(err) == perr.ErrorCodeUnknown {
		t.Fatalf("err = %v", err)
	}
}

func TestCount(t *testing.T) {
	q := &fakeQ{count: 145}
	n, err := NewPG(nil).Bind(q).Count(context.Background(), []domain.Constraint{category("watches")})
	if err != nil || n != 145 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	testkit.MustContain(t, q.sqls[0], "select count(*) from listings where category_id = $1")
}

func TestInsert(t *testing.T) {
	q := &fakeQ{}
	recs := []listing.Record{
		{ID: "l-1", Price: listing.Number(100), Attrs: map[string]listing.Value{listing.AttrCategoryID: listing.String("watches")}},
		{ID: "l-2", Price: listing.String("ask")},
	}
	n, err := NewPG(nil).Bind(q).Insert(context.Background(), recs)
	if err != nil || n != 2 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	first, second := q.args[0], q.args[1]
	if first[2] != 100.0 || first[3] != "watches" || first[1] != nil {
		t.Fatalf("first args = %v", first)
	}
	if second[2] != nil || second[3] != nil {
		t.Fatalf("non numeric price and missing category should be NULL: %v", second)
	}

	if _, err := NewPG(nil).Bind(q).Insert(context.Background(), []listing.Record{{}}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument for missing id, got %v", err)
	}
}

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@db:5432/showroom":   "pgx5://u:p@db:5432/showroom",
		"postgresql://u:p@db:5432/showroom": "pgx5://u:p@db:5432/showroom",
		"pgx5://db/showroom":                "pgx5://db/showroom",
	}
	for in, want := range cases {
		if got := migrateURL(in); got != want {
			t.Fatalf("migrateURL(%q) = %q", in, got)
		}
	}
}

func TestMigrations_Embedded(t *testing.T) {
	b, err := migrations.ReadFile("migrations/000001_listings.up.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	testkit.MustContain(t, string(b), "create table if not exists listings")
}
