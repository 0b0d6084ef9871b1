package urlstate

import (
	"errors"
	"math/rand"
	"net/url"
	"testing"

	"showroom/internal/core/filter"
	"showroom/internal/core/listing"
	"showroom/internal/core/sorting"
	"showroom/internal/services/browse/domain"
)

func codec(t *testing.T) Codec {
	t.Helper()
	c, err := NewCodec(filter.DefaultSchema(), 24, 480)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewCodec_RejectsBadSchema(t *testing.T) {
	bad := filter.Schema{Fields: []filter.Field{{Key: "q", Attr: "x", Kind: filter.Flag}}}
	if _, err := NewCodec(bad, 24, 480); err == nil {
		t.Fatal("reserved key accepted")
	}
}

func TestHydrate_ValidValues(t *testing.T) {
	c := codec(t)
	st := c.Parse("q=seiko+5&sort=priceDesc&view=list&size=96&min=1.500+TL&max=9000&year_min=2019&condition=like-new&tradable=yes&shipping=no")
	if st.Filters.Query != "seiko 5" || st.Sort != sorting.PriceDesc || st.View != domain.List || st.Size != 96 {
		t.Fatalf("state = %+v", st)
	}
	p := st.Filters.Ranges["price"]
	if p.Min == nil || *p.Min != 1500 || p.Max == nil || *p.Max != 9000 {
		t.Fatalf("price = %+v", p)
	}
	if y := st.Filters.Ranges["year"]; y.Min == nil || *y.Min != 2019 || y.Max != nil {
		t.Fatalf("year = %+v", y)
	}
	if st.Filters.Enums["condition"] != "like-new" {
		t.Fatalf("enums = %v", st.Filters.Enums)
	}
	if st.Filters.Flags["tradable"] != listing.True || st.Filters.Flags["shipping"] != listing.False {
		t.Fatalf("flags = %v", st.Filters.Flags)
	}
}

func TestHydrate_DropsInvalid(t *testing.T) {
	c := codec(t)
	st := c.Parse("sort=cheapest&view=table&size=abc&min=free&condition=mint&tradable=maybe&movement=AUTOMATIC&utm_source=x&gender=")
	if !st.Filters.IsZero() {
		t.Fatalf("filters = %+v", st.Filters)
	}
	if st.Sort != sorting.Default || st.View != domain.Grid || st.Size != 24 {
		t.Fatalf("state = %+v", st)
	}
}

func TestHydrate_SanitizesQuery(t *testing.T) {
	c := codec(t)
	if got := c.Parse("q=sei%01ko%7F").Filters.Query; got != "seiko" {
		t.Fatalf("query = %q", got)
	}
}

func TestHydrate_SizeClamped(t *testing.T) {
	c := codec(t)
	if got := c.Parse("size=100000").Size; got != 480 {
		t.Fatalf("size = %d", got)
	}
	if got := c.Parse("size=0").Size; got != 24 {
		t.Fatalf("size = %d", got)
	}
	if got := c.Parse("size=9999999999999").Size; got != 24 {
		t.Fatalf("overlong size = %d", got)
	}
}

func TestParse_Malformed(t *testing.T) {
	c := codec(t)
	got := c.Parse("%zz=1&sort=priceAsc&min=%")
	if got.Sort != sorting.PriceAsc {
		t.Fatalf("good pair lost: %+v", got)
	}
	if _, ok := got.Filters.Ranges["price"]; ok {
		t.Fatalf("malformed pair hydrated: %+v", got.Filters)
	}
}

func TestSerialize_DefaultsOmittedSorted(t *testing.T) {
	c := codec(t)
	if got := c.Serialize(c.Default()); got != "" {
		t.Fatalf("defaults serialize to %q", got)
	}
	st := c.Default()
	st.Sort = sorting.PriceAsc
	st.Filters = st.Filters.WithRange("price", filter.AtMost(500)).WithFlag("shipping", listing.True).WithEnum("condition", "new")
	if got := c.Serialize(st); got != "condition=new&max=500&shipping=yes&sort=priceAsc" {
		t.Fatalf("Serialize() = %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	c := codec(t)
	s := filter.DefaultSchema()
	rng := rand.New(rand.NewSource(5))
	queries := []string{"", "seiko", "çanta özel", "g-shock & co"}
	for i := 0; i < 200; i++ {
		st := c.Default()
		st.Filters.Query = queries[rng.Intn(len(queries))]
		st.Sort = sorting.Modes()[rng.Intn(3)]
		st.View = domain.ViewModes()[rng.Intn(2)]
		st.Size = 1 + rng.Intn(c.MaxSize())
		for _, f := range s.Fields {
			switch f.Kind {
			case filter.Range:
				var b filter.Bound
				if rng.Intn(2) == 0 {
					lo := float64(rng.Intn(5000))
					b.Min = &lo
				}
				if rng.Intn(2) == 0 {
					hi := float64(rng.Intn(5000))
					b.Max = &hi
				}
				st.Filters = st.Filters.WithRange(f.Key, b)
			case filter.Enum:
				if rng.Intn(2) == 0 {
					st.Filters = st.Filters.WithEnum(f.Key, f.Allowed[rng.Intn(len(f.Allowed))])
				}
			case filter.Flag:
				st.Filters = st.Filters.WithFlag(f.Key, []listing.Tri{listing.Unknown, listing.True, listing.False}[rng.Intn(3)])
			}
		}
		back := c.Parse(c.Serialize(st))
		if back.Sort != st.Sort || back.View != st.View || back.Size != st.Size || !back.Filters.Equal(st.Filters) {
			t.Fatalf("round trip\n in  %+v\n out %+v\n via %q", st, back, c.Serialize(st))
		}
	}
}

type recNav struct {
	calls []string
	err   error
}

func (n *recNav) Replace(path, query string) error {
	if n.err != nil {
		return n.err
	}
	n.calls = append(n.calls, path+"?"+query)
	return nil
}

func TestSync_Lifecycle(t *testing.T) {
	c := codec(t)
	nav := &recNav{}
	s := NewSync(c, nav)

	var hydrated State
	pushedDuring := true
	ran := s.Hydrate("watches", url.Values{"sort": {"priceAsc"}}, func(st State) {
		hydrated = st
		pushedDuring, _ = s.Push("/browse/watches", st)
		if s.Phase() != Hydrating {
			t.Fatalf("phase during apply = %s", s.Phase())
		}
	})
	if !ran || hydrated.Sort != sorting.PriceAsc || pushedDuring {
		t.Fatalf("ran=%v sort=%s pushedDuring=%v", ran, hydrated.Sort, pushedDuring)
	}
	if s.Phase() != Ready {
		t.Fatalf("phase = %s", s.Phase())
	}

	// same key: no second hydration
	if s.Hydrate("watches", url.Values{"sort": {"priceDesc"}}, func(State) { t.Fatal("hydrated twice") }) {
		t.Fatal("hydration should run once per key")
	}

	// unchanged state: no replace
	if ok, _ := s.Push("/browse/watches", hydrated); ok || len(nav.calls) != 0 {
		t.Fatalf("idempotent push replaced: %v", nav.calls)
	}

	next := hydrated
	next.Size = 48
	if ok, err := s.Push("/browse/watches", next); !ok || err != nil {
		t.Fatalf("push = %v, %v", ok, err)
	}
	if ok, _ := s.Push("/browse/watches", next); ok {
		t.Fatal("second identical push replaced")
	}
	if len(nav.calls) != 1 || nav.calls[0] != "/browse/watches?size=48&sort=priceAsc" {
		t.Fatalf("calls = %v", nav.calls)
	}

	// new key resets and hydrates again
	if !s.Hydrate("bags", url.Values{}, func(State) {}) || s.Key() != "bags" || s.Last() != "" {
		t.Fatalf("key change did not reset: key=%s last=%q", s.Key(), s.Last())
	}

	s.Close()
	if ok, _ := s.Push("/browse/bags", next); ok || s.Phase() != Idle {
		t.Fatal("closed sync pushed")
	}
	if s.Hydrate("bags", url.Values{}, func(State) {}) {
		t.Fatal("closed sync hydrated")
	}
}

func TestSync_CanonicalizesIncomingURL(t *testing.T) {
	c := codec(t)
	nav := &recNav{}
	s := NewSync(c, nav)
	var st State
	s.Hydrate("watches", url.Values{"sort": {"nope"}, "utm": {"x"}}, func(h State) { st = h })
	if ok, _ := s.Push("/browse/watches", st); !ok || nav.calls[0] != "/browse/watches?" {
		t.Fatalf("calls = %v", nav.calls)
	}
}

func TestSync_NavigatorErrorRetries(t *testing.T) {
	c := codec(t)
	nav := &recNav{err: errors.New("history locked")}
	s := NewSync(c, nav)
	s.Hydrate("watches", nil, func(State) {})
	st := c.Default()
	st.Size = 48
	if _, err := s.Push("/browse/watches", st); err == nil {
		t.Fatal("navigator error swallowed")
	}
	nav.err = nil
	if ok, _ := s.Push("/browse/watches", st); !ok {
		t.Fatal("failed push should be retried")
	}
}

func TestNormalize_BoundsSurviveReload(t *testing.T) {
	c := codec(t)
	st := c.Default()
	st.Filters = c.Normalize(st.Filters.
		WithRange("price", filter.Between(1.5, 1e15)).
		WithRange("year", filter.AtLeast(-5)))

	p, y := st.Filters.Ranges["price"], st.Filters.Ranges["year"]
	if p.Min == nil || *p.Min != 1 || p.Max != nil {
		t.Fatalf("price bound = %+v", p)
	}
	if y.Min == nil || *y.Min != 0 {
		t.Fatalf("year bound = %+v", y)
	}
	got := c.Parse(c.Serialize(st))
	if !got.Filters.Equal(st.Filters) {
		t.Fatalf("reload %+v, want %+v", got.Filters, st.Filters)
	}
}

func TestSerialize_WritesWholeBounds(t *testing.T) {
	c := codec(t)
	st := c.Default()
	st.Filters = st.Filters.WithRange("price", filter.Between(-5, 99.9))
	if got := c.Serialize(st); got != "max=99&min=0" {
		t.Fatalf("Serialize() = %q", got)
	}
}
