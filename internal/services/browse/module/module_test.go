package module

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"showroom/internal/core/listing"
	"showroom/internal/modkit"
	"showroom/internal/modkit/httpkit"
	"showroom/internal/platform/config"
	phttp "showroom/internal/platform/net/http"
	"showroom/internal/platform/store"
	"showroom/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

type noRows struct{}

func (noRows) Next() bool        { return false }
func (noRows) Scan(...any) error { return nil }
func (noRows) Err() error        { return nil }
func (noRows) Close()            {}

type zeroRow struct{}

func (zeroRow) Scan(dest ...any) error { *(dest[0].(*int64)) = 0; return nil }

type emptyPG struct{ queries int }

func (p *emptyPG) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (p *emptyPG) Query(context.Context, string, ...any) (store.Rows, error) {
	p.queries++
	return noRows{}, nil
}
func (p *emptyPG) QueryRow(context.Context, string, ...any) store.Row { return zeroRow{} }
func (p *emptyPG) Tx(ctx context.Context, fn func(store.RowQuerier) error) error {
	return fn(p)
}

func TestFromConfig_Defaults(t *testing.T) {
	o := FromConfig(config.New())
	if o.Service.PageSize != 60 || o.Service.ViewStep != 24 || o.Service.DefaultViewSize != 24 {
		t.Fatalf("service options = %+v", o.Service)
	}
	if o.Service.Debounce != 300*time.Millisecond || o.Service.RemotePrice {
		t.Fatalf("debounce=%v remotePrice=%v", o.Service.Debounce, o.Service.RemotePrice)
	}
	if o.Counts != CountsPG || o.SessionTTL != 15*time.Minute || len(o.Indexes) != 2 {
		t.Fatalf("options = %+v", o)
	}
}

func TestFromConfig_Overrides(t *testing.T) {
	t.Setenv("CORE_BROWSE_PAGE_SIZE", "40")
	t.Setenv("CORE_BROWSE_REMOTE_PRICE", "true")
	t.Setenv("CORE_BROWSE_COUNTS", "CH")
	t.Setenv("CORE_BROWSE_INDEXES", "categoryId:price")
	t.Setenv("CORE_BROWSE_SESSION_TTL", "2m")

	o := FromConfig(config.New())
	if o.Service.PageSize != 40 || !o.Service.RemotePrice {
		t.Fatalf("service options = %+v", o.Service)
	}
	if o.Counts != CountsCH || o.SessionTTL != 2*time.Minute {
		t.Fatalf("counts=%s ttl=%v", o.Counts, o.SessionTTL)
	}
	if len(o.Indexes) != 1 || o.Indexes[0].Sort != listing.AttrPrice {
		t.Fatalf("indexes = %v", o.Indexes)
	}
}

func TestFromConfig_BadIndexesPanics(t *testing.T) {
	t.Setenv("CORE_BROWSE_INDEXES", "categoryId")
	testkit.MustPanic(t, func() { FromConfig(config.New()) })
}

func TestModule_MountsBrowse(t *testing.T) {
	pg := &emptyPG{}
	m := NewWith(modkit.Deps{PG: pg, Cfg: config.New()}, FromConfig(config.New()))
	if m.Name() != "browse" || m.b.Prefix != "/browse" {
		t.Fatalf("name=%s prefix=%s", m.Name(), m.b.Prefix)
	}
	ports, ok := m.Ports().(Ports)
	if !ok || ports.Browse == nil || ports.Sessions.Len() != 0 {
		t.Fatalf("ports = %#v", m.Ports())
	}

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/browse/watches?view=list", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Page httpkit.Page `json:"page"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Page.Loaded != 0 || env.Page.HasMore || env.Page.Size != 24 {
		t.Fatalf("page = %+v", env.Page)
	}
	if pg.queries == 0 {
		t.Fatal("store never queried")
	}
}

func TestModule_RunClosesSessions(t *testing.T) {
	m := NewWith(modkit.Deps{PG: &emptyPG{}, Cfg: config.New()}, FromConfig(config.New()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
}

type sevenRow struct{}

func (sevenRow) Scan(dest ...any) error { *(dest[0].(*int64)) = 7; return nil }

type countingPG struct {
	emptyPG
	counts int
}

func (p *countingPG) QueryRow(context.Context, string, ...any) store.Row {
	p.counts++
	return sevenRow{}
}

type refusingCH struct{ queries int }

func (c *refusingCH) Insert(context.Context, string, [][]any) error { return nil }
func (c *refusingCH) Query(context.Context, string, ...any) (store.Rows, error) {
	c.queries++
	return noRows{}, nil
}
func (c *refusingCH) Exec(context.Context, string, ...any) error { return nil }
func (c *refusingCH) Close() error                               { return nil }

func TestModule_CHCountsFallBackOnPriceBounds(t *testing.T) {
	t.Setenv("CORE_BROWSE_COUNTS", "ch")
	t.Setenv("CORE_BROWSE_REMOTE_PRICE", "true")
	pg, ch := &countingPG{}, &refusingCH{}
	m := NewWith(modkit.Deps{PG: pg, CH: ch, Cfg: config.New()}, FromConfig(config.New()))

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/browse/watches?min=100", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Page httpkit.Page `json:"page"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Page.Total == nil || *env.Page.Total != 7 {
		t.Fatalf("total = %v", env.Page.Total)
	}
	if pg.counts != 1 || ch.queries != 0 {
		t.Fatalf("pg counts=%d ch queries=%d", pg.counts, ch.queries)
	}
}
