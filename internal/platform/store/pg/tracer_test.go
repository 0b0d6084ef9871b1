package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"select 1", "select 1"},
		{"  select   1  ", "select 1"},
		{"SELECT\t*\nFROM\r\tlistings WHERE  a =  1", "SELECT * FROM listings WHERE a = 1"},
		{"", ""},
	}
	for i, c := range cases {
		if got := compact(c.in); got != c.want {
			t.Fatalf("case %d: compact(%q) = %q, want %q", i, c.in, got, c.want)
		}
	}
}

func TestQueryEvent_Kind(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"SELECT id FROM listings":          "select",
		"  with x as (select 1) select 1":  "select",
		"INSERT INTO listings VALUES ($1)": "insert",
		"update listings set price = 1":    "update",
		"DELETE FROM listings":             "delete",
		"CREATE INDEX x ON listings (id)":  "other",
		"   ":                              "unknown",
	}
	for sql, want := range cases {
		if got := (QueryEvent{SQL: sql}).Kind(); got != want {
			t.Fatalf("Kind(%q) = %q, want %q", sql, got, want)
		}
	}
}

type countTracer struct{ n int }

func (c *countTracer) OnQuery(context.Context, QueryEvent) { c.n++ }

func TestMulti_SkipsNilAndFansOut(t *testing.T) {
	t.Parallel()

	a, b := &countTracer{}, &countTracer{}
	m := Multi(a, nil, b, Metrics())
	m.OnQuery(context.Background(), QueryEvent{SQL: "select 1", ElapsedUS: 10})
	if a.n != 1 || b.n != 1 {
		t.Fatalf("fan out counts a=%d b=%d", a.n, b.n)
	}
}

func TestTracer_InfoAndWarn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf))

	type logLine struct {
		Level     string  `json:"level"`
		ElapsedMS float64 `json:"elapsed_ms"`
		Slow      bool    `json:"slow"`
		Kind      string  `json:"kind"`
		SQL       string  `json:"sql"`
		Args      []any   `json:"args"`
		Error     string  `json:"error"`
		Message   string  `json:"message"`
		Component string  `json:"component"`
	}

	ev := QueryEvent{
		SQL:       "SELECT  * \n FROM  listings\tWHERE id = $1",
		Args:      []any{1, "two"},
		ElapsedUS: 12345,
		Err:       errors.New("boom"),
	}
	tr.OnQuery(context.Background(), ev)

	var line logLine
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("unmarshal info log: %v\nraw=%s", err, buf.String())
	}
	if line.Level != "info" || line.Slow || line.Kind != "select" || line.Component != "pg" {
		t.Fatalf("unexpected line %+v", line)
	}
	if math.Abs(line.ElapsedMS-12.345) > 0.0005 {
		t.Fatalf("elapsed_ms = %v", line.ElapsedMS)
	}
	if line.SQL != "SELECT * FROM listings WHERE id = $1" || len(line.Args) != 2 || line.Error != "boom" {
		t.Fatalf("unexpected payload %+v", line)
	}

	buf.Reset()
	ev.Slow = true
	tr.OnQuery(context.Background(), ev)
	line = logLine{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("unmarshal warn log: %v", err)
	}
	if line.Level != "warn" || !line.Slow {
		t.Fatalf("expected slow warn line, got %+v", line)
	}
}
