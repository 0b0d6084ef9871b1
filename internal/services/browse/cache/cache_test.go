package cache

import (
	"math/rand"
	"slices"
	"strconv"
	"testing"

	"showroom/internal/core/listing"
	"showroom/internal/services/browse/domain"
)

func page(ids ...string) []listing.Record {
	out := make([]listing.Record, len(ids))
	for i, id := range ids {
		out[i] = listing.Record{ID: id, Attrs: map[string]listing.Value{"title": listing.String("v" + strconv.Itoa(i))}}
	}
	return out
}

func TestAbsorb_FirstSeenWins(t *testing.T) {
	c := New()
	if n := c.Absorb(page("a", "b", "c")); n != 3 {
		t.Fatalf("new = %d", n)
	}
	// page boundary shifted: b and c come back with different payloads
	shifted := page("b", "c", "d")
	shifted[0].Attrs["title"] = listing.String("changed")
	if n := c.Absorb(shifted); n != 1 {
		t.Fatalf("new = %d, want 1", n)
	}
	all := c.All()
	if got := []string{all[0].ID, all[1].ID, all[2].ID, all[3].ID}; !slices.Equal(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("order = %v", got)
	}
	if all[1].Attr("title").Text() != "v1" {
		t.Fatal("duplicate overwrote the first copy")
	}
}

func TestAbsorb_DistinctCountAnyOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 20; trial++ {
		var pages [][]listing.Record
		distinct := map[string]bool{}
		var firstSeen []string
		for p := 0; p < 6; p++ {
			var ids []string
			for i := 0; i < 10; i++ {
				id := strconv.Itoa(rng.Intn(30))
				ids = append(ids, id)
			}
			pages = append(pages, page(ids...))
		}
		rng.Shuffle(len(pages), func(i, j int) { pages[i], pages[j] = pages[j], pages[i] })
		for _, pg := range pages {
			for _, r := range pg {
				if !distinct[r.ID] {
					distinct[r.ID] = true
					firstSeen = append(firstSeen, r.ID)
				}
			}
		}

		c := New()
		total := 0
		prev := 0
		for _, pg := range pages {
			total += c.Absorb(pg)
			if c.Len() < prev {
				t.Fatal("working set shrank")
			}
			prev = c.Len()
		}
		if total != len(distinct) || c.Len() != len(distinct) {
			t.Fatalf("len %d total %d, want %d", c.Len(), total, len(distinct))
		}
		got := make([]string, 0, c.Len())
		for _, r := range c.All() {
			got = append(got, r.ID)
		}
		if !slices.Equal(got, firstSeen) {
			t.Fatalf("order %v want %v", got, firstSeen)
		}
	}
}

func TestAdvanceAndReset(t *testing.T) {
	c := New()
	c.Absorb(page("a"))
	c.Advance(domain.CursorAfter(listing.Record{ID: "a"}), true)
	c.Advance(domain.CursorAfter(listing.Record{ID: "b"}), false)
	if !c.Exhausted() {
		t.Fatal("exhaustion must be sticky")
	}
	if last, _ := c.Cursor().Last(); last.ID != "b" {
		t.Fatalf("cursor = %q", last.ID)
	}

	c.Reset()
	if c.Len() != 0 || c.Exhausted() || !c.Cursor().IsStart() || len(c.All()) != 0 {
		t.Fatal("reset left state behind")
	}
	if n := c.Absorb(page("a")); n != 1 {
		t.Fatal("ids are forgotten after reset")
	}
}

func TestAll_ClippedSlice(t *testing.T) {
	c := New()
	c.Absorb(page("a", "b"))
	all := c.All()
	_ = append(all, listing.Record{ID: "x"})
	c.Absorb(page("c"))
	if c.All()[2].ID != "c" {
		t.Fatal("caller append leaked into the cache")
	}
}
