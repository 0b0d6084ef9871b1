package backfill

import (
	"errors"
	"testing"
)

func TestEvaluate_Conditions(t *testing.T) {
	cases := []struct {
		name string
		in   Inputs
		want bool
	}{
		{"empty cache", Inputs{ViewSize: 24}, true},
		{"view larger than cache", Inputs{ViewSize: 200, Loaded: 60, Matched: 60}, true},
		{"filters thinned the page", Inputs{ViewSize: 24, Loaded: 60, Matched: 10}, true},
		{"satisfied", Inputs{ViewSize: 24, Loaded: 60, Matched: 30}, false},
		{"exactly satisfied", Inputs{ViewSize: 24, Loaded: 24, Matched: 24}, false},
		{"exhausted", Inputs{ViewSize: 200, Loaded: 60, Matched: 60, Exhausted: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c Controller
			if _, got := c.Evaluate(tc.in); got != tc.want {
				t.Fatalf("start = %v want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluate_OneInFlight(t *testing.T) {
	var c Controller
	in := Inputs{ViewSize: 24}
	gen, ok := c.Evaluate(in)
	if !ok || c.State() != Fetching {
		t.Fatal("first evaluate should start")
	}
	if _, again := c.Evaluate(in); again {
		t.Fatal("re-entrant evaluate must be a no-op")
	}
	if !c.Succeed(gen) || c.State() != Idle {
		t.Fatal("succeed should return to idle")
	}
	if c.Succeed(gen) {
		t.Fatal("double succeed")
	}
	if c.Fetches() != 1 {
		t.Fatalf("fetches = %d", c.Fetches())
	}
}

func TestFail_AllowsRetry(t *testing.T) {
	var c Controller
	boom := errors.New("unavailable")
	gen, _ := c.Evaluate(Inputs{ViewSize: 24})
	if !c.Fail(gen, boom) || c.State() != Failed || c.Err() != boom {
		t.Fatalf("state = %s err = %v", c.State(), c.Err())
	}
	gen2, ok := c.Evaluate(Inputs{ViewSize: 24})
	if !ok || gen2 != gen {
		t.Fatal("failed controller should retry on the next trigger")
	}
	if c.Err() != nil {
		t.Fatal("retry clears the error")
	}
}

func TestReset_DropsStaleResults(t *testing.T) {
	var c Controller
	old, _ := c.Evaluate(Inputs{ViewSize: 24})
	c.Reset()
	if c.Generation() == old {
		t.Fatal("reset must bump the generation")
	}
	if c.Succeed(old) || c.Fail(old, errors.New("late")) {
		t.Fatal("stale completions must be rejected")
	}
	if c.State() != Idle || c.Fetches() != 0 {
		t.Fatalf("state = %s fetches = %d", c.State(), c.Fetches())
	}
	fresh, ok := c.Evaluate(Inputs{ViewSize: 24})
	if !ok || !c.Succeed(fresh) {
		t.Fatal("new generation should fetch normally")
	}
}

// with N records behind a page size P the controller stops after floor(N/P)+1 fetches
func TestTermination(t *testing.T) {
	for _, tc := range []struct{ n, p int }{{145, 60}, {120, 60}, {0, 60}, {1, 1}, {59, 60}} {
		var c Controller
		loaded, exhausted := 0, false
		for i := 0; i < 1000; i++ {
			gen, ok := c.Evaluate(Inputs{ViewSize: 1 << 20, Loaded: loaded, Matched: loaded, Exhausted: exhausted})
			if !ok {
				break
			}
			got := min(tc.p, tc.n-loaded)
			loaded += got
			exhausted = got < tc.p
			c.Succeed(gen)
		}
		// a full last page needs one empty page to prove the end
		limit := tc.n/tc.p + 1
		if !exhausted || c.Fetches() > limit {
			t.Fatalf("n=%d p=%d: fetches %d limit %d exhausted %v", tc.n, tc.p, c.Fetches(), limit, exhausted)
		}
	}
}
