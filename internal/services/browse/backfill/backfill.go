// Package backfill decides when the engine fetches another page on its own
package backfill

// State is the controller phase
type State uint8

const (
	// Idle means no fetch is running
	Idle State = iota
	// Fetching means one fetch is in flight
	Fetching
	// Failed means the last fetch was rejected; the next trigger may retry
	Failed
)

func (s State) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Inputs are the observations a decision is made on
type Inputs struct {
	ViewSize  int
	Loaded    int
	Matched   int
	Exhausted bool
}

// Want reports whether the view is short of records
func (in Inputs) Want() bool { return in.ViewSize > in.Loaded || in.Matched < in.ViewSize }

// Controller allows at most one fetch in flight per query key. Every fetch
// is tagged with the generation current when it started; Reset bumps the
// generation so late results of an old key are ignored. Not safe for
// concurrent use
type Controller struct {
	state   State
	gen     uint64
	err     error
	fetches int
}

// Evaluate starts a fetch when the view wants more records, more exist and
// none is in flight. The returned generation tags the fetch
func (c *Controller) Evaluate(in Inputs) (gen uint64, start bool) {
	if c.state == Fetching || in.Exhausted || !in.Want() {
		return c.gen, false
	}
	c.state = Fetching
	c.err = nil
	c.fetches++
	return c.gen, true
}

// Succeed ends the fetch tagged gen. A stale generation reports false and
// the caller must drop the result
func (c *Controller) Succeed(gen uint64) bool {
	if gen != c.gen || c.state != Fetching {
		return false
	}
	c.state = Idle
	return true
}

// Fail ends the fetch tagged gen with err. Exhaustion is not touched
func (c *Controller) Fail(gen uint64, err error) bool {
	if gen != c.gen || c.state != Fetching {
		return false
	}
	c.state = Failed
	c.err = err
	return true
}

// Reset forgets the current key: back to idle under a new generation
func (c *Controller) Reset() {
	c.gen++
	c.state = Idle
	c.err = nil
	c.fetches = 0
}

// State is the current phase
func (c *Controller) State() State { return c.state }

// Err is the rejection of the last fetch while Failed
func (c *Controller) Err() error { return c.err }

// Generation is the current fetch tag
func (c *Controller) Generation() uint64 { return c.gen }

// Fetches counts fetches started since the last Reset
func (c *Controller) Fetches() int { return c.fetches }
