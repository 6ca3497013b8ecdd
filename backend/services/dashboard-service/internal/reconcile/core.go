// Package reconcile decides which telemetry series a dashboard shows while the user
// refines the date range. It arbitrates between the seed series, the last known-good
// (fallback) series and the series of the most recent range fetch.
package reconcile

import (
	"time"

	"brewdash/backend/services/dashboard-service/internal/models"
)

// ErrorNotice is shown when a range fetch fails for a reason other than rate limiting.
const ErrorNotice = "Could not load telemetry for the selected range, showing the last available data"

// FetchRequest is issued by NextFetch and answered with Resolve.
type FetchRequest struct {
	Seq          uint64
	HydrometerID string
	Token        string
	Range        models.DateRange
}

// View is everything a presentation sink needs to render one frame.
type View struct {
	Display models.TelemetrySeries
	Range   models.DateRange
	Dirty   bool
	Loading bool
	Notice  string
	// Outcome is the kind of the last resolved fetch, zero before the first one.
	Outcome OutcomeKind
}

// Core is the reconciliation state machine. It is not safe for concurrent use; a
// single session goroutine owns it.
type Core struct {
	seed     models.TelemetrySeries
	fallback models.TelemetrySeries
	fetched  models.TelemetrySeries

	rng   models.DateRange
	dirty bool
	// pending is set by every edit and cleared when a fetch covering it is issued.
	pending  bool
	inFlight bool
	seq      uint64
	last     *Outcome
	notice   string

	token        string
	hydrometerID string
}

// New seeds a Core. The initial series must not be empty.
func New(initial models.TelemetrySeries) (*Core, error) {
	first, last, ok := initial.Bounds()
	if !ok {
		return nil, models.ErrEmptySeed
	}
	seed := initial.Filter()
	return &Core{
		seed:     seed,
		fallback: seed,
		rng:      models.DateRange{Start: first, End: last},
	}, nil
}

// SetCredentials stores what a range fetch needs to reach the proxy.
func (c *Core) SetCredentials(token, hydrometerID string) {
	c.token = token
	c.hydrometerID = hydrometerID
}

// SetRangeStart moves the lower bound. Inverted ranges are accepted and forwarded.
func (c *Core) SetRangeStart(t time.Time) {
	c.rng.Start = t
	c.markDirty()
}

// SetRangeEnd moves the upper bound.
func (c *Core) SetRangeEnd(t time.Time) {
	c.rng.End = t
	c.markDirty()
}

func (c *Core) markDirty() {
	c.dirty = true
	c.pending = true
}

// NextFetch issues a fetch when the range is dirty with an edit not yet covered, no
// fetch is in flight, both bounds are set and credentials are present.
func (c *Core) NextFetch() (FetchRequest, bool) {
	if !c.dirty || !c.pending || c.inFlight {
		return FetchRequest{}, false
	}
	if !c.rng.Complete() || c.token == "" || c.hydrometerID == "" {
		return FetchRequest{}, false
	}
	c.seq++
	c.inFlight = true
	c.pending = false
	return FetchRequest{
		Seq:          c.seq,
		HydrometerID: c.hydrometerID,
		Token:        c.token,
		Range:        c.rng,
	}, true
}

// Resolve applies the outcome of the in-flight fetch. Outcomes for any other sequence
// number are ignored and false is returned.
func (c *Core) Resolve(seq uint64, outcome Outcome) bool {
	if !c.inFlight || seq != c.seq {
		return false
	}
	c.inFlight = false
	c.last = &outcome
	c.fetched = nil

	switch outcome.Kind {
	case OutcomeSuccess:
		filtered := outcome.Series.Filter()
		if len(filtered) > 0 {
			c.fallback = filtered
			c.fetched = filtered
		}
	case OutcomeRateLimited:
		c.notice = outcome.Message
		if c.notice == "" {
			c.notice = models.RateLimitMessage
		}
	default:
		c.notice = ErrorNotice
	}
	return true
}

// Display picks the series to render. Any non-ideal condition shows the fallback.
func (c *Core) Display() models.TelemetrySeries {
	switch {
	case !c.dirty:
		return c.fallback
	case c.inFlight:
		return c.fallback
	case c.last != nil && c.last.Kind == OutcomeSuccess && len(c.fetched) > 0:
		return c.fetched
	default:
		return c.fallback
	}
}

// Seed returns the filtered seed series.
func (c *Core) Seed() models.TelemetrySeries { return c.seed }

// Fallback returns the last known-good series.
func (c *Core) Fallback() models.TelemetrySeries { return c.fallback }

// Range returns the current bounds.
func (c *Core) Range() models.DateRange { return c.rng }

// Dirty reports whether the user has edited the range.
func (c *Core) Dirty() bool { return c.dirty }

// InFlight reports whether a fetch is awaiting its outcome.
func (c *Core) InFlight() bool { return c.inFlight }

// TakeNotice returns the pending advisory once and clears it.
func (c *Core) TakeNotice() string {
	n := c.notice
	c.notice = ""
	return n
}

// View collects the render state and consumes the pending notice.
func (c *Core) View() View {
	v := View{
		Display: c.Display(),
		Range:   c.rng,
		Dirty:   c.dirty,
		Loading: c.inFlight,
		Notice:  c.TakeNotice(),
	}
	if c.last != nil {
		v.Outcome = c.last.Kind
	}
	return v
}
