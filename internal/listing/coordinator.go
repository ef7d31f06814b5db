package listing

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/mesh-intelligence/clientdesk/internal/clock"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Fetcher reads one listing page.
type Fetcher interface {
	ListClients(ctx context.Context, params url.Values) (types.Page, error)
}

// Result is the outcome of one listing fetch. Err is set when the read
// failed; Page is then empty.
type Result struct {
	Generation uint64
	Query      Query
	Page       types.Page
	Err        error
}

// AppliedFilter returns the id of the filter group the rows were fetched
// with, or "".
func (r Result) AppliedFilter() string {
	return r.Query.FilterID
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithClock sets the clock driving the debounce timer.
func WithClock(c clock.Clock) CoordinatorOption {
	return func(co *Coordinator) { co.clock = c }
}

// WithDebounce sets the quiet period after the last change.
func WithDebounce(d time.Duration) CoordinatorOption {
	return func(co *Coordinator) { co.delay = d }
}

// WithLogger sets the logger for failed and discarded fetches.
func WithLogger(l *slog.Logger) CoordinatorOption {
	return func(co *Coordinator) { co.log = l }
}

// OnResult registers a callback invoked with every accepted result. It runs
// on the fetch goroutine without the coordinator lock held.
func OnResult(f func(Result)) CoordinatorOption {
	return func(co *Coordinator) { co.onResult = f }
}

// Coordinator owns the listing query and its fetches. Every change restarts
// the debounce, and only the result of the newest generation is accepted.
type Coordinator struct {
	mu       sync.Mutex
	fetcher  Fetcher
	clock    clock.Clock
	delay    time.Duration
	log      *slog.Logger
	onResult func(Result)
	debounce *Debouncer

	query   Query
	gen     uint64
	cancel  context.CancelFunc
	current Result
	closed  bool
	wg      sync.WaitGroup
}

// NewCoordinator creates a Coordinator starting from q. No fetch is issued
// until a change or Refresh.
func NewCoordinator(fetcher Fetcher, q Query, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		fetcher: fetcher,
		clock:   clock.Real(),
		delay:   types.DefaultSearchDebounce,
		log:     slog.Default(),
		query:   q.Clone(),
	}
	for _, o := range opts {
		o(c)
	}
	c.debounce = NewDebouncer(c.clock, c.delay)
	return c
}

// Query returns a copy of the current query.
func (c *Coordinator) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Clone()
}

// Current returns the last accepted result.
func (c *Coordinator) Current() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Update applies change to the query, invalidates any in-flight fetch and
// restarts the debounce.
func (c *Coordinator) Update(change func(*Query)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	change(&c.query)
	c.invalidateLocked()
	c.debounce.Trigger(c.fetch)
}

// SetSearch changes the search term for slug.
func (c *Coordinator) SetSearch(slug, term string) {
	c.Update(func(q *Query) { q.SetSearch(slug, term) })
}

// SetPage moves to page p (zero-based).
func (c *Coordinator) SetPage(p int) {
	c.Update(func(q *Query) { q.SetPage(p) })
}

// SetPageSize changes the page size and returns to the first page.
func (c *Coordinator) SetPageSize(n int) {
	c.Update(func(q *Query) { q.SetPageSize(n) })
}

// SetLocale changes the locale threaded into fetches.
func (c *Coordinator) SetLocale(code string) {
	c.Update(func(q *Query) { q.Locale = code })
}

// ApplyFilter fetches with the saved filter group id; "" removes the filter.
func (c *Coordinator) ApplyFilter(id string) {
	c.Update(func(q *Query) { q.SetFilter(id) })
}

// Refresh fetches immediately, skipping the debounce.
func (c *Coordinator) Refresh() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.debounce.Cancel()
	c.mu.Unlock()
	c.fetch()
}

// Flush issues the pending debounced fetch now, if there is one.
func (c *Coordinator) Flush() {
	if c.debounce.Pending() {
		c.Refresh()
	}
}

// Wait blocks until every fetch issued so far has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close cancels pending and in-flight fetches and waits for them to return.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.debounce.Cancel()
	c.invalidateLocked()
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Coordinator) invalidateLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Coordinator) fetch() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.invalidateLocked()
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	q := c.query.Clone()
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer cancel()
		page, err := c.fetcher.ListClients(ctx, q.Values())
		c.deliver(gen, q, page, err)
	}()
}

func (c *Coordinator) deliver(gen uint64, q Query, page types.Page, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.log.Debug("discarding stale listing result", "generation", gen)
		return
	}
	c.cancel = nil
	if err != nil {
		c.log.Warn("listing fetch failed", "page", q.Page+1, "error", err)
		page = types.Page{}
	}
	res := Result{Generation: gen, Query: q, Page: page, Err: err}
	c.current = res
	cb := c.onResult
	c.mu.Unlock()
	if cb != nil {
		cb(res)
	}
}
