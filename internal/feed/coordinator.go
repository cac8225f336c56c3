// Package feed turns page loads and searches against the remote catalog into
// a single, ordered stream of accumulated show pages flagged with the user's
// favorites.
package feed

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Belphemur/ShowFeed/internal/broadcast"
	"github.com/Belphemur/ShowFeed/internal/config"
	"github.com/Belphemur/ShowFeed/internal/metrics"
	"github.com/Belphemur/ShowFeed/internal/models"
	"github.com/Belphemur/ShowFeed/internal/parser"
	"github.com/Belphemur/ShowFeed/internal/reporting"
)

// DefaultDebounce is the quiet interval a demand must survive before it is fetched.
const DefaultDebounce = time.Second

// ErrAlreadyRunning is returned by Run when the coordinator is already running.
var ErrAlreadyRunning = errors.New("feed: coordinator already running")

// ShowSource fetches shows from the remote catalog.
type ShowSource interface {
	GetShows(ctx context.Context, page int) ([]models.RawShow, error)
	SearchShows(ctx context.Context, query string) ([]models.RawSearchResult, error)
}

// FavoriteSource publishes the live set of favorited show IDs.
type FavoriteSource interface {
	ObserveFavoriteIDs(ctx context.Context) <-chan models.FavoriteIDSet
}

// Options configures a Coordinator.
type Options struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// InitialLoad enqueues LoadPage(DefaultPage) when Run starts.
	InitialLoad bool

	// Reporter receives fetch failures, which are otherwise absorbed into a
	// terminal empty page. Defaults to reporting.Nop.
	Reporter reporting.Reporter
}

// Coordinator owns the feed state. Demands are accepted from any goroutine;
// a single actor goroutine started by Run debounces them, fetches, folds the
// results and publishes each new page.
type Coordinator struct {
	source    ShowSource
	favorites FavoriteSource
	opts      Options

	mu      sync.Mutex
	pending *models.Demand
	wake    chan struct{}

	pages   *broadcast.Latest[models.ShowsPage]
	running atomic.Bool
}

// NewCoordinator creates a coordinator. Nothing is fetched until Run is called.
func NewCoordinator(source ShowSource, favorites FavoriteSource, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Reporter == nil {
		opts.Reporter = reporting.Nop{}
	}
	return &Coordinator{
		source:    source,
		favorites: favorites,
		opts:      opts,
		wake:      make(chan struct{}, 1),
		pages:     broadcast.New(models.EmptyShowsPage()),
	}
}

// RequestMore asks for page. It never blocks; a later demand submitted
// within the debounce window replaces it. Pages below DefaultPage are
// dropped.
func (c *Coordinator) RequestMore(page int) {
	if page < models.DefaultPage {
		logger := config.GetLogger()
		logger.Warn().Int("page", page).Msg("Negative page requested, ignoring")
		return
	}
	c.submit(models.LoadPage(page))
}

// Search asks for the shows matching query. It never blocks and supersedes
// any demand still waiting in the debounce window.
func (c *Coordinator) Search(query string) {
	c.submit(models.Search(parser.NormalizeQuery(query)))
}

func (c *Coordinator) submit(d models.Demand) {
	metrics.FeedDemandsTotal.WithLabelValues(d.Kind.String()).Inc()
	logger := config.GetLogger()
	logger.Debug().Str("kind", d.Kind.String()).Int("page", d.Page).Str("query", d.Query).Msg("Demand accepted")

	c.mu.Lock()
	if c.pending != nil {
		metrics.FeedDebouncedTotal.Inc()
	}
	c.pending = &d
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Coordinator) takePending() *models.Demand {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.pending
	c.pending = nil
	return d
}

// Observe streams the accumulated page: the current page first (the empty
// DefaultPage before the first emission), then every new page. A subscriber
// that falls behind skips straight to the latest page. The channel is closed
// when ctx is done or Run returns.
func (c *Coordinator) Observe(ctx context.Context) <-chan models.ShowsPage {
	return c.pages.Subscribe(ctx)
}

// Current returns the latest accumulated page.
func (c *Coordinator) Current() models.ShowsPage {
	return c.pages.Current()
}

// fetchResult carries a finished fetch back to the actor.
type fetchResult struct {
	gen    uint64
	demand models.Demand
	shows  []models.RawShow
	err    error
}

// actorState is owned by the Run goroutine.
type actorState struct {
	favorites     models.FavoriteIDSet
	haveFavorites bool

	debouncing *models.Demand // waiting for the quiet window to elapse
	ready      *models.Demand // debounced, waiting for the first favorite set

	gen         uint64
	inFlight    models.Demand
	cancelFetch context.CancelFunc

	page models.ShowsPage
	last *Result
}

// Run processes demands until ctx is done. It must be called once; the
// observer channels are closed when it returns.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.pages.Close()

	logger := config.GetLogger()
	logger.Info().Dur("debounce", c.opts.Debounce).Bool("initial_load", c.opts.InitialLoad).Msg("Feed coordinator started")

	st := &actorState{page: c.pages.Current()}
	results := make(chan fetchResult)
	favorites := c.favorites.ObserveFavoriteIDs(ctx)

	timer := time.NewTimer(c.opts.Debounce)
	timer.Stop()
	var debounceC <-chan time.Time

	defer func() {
		timer.Stop()
		if st.cancelFetch != nil {
			st.cancelFetch()
		}
	}()

	if c.opts.InitialLoad {
		c.RequestMore(models.DefaultPage)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Feed coordinator stopped")
			return nil

		case <-c.wake:
			d := c.takePending()
			if d == nil {
				continue
			}
			if st.debouncing != nil {
				metrics.FeedDebouncedTotal.Inc()
			}
			st.debouncing = d
			timer.Reset(c.opts.Debounce)
			debounceC = timer.C

		case <-debounceC:
			debounceC = nil
			d := *st.debouncing
			st.debouncing = nil
			if !st.haveFavorites {
				st.ready = &d
				continue
			}
			c.startFetch(ctx, st, d, results)

		case set, ok := <-favorites:
			if !ok {
				// The store closed; keep folding with the last known set.
				favorites = nil
				continue
			}
			st.favorites = set
			st.haveFavorites = true
			if st.ready != nil {
				d := *st.ready
				st.ready = nil
				c.startFetch(ctx, st, d, results)
				continue
			}
			if page, changed := Reflag(st.page, set); changed {
				st.page = page
				c.publish(page)
			}

		case r := <-results:
			if r.gen != st.gen {
				continue
			}
			st.cancelFetch()
			st.cancelFetch = nil
			c.fold(st, r)
		}
	}
}

// startFetch cancels the fetch in flight, if any, and starts one for d.
// Results of cancelled fetches are discarded by generation.
func (c *Coordinator) startFetch(ctx context.Context, st *actorState, d models.Demand, results chan<- fetchResult) {
	if st.cancelFetch != nil {
		st.cancelFetch()
		metrics.FeedFetchesTotal.WithLabelValues(st.inFlight.Kind.String(), "cancelled").Inc()
	}
	st.gen++
	st.inFlight = d
	gen := st.gen
	fetchCtx, cancel := context.WithCancel(ctx)
	st.cancelFetch = cancel

	logger := config.GetLogger()
	logger.Debug().Str("kind", d.Kind.String()).Int("page", d.Page).Str("query", d.Query).Uint64("generation", gen).Msg("Fetching")

	go func() {
		start := time.Now()
		shows, err := c.fetch(fetchCtx, d)
		metrics.FeedFetchDuration.WithLabelValues(d.Kind.String()).Observe(time.Since(start).Seconds())

		select {
		case results <- fetchResult{gen: gen, demand: d, shows: shows, err: err}:
		case <-fetchCtx.Done():
		}
	}()
}

func (c *Coordinator) fetch(ctx context.Context, d models.Demand) ([]models.RawShow, error) {
	if !d.IsSearch() {
		return c.source.GetShows(ctx, d.Page)
	}
	results, err := c.source.SearchShows(ctx, d.Query)
	if err != nil {
		return nil, err
	}
	shows := make([]models.RawShow, len(results))
	for i, r := range results {
		shows[i] = r.Info
	}
	return shows, nil
}

// fold turns a fetch outcome into a Result, drops it when identical to the
// previous one and otherwise accumulates and publishes it.
func (c *Coordinator) fold(st *actorState, r fetchResult) {
	logger := config.GetLogger()
	kind := r.demand.Kind.String()

	var res Result
	if r.err != nil {
		metrics.FeedFetchesTotal.WithLabelValues(kind, "error").Inc()
		logger.Warn().Err(r.err).Str("kind", kind).Int("page", r.demand.Page).Str("query", r.demand.Query).Msg("Fetch failed, ending pagination")
		c.opts.Reporter.Report(r.err, map[string]string{
			"kind":  kind,
			"page":  strconv.Itoa(r.demand.Page),
			"query": r.demand.Query,
		})
		res = FailureResult()
	} else {
		metrics.FeedFetchesTotal.WithLabelValues(kind, "success").Inc()
		res = Result{
			Page:   r.demand.Page,
			Query:  r.demand.Query,
			Search: r.demand.IsSearch(),
			Shows:  MapShows(r.shows, st.favorites),
		}
	}

	if st.last != nil && st.last.Equal(res) {
		metrics.FeedSuppressedTotal.Inc()
		logger.Debug().Str("kind", kind).Int("page", res.Page).Msg("Result identical to previous, not emitted")
		return
	}
	st.last = &res
	st.page = Accumulate(st.page, res)
	c.publish(st.page)
}

func (c *Coordinator) publish(page models.ShowsPage) {
	metrics.FeedEmissionsTotal.Inc()
	logger := config.GetLogger()
	logger.Debug().Int("shows", len(page.Shows)).Int("next_page", page.NextPage).Msg("Page emitted")
	c.pages.Publish(page)
}
