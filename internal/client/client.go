package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Belphemur/ShowFeed/internal/cache"
	"github.com/Belphemur/ShowFeed/internal/config"
	"github.com/Belphemur/ShowFeed/internal/models"
	"github.com/Belphemur/ShowFeed/internal/parser"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// Client queries the remote TV-show catalog.
type Client interface {
	// GetShows returns one page of the catalog index. A page past the end of
	// the catalog fails with a *apperrors.NetworkError carrying status 404.
	GetShows(ctx context.Context, page int) ([]models.RawShow, error)

	// SearchShows returns the scored matches for query, best match first.
	SearchShows(ctx context.Context, query string) ([]models.RawSearchResult, error)

	// Invalidate drops the cached copy of a catalog page.
	Invalidate(page int)

	// Close releases any resources held by the client (e.g., cache connections).
	Close() error
}

// client implements the Client interface
type client struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	retry        retrypolicy.RetryPolicy[[]byte]
	cache        cache.Cache
	freshFor     time.Duration
	staleFor     time.Duration
	now          func() time.Time
	showParser   parser.Parser[models.RawShow]
	searchParser parser.Parser[models.RawSearchResult]
}

// NewClient creates a new client instance with proxy, retry and cache
// configuration taken from cfg.
func NewClient(cfg *config.Config) Client {
	logger := config.GetLogger()
	timeout := config.Duration(cfg.ClientTimeout, 30*time.Second, "client_timeout")

	// Clone DefaultTransport to preserve its pooling and HTTP/2 settings.
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	freshFor := config.Duration(cfg.Cache.TTL, 10*time.Minute, "cache.ttl")
	staleFor := max(config.Duration(cfg.Cache.StaleTTL, time.Hour, "cache.stale_ttl"), 0)

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	return &client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: newCompressionTransport(baseTransport),
		},
		baseURL:      cfg.CatalogDomain,
		userAgent:    userAgent,
		retry:        newRetryPolicy(cfg),
		cache:        newResponseCache(cfg, freshFor, staleFor),
		freshFor:     freshFor,
		staleFor:     staleFor,
		now:          time.Now,
		showParser:   parser.NewShowPageParser(),
		searchParser: parser.NewSearchResultParser(),
	}
}

// newResponseCache builds the response cache, or returns nil when caching is
// disabled or the provider cannot be created. Entries are kept for the
// freshness window plus the stale window.
func newResponseCache(cfg *config.Config, freshFor, staleFor time.Duration) cache.Cache {
	provider := cfg.Cache.Provider
	if provider == "" || provider == "none" {
		return nil
	}

	logger := config.GetLogger()
	c, err := cache.New(provider, cache.ProviderConfig{
		Size:          cfg.Cache.Size,
		TTL:           freshFor + staleFor,
		Logger:        &logger,
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		Group:         "catalog",
	})
	if err != nil {
		logger.Warn().Err(err).Str("provider", provider).Msg("Failed to create response cache, continuing without cache")
		return nil
	}
	logger.Info().Str("provider", provider).Msg("Response cache enabled")
	return c
}

// GetShows fetches /shows?page=N.
func (c *client) GetShows(ctx context.Context, page int) ([]models.RawShow, error) {
	logger := config.GetLogger()
	endpoint := c.baseURL + "/shows?page=" + strconv.Itoa(page)

	shows, err := fetchParsed(ctx, c, cache.PageKey(page), endpoint, c.showParser)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("page", page).Int("shows", len(shows)).Msg("Fetched catalog page")
	return shows, nil
}

// SearchShows fetches /search/shows?q=query. Results keep the catalog's
// relevance order.
func (c *client) SearchShows(ctx context.Context, query string) ([]models.RawSearchResult, error) {
	logger := config.GetLogger()
	query = parser.NormalizeQuery(query)
	endpoint := c.baseURL + "/search/shows?q=" + url.QueryEscape(query)

	results, err := fetchParsed(ctx, c, cache.SearchKey(query), endpoint, c.searchParser)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("query", query).Int("results", len(results)).Msg("Fetched search results")
	return results, nil
}

func (c *client) Invalidate(page int) {
	if c.cache != nil {
		c.cache.Delete(cache.PageKey(page))
	}
}

// Close releases any resources held by the client, such as cache connections.
func (c *client) Close() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Close()
}
