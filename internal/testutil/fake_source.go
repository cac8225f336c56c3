package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Belphemur/ShowFeed/internal/apperrors"
	"github.com/Belphemur/ShowFeed/internal/models"
)

// FakeSource is a scriptable in-memory catalog. Unknown pages answer with a
// 404 NetworkError, unknown queries with no results.
type FakeSource struct {
	mu          sync.Mutex
	pages       map[int][]models.RawShow
	pageErrs    map[int]error
	searches    map[string][]models.RawSearchResult
	delay       time.Duration
	calls       []models.Demand
	invalidated []int
}

// NewFakeSource creates an empty FakeSource.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		pages:    make(map[int][]models.RawShow),
		pageErrs: make(map[int]error),
		searches: make(map[string][]models.RawSearchResult),
	}
}

// SetPage makes page return shows.
func (f *FakeSource) SetPage(page int, shows []models.RawShow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[page] = shows
	delete(f.pageErrs, page)
}

// FailPage makes page return err.
func (f *FakeSource) FailPage(page int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageErrs[page] = err
}

// SetSearch makes query return shows.
func (f *FakeSource) SetSearch(query string, shows []models.RawShow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches[query] = SearchResults(shows...)
}

// SetDelay makes every call wait d, or until its context is cancelled.
func (f *FakeSource) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// Calls returns the demands served so far, in call order.
func (f *FakeSource) Calls() []models.Demand {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Demand(nil), f.calls...)
}

// Invalidated returns the pages passed to Invalidate.
func (f *FakeSource) Invalidated() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.invalidated...)
}

func (f *FakeSource) wait(ctx context.Context, d models.Demand) error {
	f.mu.Lock()
	f.calls = append(f.calls, d)
	delay := f.delay
	f.mu.Unlock()

	if delay == 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeSource) GetShows(ctx context.Context, page int) ([]models.RawShow, error) {
	if err := f.wait(ctx, models.LoadPage(page)); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.pageErrs[page]; ok {
		return nil, err
	}
	shows, ok := f.pages[page]
	if !ok {
		return nil, &apperrors.NetworkError{Op: "GET", URL: fmt.Sprintf("/shows?page=%d", page), StatusCode: 404}
	}
	return append([]models.RawShow(nil), shows...), nil
}

func (f *FakeSource) SearchShows(ctx context.Context, query string) ([]models.RawSearchResult, error) {
	if err := f.wait(ctx, models.Search(query)); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.RawSearchResult{}, f.searches[query]...), nil
}

func (f *FakeSource) Invalidate(page int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, page)
}
