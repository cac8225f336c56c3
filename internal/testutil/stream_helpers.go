package testutil

import (
	"testing"
	"time"

	"github.com/Belphemur/ShowFeed/internal/models"
)

// WaitForPage reads from stream until a page satisfies match and returns it.
// Intermediate pages are skipped. The test fails after timeout or when the
// stream is closed first.
// This is a test helper and should not be used in production code.
func WaitForPage(t *testing.T, stream <-chan models.ShowsPage, timeout time.Duration, match func(models.ShowsPage) bool) models.ShowsPage {
	t.Helper()
	deadline := time.After(timeout)
	var last models.ShowsPage
	for {
		select {
		case page, ok := <-stream:
			if !ok {
				t.Fatalf("page stream closed; last page: %+v", last)
			}
			last = page
			if match(page) {
				return page
			}
		case <-deadline:
			t.Fatalf("timed out waiting for page; last page: %+v", last)
		}
	}
}

// NextPage returns the next page from stream, failing after timeout.
func NextPage(t *testing.T, stream <-chan models.ShowsPage, timeout time.Duration) models.ShowsPage {
	t.Helper()
	return WaitForPage(t, stream, timeout, func(models.ShowsPage) bool { return true })
}

// ExpectNoPage fails if stream yields a page within d.
func ExpectNoPage(t *testing.T, stream <-chan models.ShowsPage, d time.Duration) {
	t.Helper()
	select {
	case page, ok := <-stream:
		if ok {
			t.Fatalf("unexpected page emitted: %+v", page)
		}
	case <-time.After(d):
	}
}

// CollectPages reads pages from stream for d and returns them in order.
func CollectPages(stream <-chan models.ShowsPage, d time.Duration) []models.ShowsPage {
	var pages []models.ShowsPage
	deadline := time.After(d)
	for {
		select {
		case page, ok := <-stream:
			if !ok {
				return pages
			}
			pages = append(pages, page)
		case <-deadline:
			return pages
		}
	}
}
