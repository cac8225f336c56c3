package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/Belphemur/ShowFeed/internal/apperrors"
)

func TestShowPageParser_Parse(t *testing.T) {
	t.Parallel()

	body := `[
		{"id": 1, "name": "Under the Dome", "status": "Ended", "premiered": "2013-06-24",
		 "rating": {"average": 6.5},
		 "image": {"medium": "https://img/m/1.jpg", "original": "https://img/o/1.jpg"},
		 "summary": "<p><b>Under the Dome</b> is the story of a small town.</p>"},
		{"id": 2, "name": "Person of Interest", "status": "Ended", "premiered": null,
		 "rating": {"average": null}, "image": null, "summary": null}
	]`

	shows, err := NewShowPageParser().Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(shows) != 2 {
		t.Fatalf("expected 2 shows, got %d", len(shows))
	}

	first := shows[0]
	if first.ID != 1 || first.Name != "Under the Dome" || first.Status != "Ended" {
		t.Errorf("unexpected first show: %+v", first)
	}
	if first.PremieredDate != "2013-06-24" {
		t.Errorf("expected premiered date, got %q", first.PremieredDate)
	}
	if got := first.AverageRating(); got != 6.5 {
		t.Errorf("expected rating 6.5, got %v", got)
	}
	if got := first.OriginalImageURL(); got != "https://img/o/1.jpg" {
		t.Errorf("expected original image, got %q", got)
	}
	if first.Summary != "Under the Dome is the story of a small town." {
		t.Errorf("summary not converted to plain text: %q", first.Summary)
	}

	second := shows[1]
	if second.AverageRating() != 0 {
		t.Errorf("missing rating should be 0, got %v", second.AverageRating())
	}
	if second.OriginalImageURL() != "" {
		t.Errorf("missing image should be empty, got %q", second.OriginalImageURL())
	}
	if second.PremieredDate != "" || second.Summary != "" {
		t.Errorf("null fields should decode to empty strings: %+v", second)
	}
}

func TestShowPageParser_EmptyAndNull(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"[]", "null"} {
		shows, err := NewShowPageParser().Parse(strings.NewReader(body))
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", body, err)
		}
		if shows == nil || len(shows) != 0 {
			t.Errorf("Parse(%q) expected empty non-nil slice, got %#v", body, shows)
		}
	}
}

func TestShowPageParser_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := NewShowPageParser().Parse(strings.NewReader(`{"not": "an array"`))
	if err == nil {
		t.Fatal("expected an error for malformed payload")
	}

	var decodeErr *apperrors.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %T", err)
	}
	if decodeErr.Op != "show page" {
		t.Errorf("unexpected op %q", decodeErr.Op)
	}
}

func TestSearchResultParser_Parse(t *testing.T) {
	t.Parallel()

	body := `[
		{"score": 0.91, "show": {"id": 139, "name": "Girls", "status": "Ended",
		 "premiered": "2012-04-15", "rating": {"average": 6.7},
		 "image": {"medium": "https://img/m/139.jpg", "original": "https://img/o/139.jpg"},
		 "summary": "<p>This Emmy winning series.</p><p>Second paragraph.</p>"}},
		{"score": 0.5, "show": {"id": 23542, "name": "Good Girls", "rating": {}}}
	]`

	results, err := NewSearchResultParser().Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Info.ID != 139 || results[0].Score != 0.91 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[0].Info.Summary != "This Emmy winning series. Second paragraph." {
		t.Errorf("unexpected summary %q", results[0].Info.Summary)
	}
	if results[1].Info.AverageRating() != 0 {
		t.Errorf("empty rating object should give 0, got %v", results[1].Info.AverageRating())
	}
}

func TestSearchResultParser_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := NewSearchResultParser().Parse(strings.NewReader("<html>"))
	if !errors.Is(err, &apperrors.DecodeError{}) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}
