package models

import (
	"testing"
	"time"
)

func TestFavoriteIDSet(t *testing.T) {
	t.Parallel()

	set := NewFavoriteIDSet(3, 1, 2, 3)
	if set.Len() != 3 {
		t.Fatalf("Expected 3 ids, got %d", set.Len())
	}
	if !set.Contains(2) || set.Contains(4) {
		t.Errorf("Unexpected membership: %v", set.IDs())
	}

	ids := set.IDs()
	want := []int{1, 2, 3}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Expected sorted ids %v, got %v", want, ids)
		}
	}

	if !set.Equal(NewFavoriteIDSet(1, 2, 3)) {
		t.Error("Expected sets with the same ids to be equal")
	}
	if set.Equal(NewFavoriteIDSet(1, 2)) || set.Equal(NewFavoriteIDSet(1, 2, 4)) {
		t.Error("Expected sets with different ids to differ")
	}

	var zero FavoriteIDSet
	if zero.Contains(1) || zero.Len() != 0 || !zero.Equal(NewFavoriteIDSet()) {
		t.Error("Zero value should behave as the empty set")
	}
}

func TestNewPlaceholderFavorite(t *testing.T) {
	t.Parallel()

	before := time.Now().UTC()
	rec := NewPlaceholderFavorite(5)

	if rec.ID != 5 || rec.Name != PlaceholderShowName || !rec.PendingEnrichment {
		t.Errorf("Unexpected placeholder record: %+v", rec)
	}
	if rec.CreatedAt.Before(before.Add(-time.Second)) {
		t.Errorf("Expected CreatedAt to be now, got %v", rec.CreatedAt)
	}
}

func TestDemand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		demand   Demand
		isSearch bool
		page     int
		kind     string
	}{
		{"load page", LoadPage(3), false, 3, "load_page"},
		{"search", Search("girls"), true, DefaultPage, "search"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.demand.IsSearch() != tt.isSearch {
				t.Errorf("IsSearch() = %v, want %v", tt.demand.IsSearch(), tt.isSearch)
			}
			if tt.demand.Page != tt.page {
				t.Errorf("Page = %d, want %d", tt.demand.Page, tt.page)
			}
			if tt.demand.Kind.String() != tt.kind {
				t.Errorf("Kind = %q, want %q", tt.demand.Kind.String(), tt.kind)
			}
		})
	}

	if DemandKind(9).String() != "unknown" {
		t.Error("Expected unknown kind label")
	}
}

func TestShowsPage(t *testing.T) {
	t.Parallel()

	empty := EmptyShowsPage()
	if empty.Shows == nil || len(empty.Shows) != 0 || empty.NextPage != DefaultPage {
		t.Errorf("Unexpected empty page: %+v", empty)
	}
	if !empty.HasMore() {
		t.Error("Empty page should allow loading more")
	}
	if (ShowsPage{NextPage: NoMorePages}).HasMore() {
		t.Error("NoMorePages must be terminal")
	}
}

func TestRawShowAccessors(t *testing.T) {
	t.Parallel()

	rating := 8.1
	url := "https://static.example/o.jpg"
	show := RawShow{Rating: RawRating{Average: &rating}, Image: &RawImage{OriginalURL: &url}}
	if show.AverageRating() != 8.1 || show.OriginalImageURL() != url {
		t.Errorf("Unexpected accessors: %v %q", show.AverageRating(), show.OriginalImageURL())
	}

	noOriginal := RawShow{Image: &RawImage{}}
	if noOriginal.OriginalImageURL() != "" || noOriginal.AverageRating() != 0 {
		t.Error("Expected zero values for missing rating and image")
	}
}
