package parser

import (
	"encoding/json"
	"io"

	"github.com/Belphemur/ShowFeed/internal/apperrors"
	"github.com/Belphemur/ShowFeed/internal/config"
	"github.com/Belphemur/ShowFeed/internal/models"
)

// ShowPageParser decodes a page of the catalog's show index.
type ShowPageParser struct{}

// NewShowPageParser creates a new show page parser instance
func NewShowPageParser() *ShowPageParser {
	return &ShowPageParser{}
}

// Parse decodes a JSON array of shows and converts their summaries to plain text.
func (p *ShowPageParser) Parse(body io.Reader) ([]models.RawShow, error) {
	logger := config.GetLogger()

	var shows []models.RawShow
	if err := json.NewDecoder(body).Decode(&shows); err != nil {
		logger.Error().Err(err).Msg("Failed to decode show page")
		return nil, &apperrors.DecodeError{Op: "show page", Err: err}
	}
	if shows == nil {
		shows = []models.RawShow{}
	}

	for i := range shows {
		shows[i].Summary = PlainSummary(shows[i].Summary)
	}

	logger.Debug().Int("shows", len(shows)).Msg("Decoded show page")
	return shows, nil
}

// SearchResultParser decodes the catalog's search response.
type SearchResultParser struct{}

// NewSearchResultParser creates a new search result parser instance
func NewSearchResultParser() *SearchResultParser {
	return &SearchResultParser{}
}

// Parse decodes a JSON array of scored search results.
func (p *SearchResultParser) Parse(body io.Reader) ([]models.RawSearchResult, error) {
	logger := config.GetLogger()

	var results []models.RawSearchResult
	if err := json.NewDecoder(body).Decode(&results); err != nil {
		logger.Error().Err(err).Msg("Failed to decode search results")
		return nil, &apperrors.DecodeError{Op: "search results", Err: err}
	}
	if results == nil {
		results = []models.RawSearchResult{}
	}

	for i := range results {
		results[i].Info.Summary = PlainSummary(results[i].Info.Summary)
	}

	logger.Debug().Int("results", len(results)).Msg("Decoded search results")
	return results, nil
}
