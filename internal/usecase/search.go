package usecase

import (
	"context"
	"strings"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	xlogger "StockPulse/pkg/logger"
)

const (
	searchResultLimit   = 10
	gainerFallbackLimit = 5
)

// SearchService resolves free-text symbol lookups. Queries too short to
// search meaningfully fall back to the day's biggest gainers, so the
// search box is never empty.
type SearchService struct {
	provider drepo.SearchProvider
	logger   *xlogger.Logger
}

func NewSearchService(provider drepo.SearchProvider, logger *xlogger.Logger) *SearchService {
	return &SearchService{provider: provider, logger: logger}
}

// Search returns name matches for the query, or the gainers fallback when
// the query is shorter than two characters.
func (s *SearchService) Search(ctx context.Context, query string) (models.SearchResponse, error) {
	query = strings.TrimSpace(query)

	if len(query) < 2 {
		gainers, err := s.provider.BiggestGainers(ctx)
		if err != nil {
			return models.SearchResponse{}, err
		}
		if len(gainers) > gainerFallbackLimit {
			gainers = gainers[:gainerFallbackLimit]
		}
		return models.SearchResponse{Type: "trending", Results: gainers}, nil
	}

	results, err := s.provider.SearchByName(ctx, query, searchResultLimit)
	if err != nil {
		return models.SearchResponse{}, err
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	return models.SearchResponse{Type: "search", Results: results}, nil
}
