package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/db"
)

// ListActiveOpportunities returns the browsable catalog: opportunities with
// the active flag set, newest first.
func ListActiveOpportunities(ctx context.Context, store db.CatalogStore, logger *zap.Logger) ([]db.Opportunity, error) {
	logger.Debug("Fetching active opportunities")

	opportunities, err := store.ListActiveOpportunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunities: %w", err)
	}

	logger.Info("Fetched active opportunities", zap.Int("count", len(opportunities)))
	return opportunities, nil
}

// FilterOpportunities narrows a catalog listing by free-text search and
// category. The search term matches case-insensitively against title,
// description and location (any of the three); the category must match
// exactly. Both filters are ANDed; an empty filter passes everything.
func FilterOpportunities(opportunities []db.Opportunity, search string, category db.Category) []db.Opportunity {
	filtered := make([]db.Opportunity, 0, len(opportunities))
	term := strings.ToLower(search)

	for _, opp := range opportunities {
		if term != "" && !matchesSearch(opp, term) {
			continue
		}
		if category != "" && opp.Category != category {
			continue
		}
		filtered = append(filtered, opp)
	}
	return filtered
}

func matchesSearch(opp db.Opportunity, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(opp.Title), lowerTerm) ||
		strings.Contains(strings.ToLower(opp.Description), lowerTerm) ||
		strings.Contains(strings.ToLower(opp.Location), lowerTerm)
}
