package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shoprank/backend/internal/domain"
)

// TraversalConfig holds paging parameters for rank lookups.
type TraversalConfig struct {
	MaxPages  int           // page budget per (product, keyword) lookup
	PageSize  int           // fixed at the upstream maximum per request
	PageDelay time.Duration // inter-page pacing, inserted between requests only
}

// RankFinder walks paginated search results for a keyword until the tracked
// product is matched or the page budget is exhausted.
type RankFinder struct {
	search domain.SearchClient
	cfg    TraversalConfig
}

// NewRankFinder creates a rank finder with the given configuration.
func NewRankFinder(search domain.SearchClient, cfg TraversalConfig) *RankFinder {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100 // upstream maximum per request
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	return &RankFinder{search: search, cfg: cfg}
}

// FindRank returns the observation for one (product, keyword) pair.
//
// Rank is 1-based across the full paginated result set:
// page*pageSize + indexWithinPage + 1. Exhausting the page budget or hitting
// the organic end of results yields a not-found observation, which is a
// valid terminal outcome. A transient upstream failure stops the traversal
// early and is recorded as a rank-absent observation with an upstream-error
// reason. Only permanent (auth) failures and context cancellation are
// returned as errors; they abort the caller's whole run.
func (f *RankFinder) FindRank(ctx context.Context, keyword string, product domain.TrackedProduct) (domain.RankObservation, error) {
	obs := domain.RankObservation{
		ClientID:    product.ClientID,
		ProductRef:  product.RawReference,
		ProductName: product.DisplayName,
		Keyword:     keyword,
		ObservedAt:  time.Now(),
	}

	for page := 0; page < f.cfg.MaxPages; page++ {
		// Pacing only between page requests, never before the first.
		if page > 0 {
			if err := sleepContext(ctx, f.cfg.PageDelay); err != nil {
				return obs, err
			}
		}

		start := page*f.cfg.PageSize + 1
		result, err := f.search.Search(ctx, keyword, start, f.cfg.PageSize)
		if err != nil {
			if errors.Is(err, domain.ErrUpstreamPermanent) || ctx.Err() != nil {
				return obs, err
			}
			log.Printf("[RANK] keyword %q page %d: %v", keyword, page, err)
			obs.Reason = domain.ReasonUpstreamError
			return obs, nil
		}

		// Organic end of results before the budget is spent.
		if len(result.Items) == 0 {
			break
		}

		for idx, item := range result.Items {
			info, ok := MatchItem(item, product)
			if !ok {
				continue
			}
			obs.Rank = page*f.cfg.PageSize + idx + 1
			obs.MatchedItemID = info.ItemID
			obs.MatchedMallName = info.MallName
			obs.MatchedPrice = info.Price
			obs.ItemType = info.ItemType
			return obs, nil
		}
	}

	obs.Reason = domain.ReasonNotFound
	return obs, nil
}

// sleepContext waits for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
