package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/shoprank/backend/internal/domain"
)

// OrchestratorConfig holds pacing parameters for a full client run.
type OrchestratorConfig struct {
	// PairDelay is inserted between (product, keyword) lookups, in addition
	// to the finder's inter-page pacing, to bound the aggregate request rate
	// across the whole matrix.
	PairDelay time.Duration
}

// Orchestrator executes the full product x keyword matrix for one client and
// persists the resulting observation batch as a single unit.
type Orchestrator struct {
	store     domain.Store
	creds     domain.CredentialsProvider
	finder    *RankFinder
	pairDelay time.Duration
}

// NewOrchestrator creates an orchestrator with its collaborators.
func NewOrchestrator(store domain.Store, creds domain.CredentialsProvider, finder *RankFinder, cfg OrchestratorConfig) *Orchestrator {
	if cfg.PairDelay < 0 {
		cfg.PairDelay = 0
	}
	return &Orchestrator{
		store:     store,
		creds:     creds,
		finder:    finder,
		pairDelay: cfg.PairDelay,
	}
}

// Run performs one tracking run for the client.
//
// The cross product is iterated in stable order (products outer, keywords
// inner). A not-found or upstream-error result for one pair never aborts the
// batch; it is recorded and iteration continues. The batch always contains
// exactly len(products) * len(keywords) observations and is persisted with a
// single write attempt after the loop completes — a crash mid-run loses the
// whole run rather than leaving a partial batch.
//
// Missing credentials fail fast before any request is issued. Permanent
// upstream failures abort the run with no batch persisted. There is no
// internal retry anywhere; re-running is the caller's policy.
func (o *Orchestrator) Run(ctx context.Context, clientID int64) (*domain.RunReport, error) {
	report := &domain.RunReport{
		RunID:    uuid.NewString(),
		ClientID: clientID,
	}
	started := time.Now()

	if _, _, ok := o.creds.Credentials(); !ok {
		report.Err = domain.ErrMissingCredentials
		return report, domain.ErrMissingCredentials
	}

	products, err := o.store.ListProducts(ctx, clientID)
	if err != nil {
		report.Err = err
		return report, fmt.Errorf("listing products for client %d: %w", clientID, err)
	}
	keywords, err := o.store.ListKeywords(ctx, clientID)
	if err != nil {
		report.Err = err
		return report, fmt.Errorf("listing keywords for client %d: %w", clientID, err)
	}

	total := len(products) * len(keywords)
	log.Printf("[RUN %s] client %d: %d products x %d keywords = %d lookups",
		report.RunID, clientID, len(products), len(keywords), total)

	batch := make([]domain.RankObservation, 0, total)
	for _, product := range products {
		for _, keyword := range keywords {
			// Inter-pair pacing, never before the first lookup.
			if len(batch) > 0 {
				if err := sleepContext(ctx, o.pairDelay); err != nil {
					report.Err = err
					return report, err
				}
			}

			obs, err := o.finder.FindRank(ctx, keyword.Text, product)
			if err != nil {
				report.Err = err
				return report, fmt.Errorf("rank lookup %q x %q: %w", keyword.Text, product.RawID, err)
			}
			if obs.Found() {
				report.Found++
			}
			batch = append(batch, obs)

			log.Printf("[RUN %s] [%d/%d] %q x product %s: rank=%s",
				report.RunID, len(batch), total, keyword.Text, product.RawID, formatRank(obs))
		}
	}

	if err := o.store.AppendObservations(ctx, batch); err != nil {
		// Single write attempt only; the caller surfaces the storage error.
		wrapped := fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
		report.Err = wrapped
		return report, wrapped
	}

	report.Observations = len(batch)
	report.Duration = time.Since(started)
	log.Printf("[RUN %s] client %d done: %d observations, %d found, %s",
		report.RunID, clientID, report.Observations, report.Found, report.Duration.Round(time.Millisecond))
	return report, nil
}

func formatRank(obs domain.RankObservation) string {
	if obs.Found() {
		return fmt.Sprintf("%d", obs.Rank)
	}
	return obs.Reason
}
