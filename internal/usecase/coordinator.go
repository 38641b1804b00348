package usecase

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/shoprank/backend/internal/domain"
)

// Runner executes one tracking run for a client. Implemented by Orchestrator.
type Runner interface {
	Run(ctx context.Context, clientID int64) (*domain.RunReport, error)
}

// clientRun guards one client's run state. Each entry has its own mutex so
// unrelated clients never contend.
type clientRun struct {
	mu     sync.Mutex
	status domain.RunStatus
}

// Coordinator guarantees at-most-one active run per client and fans work out
// across clients without serializing them behind each other.
//
// It deliberately sets no global concurrency limit: each client's run is
// internally sequential and paced, so the upstream request rate is bounded
// by the orchestrator's own pacing rather than a semaphore.
type Coordinator struct {
	runner Runner
	store  domain.Store

	mu   sync.Mutex
	runs map[int64]*clientRun
}

// NewCoordinator creates a coordinator over the given runner and store.
func NewCoordinator(runner Runner, store domain.Store) *Coordinator {
	return &Coordinator{
		runner: runner,
		store:  store,
		runs:   make(map[int64]*clientRun),
	}
}

// entry returns the state record for a client, creating it lazily.
func (c *Coordinator) entry(clientID int64) *clientRun {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.runs[clientID]
	if !ok {
		r = &clientRun{status: domain.RunStatus{ClientID: clientID, State: domain.RunIdle}}
		c.runs[clientID] = r
	}
	return r
}

// tryStart atomically transitions the client out of its rest state into
// Running. Two concurrent attempts for the same client: exactly one wins,
// the other gets domain.ErrRunInProgress. Attempts are rejected, never queued.
func (c *Coordinator) tryStart(clientID int64) (*clientRun, error) {
	r := c.entry(clientID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.State == domain.RunRunning {
		return nil, domain.ErrRunInProgress
	}
	r.status = domain.RunStatus{
		ClientID:  clientID,
		State:     domain.RunRunning,
		StartedAt: time.Now(),
	}
	return r, nil
}

// finish records the terminal state of a run.
func (c *Coordinator) finish(r *clientRun, report *domain.RunReport, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.FinishedAt = time.Now()
	if report != nil {
		r.status.RunID = report.RunID
	}
	if err != nil {
		r.status.State = domain.RunFailed
		r.status.Reason = err.Error()
		return
	}
	r.status.State = domain.RunDone
	r.status.Reason = ""
}

// RunOne executes one synchronous tracking run for a client. Returns
// domain.ErrRunInProgress without queuing if a run is already active.
func (c *Coordinator) RunOne(ctx context.Context, clientID int64) (*domain.RunReport, error) {
	r, err := c.tryStart(clientID)
	if err != nil {
		return nil, err
	}
	report, err := c.runner.Run(ctx, clientID)
	c.finish(r, report, err)
	if report != nil {
		report.Error = r.status.Reason
	}
	return report, err
}

// StartOne begins a run for a client in its own goroutine. The Running guard
// is taken synchronously, so an overlapping start is rejected immediately;
// the run outcome is observable via Status and the logs.
func (c *Coordinator) StartOne(clientID int64) error {
	r, err := c.tryStart(clientID)
	if err != nil {
		return err
	}
	go func() {
		// Runs are never cancelled mid-flight; they complete or the
		// process terminates.
		report, err := c.runner.Run(context.Background(), clientID)
		c.finish(r, report, err)
		if err != nil {
			log.Printf("[COORD] client %d run failed: %v", clientID, err)
		}
	}()
	return nil
}

// RunAll fans one run task out per client and joins them through a result
// channel so no failure is silently dropped. Clients whose previous run is
// still active are skipped. One client's failure or delay never blocks
// another client's run; reports arrive in completion order.
func (c *Coordinator) RunAll(ctx context.Context) ([]domain.RunReport, error) {
	clients, err := c.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	results := make(chan domain.RunReport, len(clients))
	var wg sync.WaitGroup

	for _, client := range clients {
		r, err := c.tryStart(client.ID)
		if err != nil {
			log.Printf("[COORD] client %d skipped: %v", client.ID, err)
			continue
		}
		wg.Add(1)
		go func(clientID int64, r *clientRun) {
			defer wg.Done()
			report, err := c.runner.Run(ctx, clientID)
			c.finish(r, report, err)
			if report == nil {
				report = &domain.RunReport{ClientID: clientID}
			}
			if err != nil {
				report.Err = err
				report.Error = err.Error()
			}
			results <- *report
		}(client.ID, r)
	}

	wg.Wait()
	close(results)

	reports := make([]domain.RunReport, 0, len(clients))
	for report := range results {
		reports = append(reports, report)
	}
	return reports, nil
}

// Reset transitions a Done or Failed client back to Idle. Explicit caller
// action only; a Running client cannot be reset.
func (c *Coordinator) Reset(clientID int64) error {
	r := c.entry(clientID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.State == domain.RunRunning {
		return domain.ErrRunInProgress
	}
	r.status = domain.RunStatus{ClientID: clientID, State: domain.RunIdle}
	return nil
}

// Status returns the current run state for one client.
func (c *Coordinator) Status(clientID int64) domain.RunStatus {
	r := c.entry(clientID)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Snapshot returns the run state of every known client, ordered by client id.
func (c *Coordinator) Snapshot() []domain.RunStatus {
	c.mu.Lock()
	entries := make([]*clientRun, 0, len(c.runs))
	for _, r := range c.runs {
		entries = append(entries, r)
	}
	c.mu.Unlock()

	statuses := make([]domain.RunStatus, 0, len(entries))
	for _, r := range entries {
		r.mu.Lock()
		statuses = append(statuses, r.status)
		r.mu.Unlock()
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].ClientID < statuses[j].ClientID })
	return statuses
}
