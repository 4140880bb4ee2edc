package catalog

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/cogniflow/orchestrator/pkg/logging"
)

// Revalidator periodically re-runs every stored node metamodel through its
// Validate method and logs the valid/invalid counts, per the spec's
// "validate on catalog load" startup hook extended to a recurring schedule
// (§4.2) so a metamodel's validity is rechecked as the shared Port/legalRoles
// rules it depends on evolve, not only at process start.
type Revalidator struct {
	nodes  *NodeStore
	log    *logging.Logger
	cron   *cron.Cron
	mu     sync.Mutex
	lastOK int
	lastBad int
}

// NewRevalidator builds a Revalidator over the given NodeStore.
func NewRevalidator(nodes *NodeStore, log *logging.Logger) *Revalidator {
	return &Revalidator{
		nodes: nodes,
		log:   log,
		cron:  cron.New(),
	}
}

// Start schedules RunOnce on the given cron spec (e.g. "@every 1h") and
// begins the cron scheduler's own goroutine. Call Stop to shut it down.
func (r *Revalidator) Start(ctx context.Context, spec string) error {
	_, err := r.cron.AddFunc(spec, func() { r.RunOnce(ctx) })
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the cron scheduler, waiting for any in-flight run to finish.
func (r *Revalidator) Stop() {
	<-r.cron.Stop().Done()
}

// RunOnce validates every node metamodel currently in the store, logging a
// single summary line with valid/invalid counts. Individual validation
// failures are logged at warn level with the failing node's ID.
func (r *Revalidator) RunOnce(ctx context.Context) {
	all, err := r.nodes.FindAll(ctx)
	if err != nil {
		r.log.WithError(err).Error("node revalidation: failed to load catalog")
		return
	}

	valid, invalid := 0, 0
	for _, m := range all {
		if err := m.Validate(); err != nil {
			invalid++
			r.log.WithField("node_id", m.ID).WithError(err).Warn("node revalidation: metamodel failed validation")
			continue
		}
		valid++
	}

	r.mu.Lock()
	r.lastOK, r.lastBad = valid, invalid
	r.mu.Unlock()

	r.log.WithFields(map[string]interface{}{
		"valid":   valid,
		"invalid": invalid,
	}).Info("node revalidation complete")
}

// LastCounts returns the valid/invalid counts from the most recent RunOnce,
// for health/readiness reporting.
func (r *Revalidator) LastCounts() (valid, invalid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastOK, r.lastBad
}
