package recon

import (
	"context"

	"github.com/fieldbook-vn/recon-backend/internal/adapters/bankfeed"
)

// Run triggers, recorded on the audit trail.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// FeedClient is the bank feed dependency of the orchestrator.
// *bankfeed.Client satisfies it; tests substitute stubs.
type FeedClient interface {
	Fetch(ctx context.Context) ([]*bankfeed.Transaction, error)
}

// Summary is the observable result of one reconciliation run.
type Summary struct {
	Scanned int `json:"scanned"` // eligible obligations considered
	Matched int `json:"matched"` // obligations advanced to paid
	Failed  int `json:"failed"`  // obligations skipped on write conflict
}
