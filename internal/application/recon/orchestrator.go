// Package recon orchestrates reconciliation runs: it loads eligible
// obligations, fetches the bank feed once per run, delegates match decisions
// to the matcher, and applies each match as a single transactional write.
//
// The orchestrator turns an at-least-once external poll into an exactly-once
// business transition: the storage layer's optimistic write guard means a
// transaction observed by two overlapping actors can only ever be applied
// once, and an obligation whose payment already left pending simply stops
// being eligible on the next run.
package recon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fieldbook-vn/recon-backend/internal/adapters/bankfeed"
	"github.com/fieldbook-vn/recon-backend/internal/domain/booking"
	"github.com/fieldbook-vn/recon-backend/internal/domain/matcher"
	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/storage"
)

// Orchestrator executes one reconciliation run at a time.
// It holds no per-run state; concurrency control lives in the Scheduler.
type Orchestrator struct {
	feed    FeedClient
	matcher *matcher.Matcher
	storage storage.Repository
	logger  *slog.Logger
}

// NewOrchestrator creates a reconciliation orchestrator.
func NewOrchestrator(feed FeedClient, m *matcher.Matcher, store storage.Repository, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		feed:    feed,
		matcher: m,
		storage: store,
		logger:  logger,
	}
}

// Run executes one reconciliation cycle and returns its summary.
// A feed failure ends the run with {Scanned: N, Matched: 0, Failed: 0} and a
// wrapped bankfeed.ErrFeedUnavailable; it is retried on the next tick, never
// within the same run. A per-obligation write conflict is isolated: logged,
// counted, and the run continues.
func (o *Orchestrator) Run(ctx context.Context, trigger string) (*Summary, error) {
	summary := &Summary{}

	// Obligations are read fresh every run; external actors (manual cash
	// confirmation, cancellation) may have changed them since the last tick.
	obligations, err := o.storage.ListEligibleObligations()
	if err != nil {
		return summary, fmt.Errorf("failed to load obligations: %w", err)
	}

	summary.Scanned = len(obligations)

	// Nothing pending means no external call at all
	if len(obligations) == 0 {
		o.logger.Debug("no eligible obligations, skipping feed call")
		return summary, nil
	}

	runID, err := o.storage.StartReconRun(trigger)
	if err != nil {
		// Audit tracking failure should not block reconciliation
		o.logger.Warn("failed to start run tracking", "error", err)
	}

	// One fetch per run: every obligation is matched against the same
	// snapshot, which is what makes first-transaction-wins well-defined
	// across obligations.
	transactions, err := o.feed.Fetch(ctx)
	if err != nil {
		o.logger.Warn("bank feed unavailable, ending run",
			"scanned", summary.Scanned,
			"error", err,
		)
		o.completeRun(runID, summary)
		return summary, fmt.Errorf("fetch bank feed: %w", err)
	}

	o.logger.Debug("starting reconciliation pass",
		"obligations", len(obligations),
		"transactions", len(transactions),
	)

	// A transaction claimed earlier in the run is off the table for every
	// later obligation, even if its write failed; the next run re-evaluates.
	usedIDs := make(map[string]bool)

	for _, ob := range obligations {
		result := o.matcher.FindMatch(ob, transactions, usedIDs)
		if result == nil {
			continue
		}

		usedIDs[result.Transaction.ID] = true

		if err := o.applyMatch(ob, result); err != nil {
			summary.Failed++
			if errors.Is(err, storage.ErrWriteConflict) {
				o.logger.Warn("obligation changed concurrently, skipping",
					"booking_code", ob.BookingCode,
					"transaction_id", result.Transaction.ID,
				)
			} else {
				o.logger.Error("failed to apply match",
					"booking_code", ob.BookingCode,
					"transaction_id", result.Transaction.ID,
					"error", err,
				)
			}
			continue
		}

		summary.Matched++

		o.logger.Info("reconciled payment",
			"booking_code", ob.BookingCode,
			"transaction_id", result.Transaction.ID,
			"amount", result.Transaction.Amount,
			"amount_diff", result.AmountDiff,
		)

		o.notify(ob, result)
	}

	o.completeRun(runID, summary)

	return summary, nil
}

// applyMatch advances payment and booking state for one matched obligation.
func (o *Orchestrator) applyMatch(ob *booking.Obligation, result *matcher.MatchResult) error {
	return o.storage.ApplyMatch(ob.BookingCode, result.Transaction.ID, result.MatchedAt)
}

// notify writes exactly one notification record for a confirmed payment.
// Notification failure is logged but never rolls back the match: the state
// transition already happened and delivery is a collaborator's concern.
func (o *Orchestrator) notify(ob *booking.Obligation, result *matcher.MatchResult) {
	n := &storage.Notification{
		ID:        uuid.NewString(),
		Recipient: ob.UserID,
		Title:     "Payment received",
		Message: fmt.Sprintf(
			"Your bank transfer for booking %s was received and the booking is confirmed (transaction %s).",
			ob.BookingCode, result.Transaction.ID,
		),
		Type:         "payment",
		RelatedID:    ob.BookingCode,
		RelatedModel: "Booking",
	}

	if err := o.storage.CreateNotification(n); err != nil {
		o.logger.Error("failed to create notification",
			"booking_code", ob.BookingCode,
			"recipient", ob.UserID,
			"error", err,
		)
	}
}

// completeRun closes the audit record when one was opened.
func (o *Orchestrator) completeRun(runID int64, summary *Summary) {
	if runID == 0 {
		return
	}
	if err := o.storage.CompleteReconRun(runID, summary.Scanned, summary.Matched, summary.Failed); err != nil {
		o.logger.Warn("failed to complete run tracking", "run_id", runID, "error", err)
	}
}

// ensure the real client satisfies the dependency
var _ FeedClient = (*bankfeed.Client)(nil)
