package matcher

import (
	"time"

	"github.com/fieldbook-vn/recon-backend/internal/adapters/bankfeed"
)

// Config holds matcher configuration
type Config struct {
	// AmountTolerance is the maximum allowed absolute difference, in minor
	// currency units, between the expected amount and the transaction amount.
	// The default absorbs bank rounding and fee artifacts; it is far smaller
	// than any real underpayment.
	AmountTolerance int64
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		AmountTolerance: 100,
	}
}

// MatchResult pairs one obligation with the transaction that satisfies it.
// Results are ephemeral: produced and applied within a single run, never
// persisted as their own entity.
type MatchResult struct {
	Transaction *bankfeed.Transaction
	AmountDiff  int64     // absolute difference in minor units
	MatchedAt   time.Time // transaction timestamp, recorded for audit
}
