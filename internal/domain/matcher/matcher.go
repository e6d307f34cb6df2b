// Package matcher decides whether a bank transaction satisfies a pending
// payment obligation.
//
// The policy is deliberately tolerant of customer-typed text:
//   - Only incoming (IN) transactions are candidates
//   - Amount must be within AmountTolerance of the expected amount
//   - The booking code must appear contiguously in the transfer description
//     after both sides are lowercased and reduced to [a-z0-9]; punctuation
//     and diacritics around the code are ignored, but a code broken apart by
//     whitespace ("bk 000123") does not count
//   - The FIRST candidate in input order wins; there is no "best" match
//
// First-match is the documented tie-break: input order is whatever the bank
// feed returned, and filtering preserves it, so repeated calls with identical
// inputs always return the same result.
package matcher

import (
	"strings"

	"github.com/fieldbook-vn/recon-backend/internal/adapters/bankfeed"
	"github.com/fieldbook-vn/recon-backend/internal/domain/booking"
)

// Matcher matches obligations with incoming bank transactions.
// It is pure: no I/O, no state beyond configuration.
type Matcher struct {
	config Config
}

// NewMatcher creates a new matcher with the given config
func NewMatcher(config Config) *Matcher {
	return &Matcher{
		config: config,
	}
}

// FindMatch returns the first transaction satisfying the obligation, or nil.
// Transactions whose IDs appear in usedIDs are skipped so that one
// transaction is consumed by at most one obligation per run; the caller
// owns that set.
func (m *Matcher) FindMatch(
	ob *booking.Obligation,
	candidates []*bankfeed.Transaction,
	usedIDs map[string]bool,
) *MatchResult {
	code := NormalizeCode(ob.BookingCode)
	if code == "" {
		return nil
	}

	for _, tx := range candidates {
		if usedIDs[tx.ID] {
			continue
		}

		if tx.Direction != bankfeed.DirectionIn {
			continue
		}

		diff := tx.Amount - ob.ExpectedAmount
		if diff < 0 {
			diff = -diff
		}
		if diff >= m.config.AmountTolerance {
			continue
		}

		if !strings.Contains(NormalizeDescription(tx.Description), code) {
			continue
		}

		// First match wins, in feed order
		return &MatchResult{
			Transaction: tx,
			AmountDiff:  diff,
			MatchedAt:   tx.Date,
		}
	}

	return nil
}

// NormalizeCode lowercases the booking code and strips every character
// outside [a-z0-9]. Booking codes have no legitimate special characters, so
// this loses nothing.
func NormalizeCode(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if isAlnum(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// NormalizeDescription lowercases the description and maps every character
// outside [a-z0-9] to a single space. Mapping to a space rather than deleting
// keeps token boundaries intact: the code must appear contiguously, so
// "CK BK000123 NGUYEN VAN A" matches code BK000123 while "bk 000123" does
// not. Diacritics and punctuation a customer adds around the code collapse
// into separators and are harmless.
func NormalizeDescription(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if isAlnum(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	return b.String()
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
