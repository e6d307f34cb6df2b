package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldbook-vn/recon-backend/internal/adapters/bankfeed"
	"github.com/fieldbook-vn/recon-backend/internal/domain/booking"
)

func makeObligation(code string, amount int64) *booking.Obligation {
	return &booking.Obligation{
		BookingCode:    code,
		UserID:         "user-1",
		ExpectedAmount: amount,
		Method:         booking.MethodBanking,
		PaymentState:   booking.PaymentStatePending,
		BookingStatus:  booking.StatusPending,
	}
}

func makeTransaction(id string, direction bankfeed.Direction, amount int64, description string) *bankfeed.Transaction {
	return &bankfeed.Transaction{
		ID:          id,
		Direction:   direction,
		Amount:      amount,
		Description: description,
		Date:        time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC),
	}
}

func TestFindMatch_ExactMatch(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	ob := makeObligation("BK000123", 150000)

	txs := []*bankfeed.Transaction{
		makeTransaction("tx1", bankfeed.DirectionIn, 150000, "CK BK000123 NGUYEN VAN A"),
	}

	result := m.FindMatch(ob, txs, map[string]bool{})
	require.NotNil(t, result)
	assert.Equal(t, "tx1", result.Transaction.ID)
	assert.Equal(t, int64(0), result.AmountDiff)
	assert.Equal(t, txs[0].Date, result.MatchedAt)
}

func TestFindMatch_Deterministic(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	ob := makeObligation("BK000123", 150000)

	txs := []*bankfeed.Transaction{
		makeTransaction("tx1", bankfeed.DirectionIn, 150000, "CK BK000123 A"),
		makeTransaction("tx2", bankfeed.DirectionIn, 150000, "CK BK000123 B"),
	}

	first := m.FindMatch(ob, txs, map[string]bool{})
	for i := 0; i < 10; i++ {
		again := m.FindMatch(ob, txs, map[string]bool{})
		require.NotNil(t, again)
		assert.Equal(t, first.Transaction.ID, again.Transaction.ID)
	}
	assert.Equal(t, "tx1", first.Transaction.ID)
}

func TestFindMatch_AmountToleranceBoundary(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	ob := makeObligation("BK000123", 150000)

	t.Run("within tolerance matches", func(t *testing.T) {
		txs := []*bankfeed.Transaction{
			makeTransaction("tx1", bankfeed.DirectionIn, 150099, "BK000123"),
		}
		result := m.FindMatch(ob, txs, map[string]bool{})
		require.NotNil(t, result)
		assert.Equal(t, int64(99), result.AmountDiff)
	})

	t.Run("at tolerance does not match", func(t *testing.T) {
		txs := []*bankfeed.Transaction{
			makeTransaction("tx1", bankfeed.DirectionIn, 150100, "BK000123"),
		}
		assert.Nil(t, m.FindMatch(ob, txs, map[string]bool{}))
	})

	t.Run("underpayment within tolerance matches", func(t *testing.T) {
		txs := []*bankfeed.Transaction{
			makeTransaction("tx1", bankfeed.DirectionIn, 149901, "BK000123"),
		}
		assert.NotNil(t, m.FindMatch(ob, txs, map[string]bool{}))
	})
}

func TestFindMatch_DescriptionNormalization(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	ob := makeObligation("BK000123", 150000)

	t.Run("code surrounded by bank text matches", func(t *testing.T) {
		txs := []*bankfeed.Transaction{
			makeTransaction("tx1", bankfeed.DirectionIn, 150000, "CK BK000123 NGUYEN VAN A"),
		}
		assert.NotNil(t, m.FindMatch(ob, txs, map[string]bool{}))
	})

	t.Run("code broken by whitespace does not match", func(t *testing.T) {
		txs := []*bankfeed.Transaction{
			makeTransaction("tx1", bankfeed.DirectionIn, 150000, "bk 000123"),
		}
		assert.Nil(t, m.FindMatch(ob, txs, map[string]bool{}))
	})

	t.Run("lowercase code matches", func(t *testing.T) {
		txs := []*bankfeed.Transaction{
			makeTransaction("tx1", bankfeed.DirectionIn, 150000, "chuyen khoan bk000123"),
		}
		assert.NotNil(t, m.FindMatch(ob, txs, map[string]bool{}))
	})

	t.Run("punctuation around code matches", func(t *testing.T) {
		txs := []*bankfeed.Transaction{
			makeTransaction("tx1", bankfeed.DirectionIn, 150000, "TT don: BK000123."),
		}
		assert.NotNil(t, m.FindMatch(ob, txs, map[string]bool{}))
	})

	t.Run("unrelated description does not match", func(t *testing.T) {
		txs := []*bankfeed.Transaction{
			makeTransaction("tx1", bankfeed.DirectionIn, 150000, "luong thang 8"),
		}
		assert.Nil(t, m.FindMatch(ob, txs, map[string]bool{}))
	})
}

func TestFindMatch_OnlyIncomingTransactions(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	ob := makeObligation("BK000123", 150000)

	txs := []*bankfeed.Transaction{
		makeTransaction("tx1", bankfeed.DirectionOut, 150000, "BK000123"),
		makeTransaction("tx2", bankfeed.DirectionIn, 150000, "BK000123"),
	}

	result := m.FindMatch(ob, txs, map[string]bool{})
	require.NotNil(t, result)
	assert.Equal(t, "tx2", result.Transaction.ID)
}

func TestFindMatch_FirstMatchWinsInFeedOrder(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	ob := makeObligation("BK000123", 150000)

	// tx2 is a "better" amount match but tx1 comes first in feed order
	txs := []*bankfeed.Transaction{
		makeTransaction("tx1", bankfeed.DirectionIn, 150050, "BK000123"),
		makeTransaction("tx2", bankfeed.DirectionIn, 150000, "BK000123"),
	}

	result := m.FindMatch(ob, txs, map[string]bool{})
	require.NotNil(t, result)
	assert.Equal(t, "tx1", result.Transaction.ID)
}

func TestFindMatch_SkipsUsedTransactions(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	ob := makeObligation("BK000123", 150000)

	txs := []*bankfeed.Transaction{
		makeTransaction("tx1", bankfeed.DirectionIn, 150000, "BK000123"),
		makeTransaction("tx2", bankfeed.DirectionIn, 150000, "BK000123"),
	}

	result := m.FindMatch(ob, txs, map[string]bool{"tx1": true})
	require.NotNil(t, result)
	assert.Equal(t, "tx2", result.Transaction.ID)
}

func TestFindMatch_EmptyCandidates(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	ob := makeObligation("BK000123", 150000)

	assert.Nil(t, m.FindMatch(ob, nil, map[string]bool{}))
	assert.Nil(t, m.FindMatch(ob, []*bankfeed.Transaction{}, map[string]bool{}))
}

func TestFindMatch_EmptyCodeNeverMatches(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	ob := makeObligation("---", 150000) // normalizes to empty

	txs := []*bankfeed.Transaction{
		makeTransaction("tx1", bankfeed.DirectionIn, 150000, "anything"),
	}

	assert.Nil(t, m.FindMatch(ob, txs, map[string]bool{}))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "bk000123", NormalizeCode("BK000123"))
	assert.Equal(t, "bk000123", NormalizeCode("BK-000123"))
	assert.Equal(t, "bk000123", NormalizeCode(" bk 000123 "))
}

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, "ck bk000123 nguyen van a", NormalizeDescription("CK BK000123 NGUYEN VAN A"))
	assert.Equal(t, "bk 000123", NormalizeDescription("bk 000123"))
	// Diacritics collapse into separators without splitting the code
	assert.Contains(t, NormalizeDescription("CK BK000123 NGUYỄN VĂN A"), "bk000123")
}
