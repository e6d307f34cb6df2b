// Package bankfeed fetches the bank's recent transaction history.
//
// The client is a pure I/O adapter: it knows how to call the bank API and
// decode its response, nothing about matching or booking state. All failure
// modes (network, auth, malformed body) collapse into ErrFeedUnavailable so
// the reconciliation run can degrade to "no matches this cycle" instead of
// crashing the schedule.
package bankfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/config"
)

// ErrFeedUnavailable indicates the bank feed could not be fetched this cycle.
// Callers should skip the cycle and retry on the next tick, never within the
// same run.
var ErrFeedUnavailable = errors.New("bank feed unavailable")

// dateLayouts are the timestamp formats the bank API has been observed to use.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006 15:04:05",
}

// Client fetches transactions for a single configured bank account.
type Client struct {
	cfg    config.BankConfig
	http   *retryablehttp.Client
	logger *slog.Logger
}

// NewClient creates a bank feed client from explicit configuration.
// Credentials live only inside cfg and are never logged.
func NewClient(cfg config.BankConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = cfg.Timeout
	// retryablehttp logs full request URLs, which would include credentials
	rc.Logger = nil

	return &Client{
		cfg:    cfg,
		http:   rc,
		logger: logger,
	}
}

// Fetch returns the account's recent transactions.
// The window is whatever the bank API considers "recent" (typically the last
// day); this service does not control it. On any failure the returned error
// wraps ErrFeedUnavailable and the slice is nil.
func (c *Client) Fetch(ctx context.Context) ([]*Transaction, error) {
	endpoint, err := c.buildURL()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("bank feed request failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("bank feed returned non-OK status", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrFeedUnavailable, resp.StatusCode)
	}

	var body wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrFeedUnavailable, err)
	}

	// No success indicator means the bank has nothing for us, not an error
	if body.Success == nil || !*body.Success {
		c.logger.Debug("bank feed response without success indicator, treating as empty")
		return []*Transaction{}, nil
	}

	transactions := make([]*Transaction, 0, len(body.Transactions))
	for _, wt := range body.Transactions {
		tx, err := fromWire(wt)
		if err != nil {
			// One malformed entry should not cost us the rest of the feed
			c.logger.Warn("skipping malformed bank transaction", "transaction_id", wt.TransactionID, "error", err)
			continue
		}
		transactions = append(transactions, tx)
	}

	c.logger.Debug("fetched bank transactions",
		"count", len(transactions),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return transactions, nil
}

// buildURL assembles the GET URL with account credentials as query parameters.
func (c *Client) buildURL() (string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("accountNumber", c.cfg.AccountNumber)
	q.Set("password", c.cfg.Password)
	q.Set("token", c.cfg.Token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// fromWire converts a wire transaction, validating the fields matching relies on.
func fromWire(wt wireTransaction) (*Transaction, error) {
	if wt.TransactionID == "" {
		return nil, errors.New("missing transactionID")
	}

	direction := Direction(wt.Type)
	if direction != DirectionIn && direction != DirectionOut {
		return nil, fmt.Errorf("unknown direction %q", wt.Type)
	}

	if wt.Amount <= 0 {
		return nil, fmt.Errorf("non-positive amount %v", wt.Amount)
	}

	var date time.Time
	var err error
	for _, layout := range dateLayouts {
		if date, err = time.Parse(layout, wt.TransactionDate); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("unparseable transactionDate %q", wt.TransactionDate)
	}

	return &Transaction{
		ID:          wt.TransactionID,
		Direction:   direction,
		Amount:      int64(math.Round(wt.Amount)),
		Description: wt.Description,
		Date:        date,
	}, nil
}
