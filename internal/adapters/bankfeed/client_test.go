package bankfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/config"
)

func testConfig(endpoint string) config.BankConfig {
	return config.BankConfig{
		Endpoint:      endpoint,
		AccountNumber: "0123456789",
		Password:      "secret",
		Token:         "tok",
		Timeout:       2 * time.Second,
	}
}

func TestClient_Fetch_DecodesTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0123456789", r.URL.Query().Get("accountNumber"))
		assert.Equal(t, "secret", r.URL.Query().Get("password"))
		assert.Equal(t, "tok", r.URL.Query().Get("token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"transactions": [
				{"transactionID": "FT1001", "type": "IN", "amount": 150000, "description": "CK BK000123", "transactionDate": "2025-08-30 10:15:00"},
				{"transactionID": "FT1002", "type": "OUT", "amount": 90000, "description": "withdrawal", "transactionDate": "2025-08-30 11:00:00"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)

	txs, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "FT1001", txs[0].ID)
	assert.Equal(t, DirectionIn, txs[0].Direction)
	assert.Equal(t, int64(150000), txs[0].Amount)
	assert.Equal(t, "CK BK000123", txs[0].Description)
	assert.Equal(t, 2025, txs[0].Date.Year())

	assert.Equal(t, DirectionOut, txs[1].Direction)
}

func TestClient_Fetch_MissingSuccessIndicatorIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"transactions": [{"transactionID": "FT1", "type": "IN", "amount": 100, "description": "x", "transactionDate": "2025-08-30 10:00:00"}]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)

	txs, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestClient_Fetch_SkipsMalformedEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"success": true,
			"transactions": [
				{"transactionID": "", "type": "IN", "amount": 100, "description": "no id", "transactionDate": "2025-08-30 10:00:00"},
				{"transactionID": "FT2", "type": "SIDEWAYS", "amount": 100, "description": "bad type", "transactionDate": "2025-08-30 10:00:00"},
				{"transactionID": "FT3", "type": "IN", "amount": 0, "description": "zero", "transactionDate": "2025-08-30 10:00:00"},
				{"transactionID": "FT4", "type": "IN", "amount": 100, "description": "ok", "transactionDate": "2025-08-30 10:00:00"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)

	txs, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "FT4", txs[0].ID)
}

func TestClient_Fetch_ServerErrorIsFeedUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)

	txs, err := client.Fetch(context.Background())
	assert.Nil(t, txs)
	assert.True(t, errors.Is(err, ErrFeedUnavailable))
}

func TestClient_Fetch_MalformedBodyIsFeedUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)

	_, err := client.Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrFeedUnavailable))
}

func TestClient_Fetch_UnreachableHostIsFeedUnavailable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Timeout = 500 * time.Millisecond

	client := NewClient(cfg, nil)

	_, err := client.Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrFeedUnavailable))
}
