package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratesServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFrankfurterClient_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts successfully", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "USD", r.URL.Query().Get("from"))
			assert.Equal(t, "EUR", r.URL.Query().Get("to"))
			_, _ = w.Write([]byte(`{"amount":1,"base":"USD","date":"2024-03-01","rates":{"EUR":0.92}}`))
		}))
		defer server.Close()

		client := NewFrankfurterClient(server.URL+"/", time.Second)
		got, err := client.Convert(context.Background(), decimal.NewFromInt(10), " usd", "eur ")
		require.NoError(t, err)
		require.True(t, decimal.RequireFromString("9.20").Equal(got.Amount))
		require.True(t, decimal.RequireFromString("0.92").Equal(got.Rate))
		require.Equal(t, "2024-03-01", got.RateDate.Format(time.DateOnly))
	})

	tests := []struct {
		name   string
		status int
		body   string
		errIs  error
		errMsg string
	}{
		{"non 200 response", http.StatusBadGateway, ``, nil, "status 502"},
		{"missing rate", http.StatusOK, `{"date":"2024-03-01","rates":{"GBP":0.8}}`, ErrRateMissing, ""},
		{"zero rate", http.StatusOK, `{"date":"2024-03-01","rates":{"EUR":0}}`, errNonPositiveRate, ""},
		{"bad json", http.StatusOK, `{"rates":`, nil, "decode"},
		{"bad date", http.StatusOK, `{"date":"yesterday","rates":{"EUR":0.9}}`, nil, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := NewFrankfurterClient(ratesServer(t, tt.status, tt.body).URL, time.Second)
			_, err := client.Convert(context.Background(), decimal.NewFromInt(10), "USD", "EUR")
			require.Error(t, err)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
			}
			if tt.errMsg != "" {
				require.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}

	t.Run("same currency short circuits", func(t *testing.T) {
		t.Parallel()

		client := NewFrankfurterClient("http://127.0.0.1:1", time.Second)
		got, err := client.Convert(context.Background(), decimal.NewFromInt(7), "EUR", "eur")
		require.NoError(t, err)
		require.True(t, decimal.NewFromInt(7).Equal(got.Amount))
		require.True(t, decimal.NewFromInt(1).Equal(got.Rate))
	})

	t.Run("rejects bad input", func(t *testing.T) {
		t.Parallel()

		client := NewFrankfurterClient("", 0)
		require.Equal(t, defaultBaseURL, client.baseURL)

		_, err := client.Convert(context.Background(), decimal.Zero, "USD", "EUR")
		require.Error(t, err)
		_, err = client.Convert(context.Background(), decimal.NewFromInt(1), "", "EUR")
		require.Error(t, err)
	})
}
