package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayPal struct {
	tokenCalls   atomic.Int32
	captureCode  int
	captureState string
	lastCreate   map[string]interface{}
}

func (f *fakePayPal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.tokenCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("PayPal-Request-Id"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastCreate))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"CREATED","links":[{"href":"https://paypal.test/approve/ORDER-1","rel":"approve"}]}`))
	})
	mux.HandleFunc("POST /v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(f.captureCode)
		if f.captureCode == http.StatusCreated {
			_, _ = w.Write([]byte(`{"id":"` + r.PathValue("id") + `","status":"` + f.captureState +
				`","purchase_units":[{"payments":{"captures":[{"id":"CAP-1","status":"` + f.captureState + `"}]}}]}`))
		}
	})
	return mux
}

func newTestPayPal(t *testing.T, f *fakePayPal) *PayPalProvider {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewPayPalProvider(srv.URL, "client", "secret", 5*time.Second)
}

func TestPayPal_CreateOrder(t *testing.T) {
	f := &fakePayPal{}
	p := newTestPayPal(t, f)

	order, err := p.CreateOrder(context.Background(), "tx-1", decimal.RequireFromString("12.5"), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", order.ID)
	assert.Equal(t, PayPalOrderCreated, order.Status)
	assert.Equal(t, "https://paypal.test/approve/ORDER-1", order.ApproveURL)

	units := f.lastCreate["purchase_units"].([]interface{})
	unit := units[0].(map[string]interface{})
	assert.Equal(t, "tx-1", unit["reference_id"])
	assert.Equal(t, map[string]interface{}{"currency_code": "EUR", "value": "12.50"}, unit["amount"])
}

func TestPayPal_TokenIsCached(t *testing.T) {
	f := &fakePayPal{}
	p := newTestPayPal(t, f)

	for i := 0; i < 3; i++ {
		_, err := p.CreateOrder(context.Background(), "tx", decimal.NewFromInt(1), "USD")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.tokenCalls.Load())

	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err := p.CreateOrder(context.Background(), "tx", decimal.NewFromInt(1), "USD")
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestPayPal_CaptureCompleted(t *testing.T) {
	f := &fakePayPal{captureCode: http.StatusCreated, captureState: PayPalOrderCompleted}
	p := newTestPayPal(t, f)

	res, err := p.CaptureOrder(context.Background(), "ORDER-1")
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, "CAP-1", res.CaptureID)
	assert.Equal(t, "ORDER-1", res.OrderID)
}

func TestPayPal_CaptureDeclinedIsAResult(t *testing.T) {
	f := &fakePayPal{captureCode: http.StatusUnprocessableEntity}
	p := newTestPayPal(t, f)

	res, err := p.CaptureOrder(context.Background(), "ORDER-1")
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Equal(t, PayPalOrderDeclined, res.Status)
}

func TestPayPal_CaptureServerErrorIsAnError(t *testing.T) {
	f := &fakePayPal{captureCode: http.StatusServiceUnavailable}
	p := newTestPayPal(t, f)

	_, err := p.CaptureOrder(context.Background(), "ORDER-1")
	assert.ErrorContains(t, err, "status 503")
}

func TestPayPal_MissingCredentials(t *testing.T) {
	p := NewPayPalProvider("http://127.0.0.1:0", "", "", time.Second)
	_, err := p.CreateOrder(context.Background(), "tx", decimal.NewFromInt(1), "USD")
	assert.ErrorContains(t, err, "credentials not configured")
}

func TestPayPal_BadCredentials(t *testing.T) {
	f := &fakePayPal{}
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	p := NewPayPalProvider(srv.URL, "client", "wrong", time.Second)

	_, err := p.CreateOrder(context.Background(), "tx", decimal.NewFromInt(1), "USD")
	assert.ErrorContains(t, err, "status 401")
}
