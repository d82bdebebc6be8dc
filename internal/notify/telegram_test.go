package notify

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/bingoo/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFraudAlert(t *testing.T) {
	a := &domain.FraudAlert{
		ID:          uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		UserID:      uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		Type:        domain.AlertTooManyTransactions,
		Description: "11 transactions in 5m0s",
	}
	text := FormatFraudAlert(a)
	assert.Contains(t, text, "[too_many_transactions]")
	assert.Contains(t, text, "00000000-0000-0000-0000-000000000002")
	assert.Contains(t, text, "11 transactions in 5m0s")
}

func TestTelegramNotifier_SendsToChat(t *testing.T) {
	var mu sync.Mutex
	var sent url.Values

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"bingoo","username":"bingoo_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			_ = r.ParseForm()
			mu.Lock()
			sent = r.PostForm
			mu.Unlock()
			_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":-100,"type":"group"}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	n, err := NewTelegramNotifierWithEndpoint("123:abc", srv.URL+"/bot%s/%s", -100, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	alert := &domain.FraudAlert{ID: uuid.New(), UserID: uuid.New(), Type: domain.AlertSuspiciousWinnings, Description: "1200 points won"}
	require.NoError(t, n.NotifyFraudAlert(context.Background(), alert))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "-100", sent.Get("chat_id"))
	assert.Contains(t, sent.Get("text"), "suspicious_winnings")
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.NotifyFraudAlert(context.Background(), &domain.FraudAlert{}))
}
