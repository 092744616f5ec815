package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CompteClient/internal/dashboard"
	"CompteClient/internal/metrics"
	"CompteClient/internal/model"
)

// fakeTelegram records sendMessage calls and serves queued getUpdates bodies.
type fakeTelegram struct {
	mu       sync.Mutex
	sent     []map[string]string
	calls    int
	failures int
	reject   int
	updates  string
	offsets  []int
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		f.calls++
		if f.reject != 0 {
			w.WriteHeader(f.reject)
			w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
			return
		}
		if f.failures > 0 {
			f.failures--
			http.Error(w, `{"ok":false}`, http.StatusBadGateway)
			return
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.sent = append(f.sent, payload)
		w.Write([]byte(`{"ok":true}`))
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		var req getUpdatesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.offsets = append(f.offsets, req.Offset)
		w.Write([]byte(f.updates))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeTelegram) messages() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.sent...)
}

func newTestNotifier(t *testing.T, f *fakeTelegram) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	n := NewTelegramNotifier("token", "chat-1", "")
	n.APIBase = srv.URL
	n.RetryBase = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	f := &fakeTelegram{}
	n := newTestNotifier(t, f)

	require.NoError(t, n.Send(context.Background(), "<b>hello</b>"))
	sent := f.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "chat-1", sent[0]["chat_id"])
	assert.Equal(t, "HTML", sent[0]["parse_mode"])
	assert.Equal(t, "<b>hello</b>", sent[0]["text"])
}

func TestSendWithRetry(t *testing.T) {
	f := &fakeTelegram{failures: 2}
	n := newTestNotifier(t, f)

	require.NoError(t, n.SendWithRetry(context.Background(), "digest", 3))
	assert.Len(t, f.messages(), 1)
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	f := &fakeTelegram{failures: 10}
	n := newTestNotifier(t, f)

	err := n.SendWithRetry(context.Background(), "digest", 1)
	assert.ErrorContains(t, err, "all 2 attempts failed")
	assert.Empty(t, f.messages())
}

func TestSendWithRetry_PermanentRejectionIsNotRetried(t *testing.T) {
	f := &fakeTelegram{reject: http.StatusBadRequest}
	n := newTestNotifier(t, f)

	err := n.SendWithRetry(context.Background(), "digest", 3)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Bad Request: chat not found", apiErr.Description)
	assert.False(t, apiErr.Temporary())

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, 1, f.calls)
}

func TestAPIError_Temporary(t *testing.T) {
	assert.True(t, (&APIError{Status: http.StatusTooManyRequests}).Temporary())
	assert.True(t, (&APIError{Status: http.StatusBadGateway}).Temporary())
	assert.False(t, (&APIError{Status: http.StatusUnauthorized}).Temporary())
	assert.False(t, (&APIError{Status: http.StatusOK}).Temporary())
}

func TestPollOnce_AnswersCommands(t *testing.T) {
	f := &fakeTelegram{updates: `{"ok":true,"result":[
		{"update_id":10,"message":{"text":" /risk "}},
		{"update_id":11},
		{"update_id":12,"message":{"text":"/unknown"}}
	]}`}
	n := newTestNotifier(t, f)

	var got []string
	handler := func(_ context.Context, cmd string) string {
		got = append(got, cmd)
		if cmd == "/risk" {
			return "25.00%"
		}
		return ""
	}

	next, err := n.pollOnce(context.Background(), n.Client, 7, handler)
	require.NoError(t, err)
	assert.Equal(t, 13, next)
	f.mu.Lock()
	assert.Equal(t, []int{7}, f.offsets)
	f.mu.Unlock()
	assert.Equal(t, []string{"/risk", "/unknown"}, got)
	sent := f.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "25.00%", sent[0]["text"])
}

func TestPollOnce_APIError(t *testing.T) {
	f := &fakeTelegram{updates: `{"ok":false}`}
	n := newTestNotifier(t, f)

	next, err := n.pollOnce(context.Background(), n.Client, 5, func(context.Context, string) string { return "" })
	assert.Error(t, err)
	assert.Equal(t, 5, next)
}

func snapshot(top, total int64) *dashboard.Snapshot {
	ds := &model.Dataset{
		Branches:      []model.BranchDistribution{{BranchName: "A", Amount: decimal.NewNullDecimal(decimal.NewFromInt(total))}},
		TopDepositors: []model.TopDepositor{{Depositor: "Client <1>", TotalExposure: decimal.NewNullDecimal(decimal.NewFromInt(top))}},
	}
	return &dashboard.Snapshot{Dataset: ds, Metrics: metrics.Derive(ds.TopDepositors, ds.Branches)}
}

func TestFormatDigest(t *testing.T) {
	msg := FormatDigest(snapshot(1000000, 4000000))

	assert.Contains(t, msg, "Compte client")
	assert.Contains(t, msg, "Total des 10 premiers déposants: <b>1,000,000.00</b>")
	assert.Contains(t, msg, "Encours total: <b>4,000,000.00</b>")
	assert.Contains(t, msg, "% de concentration de risque: <b>25.00%</b>")
	assert.Contains(t, msg, "Client &lt;1&gt; (1,000,000.00)")
	assert.NotContains(t, msg, "⚠️")
}

func TestFormatDigest_ZeroTotal(t *testing.T) {
	msg := FormatDigest(snapshot(10, 0))
	assert.Contains(t, msg, "<b>N/A</b>")
	assert.Contains(t, msg, "⚠️")
}

func TestFormatLoadFailure(t *testing.T) {
	msg := FormatLoadFailure(model.NewDataUnavailableError("connect store", errors.New("a < b")))
	assert.Contains(t, msg, "données indisponibles")
	assert.Contains(t, msg, "a &lt; b")
}
