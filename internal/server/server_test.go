package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CompteClient/internal/dashboard"
	"CompteClient/internal/gateway"
	"CompteClient/internal/model"
	"CompteClient/internal/view"
)

type stubLoader struct {
	ds  *model.Dataset
	err error
}

func (s stubLoader) Load(context.Context) (*model.Dataset, error) { return s.ds, s.err }

type fixedState gateway.State

func (f fixedState) State() gateway.State { return gateway.State(f) }

func dataset() *model.Dataset {
	amount := func(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }
	return &model.Dataset{
		Products: []model.ProductExposure{{ProductName: "Courant", AvailableBalance: amount(4000000)}},
		Branches: []model.BranchDistribution{
			{BranchName: "A", Amount: amount(100)},
			{BranchName: "B", Amount: amount(300)},
		},
		TopDepositors: []model.TopDepositor{{Depositor: "Client 1", TotalExposure: amount(100)}},
	}
}

func newTestServer(t *testing.T, l dashboard.Loader) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(dashboard.NewService(l), fixedState(gateway.StateReady)).Router())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestPage(t *testing.T) {
	srv := newTestServer(t, stubLoader{ds: dataset()})

	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "25.00%")
}

func TestPage_DataUnavailable(t *testing.T) {
	cause := model.NewDataUnavailableError("connect store", errors.New("unreachable"))
	srv := newTestServer(t, stubLoader{err: cause})

	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "Données indisponibles")
	assert.NotContains(t, body, "<svg")
	assert.NotContains(t, body, "<table")
}

func TestLayoutJSON(t *testing.T) {
	srv := newTestServer(t, stubLoader{ds: dataset()})

	resp, body := get(t, srv.URL+"/api/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var l view.Layout
	require.NoError(t, json.Unmarshal([]byte(body), &l))
	require.Len(t, l.Left, 2)
	assert.Equal(t, []float64{100, 300}, l.Left[0].Combo.Bar.Values)
	assert.Equal(t, "25.00%", l.Right[1].Metrics[2].Value)
}

func TestLayoutJSON_DataUnavailable(t *testing.T) {
	srv := newTestServer(t, stubLoader{err: model.NewDataUnavailableError("open store", errors.New("x"))})

	resp, body := get(t, srv.URL+"/api/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "DATA_UNAVAILABLE")
}

func TestChart(t *testing.T) {
	srv := newTestServer(t, stubLoader{ds: dataset()})

	resp, body := get(t, srv.URL+"/charts/"+view.ChartBranches+".svg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "<svg"))

	resp, _ = get(t, srv.URL+"/charts/"+view.ChartManagers+".svg")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/charts/unknown.svg")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, stubLoader{ds: dataset()})

	resp, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","data":"ready"}`, body)
}
