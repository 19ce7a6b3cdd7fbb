package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/exchange/ledger"
)

func newTestServer(t *testing.T) (*httptest.Server, *ledger.Engine) {
	t.Helper()

	engine := ledger.NewEngine(ledger.NewStore(), nil, "test-run", nil)
	srv := httptest.NewServer(NewHandler(engine, nil).Routes())
	t.Cleanup(srv.Close)
	return srv, engine
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRegisterAccount(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := post(t, srv, "/accounts/register", `{"name":"alice"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice", body["name"])
	assert.Equal(t, "100000", body["balance"])
	assert.Equal(t, float64(1), body["id"])

	resp, body = post(t, srv, "/accounts/register", `{"name":"alice"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "alice")
}

func TestRegisterInstrument(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := post(t, srv, "/instruments/register", `{"name":"ACME","price":10.5,"quantity":100}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "ACME", body["name"])
	assert.Equal(t, "10.5", body["price"])
	assert.Equal(t, float64(100), body["available_quantity"])

	resp, _ = post(t, srv, "/instruments/register", `{"name":"FREE","price":0,"quantity":100}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTakeLoan(t *testing.T) {
	srv, _ := newTestServer(t)
	post(t, srv, "/accounts/register", `{"name":"alice"}`)

	resp, body := post(t, srv, "/accounts/loan", `{"account_id":1,"amount":5000}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "105000", body["new_balance"])

	resp, _ = post(t, srv, "/accounts/loan", `{"account_id":1,"amount":99999}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, srv, "/accounts/loan", `{"account_id":42,"amount":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBuyAndSell(t *testing.T) {
	srv, _ := newTestServer(t)
	post(t, srv, "/accounts/register", `{"name":"alice"}`)
	post(t, srv, "/instruments/register", `{"name":"ACME","price":10,"quantity":100}`)

	resp, body := post(t, srv, "/trades/buy", `{"account_id":1,"instrument_id":1,"quantity":5}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "99950", body["new_balance"])

	resp, body = post(t, srv, "/trades/sell", `{"account_id":1,"instrument_id":1,"quantity":3}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "99980", body["new_balance"])

	resp, _ = post(t, srv, "/trades/buy", `{"account_id":1,"instrument_id":1,"quantity":5000}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, srv, "/trades/buy", `{"account_id":1,"instrument_id":9,"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = post(t, srv, "/trades/buy", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = get(t, srv, "/transactions")
	txs, ok := body["transactions"].([]any)
	require.True(t, ok)
	assert.Len(t, txs, 2)
}

func TestListingsAndTop(t *testing.T) {
	srv, engine := newTestServer(t)
	for _, name := range []string{"a", "b", "c"} {
		_, err := engine.RegisterAccount(name)
		require.NoError(t, err)
	}
	_, err := engine.RegisterInstrument("ACME", decimal.MustNew(10, 0), 100)
	require.NoError(t, err)

	_, body := get(t, srv, "/accounts")
	accts, ok := body["accounts"].([]any)
	require.True(t, ok)
	assert.Len(t, accts, 3)

	_, body = get(t, srv, "/instruments")
	insts, ok := body["instruments"].([]any)
	require.True(t, ok)
	assert.Len(t, insts, 1)

	_, body = get(t, srv, "/accounts/top?n=2")
	top, ok := body["top_accounts"].([]any)
	require.True(t, ok)
	assert.Len(t, top, 2)

	resp, _ := get(t, srv, "/accounts/top?n=-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = get(t, srv, "/instruments/top")
	topInsts, ok := body["top_instruments"].([]any)
	require.True(t, ok)
	assert.Len(t, topInsts, 1)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
