// Package httpapi exposes the ledger engine over a JSON/HTTP boundary. The
// handlers only translate: requests are decoded into engine calls and engine
// results or errors are encoded back. All rules live in the engine.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/govalues/decimal"
	"go.uber.org/zap"

	"github.com/rustyeddy/exchange/ledger"
)

const defaultTopN = 5

// Handler implements the HTTP handlers for the exchange API.
type Handler struct {
	engine *ledger.Engine
	log    *zap.Logger
}

func NewHandler(engine *ledger.Engine, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{engine: engine, log: log}
}

// Routes returns a mux with every API route registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /accounts/register", h.registerAccount)
	mux.HandleFunc("POST /instruments/register", h.registerInstrument)
	mux.HandleFunc("POST /accounts/loan", h.takeLoan)
	mux.HandleFunc("POST /trades/buy", h.buy)
	mux.HandleFunc("POST /trades/sell", h.sell)
	mux.HandleFunc("GET /accounts", h.listAccounts)
	mux.HandleFunc("GET /instruments", h.listInstruments)
	mux.HandleFunc("GET /transactions", h.listTransactions)
	mux.HandleFunc("GET /accounts/top", h.topAccounts)
	mux.HandleFunc("GET /instruments/top", h.topInstruments)
	mux.HandleFunc("GET /health", h.health)
	return mux
}

type registerAccountRequest struct {
	Name string `json:"name"`
}

func (h *Handler) registerAccount(w http.ResponseWriter, r *http.Request) {
	var req registerAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	acct, err := h.engine.RegisterAccount(req.Name)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, acct)
}

type registerInstrumentRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

func (h *Handler) registerInstrument(w http.ResponseWriter, r *http.Request) {
	var req registerInstrumentRequest
	if !h.decode(w, r, &req) {
		return
	}
	price, err := decimal.NewFromFloat64(req.Price)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid price")
		return
	}
	inst, err := h.engine.RegisterInstrument(req.Name, price, req.Quantity)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, inst)
}

type loanRequest struct {
	AccountID int64   `json:"account_id"`
	Amount    float64 `json:"amount"`
}

type balanceResponse struct {
	NewBalance decimal.Decimal `json:"new_balance"`
}

func (h *Handler) takeLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if !h.decode(w, r, &req) {
		return
	}
	amount, err := decimal.NewFromFloat64(req.Amount)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	balance, err := h.engine.TakeLoan(req.AccountID, amount)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, balanceResponse{NewBalance: balance})
}

type tradeRequest struct {
	AccountID    int64 `json:"account_id"`
	InstrumentID int64 `json:"instrument_id"`
	Quantity     int64 `json:"quantity"`
}

func (h *Handler) buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.engine.Buy)
}

func (h *Handler) sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.engine.Sell)
}

func (h *Handler) trade(w http.ResponseWriter, r *http.Request, op func(int64, int64, int64) (decimal.Decimal, error)) {
	var req tradeRequest
	if !h.decode(w, r, &req) {
		return
	}
	balance, err := op(req.AccountID, req.InstrumentID, req.Quantity)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, balanceResponse{NewBalance: balance})
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accts := []ledger.Account{}
	for acct := range h.engine.Accounts() {
		accts = append(accts, acct)
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"accounts": accts})
}

func (h *Handler) listInstruments(w http.ResponseWriter, r *http.Request) {
	insts := []ledger.Instrument{}
	for inst := range h.engine.Instruments() {
		insts = append(insts, inst)
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"instruments": insts})
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs := []ledger.Transaction{}
	for tx := range h.engine.Transactions() {
		txs = append(txs, tx)
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (h *Handler) topAccounts(w http.ResponseWriter, r *http.Request) {
	n, ok := h.topN(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"top_accounts": h.engine.TopAccounts(n)})
}

func (h *Handler) topInstruments(w http.ResponseWriter, r *http.Request) {
	n, ok := h.topN(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"top_instruments": h.engine.TopInstruments(n)})
}

func (h *Handler) topN(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return defaultTopN, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		h.respondError(w, http.StatusBadRequest, "n must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

func (h *Handler) respondEngineError(w http.ResponseWriter, err error) {
	h.respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrInstrumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidArgument),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientInventory),
		errors.Is(err, ledger.ErrLoanLimitExceeded):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
