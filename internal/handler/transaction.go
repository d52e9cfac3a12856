package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/middleware"
)

type broadcastResponse struct {
	Txid string          `json:"txid"`
	Fee  string          `json:"fee"`
	Quote domain.FeeQuote `json:"fee_quote"`
}

func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	rc := middleware.GetRequestContext(r)

	var req domain.BroadcastRequest
	if err := loadAndValidateRequestBody(r, &req); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	result, quote, err := h.transaction.Broadcast(r.Context(), *user, rc, req)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, broadcastResponse{Txid: result.Txid, Fee: result.Fee.String(), Quote: quote})
}

func (h *Handler) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	logs, err := h.transaction.History(user.Id, limit, offset)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, logs)
}

func (h *Handler) TransactionStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	txid := mux.Vars(r)["txid"]

	report, err := h.transaction.Status(r.Context(), user.Id, txid)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, report)
}

func (h *Handler) EstimateFee(w http.ResponseWriter, r *http.Request) {
	confTarget := queryInt(r, "conf_target", 3)
	estimateMode := r.URL.Query().Get("estimate_mode")

	report, err := h.transaction.EstimateFee(r.Context(), confTarget, estimateMode)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, report)
}

// FeeSettings exposes the parts of the fee policy a wallet client needs to
// render a withdrawal preview.
func (h *Handler) FeeSettings(w http.ResponseWriter, r *http.Request) {
	policy, err := h.fee.Policy()
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"fee_type":    policy.Kind,
		"fee_amount":  policy.Amount.String(),
		"fee_address": policy.Address,
		"enabled":     policy.Enabled,
	})
}
