package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/middleware"
)

func (h *Handler) LinkWallet(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var link domain.WalletLink
	if err := loadAndValidateRequestBody(r, &link); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	wallet, err := h.wallet.Link(r.Context(), user.Id, link)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, wallet)
}

func (h *Handler) UnlinkWallet(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	address := mux.Vars(r)["address"]

	if err := h.wallet.Unlink(user.Id, address); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RelabelWallet(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	address := mux.Vars(r)["address"]

	var body struct {
		Label string `json:"label" validate:"max=64"`
	}
	if err := loadAndValidateRequestBody(r, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	if err := h.wallet.Relabel(user.Id, address, body.Label); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ValidateWalletAddress(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	info, err := h.wallet.Validate(r.Context(), address)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, info)
}

func (h *Handler) WalletTransactions(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	address := mux.Vars(r)["address"]
	limit := queryInt(r, "limit", 50)

	txs, err := h.wallet.Transactions(r.Context(), user.Id, address, limit)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, txs)
}

func (h *Handler) Wallets(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	wallets, err := h.wallet.List(user.Id)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, wallets)
}

func (h *Handler) WalletBalance(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	address := mux.Vars(r)["address"]

	balance, err := h.wallet.Balance(r.Context(), user.Id, address)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, map[string]string{"address": address, "balance": balance.String()})
}
