package handler

import (
	"net/http"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/middleware"
)

type tokenResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var creds domain.UserCreds
	if err := loadAndValidateRequestBody(r, &creds); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	rc := middleware.GetRequestContext(r)
	user, token, err := h.auth.Register(creds, rc.IP)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, tokenResponse{Token: token, User: user})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.LoginCreds
	if err := loadAndValidateRequestBody(r, &creds); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	rc := middleware.GetRequestContext(r)
	user, token, err := h.auth.Login(creds, rc.IP)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, tokenResponse{Token: token, User: user})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetUserFromContext(r)
	if principal == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return
	}

	token, err := h.auth.Refresh(principal.Id)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, map[string]string{"token": token})
}

// Logout is a client-side operation with stateless tokens; the endpoint
// exists so the action lands in the activity ledger.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetUserFromContext(r)
	if principal == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return
	}

	user, err := h.auth.Profile(principal.Id)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, user)
}
