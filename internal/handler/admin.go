package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/middleware"
)

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.LoginCreds
	if err := loadAndValidateRequestBody(r, &creds); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	token, err := h.admin.Login(creds)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, map[string]string{"token": token})
}

func (h *Handler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	users, err := h.admin.Users(search, limit, offset)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, users)
}

func (h *Handler) AdminUserDetails(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(mux.Vars(r)["id"], "user id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	details, err := h.admin.UserDetails(domain.UserId(id))
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, details)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Dashboard()
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, stats)
}

func (h *Handler) AdminTransactions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	logs, err := h.admin.TransactionLogs(limit, offset)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, logs)
}

func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(mux.Vars(r)["id"], "user id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.admin.SetUserBlocked(domain.UserId(id), true); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(mux.Vars(r)["id"], "user id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.admin.SetUserBlocked(domain.UserId(id), false); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// =========================================================================
// Blocklist moderation
// =========================================================================

func (h *Handler) BlockEntity(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdminFromContext(r)

	var req domain.BlockRequest
	if err := loadAndValidateRequestBody(r, &req); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	actor := "admin"
	if admin != nil {
		actor = admin.Username
	}

	entity, err := h.blocklist.Block(req, actor)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, entity)
}

func (h *Handler) UnblockEntity(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(mux.Vars(r)["id"], "entry id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.blocklist.Unblock(int64(id)); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnblockEntityByValue removes a blocklist entry by its (type, value) pair,
// for admin clients that do not track entry ids.
func (h *Handler) UnblockEntityByValue(w http.ResponseWriter, r *http.Request) {
	kind := domain.EntityKind(r.URL.Query().Get("entity_type"))
	value := r.URL.Query().Get("entity_value")

	if err := h.blocklist.UnblockByValue(kind, value); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BlockedEntities(w http.ResponseWriter, r *http.Request) {
	kind := domain.EntityKind(r.URL.Query().Get("entity_type"))
	search := r.URL.Query().Get("search")
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	entities, err := h.blocklist.List(kind, search, limit, offset)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, entities)
}

// BlocklistCheck reports whether a single entity is currently blocked.
func (h *Handler) BlocklistCheck(w http.ResponseWriter, r *http.Request) {
	kind := domain.EntityKind(r.URL.Query().Get("entity_type"))
	value := r.URL.Query().Get("entity_value")

	if !kind.Valid() || value == "" {
		http.Error(w, "entity_type and entity_value are required", http.StatusBadRequest)
		return
	}

	status := h.blocklist.Status(kind, value)
	writeJSON(w, map[string]string{"status": status.String()})
}

func (h *Handler) BlocklistStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.blocklist.Stats()
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, stats)
}

// =========================================================================
// Suspicious-activity reports
// =========================================================================

func (h *Handler) SuspiciousIPs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	ips, err := h.activity.SuspiciousIPs(limit, offset)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, ips)
}

func (h *Handler) SuspiciousUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	users, err := h.activity.SuspiciousUsers(limit, offset)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, users)
}

func (h *Handler) UserActivity(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(mux.Vars(r)["id"], "user id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit := queryInt(r, "limit", 50)

	records, err := h.activity.UserActivity(domain.UserId(id), limit)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, records)
}

func (h *Handler) IPActivity(w http.ResponseWriter, r *http.Request) {
	ip := mux.Vars(r)["ip"]
	limit := queryInt(r, "limit", 50)

	records, err := h.activity.IPActivity(ip, limit)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, records)
}

// =========================================================================
// Fee policy administration
// =========================================================================

func (h *Handler) UpdateFeePolicy(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdminFromContext(r)

	var update domain.FeePolicyUpdate
	if err := loadAndValidateRequestBody(r, &update); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	actor := "admin"
	if admin != nil {
		actor = admin.Username
	}

	policy, err := h.fee.UpdatePolicy(update, actor)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, policy)
}
