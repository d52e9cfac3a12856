package handler

import (
	"encoding/json"
	"net/http"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/config"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/logger"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/service"
)

type Handler struct {
	auth        service.AuthService
	wallet      service.WalletService
	transaction service.TransactionService
	fee         service.FeeService
	blocklist   service.BlocklistService
	activity    service.ActivityService
	admin       service.AdminService
	node        service.NodeService
	cfg         *config.Config
}

func New(
	auth service.AuthService,
	wallet service.WalletService,
	transaction service.TransactionService,
	fee service.FeeService,
	blocklist service.BlocklistService,
	activity service.ActivityService,
	admin service.AdminService,
	node service.NodeService,
	cfg *config.Config,
) *Handler {
	return &Handler{auth, wallet, transaction, fee, blocklist, activity, admin, node, cfg}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err.Error())
	}
}

func writeJSONStatus(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err.Error())
	}
}
