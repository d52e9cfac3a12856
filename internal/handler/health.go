package handler

import (
	"net/http"
)

const apiVersion = "1.0.0"

// Info identifies the API to clients checking compatibility.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"name":    "aegisum-mobile-wallet-api",
		"version": apiVersion,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.node.Health(r.Context())
	status := http.StatusOK
	if report.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSONStatus(w, status, report)
}

func (h *Handler) BlockchainInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.node.BlockchainInfo(r.Context())
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, info)
}
