package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/utils"
)

func loadAndValidateRequestBody(r *http.Request, body any) error {
	return utils.DecodeValidate(r.Body, body)
}

func writeErrorAndStatusCode(w http.ResponseWriter, err error) {
	utils.WriteErrorAndStatusCode(w, err)
}

// parseIntParam parses an integer parameter and returns a meaningful error
func parseIntParam(param string, paramName string) (int, error) {
	val, err := strconv.Atoi(param)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", paramName)
	}
	return val, nil
}

// queryInt reads an optional integer query parameter, falling back on
// missing or malformed values.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}
