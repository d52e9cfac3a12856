package rpc

import (
	"errors"
	"net/http"
	"strings"

	internal_errors "github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
)

// ClassifyNodeError translates node rejection messages into client-facing
// errors. The node reports rejections as free text, so matching is by
// substring, mirroring what wallet front ends expect.
func ClassifyNodeError(err error) error {
	var nodeErr *NodeError
	if !errors.As(err, &nodeErr) {
		return err
	}

	msg := strings.ToLower(nodeErr.Message)
	switch {
	case strings.Contains(msg, "insufficient fee"):
		return &internal_errors.ErrorWithStatusCode{Message: "Transaction fee too low", StatusCode: http.StatusBadRequest}
	case strings.Contains(msg, "dust"):
		return &internal_errors.ErrorWithStatusCode{Message: "Transaction output too small (dust)", StatusCode: http.StatusBadRequest}
	case strings.Contains(msg, "invalid or non-wallet transaction id"):
		return &internal_errors.ErrorWithStatusCode{Message: "Transaction not found", StatusCode: http.StatusNotFound}
	case strings.Contains(msg, "already in block chain"), strings.Contains(msg, "txn-already-known"):
		return &internal_errors.ErrorWithStatusCode{Message: "Transaction already broadcast", StatusCode: http.StatusConflict}
	}
	return &internal_errors.ErrorWithStatusCode{Message: nodeErr.Message, StatusCode: http.StatusBadRequest}
}
