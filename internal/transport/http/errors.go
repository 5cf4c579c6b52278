package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/collinsville22/pingmart/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidName        = "invalid_name"
	codeInvalidChain       = "invalid_chain"
	codeInvalidAddress     = "invalid_address"
	codeInvalidID          = "invalid_id"
	codeNameUnavailable    = "name_unavailable"
	codeOrderNotFound      = "order_not_found"
	codeRetryNotAllowed    = "retry_not_allowed"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps domain sentinels onto HTTP statuses. Anything not
// recognized becomes an opaque 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidName):
		writeError(w, http.StatusBadRequest, codeInvalidName, err.Error())
	case errors.Is(err, domain.ErrInvalidChain):
		writeError(w, http.StatusBadRequest, codeInvalidChain, err.Error())
	case errors.Is(err, domain.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, codeInvalidAddress, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrNameUnavailable), errors.Is(err, domain.ErrNameTaken):
		writeError(w, http.StatusConflict, codeNameUnavailable, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrRetryNotAllowed):
		writeError(w, http.StatusConflict, codeRetryNotAllowed, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
