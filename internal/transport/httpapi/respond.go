package httpapi

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
)

type errorBody struct {
	Code     apperrors.Code    `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("cannot write response", "err", err)
	}
}

// respondError writes err as {code, message, metadata}. Errors outside the
// domain taxonomy are logged and hidden behind INTERNAL.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	body := errorBody{Code: code, Message: err.Error(), Metadata: apperrors.GetMetadata(err)}
	if code == apperrors.CodeUnknown || code == apperrors.CodeInternal {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		body = errorBody{Code: apperrors.CodeInternal, Message: "internal error"}
	}
	h.respondJSON(w, body.Code.HTTPStatus(), body)
}
