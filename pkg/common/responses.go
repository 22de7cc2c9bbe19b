package common

import (
	"encoding/json"
	"net/http"

	"tryon-backend/pkg/errors"
)

// ErrorResponse is the JSON error envelope. Only the type and a short
// human-readable message cross the boundary; causes and stack traces stay
// server-side.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON writes a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes a plain error message.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondAppError maps a typed application error to its HTTP status.
// Unknown errors become an opaque 500.
func RespondAppError(w http.ResponseWriter, err error) {
	if appErr := errors.GetAppError(err); appErr != nil {
		RespondJSON(w, appErr.HTTPStatus, ErrorResponse{
			Error: appErr.Message,
			Code:  string(appErr.Type),
		})
		return
	}
	RespondError(w, http.StatusInternalServerError, "internal server error")
}

// ParseJSONBody decodes a JSON request body with a size limit.
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
