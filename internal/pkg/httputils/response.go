package httputils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"tush00nka/chathub/api/response"
	"tush00nka/chathub/internal/pkg/apperror"
)

// ResponseError translates err into its status code and error body. Internal
// errors are logged and their cause is not sent to the client.
func ResponseError(w http.ResponseWriter, err error) {
	e := apperror.From(err)
	message := e.Message
	if e.Kind == apperror.KindInternal {
		slog.Error("request failed", "error", err)
		message = "Internal server error"
	}

	details := e.Details
	if details == nil {
		details = []string{}
	}

	ResponseJSON(w, e.Status(), response.ErrorResponse{
		StatusCode: e.Status(),
		Kind:       e.Kind.String(),
		Message:    message,
		Errors:     details,
	})
}

// ResponseData writes data in the success envelope.
func ResponseData(w http.ResponseWriter, statusCode int, data any, message string) {
	ResponseJSON(w, statusCode, response.DataResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < http.StatusBadRequest,
	})
}

func ResponseJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
