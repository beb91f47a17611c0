package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/redmonkez12/taskdesk/internal/apperror"
	"github.com/redmonkez12/taskdesk/internal/logging"
	"github.com/redmonkez12/taskdesk/internal/validation"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Code   string                  `json:"code,omitempty"`
	Errors []validation.FieldError `json:"errors,omitempty"`
}

// MessageResponse is a bare confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondErrorWithCode sends a JSON error response with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}

// RespondValidation sends 400 with the field-level error list.
func RespondValidation(w http.ResponseWriter, errs validation.Errors) {
	RespondJSON(w, ErrorResponse{
		Error:  "validation failed",
		Code:   CodeValidationFailed,
		Errors: errs,
	}, http.StatusBadRequest)
}

// RespondAppError translates err into a response using the error taxonomy.
// Unclassified errors become 500; their text is only exposed when exposeInternal is set.
func RespondAppError(w http.ResponseWriter, r *http.Request, err error, exposeInternal bool) {
	logger := logging.GetLoggerFromContext(r.Context())

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		logger.Warn("validation failed", "errors", verrs.Error())
		RespondValidation(w, verrs)
		return
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperror.KindServerFault {
			logger.Error("request failed", "error", err.Error())
		} else {
			logger.Warn("request rejected", "kind", appErr.Kind.String(), "code", appErr.Code)
		}
		RespondErrorWithCode(w, appErr.Message, appErr.Code, appErr.Kind.HTTPStatus())
		return
	}

	logger.Error("request failed: internal error", "error", err.Error())
	message := "internal server error"
	if exposeInternal {
		message = err.Error()
	}
	RespondErrorWithCode(w, message, CodeInternalError, http.StatusInternalServerError)
}

// DecodeJSON decodes a single JSON object from the request body into dst.
// Unknown fields are rejected so typos surface as 400s instead of silently doing nothing.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return ErrInvalidRequestBody
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrInvalidRequestBody
	}
	return nil
}

// ErrInvalidRequestBody is returned by DecodeJSON for malformed payloads.
var ErrInvalidRequestBody = apperror.New(apperror.KindValidation, CodeInvalidRequestBody, "invalid request body")
