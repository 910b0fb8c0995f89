package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"lunchstats/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type successEnvelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type errorBody struct {
	Message   string      `json:"message"`
	Status    int         `json:"status"`
	Timestamp string      `json:"timestamp"`
	Details   interface{} `json:"details,omitempty"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, successEnvelope{Success: true, Data: data, Timestamp: timestamp()})
}

func respondError(w http.ResponseWriter, status int, message string, details interface{}) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Message:   message,
		Status:    status,
		Timestamp: timestamp(),
		Details:   details,
	}})
}

// statusFor maps the service error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var validation *service.ValidationError
	var invalid validator.ValidationErrors
	switch {
	case errors.As(err, &validation), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusBadRequest:
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			details := make([]fieldError, 0, len(invalid))
			for _, fe := range invalid {
				field := fe.Namespace()
				if i := strings.Index(field, "."); i >= 0 {
					field = field[i+1:]
				}
				details = append(details, fieldError{Field: field, Rule: fe.Tag()})
			}
			respondError(w, status, "invalid request", details)
			return
		}
		var validation *service.ValidationError
		errors.As(err, &validation)
		respondError(w, status, err.Error(), []fieldError{{Field: validation.Field, Rule: validation.Message}})
	case http.StatusNotFound:
		respondError(w, status, err.Error(), nil)
	default:
		h.log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		respondError(w, status, "internal error", nil)
	}
}
