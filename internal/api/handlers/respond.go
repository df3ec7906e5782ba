package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Cheertaboi/shop-microservices/internal/service"
	"github.com/Cheertaboi/shop-microservices/internal/validation"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

// writeError maps the service error taxonomy onto a status and body.
// Unrecognised errors are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": verr.Fields})
		return
	}

	code, msg := classify(err)
	if code >= 500 {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", code, "err", err)
	}
	writeMessage(w, code, msg)
}

func classify(err error) (int, string) {
	for _, e := range []error{
		service.ErrInvalidQuantity,
		service.ErrQuantityTooLarge,
		service.ErrEmptyCart,
		service.ErrMissingAddress,
		service.ErrUserExists,
	} {
		if errors.Is(err, e) {
			return http.StatusBadRequest, e.Error()
		}
	}
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "No token, authorization denied"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, service.ErrForbidden.Error()
	}
	for _, e := range []error{
		service.ErrProductNotFound,
		service.ErrCartNotFound,
		service.ErrItemNotFound,
		service.ErrOrderNotFound,
		service.ErrUserNotFound,
	} {
		if errors.Is(err, e) {
			return http.StatusNotFound, e.Error()
		}
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrCartUnavailable):
		return http.StatusBadGateway, "Failed to retrieve cart"
	case errors.Is(err, service.ErrUserUnavailable):
		return http.StatusBadGateway, "Failed to retrieve user details"
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "Upstream service unavailable"
	}
	return http.StatusInternalServerError, "Server error"
}

// decode validates the body against schema and then unmarshals it into dst.
func decode(r *http.Request, schema *validation.Schema, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := schema.Validate(body); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		verr := service.NewValidationError()
		verr.Add("body", "Invalid JSON")
		return verr
	}
	return nil
}
