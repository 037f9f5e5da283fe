package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crucial707/product-catalog/internal/common"
	"github.com/crucial707/product-catalog/internal/middleware"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// StatusFor maps a catalog error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// resultLabel names err for the catalog_operations_total metric.
func resultLabel(err error) string {
	switch StatusFor(err) {
	case http.StatusOK:
		return "ok"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusBadRequest:
		return "invalid"
	}
	return "error"
}

var errorMessages = map[int]string{
	http.StatusForbidden:  "You can only change products you own.",
	http.StatusNotFound:   "No product with such ID.",
	http.StatusConflict:   "User already exists.",
	http.StatusBadRequest: "Adjust your data and try again.",
}

type errorPage struct {
	page
	Status  int
	Message string
}

// writeError renders err for a browser. Missing sessions go to the login form.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusUnauthorized {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}

	msg, ok := errorMessages[status]
	if !ok {
		slog.Error("request failed",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		msg = ErrMessageInternal
	}
	renderTemplate(w, status, "error.html", errorPage{page: currentPage(r), Status: status, Message: msg})
}
