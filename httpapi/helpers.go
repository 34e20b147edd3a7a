package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/source"
	"github.com/viant/phoenixgrid/spectrum"
)

// ErrBadRequest marks malformed query parameters.
var ErrBadRequest = errors.New("bad request")

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{Code: code, Message: message}
}

// ToHTTPResponse maps an error to its status code and client message.
// Server-side failures are not described to the client.
func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, source.ErrUnknownSource), errors.Is(err, grid.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, spectrum.ErrUnitMismatch):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parseQuery reads teff, logg, feh and alpha from the URL. teff and logg are
// required; feh and alpha default to zero.
func parseQuery(r *http.Request) (grid.Query, error) {
	var q grid.Query
	values := r.URL.Query()
	fields := []struct {
		name     string
		dest     *float64
		required bool
	}{
		{"teff", &q.Teff, true},
		{"logg", &q.Logg, true},
		{"feh", &q.FeH, false},
		{"alpha", &q.Alpha, false},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(values.Get(f.name))
		if raw == "" {
			if f.required {
				return q, fmt.Errorf("%w: %s is required", ErrBadRequest, f.name)
			}
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return q, fmt.Errorf("%w: %s: %q is not a number", ErrBadRequest, f.name, raw)
		}
		*f.dest = d.InexactFloat64()
	}
	return q, nil
}

func parseMode(r *http.Request) (grid.Mode, error) {
	m, err := grid.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		return m, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return m, nil
}

func parseUnit(r *http.Request, name string) (spectrum.Unit, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return "", nil
	}
	u := spectrum.ParseUnit(raw)
	if !u.Known() {
		return "", fmt.Errorf("%w: %s: unknown unit %q", ErrBadRequest, name, raw)
	}
	return u, nil
}
