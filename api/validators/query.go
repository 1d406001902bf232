package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
)

func fieldError(message, field string, extra map[string]any) error {
	details := map[string]any{"field": field}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
}

// ParseQueryInt reads an optional integer query parameter bounded by
// [lo, hi]. Absent or blank values yield fallback.
func ParseQueryInt(r *http.Request, key string, fallback, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, fieldError("query parameter must be numeric", key, nil)
	case n < lo || n > hi:
		return 0, fieldError("query parameter out of range", key, map[string]any{"min": lo, "max": hi})
	}
	return n, nil
}

// ParsePathInt reads a non-negative integer path segment such as a product id.
func ParsePathInt(raw, field string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, fieldError("path parameter must be a non-negative integer", field, nil)
	}
	return n, nil
}
