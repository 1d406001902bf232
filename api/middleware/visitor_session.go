package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/omnicart-backend/pkg/logger"
)

// VisitorSessionHeader carries the storefront visitor id in both directions.
const VisitorSessionHeader = "X-OmniCart-Session"

const maxVisitorSessionLen = 128

// VisitorSession resolves the visitor session from the request header and
// issues a fresh one when it is absent or malformed. The effective value is
// always echoed back so clients can persist it.
func VisitorSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := strings.TrimSpace(r.Header.Get(VisitorSessionHeader))
			if !validVisitorSession(session) {
				session = uuid.NewString()
			}
			w.Header().Set(VisitorSessionHeader, session)

			ctx := WithVisitorSession(r.Context(), session)
			if logg != nil {
				ctx = logg.WithVisitorSession(ctx, session)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validVisitorSession(value string) bool {
	if value == "" || len(value) > maxVisitorSessionLen {
		return false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
