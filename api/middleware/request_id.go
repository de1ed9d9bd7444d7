package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
)

const (
	requestIDHeader    = "X-Request-Id"
	maxRequestIDLength = 128
)

// RequestID propagates the caller's X-Request-Id when it is usable and
// mints a uuid otherwise. The id is echoed back and added to the log context.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := inboundRequestID(r.Header.Get(requestIDHeader))
			if !ok {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// inboundRequestID refuses ids that are empty, oversized or carry
// characters that would break a log line.
func inboundRequestID(raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxRequestIDLength {
		return "", false
	}
	for _, c := range id {
		if c < 0x21 || c > 0x7e {
			return "", false
		}
	}
	return id, true
}
