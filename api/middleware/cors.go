package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{"Accept", "Authorization", "Content-Type", idempotencyHeader, requestIDHeader}
	corsExposed = []string{requestIDHeader, replayedHeader}
)

// CORS admits the storefront and admin console. Credentials are only
// allowed for an explicit origin list, never for "*".
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   corsHeaders,
		ExposedHeaders:   corsExposed,
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}).Handler
}
