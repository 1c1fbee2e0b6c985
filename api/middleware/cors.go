package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the register UI, served from the given origins, to call the API.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-Id", "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-Id", "Idempotent-Replayed"},
		MaxAge:         300,
	}).Handler
}
