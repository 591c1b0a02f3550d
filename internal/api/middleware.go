package api

import (
	"net/http"

	"github.com/rs/cors"
)

// WithCORS wraps the mux with the cross-origin policy the frontend needs.
// Origins come from CORS_ORIGINS; "*" allows any origin.
func WithCORS(next http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
	}).Handler(next)
}
