package http

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSOptions allows the captcha endpoints from origins. The clearance cookie
// is only sent cross-origin for an explicit origin list, never for "*".
func CORSOptions(origins []string) cors.Options {
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type", ClearanceHeader},
		AllowCredentials: !wildcard,
	}
}
