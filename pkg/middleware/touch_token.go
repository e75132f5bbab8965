package middleware

import (
	"net/http"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/AndersonAGodoy/noah-server/internal/services"
)

// TouchTokenMiddleware refreshes a device token's last-active timestamp
// whenever a request carries one. SaveToken throttles the actual write to
// once per window, so this stays cheap on hot paths.
func TouchTokenMiddleware(tokenService *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := r.Header.Get("X-Push-Token"); token != "" {
				device := models.DeviceInfo{
					UserAgent: r.UserAgent(),
					Platform:  r.Header.Get("X-Platform"),
				}
				_, _ = tokenService.SaveToken(r.Context(), token, device, "")
			}
			next.ServeHTTP(w, r)
		})
	}
}
