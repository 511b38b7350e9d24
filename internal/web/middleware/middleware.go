package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/selectarr/selectarr/internal/auth"
	"github.com/selectarr/selectarr/internal/database"
)

type contextKey string

// DeviceContextKey is the context key for the authenticated device.
const DeviceContextKey contextKey = "device"

// Logger is a middleware that logs requests
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("remote", r.RemoteAddr).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("Request")
		}()

		next.ServeHTTP(ww, r)
	})
}

// DeviceAuth authenticates requests with a device API key, taken from the
// X-Api-Key header, a bearer token, or an apikey query parameter (players
// that cannot set headers, e.g. EventSource, use the query form).
func DeviceAuth(authService *auth.DeviceAuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractAPIKey(r)
			if key == "" {
				http.Error(w, "api key required", http.StatusUnauthorized)
				return
			}

			device, err := authService.ValidateAPIKey(key)
			if err != nil {
				log.Error().Err(err).Msg("Failed to validate api key")
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if device == nil {
				http.Error(w, "invalid api key", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), DeviceContextKey, device)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DeviceFromContext retrieves the authenticated device from context.
func DeviceFromContext(ctx context.Context) *database.Device {
	device, ok := ctx.Value(DeviceContextKey).(*database.Device)
	if !ok {
		return nil
	}
	return device
}

func extractAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-Api-Key"); key != "" {
		return key
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	return r.URL.Query().Get("apikey")
}

// AllowSubnet is a middleware that restricts access to connections from within the allowed subnet.
// This checks the actual connection source (RemoteAddr), useful for whitelisting reverse proxies.
func AllowSubnet(allowedNet *net.IPNet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// If no subnet restriction, allow all
			if allowedNet == nil {
				next.ServeHTTP(w, r)
				return
			}

			// Get the direct connection IP from RemoteAddr
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				// Maybe it's just an IP without port
				host = r.RemoteAddr
			}

			ip := net.ParseIP(host)
			if ip == nil {
				log.Warn().Str("remote_addr", r.RemoteAddr).Msg("Could not parse remote address")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			if !allowedNet.Contains(ip) {
				log.Warn().
					Str("remote_addr", r.RemoteAddr).
					Str("allowed_subnet", allowedNet.String()).
					Msg("Connection rejected: source IP not in allowed subnet")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
