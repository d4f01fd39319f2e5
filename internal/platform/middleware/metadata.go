package middleware

import (
	"context"
	"net/http"
	"net/netip"
	"strings"
)

// maxForwardedForLength caps the X-Forwarded-For header to keep oversized
// values out of stored records.
const maxForwardedForLength = 500

type clientIPKey struct{}
type userAgentKey struct{}

// ClientMetadata extracts the client IP address and User-Agent from the
// request and adds them to the context for handlers and audit records.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = context.WithValue(ctx, clientIPKey{}, extractClientIP(r))
		ctx = context.WithValue(ctx, userAgentKey{}, r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP returns the client IP placed by ClientMetadata.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent returns the User-Agent placed by ClientMetadata.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

func extractClientIP(r *http.Request) string {
	remoteIP := parseRemoteAddr(r.RemoteAddr)

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" || len(xff) > maxForwardedForLength {
		return remoteIP
	}

	clientIP := xff
	if before, _, ok := strings.Cut(xff, ","); ok {
		clientIP = before
	}
	clientIP = strings.TrimSpace(clientIP)
	if _, err := netip.ParseAddr(clientIP); err != nil {
		return remoteIP
	}
	return clientIP
}

// parseRemoteAddr extracts the IP from RemoteAddr (strips port).
func parseRemoteAddr(remoteAddr string) string {
	if strings.HasPrefix(remoteAddr, "[") {
		if idx := strings.LastIndex(remoteAddr, "]:"); idx != -1 {
			return remoteAddr[1:idx]
		}
		return strings.Trim(remoteAddr, "[]")
	}
	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		return remoteAddr[:idx]
	}
	return remoteAddr
}
