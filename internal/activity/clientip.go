package activity

import (
	"net/http"
	"strings"
)

const (
	headerForwardedFor = "X-Forwarded-For"
	headerRealIP       = "X-Real-IP"
)

// ClientAddress resolves the best-effort client address for a request.
//
// Forwarded headers are client-controlled unless a trusted proxy rewrites them,
// so they are only consulted when trustForwarded is set. peer is the transport
// address (gin's RemoteIP).
func ClientAddress(r *http.Request, peer string, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Get(headerForwardedFor); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		if rip := strings.TrimSpace(r.Header.Get(headerRealIP)); rip != "" {
			return rip
		}
	}
	return peer
}
