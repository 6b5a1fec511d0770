package common

import (
	"net"
	"net/http"
)

// ClientIP returns the host part of RemoteAddr. Forwarding headers are
// resolved upstream by chi's RealIP middleware, so they are not read here.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
