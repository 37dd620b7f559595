// Package clientip resolves the address of the client behind a request.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP from the request.
// r.RemoteAddr is used unless it is a loopback or private address, in which
// case the app sits behind a local reverse proxy and the right-most valid
// X-Forwarded-For hop (or X-Real-IP) is used instead.
func RealClientIP(r *http.Request) string {
	remote := remoteHost(r.RemoteAddr)
	ip := net.ParseIP(remote)
	if ip == nil || !(ip.IsLoopback() || ip.IsPrivate()) {
		return remote
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) != nil {
				return hop
			}
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(real) != nil {
		return real
	}
	return remote
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.TrimSpace(addr)
	}
	return strings.TrimSpace(host)
}
