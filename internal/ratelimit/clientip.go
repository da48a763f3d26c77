package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP assume um proxy confiável na frente da API (um hop).
func ClientIP(r *http.Request) string {
	return clientIPBehind(r, 1)
}

// TrustedProxyKeyFunc devolve a KeyFunc para hops proxies confiáveis.
// O X-Forwarded-For é lido da direita para a esquerda: as entradas à esquerda vêm do cliente
// e podem ser forjadas. Com hops=0 os headers são ignorados e vale o RemoteAddr.
func TrustedProxyKeyFunc(hops int) KeyFunc {
	return func(r *http.Request) string {
		return clientIPBehind(r, hops)
	}
}

func clientIPBehind(r *http.Request, hops int) string {
	if hops > 0 {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			var entries []string
			for _, e := range strings.Split(xff, ",") {
				if e = strings.TrimSpace(e); e != "" {
					entries = append(entries, e)
				}
			}
			if len(entries) > 0 {
				idx := len(entries) - hops
				if idx < 0 {
					idx = 0
				}
				return entries[idx]
			}
		}

		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
