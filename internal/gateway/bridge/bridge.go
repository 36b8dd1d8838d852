// Package bridge carries a bearer credential across the WebSocket upgrade
// boundary, where clients cannot attach an ordinary Authorization header.
//
// graphql-ws clients smuggle the credential inside the negotiated
// sub-protocol instead:
//
//	Sec-WebSocket-Protocol: graphql-transport-ws, {"authorization":"Bearer ..."}
//
// The bridge lifts that payload back into a standard Authorization header on
// the proxied upgrade request. It is best-effort: a connection whose
// sub-protocol cannot be parsed is forwarded unauthenticated, never dropped.
// The subscription layer downstream treats such a connection as tenant-less.
package bridge

import (
	"encoding/json"
	"net/http"
	"strings"
)

type subprotocolParams struct {
	Authorization string `json:"authorization"`
}

// IsUpgrade reports whether the request is a WebSocket upgrade handshake.
func IsUpgrade(r *http.Request) bool {
	if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return false
	}
	for _, token := range strings.Split(r.Header.Get("Connection"), ",") {
		if strings.EqualFold(strings.TrimSpace(token), "upgrade") {
			return true
		}
	}
	return false
}

// Authorize extracts the credential embedded in the sub-protocol header and
// sets it as the Authorization header on the request. Returns false when no
// credential could be extracted; the request is left untouched and must still
// be forwarded.
func Authorize(r *http.Request) bool {
	proto := r.Header.Get("Sec-WebSocket-Protocol")
	if proto == "" {
		return false
	}

	// The credential rides in the second comma-separated element, which is a
	// JSON object rather than a protocol name.
	_, payload, found := strings.Cut(proto, ",")
	if !found {
		return false
	}

	var params subprotocolParams
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &params); err != nil {
		return false
	}
	if params.Authorization == "" {
		return false
	}

	r.Header.Set("Authorization", params.Authorization)
	return true
}
