// Package websocket upgrades HTTP connections for the realtime hub.
package websocket

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"pookal/internal/logging"
	"pookal/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local companion app: only browser clients on this machine connect.
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return strings.Contains(origin, "://localhost") || strings.Contains(origin, "://127.0.0.1")
	},
}

// Handler upgrades the request and attaches the client to the hub.
func Handler(hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Warnf("websocket: upgrade failed: %v", err)
			return
		}
		realtime.NewClient(hub, conn)
	}
}
