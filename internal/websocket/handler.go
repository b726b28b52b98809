package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// FamilyResolver maps an authenticated request to the family group its
// feed connection should join.
type FamilyResolver func(r *http.Request) (int64, error)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and runs them as Hub clients in the caller's family group.
func HandleWebSocket(hub *Hub, resolve FamilyResolver, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, err := resolve(r)
		if err != nil {
			logger.Warn("websocket: resolve family", "error", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // App is served same-origin; cookies carry auth
		})
		if err != nil {
			logger.Warn("websocket: accept", "error", err)
			return
		}

		client := NewClient(hub, conn, familyID)
		client.Run(r.Context())
	}
}
