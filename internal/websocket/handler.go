package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// Handler upgrades connections and runs them as hub clients. resolveGym
// decides which gym's feed the caller may watch; returning an error
// rejects the connection before the upgrade.
func Handler(hub *Hub, logger *slog.Logger, resolveGym func(r *http.Request) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gymID, err := resolveGym(r)
		if err != nil {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Mobile clients connect from app webviews, not browsers
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, gymID)
		client.Run(r.Context())
	}
}
