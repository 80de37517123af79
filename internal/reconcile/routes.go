package reconcile

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the event stream and a manual resync endpoint.
func RegisterRoutes(r chi.Router, hub *Hub, driver *Driver) {
	r.Get("/api/events", hub.HandleWebSocket)
	r.Post("/api/resync", func(w http.ResponseWriter, req *http.Request) {
		driver.Resync()
		w.WriteHeader(http.StatusNoContent)
	})
}
