package navigate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type navigateRequest struct {
	ChatID    string `json:"chatId"`
	MessageID int    `json:"messageId"`
}

// RegisterRoutes mounts the navigation endpoint.
func RegisterRoutes(r chi.Router, nav *Navigator) {
	r.Post("/api/navigate", func(w http.ResponseWriter, req *http.Request) {
		var body navigateRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if body.ChatID == "" || body.MessageID < 0 {
			http.Error(w, "chatId and messageId are required", http.StatusBadRequest)
			return
		}

		if err := nav.GoTo(req.Context(), body.ChatID, body.MessageID); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
