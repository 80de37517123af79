package annotations

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/minjae-ko/chatmarks/internal/settings"
)

// RegisterRoutes mounts annotation and preference endpoints on the given
// router. onChange, if non-nil, runs after every mutation so the
// reconciliation layer can resynchronize rendered indicators.
func RegisterRoutes(r chi.Router, store *Store, st *settings.Store, onChange func()) {
	notify := func() {
		if onChange != nil {
			onChange()
		}
	}

	r.Route("/api/annotations", func(r chi.Router) {
		r.Get("/", handleListAll(store))
		r.Get("/{chatID}", handleListChat(store))
		r.Get("/{chatID}/bookmarks/{messageID}", handleGetBookmark(store))
		r.Put("/{chatID}/bookmarks/{messageID}", handleUpsertBookmark(store, notify))
		r.Patch("/{chatID}/bookmarks/{messageID}", handleUpdateBookmarkNote(store, notify))
		r.Delete("/{chatID}/bookmarks/{messageID}", handleRemoveBookmark(store, notify))
		r.Post("/{chatID}/bookmarks/{messageID}/highlights", handleAddHighlight(store, notify))
		r.Patch("/{chatID}/bookmarks/{messageID}/highlights/{highlightID}", handleUpdateHighlightNote(store, notify))
		r.Delete("/{chatID}/bookmarks/{messageID}/highlights/{highlightID}", handleRemoveHighlight(store, notify))
	})

	r.Route("/api/preferences", func(r chi.Router) {
		r.Get("/", handleGetPreferences(st))
		r.Put("/", handlePutPreferences(st))
	})
}

func messageIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "messageID"))
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

func handleListAll(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.ListAll())
	}
}

func handleListChat(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookmarks := store.ListChat(chi.URLParam(r, "chatID"))
		if bookmarks == nil {
			bookmarks = []*Bookmark{}
		}
		writeJSON(w, http.StatusOK, bookmarks)
	}
}

func handleGetBookmark(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, ok := messageIDParam(r)
		if !ok {
			http.Error(w, "invalid message id", http.StatusBadRequest)
			return
		}
		b := store.FindBookmark(chi.URLParam(r, "chatID"), messageID)
		if b == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

type bookmarkRequest struct {
	Note  string `json:"note"`
	Color string `json:"color"`
}

func handleUpsertBookmark(store *Store, notify func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, ok := messageIDParam(r)
		if !ok {
			http.Error(w, "invalid message id", http.StatusBadRequest)
			return
		}
		var req bookmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		b := store.UpsertBookmark(chi.URLParam(r, "chatID"), messageID, req.Note, req.Color)
		notify()
		writeJSON(w, http.StatusOK, b)
	}
}

func handleUpdateBookmarkNote(store *Store, notify func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, ok := messageIDParam(r)
		if !ok {
			http.Error(w, "invalid message id", http.StatusBadRequest)
			return
		}
		var req bookmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if !store.UpdateBookmarkNote(chi.URLParam(r, "chatID"), messageID, req.Note, req.Color) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		notify()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRemoveBookmark(store *Store, notify func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, ok := messageIDParam(r)
		if !ok {
			http.Error(w, "invalid message id", http.StatusBadRequest)
			return
		}
		store.RemoveBookmark(chi.URLParam(r, "chatID"), messageID)
		notify()
		w.WriteHeader(http.StatusNoContent)
	}
}

type highlightRequest struct {
	Text  string `json:"text"`
	Color string `json:"color"`
	Note  string `json:"note"`
}

func handleAddHighlight(store *Store, notify func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, ok := messageIDParam(r)
		if !ok {
			http.Error(w, "invalid message id", http.StatusBadRequest)
			return
		}
		var req highlightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Text == "" {
			http.Error(w, "text is required", http.StatusBadRequest)
			return
		}

		h := store.AddHighlight(chi.URLParam(r, "chatID"), messageID, req.Text, req.Color, req.Note)
		notify()
		writeJSON(w, http.StatusCreated, h)
	}
}

func handleUpdateHighlightNote(store *Store, notify func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, ok := messageIDParam(r)
		if !ok {
			http.Error(w, "invalid message id", http.StatusBadRequest)
			return
		}
		var req highlightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if !store.UpdateHighlightNote(chi.URLParam(r, "chatID"), messageID, chi.URLParam(r, "highlightID"), req.Note) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		notify()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRemoveHighlight(store *Store, notify func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, ok := messageIDParam(r)
		if !ok {
			http.Error(w, "invalid message id", http.StatusBadRequest)
			return
		}
		store.RemoveHighlight(chi.URLParam(r, "chatID"), messageID, chi.URLParam(r, "highlightID"))
		notify()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetPreferences(st *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefs, err := settings.LoadPreferences(st)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	}
}

func handlePutPreferences(st *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var prefs settings.Preferences
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := settings.SavePreferences(st, prefs); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
