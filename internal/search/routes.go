package search

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type searchResponse struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

type reindexResponse struct {
	Indexed int `json:"indexed"`
}

// RegisterRoutes mounts the search and reindex endpoints.
func RegisterRoutes(r chi.Router, index *Index) {
	r.Get("/api/search", func(w http.ResponseWriter, req *http.Request) {
		query := req.URL.Query().Get("q")
		if query == "" {
			http.Error(w, "q is required", http.StatusBadRequest)
			return
		}
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

		results, err := index.Query(req.Context(), query, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if results == nil {
			results = []Result{}
		}
		writeJSON(w, http.StatusOK, searchResponse{Query: query, Results: results})
	})

	r.Post("/api/search/reindex", func(w http.ResponseWriter, req *http.Request) {
		n, err := index.Rebuild(req.Context(), nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, reindexResponse{Indexed: n})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
