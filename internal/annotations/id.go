package annotations

import "github.com/google/uuid"

// NewID returns a collision-resistant opaque identifier for bookmarks
// and highlights. Callers must treat it as opaque; nothing parses it.
func NewID() string {
	return uuid.New().String()
}
