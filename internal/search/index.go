package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/minjae-ko/chatmarks/internal/annotations"
	"github.com/minjae-ko/chatmarks/internal/config"
	"github.com/minjae-ko/chatmarks/internal/db"
)

// Index answers queries over annotation text. The substring provider
// scans the SQLite document table; the openai provider also maintains
// an embedding index and queries it instead.
type Index struct {
	provider config.SearchProvider
	store    *Store
	vector   *Vector
	source   *annotations.Store
}

// NewIndex creates an Index for the configured provider. vector may be
// nil only for the substring provider.
func NewIndex(database *db.DB, source *annotations.Store, provider config.SearchProvider, vector *Vector) (*Index, error) {
	if provider == config.SearchOpenAI && vector == nil {
		return nil, fmt.Errorf("provider %q needs a vector index", provider)
	}
	return &Index{
		provider: provider,
		store:    NewStore(database),
		vector:   vector,
		source:   source,
	}, nil
}

// Collect flattens every annotation into search documents. Bookmarks
// contribute preview and note, highlights their text and note; entries
// with no text at all are skipped.
func Collect(sets map[string]*annotations.ChatAnnotationSet) []Document {
	var docs []Document
	for chatID, set := range sets {
		for _, b := range set.Bookmarks {
			if content := joinText(b.Preview, b.Note); content != "" && !b.IsHighlightOnly {
				docs = append(docs, Document{
					ID:        "b:" + chatID + ":" + strconv.Itoa(b.MessageID),
					ChatID:    chatID,
					MessageID: b.MessageID,
					Kind:      KindBookmark,
					Content:   content,
				})
			}
			for _, h := range b.Highlights {
				if content := joinText(h.Text, h.Note); content != "" {
					docs = append(docs, Document{
						ID:        "h:" + h.ID,
						ChatID:    chatID,
						MessageID: b.MessageID,
						Kind:      KindHighlight,
						Content:   content,
					})
				}
			}
		}
	}
	return docs
}

func joinText(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

// Rebuild regenerates the document table, and the embedding index when
// one is configured, from the current annotations. progress, if
// non-nil, is called after each document lands in the embedding index.
// Returns the number of documents indexed.
func (ix *Index) Rebuild(ctx context.Context, progress func(done, total int)) (int, error) {
	docs := Collect(ix.source.ListAll())

	if err := ix.store.ReplaceAll(ctx, docs); err != nil {
		return 0, fmt.Errorf("rebuilding document table: %w", err)
	}

	if ix.vector != nil {
		if err := ix.vector.Reset(); err != nil {
			return 0, fmt.Errorf("resetting vector index: %w", err)
		}
		for i, doc := range docs {
			if err := ix.vector.Add(ctx, []Document{doc}); err != nil {
				return 0, fmt.Errorf("indexing document %s: %w", doc.ID, err)
			}
			if progress != nil {
				progress(i+1, len(docs))
			}
		}
	} else if progress != nil {
		progress(len(docs), len(docs))
	}

	return len(docs), nil
}

// Query searches the index with the configured provider.
func (ix *Index) Query(ctx context.Context, query string, limit int) ([]Result, error) {
	if ix.provider == config.SearchOpenAI {
		return ix.vector.Query(ctx, query, limit)
	}
	return ix.store.Substring(ctx, query, limit)
}

// Persist writes the embedding index to dir so the next start can skip
// re-embedding. It is a no-op for the substring provider.
func (ix *Index) Persist(dir string) error {
	if ix.vector == nil {
		return nil
	}
	return ix.vector.Persist(dir)
}

// Provider reports which backend answers queries.
func (ix *Index) Provider() config.SearchProvider {
	return ix.provider
}
