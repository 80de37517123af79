package search

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "annotations"

// Vector is the embedding-backed search index, held in memory and
// rebuilt from the annotation store.
type Vector struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewVector creates an empty in-memory vector index over the given
// embedder.
func NewVector(embedder Embedder) (*Vector, error) {
	cdb := chromem.NewDB()
	ef := toChromemFunc(embedder)

	col, err := cdb.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Vector{db: cdb, collection: col, embedFunc: ef}, nil
}

// Reset drops every indexed document.
func (v *Vector) Reset() error {
	if err := v.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	col, err := v.db.GetOrCreateCollection(collectionName, nil, v.embedFunc)
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	v.collection = col
	return nil
}

// Add indexes documents, embedding their content.
func (v *Vector) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromDocs[i] = chromem.Document{
			ID:      doc.ID,
			Content: doc.Content,
			Metadata: map[string]string{
				"chat_id":    doc.ChatID,
				"message_id": strconv.Itoa(doc.MessageID),
				"kind":       string(doc.Kind),
			},
		}
	}
	return v.collection.AddDocuments(ctx, chromDocs, 1)
}

// Query returns the closest documents to the query text.
func (v *Vector) Query(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	// chromem-go requires nResults <= collection size.
	count := v.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := v.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]Result, len(results))
	for i, r := range results {
		messageID, _ := strconv.Atoi(r.Metadata["message_id"])
		out[i] = Result{
			Document: Document{
				ID:        r.ID,
				ChatID:    r.Metadata["chat_id"],
				MessageID: messageID,
				Kind:      Kind(r.Metadata["kind"]),
				Content:   r.Content,
			},
			Similarity: r.Similarity,
		}
	}
	return out, nil
}

// Count reports how many documents are indexed.
func (v *Vector) Count() int {
	return v.collection.Count()
}

// Persist writes the index to dir so a restart can skip re-embedding.
func (v *Vector) Persist(dir string) error {
	return v.db.ExportToFile(dir+"/search.gob.gz", true, "")
}

// Load restores a persisted index from dir.
func (v *Vector) Load(dir string) error {
	if err := v.db.ImportFromFile(dir+"/search.gob.gz", ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}
	col := v.db.GetCollection(collectionName, v.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	v.collection = col
	return nil
}
