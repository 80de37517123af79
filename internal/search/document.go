package search

// Kind says what a search document was derived from.
type Kind string

const (
	KindBookmark  Kind = "bookmark"
	KindHighlight Kind = "highlight"
)

// Document is one searchable unit of annotation text: a bookmark's
// preview and note, or a highlight's text and note.
type Document struct {
	ID        string `json:"id"`
	ChatID    string `json:"chatId"`
	MessageID int    `json:"messageId"`
	Kind      Kind   `json:"kind"`
	Content   string `json:"content"`
}

// Result is a document with its match score. Substring matches all
// score 1; vector matches carry cosine similarity.
type Result struct {
	Document
	Similarity float32 `json:"similarity"`
}
