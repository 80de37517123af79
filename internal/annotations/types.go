package annotations

import "time"

// PreviewLength is how many characters of message text are cached on a
// bookmark for display when the owning chat is not open.
const PreviewLength = 100

// Highlight is a colored, annotated excerpt of one message. Text is the
// exact substring captured at creation time and is the authoritative
// anchor; live content offsets are unstable across re-renders, so the
// offset fields are legacy and never trusted for matching.
type Highlight struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Color       string    `json:"color"`
	StartOffset int       `json:"startOffset"`
	EndOffset   int       `json:"endOffset"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Bookmark marks one message, optionally carrying highlights. A nil
// Color means the record exists only to hold highlights and no bookmark
// indicator should render for it.
type Bookmark struct {
	ID              string      `json:"id"`
	MessageID       int         `json:"messageId"`
	MessageName     string      `json:"messageName"`
	Preview         string      `json:"preview"`
	Color           *string     `json:"color"`
	Note            string      `json:"note"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt,omitzero"`
	IsHighlightOnly bool        `json:"isHighlightOnly"`
	Highlights      []Highlight `json:"highlights"`
}

// ChatAnnotationSet holds every bookmark belonging to one chat, plus
// enough about where the chat lives to re-open it later.
type ChatAnnotationSet struct {
	ChatName    string      `json:"chatName"`
	CharacterID *string     `json:"characterId"`
	GroupID     *string     `json:"groupId"`
	ChatFile    string      `json:"chatFile"`
	Bookmarks   []*Bookmark `json:"bookmarks"`
}

// clone returns a deep copy, so snapshots handed to callers never alias
// store-owned data.
func (h Highlight) clone() Highlight {
	return h
}

func (b *Bookmark) clone() *Bookmark {
	c := *b
	if b.Color != nil {
		color := *b.Color
		c.Color = &color
	}
	c.Highlights = make([]Highlight, len(b.Highlights))
	for i, h := range b.Highlights {
		c.Highlights[i] = h.clone()
	}
	return &c
}

func (s *ChatAnnotationSet) clone() *ChatAnnotationSet {
	c := *s
	if s.CharacterID != nil {
		id := *s.CharacterID
		c.CharacterID = &id
	}
	if s.GroupID != nil {
		id := *s.GroupID
		c.GroupID = &id
	}
	c.Bookmarks = make([]*Bookmark, len(s.Bookmarks))
	for i, b := range s.Bookmarks {
		c.Bookmarks[i] = b.clone()
	}
	return &c
}
