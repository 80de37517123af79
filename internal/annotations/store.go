package annotations

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/minjae-ko/chatmarks/internal/settings"
)

// ChatContext supplies live chat state owned by the host. The store
// re-queries it on every access instead of caching anything derived
// from it, because the host may rebuild its view at any time.
type ChatContext interface {
	ChatID() string
	ChatName() string
	CharacterID() string
	GroupID() string
	ChatFile() string
	Message(messageID int) (name, text string, ok bool)
}

// Store owns every ChatAnnotationSet. All mutations are synchronous and
// atomic under one mutex; persistence is a debounced fire-and-forget
// write of the whole mapping into the settings store.
type Store struct {
	settings *settings.Store
	host     ChatContext

	mu   sync.Mutex
	sets map[string]*ChatAnnotationSet
}

// NewStore creates a Store, loading any previously persisted annotation
// state from the settings store.
func NewStore(st *settings.Store, host ChatContext) (*Store, error) {
	s := &Store{
		settings: st,
		host:     host,
		sets:     make(map[string]*ChatAnnotationSet),
	}

	ok, err := st.Get(settings.KeyAnnotations, &s.sets)
	if err != nil {
		return nil, fmt.Errorf("loading annotation state: %w", err)
	}
	if !ok || s.sets == nil {
		s.sets = make(map[string]*ChatAnnotationSet)
	}
	return s, nil
}

// persistLocked schedules a write-back of the full annotation mapping.
// Caller holds mu, so the marshalled snapshot is consistent.
func (s *Store) persistLocked() {
	// Write-back failures only mean stale durable state; the in-memory
	// model stays authoritative for this process.
	_ = s.settings.Put(settings.KeyAnnotations, s.sets)
}

// GetOrCreateSet returns the annotation set for chatID, creating an
// empty one when absent. When chatID is the currently open chat, the
// set's chat metadata is refreshed from the live session, since names
// and file locations can change between accesses.
func (s *Store) GetOrCreateSet(chatID string) *ChatAnnotationSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateSetLocked(chatID).clone()
}

func (s *Store) getOrCreateSetLocked(chatID string) *ChatAnnotationSet {
	set, ok := s.sets[chatID]
	if !ok {
		set = &ChatAnnotationSet{Bookmarks: []*Bookmark{}}
		s.sets[chatID] = set
	}

	if s.host != nil && chatID == s.host.ChatID() {
		set.ChatName = s.host.ChatName()
		set.CharacterID = nilIfEmpty(s.host.CharacterID())
		set.GroupID = nilIfEmpty(s.host.GroupID())
		set.ChatFile = s.host.ChatFile()
	}
	return set
}

func nilIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// FindSet returns a snapshot of the set for chatID without creating
// one, with ok=false when the chat has no annotations.
func (s *Store) FindSet(chatID string) (*ChatAnnotationSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[chatID]
	if !ok {
		return nil, false
	}
	return set.clone(), true
}

// FindBookmark returns a snapshot of the bookmark for the given message,
// or nil when there is none.
func (s *Store) FindBookmark(chatID string, messageID int) *Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b := s.findBookmarkLocked(chatID, messageID); b != nil {
		return b.clone()
	}
	return nil
}

func (s *Store) findBookmarkLocked(chatID string, messageID int) *Bookmark {
	set, ok := s.sets[chatID]
	if !ok {
		return nil
	}
	for _, b := range set.Bookmarks {
		if b.MessageID == messageID {
			return b
		}
	}
	return nil
}

// messageInfo pulls sender name and preview from the live message when
// the host has it rendered; otherwise both come back empty and callers
// keep whatever was cached.
func (s *Store) messageInfo(chatID string, messageID int) (name, preview string, ok bool) {
	if s.host == nil || chatID != s.host.ChatID() {
		return "", "", false
	}
	name, text, ok := s.host.Message(messageID)
	if !ok {
		return "", "", false
	}
	if r := []rune(text); len(r) > PreviewLength {
		text = string(r[:PreviewLength])
	}
	return name, text, true
}

// UpsertBookmark creates or updates the true bookmark for a message.
// An existing highlight-only carrier is converted in place. An empty
// color falls back to the preferred default bookmark color.
func (s *Store) UpsertBookmark(chatID string, messageID int, note, color string) *Bookmark {
	if color == "" {
		color = s.defaultBookmarkColor()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.getOrCreateSetLocked(chatID)
	name, preview, live := s.messageInfo(chatID, messageID)
	now := time.Now()

	b := s.findBookmarkLocked(chatID, messageID)
	if b != nil {
		b.Note = note
		b.Color = &color
		b.UpdatedAt = now
		b.IsHighlightOnly = false
		if live {
			b.MessageName = name
			b.Preview = preview
		}
	} else {
		if !live {
			name = "Unknown"
		}
		b = &Bookmark{
			ID:          NewID(),
			MessageID:   messageID,
			MessageName: name,
			Preview:     preview,
			Color:       &color,
			Note:        note,
			CreatedAt:   now,
			Highlights:  []Highlight{},
		}
		set.Bookmarks = append(set.Bookmarks, b)
	}

	s.persistLocked()
	return b.clone()
}

// RemoveBookmark deletes the bookmark for a message, cascading to its
// highlights. A missing bookmark is a silent no-op.
func (s *Store) RemoveBookmark(chatID string, messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[chatID]
	if !ok {
		return
	}
	for i, b := range set.Bookmarks {
		if b.MessageID == messageID {
			set.Bookmarks = append(set.Bookmarks[:i], set.Bookmarks[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// AddHighlight appends a highlight to the message's bookmark, creating
// a highlight-only carrier first when the message has no bookmark.
// Calling it twice appends twice; that is intended.
func (s *Store) AddHighlight(chatID string, messageID int, text, color, note string) *Highlight {
	if color == "" {
		color = s.defaultHighlightColor()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.getOrCreateSetLocked(chatID)
	b := s.findBookmarkLocked(chatID, messageID)
	if b == nil {
		name, preview, live := s.messageInfo(chatID, messageID)
		if !live {
			name = "Unknown"
		}
		b = &Bookmark{
			ID:              NewID(),
			MessageID:       messageID,
			MessageName:     name,
			Preview:         preview,
			Color:           nil,
			CreatedAt:       time.Now(),
			IsHighlightOnly: true,
			Highlights:      []Highlight{},
		}
		set.Bookmarks = append(set.Bookmarks, b)
	}

	h := Highlight{
		ID:        NewID(),
		Text:      text,
		Color:     color,
		Note:      note,
		CreatedAt: time.Now(),
	}
	b.Highlights = append(b.Highlights, h)

	s.persistLocked()
	return &h
}

// RemoveHighlight deletes one highlight. When the removed highlight was
// the last one on a noteless highlight-only carrier, the empty carrier
// is deleted too. Missing bookmark or highlight is a silent no-op.
func (s *Store) RemoveHighlight(chatID string, messageID int, highlightID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[chatID]
	if !ok {
		return
	}
	b := s.findBookmarkLocked(chatID, messageID)
	if b == nil {
		return
	}

	for i, h := range b.Highlights {
		if h.ID == highlightID {
			b.Highlights = append(b.Highlights[:i], b.Highlights[i+1:]...)

			if b.IsHighlightOnly && len(b.Highlights) == 0 && b.Note == "" {
				for j, other := range set.Bookmarks {
					if other == b {
						set.Bookmarks = append(set.Bookmarks[:j], set.Bookmarks[j+1:]...)
						break
					}
				}
			}

			s.persistLocked()
			return
		}
	}
}

// UpdateBookmarkNote edits the note (and optionally color) of an
// existing bookmark in any chat. Missing bookmark is a silent no-op,
// reported via ok.
func (s *Store) UpdateBookmarkNote(chatID string, messageID int, note, color string) (ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.findBookmarkLocked(chatID, messageID)
	if b == nil {
		return false
	}
	b.Note = note
	if color != "" {
		b.Color = &color
		b.IsHighlightOnly = false
	}
	b.UpdatedAt = time.Now()
	s.persistLocked()
	return true
}

// UpdateHighlightNote edits the note of one highlight. Missing bookmark
// or highlight is a silent no-op, reported via ok.
func (s *Store) UpdateHighlightNote(chatID string, messageID int, highlightID, note string) (ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.findBookmarkLocked(chatID, messageID)
	if b == nil {
		return false
	}
	for i := range b.Highlights {
		if b.Highlights[i].ID == highlightID {
			b.Highlights[i].Note = note
			s.persistLocked()
			return true
		}
	}
	return false
}

// ListAll returns a deep-copied snapshot of every chat's annotations,
// for panel rendering and cross-chat queries.
func (s *Store) ListAll() map[string]*ChatAnnotationSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*ChatAnnotationSet, len(s.sets))
	for chatID, set := range s.sets {
		out[chatID] = set.clone()
	}
	return out
}

// ListChat returns the chat's bookmarks sorted by message ID, the order
// panels display them in. Missing chat yields an empty slice.
func (s *Store) ListChat(chatID string) []*Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[chatID]
	if !ok {
		return nil
	}
	bookmarks := make([]*Bookmark, len(set.Bookmarks))
	for i, b := range set.Bookmarks {
		bookmarks[i] = b.clone()
	}
	sort.Slice(bookmarks, func(i, j int) bool {
		return bookmarks[i].MessageID < bookmarks[j].MessageID
	})
	return bookmarks
}

func (s *Store) defaultBookmarkColor() string {
	prefs, err := settings.LoadPreferences(s.settings)
	if err != nil {
		return settings.DefaultColor
	}
	return prefs.DefaultBookmarkColor
}

func (s *Store) defaultHighlightColor() string {
	prefs, err := settings.LoadPreferences(s.settings)
	if err != nil {
		return settings.DefaultColor
	}
	return prefs.DefaultHighlightColor
}
