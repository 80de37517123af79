package transcript

import (
	"context"
	"fmt"
	"sync"
)

// Session holds the currently open chat: its identity and its message
// sequence. The annotation layer never caches any of this; it re-queries
// the session whenever it needs live state.
type Session struct {
	catalog *Catalog

	mu          sync.Mutex
	chatID      string
	chatName    string
	characterID string // "" when no character chat is open
	groupID     string // "" when not a group chat
	chatFile    string
	messages    []Message
}

// NewSession creates a Session with no chat open.
func NewSession(catalog *Catalog) *Session {
	return &Session{catalog: catalog}
}

// ChatID returns the identifier of the open chat, or the "unknown"
// sentinel when no chat is open. Chat identifiers are the transcript
// file name without extension, as the host names them.
func (s *Session) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chatID == "" {
		return UnknownChatID
	}
	return s.chatID
}

// ChatName returns the display name of the open chat.
func (s *Session) ChatName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chatName == "" {
		return "Unknown"
	}
	return s.chatName
}

// CharacterID returns the owning character, or "" when none.
func (s *Session) CharacterID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.characterID
}

// GroupID returns the owning group, or "" when not a group chat.
func (s *Session) GroupID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupID
}

// ChatFile returns the transcript file name of the open chat.
func (s *Session) ChatFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatFile
}

// Len returns the number of messages in the open chat.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Message returns the sender name and text of the message at the given
// index, with ok=false when no such message is rendered.
func (s *Session) Message(messageID int) (name, text string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if messageID < 0 || messageID >= len(s.messages) {
		return "", "", false
	}
	m := s.messages[messageID]
	if m.Name == "" {
		m.Name = "Unknown"
	}
	return m.Name, m.Text, true
}

// SwitchChat opens the given character's chat file, replacing the
// current session state. It resolves and loads the target before
// touching any state, so a failed switch leaves the session unchanged.
func (s *Session) SwitchChat(ctx context.Context, characterID, chatFile string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	char, err := s.catalog.Character(characterID)
	if err != nil {
		return fmt.Errorf("resolving character %s: %w", characterID, err)
	}
	if char == nil {
		return fmt.Errorf("character %s no longer exists", characterID)
	}

	if chatFile == "" && len(char.Chats) > 0 {
		chatFile = char.Chats[len(char.Chats)-1]
	}

	messages, err := s.catalog.LoadChat(characterID, chatFile)
	if err != nil {
		return fmt.Errorf("loading chat %s/%s: %w", characterID, chatFile, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.chatID = chatFile
	s.chatName = char.Name
	s.characterID = characterID
	s.groupID = ""
	s.chatFile = chatFile
	s.messages = messages
	s.mu.Unlock()
	return nil
}

// Append adds a message to the open chat's in-memory sequence and
// returns its index. The host owns transcript durability; this only
// mirrors a message the host already appended.
func (s *Session) Append(m Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	return len(s.messages) - 1
}

// Close clears the session, leaving no chat open.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatID = ""
	s.chatName = ""
	s.characterID = ""
	s.groupID = ""
	s.chatFile = ""
	s.messages = nil
}
