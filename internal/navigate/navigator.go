package navigate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minjae-ko/chatmarks/internal/annotations"
)

// ErrNotFound reports a navigation target with no bookmark behind it.
var ErrNotFound = errors.New("bookmark not found")

// Notifier shows transient messages to connected clients.
type Notifier interface {
	Toast(level, message string)
}

// Scroller brings a message into view on connected clients.
type Scroller interface {
	Scroll(messageID int, flash bool)
}

// ChatSwitcher is the slice of the live session navigation needs.
type ChatSwitcher interface {
	ChatID() string
	SwitchChat(ctx context.Context, characterID, chatFile string) error
}

// Navigator jumps from a bookmark to its message, switching chats when
// the bookmark lives in one that is not currently open.
type Navigator struct {
	store    *annotations.Store
	session  ChatSwitcher
	notifier Notifier
	scroller Scroller

	// scrollDelay gives the client time to render the switched chat
	// before it is told to scroll.
	scrollDelay time.Duration
}

func NewNavigator(store *annotations.Store, session ChatSwitcher, notifier Notifier, scroller Scroller, scrollDelay time.Duration) *Navigator {
	return &Navigator{
		store:       store,
		session:     session,
		notifier:    notifier,
		scroller:    scroller,
		scrollDelay: scrollDelay,
	}
}

// GoTo navigates to the bookmarked message. Within the open chat it
// scrolls immediately. For another chat it switches first, waits for
// the client to render, re-checks the bookmark, then scrolls. Group
// chats are not navigable; the user gets a warning toast instead.
func (n *Navigator) GoTo(ctx context.Context, chatID string, messageID int) error {
	set, ok := n.store.FindSet(chatID)
	if !ok {
		return fmt.Errorf("chat %q: %w", chatID, ErrNotFound)
	}
	if n.store.FindBookmark(chatID, messageID) == nil {
		return fmt.Errorf("message %d in chat %q: %w", messageID, chatID, ErrNotFound)
	}

	if set.GroupID != nil {
		n.notifier.Toast("warning", "Navigating to bookmarks in group chats is not supported.")
		return nil
	}

	if chatID == n.session.ChatID() {
		n.scroller.Scroll(messageID, true)
		return nil
	}

	if set.CharacterID == nil || set.ChatFile == "" {
		n.notifier.Toast("error", "Character for this bookmark could not be found.")
		return fmt.Errorf("chat %q has no character to switch to", chatID)
	}

	if err := n.session.SwitchChat(ctx, *set.CharacterID, set.ChatFile); err != nil {
		return fmt.Errorf("switching to chat %q: %w", chatID, err)
	}

	if n.scrollDelay > 0 {
		select {
		case <-time.After(n.scrollDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// The switch may have mutated annotations; make sure the target is
	// still there before pointing the client at it.
	if n.store.FindBookmark(chatID, messageID) == nil {
		n.notifier.Toast("warning", "The bookmark no longer exists.")
		return nil
	}

	n.scroller.Scroll(messageID, true)
	return nil
}
