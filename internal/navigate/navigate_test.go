package navigate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minjae-ko/chatmarks/internal/annotations"
	"github.com/minjae-ko/chatmarks/internal/db"
	"github.com/minjae-ko/chatmarks/internal/settings"
)

type fakeSession struct {
	chatID    string
	groupID   string
	switched  []string
	switchErr error
}

func (f *fakeSession) ChatID() string      { return f.chatID }
func (f *fakeSession) ChatName() string    { return "Aria" }
func (f *fakeSession) CharacterID() string { return "aria" }
func (f *fakeSession) GroupID() string     { return f.groupID }
func (f *fakeSession) ChatFile() string    { return f.chatID }

func (f *fakeSession) Message(id int) (string, string, bool) {
	return "Aria", "message text", true
}

func (f *fakeSession) SwitchChat(ctx context.Context, characterID, chatFile string) error {
	if f.switchErr != nil {
		return f.switchErr
	}
	f.switched = append(f.switched, characterID+"/"+chatFile)
	f.chatID = chatFile
	return nil
}

type fakeNotifier struct{ toasts []string }

func (f *fakeNotifier) Toast(level, message string) {
	f.toasts = append(f.toasts, level+": "+message)
}

type fakeScroller struct{ scrolls []int }

func (f *fakeScroller) Scroll(messageID int, flash bool) {
	f.scrolls = append(f.scrolls, messageID)
}

func setup(t *testing.T, session *fakeSession) (*annotations.Store, *fakeNotifier, *fakeScroller, *Navigator) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	st, err := settings.NewStore(database, time.Hour)
	if err != nil {
		t.Fatalf("settings.NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	store, err := annotations.NewStore(st, session)
	if err != nil {
		t.Fatalf("annotations.NewStore: %v", err)
	}

	notifier := &fakeNotifier{}
	scroller := &fakeScroller{}
	nav := NewNavigator(store, session, notifier, scroller, 0)
	return store, notifier, scroller, nav
}

func TestGoToSameChatScrolls(t *testing.T) {
	session := &fakeSession{chatID: "c1"}
	store, _, scroller, nav := setup(t, session)
	store.UpsertBookmark("c1", 4, "", "#ff0000")

	if err := nav.GoTo(t.Context(), "c1", 4); err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	if len(scroller.scrolls) != 1 || scroller.scrolls[0] != 4 {
		t.Errorf("scrolls = %v", scroller.scrolls)
	}
	if len(session.switched) != 0 {
		t.Errorf("same-chat navigation switched chats: %v", session.switched)
	}
}

func TestGoToOtherChatSwitchesFirst(t *testing.T) {
	session := &fakeSession{chatID: "old"}
	store, _, scroller, nav := setup(t, session)

	// Bookmark recorded while "old" was the open chat, so the set
	// carries its character and file.
	store.UpsertBookmark("old", 2, "", "#ff0000")

	// The user moves on to another chat.
	session.chatID = "current"

	if err := nav.GoTo(t.Context(), "old", 2); err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	if len(session.switched) != 1 || session.switched[0] != "aria/old" {
		t.Errorf("switched = %v", session.switched)
	}
	if len(scroller.scrolls) != 1 || scroller.scrolls[0] != 2 {
		t.Errorf("scrolls = %v", scroller.scrolls)
	}
}

func TestGoToGroupChatWarns(t *testing.T) {
	session := &fakeSession{chatID: "gc", groupID: "g1"}
	store, notifier, scroller, nav := setup(t, session)
	store.UpsertBookmark("gc", 1, "", "#ff0000")

	// Navigate from a different open chat so the group path is taken.
	session.chatID = "other"

	if err := nav.GoTo(t.Context(), "gc", 1); err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	if len(notifier.toasts) != 1 || !strings.HasPrefix(notifier.toasts[0], "warning:") {
		t.Errorf("toasts = %v", notifier.toasts)
	}
	if len(scroller.scrolls) != 0 || len(session.switched) != 0 {
		t.Error("group-chat navigation must not switch or scroll")
	}
}

func TestGoToMissingBookmark(t *testing.T) {
	session := &fakeSession{chatID: "c1"}
	store, _, _, nav := setup(t, session)
	store.UpsertBookmark("c1", 0, "", "#ff0000")

	if err := nav.GoTo(t.Context(), "c1", 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := nav.GoTo(t.Context(), "nope", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGoToSwitchFailure(t *testing.T) {
	session := &fakeSession{chatID: "old"}
	store, _, scroller, nav := setup(t, session)
	store.UpsertBookmark("old", 2, "", "#ff0000")

	session.chatID = "current"
	session.switchErr = errors.New("chat file unreadable")

	if err := nav.GoTo(t.Context(), "old", 2); err == nil {
		t.Fatal("expected switch failure to surface")
	}
	if len(scroller.scrolls) != 0 {
		t.Error("failed switch must not scroll")
	}
}

func TestGoToBookmarkRemovedDuringSwitch(t *testing.T) {
	session := &fakeSession{chatID: "old"}
	store, notifier, scroller, _ := setup(t, session)
	store.UpsertBookmark("old", 2, "", "#ff0000")
	session.chatID = "current"

	// Remove the bookmark from inside the switch itself, modelling a
	// concurrent edit landing while the chat loads.
	nav := NewNavigator(store, &removeOnSwitch{fakeSession: session, store: store}, notifier, scroller, 0)
	if err := nav.GoTo(t.Context(), "old", 2); err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	if len(scroller.scrolls) != 0 {
		t.Error("must not scroll to a bookmark that vanished mid-switch")
	}
	if len(notifier.toasts) != 1 {
		t.Errorf("toasts = %v", notifier.toasts)
	}
}

type removeOnSwitch struct {
	*fakeSession
	store *annotations.Store
}

func (r *removeOnSwitch) SwitchChat(ctx context.Context, characterID, chatFile string) error {
	if err := r.fakeSession.SwitchChat(ctx, characterID, chatFile); err != nil {
		return err
	}
	r.store.RemoveBookmark("old", 2)
	return nil
}

func TestHTTPNavigate(t *testing.T) {
	session := &fakeSession{chatID: "c1"}
	store, _, scroller, nav := setup(t, session)
	store.UpsertBookmark("c1", 4, "", "#ff0000")

	r := chi.NewRouter()
	RegisterRoutes(r, nav)

	body := strings.NewReader(`{"chatId":"c1","messageId":4}`)
	req := httptest.NewRequest(http.MethodPost, "/api/navigate", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if len(scroller.scrolls) != 1 {
		t.Errorf("scrolls = %v", scroller.scrolls)
	}
}

func TestHTTPNavigateNotFound(t *testing.T) {
	session := &fakeSession{chatID: "c1"}
	_, _, _, nav := setup(t, session)

	r := chi.NewRouter()
	RegisterRoutes(r, nav)

	var buf strings.Builder
	json.NewEncoder(&buf).Encode(navigateRequest{ChatID: "c1", MessageID: 7})
	req := httptest.NewRequest(http.MethodPost, "/api/navigate", strings.NewReader(buf.String()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
