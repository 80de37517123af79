package transcript

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// writeChat writes a JSONL chat file under dataDir/chats/character.
func writeChat(t *testing.T, dataDir, character, file, content string) {
	t.Helper()
	dir := filepath.Join(dataDir, "chats", character)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestCatalogCharacters(t *testing.T) {
	dataDir := t.TempDir()
	writeChat(t, dataDir, "seraphina", "2025-08-01.jsonl", `{"name":"Seraphina","mes":"hello"}`)
	writeChat(t, dataDir, "seraphina", "2025-08-02.jsonl", `{"name":"Seraphina","mes":"again"}`)
	writeChat(t, dataDir, "aria", "intro.jsonl", `{"name":"Aria","mes":"hi"}`)

	catalog := NewCatalog(dataDir, nil, nil)
	chars, err := catalog.Characters()
	if err != nil {
		t.Fatalf("Characters: %v", err)
	}

	if len(chars) != 2 {
		t.Fatalf("expected 2 characters, got %d", len(chars))
	}
	if chars[0].ID != "aria" || chars[1].ID != "seraphina" {
		t.Errorf("characters not sorted by ID: %v", chars)
	}
	if len(chars[1].Chats) != 2 {
		t.Errorf("seraphina chats = %v, want 2", chars[1].Chats)
	}
	if chars[1].Chats[0] != "2025-08-01" {
		t.Errorf("chat file name = %q, want without extension", chars[1].Chats[0])
	}
}

func TestCatalogExcludePatterns(t *testing.T) {
	dataDir := t.TempDir()
	writeChat(t, dataDir, "aria", "intro.jsonl", `{"name":"Aria","mes":"hi"}`)
	writeChat(t, dataDir, "aria", "intro.jsonl.bak", `{"name":"Aria","mes":"old"}`)

	catalog := NewCatalog(dataDir, []string{"**/*.jsonl"}, []string{"**/*.bak"})
	chars, err := catalog.Characters()
	if err != nil {
		t.Fatalf("Characters: %v", err)
	}
	if len(chars) != 1 || len(chars[0].Chats) != 1 {
		t.Fatalf("expected 1 character with 1 chat, got %v", chars)
	}
}

func TestCatalogMissingDir(t *testing.T) {
	catalog := NewCatalog(t.TempDir(), nil, nil)
	chars, err := catalog.Characters()
	if err != nil {
		t.Fatalf("Characters: %v", err)
	}
	if len(chars) != 0 {
		t.Errorf("expected no characters, got %v", chars)
	}
}

func TestLoadChatSkipsMalformedLines(t *testing.T) {
	dataDir := t.TempDir()
	content := `{"name":"Aria","mes":"first"}
not json at all

{"name":"You","mes":"second"}`
	writeChat(t, dataDir, "aria", "intro.jsonl", content)

	catalog := NewCatalog(dataDir, nil, nil)
	messages, err := catalog.LoadChat("aria", "intro")
	if err != nil {
		t.Fatalf("LoadChat: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Text != "first" || messages[1].Text != "second" {
		t.Errorf("messages = %v", messages)
	}
}

func TestSessionDefaults(t *testing.T) {
	session := NewSession(NewCatalog(t.TempDir(), nil, nil))

	if got := session.ChatID(); got != UnknownChatID {
		t.Errorf("ChatID = %q, want %q", got, UnknownChatID)
	}
	if got := session.ChatName(); got != "Unknown" {
		t.Errorf("ChatName = %q, want Unknown", got)
	}
	if _, _, ok := session.Message(0); ok {
		t.Error("expected no message at index 0")
	}
}

func TestSessionSwitchChat(t *testing.T) {
	dataDir := t.TempDir()
	writeChat(t, dataDir, "aria", "intro.jsonl",
		`{"name":"Aria","mes":"welcome"}
{"name":"You","mes":"thanks"}`)

	session := NewSession(NewCatalog(dataDir, nil, nil))
	if err := session.SwitchChat(context.Background(), "aria", "intro"); err != nil {
		t.Fatalf("SwitchChat: %v", err)
	}

	if session.ChatID() != "intro" {
		t.Errorf("ChatID = %q, want intro", session.ChatID())
	}
	if session.CharacterID() != "aria" {
		t.Errorf("CharacterID = %q, want aria", session.CharacterID())
	}
	if session.Len() != 2 {
		t.Errorf("Len = %d, want 2", session.Len())
	}
	name, text, ok := session.Message(1)
	if !ok || name != "You" || text != "thanks" {
		t.Errorf("Message(1) = %q %q %v", name, text, ok)
	}
}

func TestSessionSwitchChatMissingTargetLeavesStateUnchanged(t *testing.T) {
	dataDir := t.TempDir()
	writeChat(t, dataDir, "aria", "intro.jsonl", `{"name":"Aria","mes":"welcome"}`)

	session := NewSession(NewCatalog(dataDir, nil, nil))
	if err := session.SwitchChat(context.Background(), "aria", "intro"); err != nil {
		t.Fatalf("SwitchChat: %v", err)
	}

	if err := session.SwitchChat(context.Background(), "ghost", "nope"); err == nil {
		t.Fatal("expected error for missing character")
	}

	// Old session state survives the failed switch.
	if session.ChatID() != "intro" || session.CharacterID() != "aria" {
		t.Errorf("session state changed after failed switch: %q %q", session.ChatID(), session.CharacterID())
	}
}

func TestSessionSwitchChatCancelled(t *testing.T) {
	dataDir := t.TempDir()
	writeChat(t, dataDir, "aria", "intro.jsonl", `{"name":"Aria","mes":"welcome"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := NewSession(NewCatalog(dataDir, nil, nil))
	if err := session.SwitchChat(ctx, "aria", "intro"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if session.ChatID() != UnknownChatID {
		t.Error("cancelled switch must not apply state")
	}
}

func TestSessionAppend(t *testing.T) {
	session := NewSession(NewCatalog(t.TempDir(), nil, nil))

	idx := session.Append(Message{Name: "You", Text: "first"})
	if idx != 0 {
		t.Errorf("first Append index = %d, want 0", idx)
	}
	idx = session.Append(Message{Name: "Aria", Text: "second"})
	if idx != 1 {
		t.Errorf("second Append index = %d, want 1", idx)
	}
	if session.Len() != 2 {
		t.Errorf("Len = %d, want 2", session.Len())
	}
}
