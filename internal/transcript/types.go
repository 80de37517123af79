package transcript

// UnknownChatID is the sentinel chat identifier used when no chat is open.
const UnknownChatID = "unknown"

// Message is one entry in a chat transcript file. Transcript files are
// JSONL: one message object per line.
type Message struct {
	Name string `json:"name"`
	Text string `json:"mes"`
}

// Character is an entity that owns chat transcripts. Its ID is the name
// of its directory under <data_dir>/chats.
type Character struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Chats []string `json:"chats"` // chat file names, without extension
}
