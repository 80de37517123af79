package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/minjae-ko/chatmarks/internal/annotations"
)

func (s *Server) handleListChats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sets := s.store.ListAll()
	if len(sets) == 0 {
		return mcp.NewToolResultText("No chats have annotations yet."), nil
	}

	chatIDs := make([]string, 0, len(sets))
	for chatID := range sets {
		chatIDs = append(chatIDs, chatID)
	}
	sort.Strings(chatIDs)

	var b strings.Builder
	for _, chatID := range chatIDs {
		set := sets[chatID]
		var bookmarks, highlights int
		for _, bm := range set.Bookmarks {
			if !bm.IsHighlightOnly {
				bookmarks++
			}
			highlights += len(bm.Highlights)
		}
		name := set.ChatName
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&b, "- %s (%s): %d bookmarks, %d highlights\n", chatID, name, bookmarks, highlights)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleListBookmarks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID := request.GetString("chat_id", "")

	if chatID != "" {
		bookmarks := s.store.ListChat(chatID)
		if len(bookmarks) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No annotations in chat %q.", chatID)), nil
		}
		return mcp.NewToolResultText(formatBookmarks(chatID, bookmarks)), nil
	}

	sets := s.store.ListAll()
	if len(sets) == 0 {
		return mcp.NewToolResultText("No chats have annotations yet."), nil
	}

	chatIDs := make([]string, 0, len(sets))
	for id := range sets {
		chatIDs = append(chatIDs, id)
	}
	sort.Strings(chatIDs)

	var b strings.Builder
	for _, id := range chatIDs {
		b.WriteString(formatBookmarks(id, s.store.ListChat(id)))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleFindBookmark(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID, err := request.RequireString("chat_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: chat_id"), nil
	}
	messageID, err := request.RequireInt("message_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message_id"), nil
	}

	b := s.store.FindBookmark(chatID, messageID)
	if b == nil {
		return mcp.NewToolResultText(fmt.Sprintf("Message %d in chat %q has no bookmark.", messageID, chatID)), nil
	}
	return mcp.NewToolResultText(formatBookmark(b)), nil
}

func (s *Server) handleSearchAnnotations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	if s.index == nil {
		return mcp.NewToolResultText("Search is not configured. Run `chatmarks reindex` and enable a search provider."), nil
	}

	results, err := s.index.Query(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No results found. The index may be stale; run `chatmarks reindex`."), nil
	}

	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "- [%s] chat %s, message %d: %s\n",
			r.Kind, r.ChatID, r.MessageID, strings.ReplaceAll(r.Content, "\n", " / "))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func formatBookmarks(chatID string, bookmarks []*annotations.Bookmark) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chat %s:\n", chatID)
	for _, bm := range bookmarks {
		b.WriteString(formatBookmark(bm))
	}
	return b.String()
}

func formatBookmark(bm *annotations.Bookmark) string {
	var b strings.Builder
	if bm.IsHighlightOnly {
		fmt.Fprintf(&b, "  message %d (%s): highlights only\n", bm.MessageID, bm.MessageName)
	} else {
		fmt.Fprintf(&b, "  message %d (%s): %q", bm.MessageID, bm.MessageName, bm.Preview)
		if bm.Note != "" {
			fmt.Fprintf(&b, " - note: %s", bm.Note)
		}
		b.WriteString("\n")
	}
	for _, h := range bm.Highlights {
		fmt.Fprintf(&b, "    highlight %q", h.Text)
		if h.Note != "" {
			fmt.Fprintf(&b, " - note: %s", h.Note)
		}
		b.WriteString("\n")
	}
	return b.String()
}
