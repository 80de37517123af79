package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listChatsTool defines the list_chats MCP tool.
var listChatsTool = mcp.NewTool("list_chats",
	mcp.WithDescription("List every chat that has bookmarks or highlights, with annotation counts."),
)

// listBookmarksTool defines the list_bookmarks MCP tool.
var listBookmarksTool = mcp.NewTool("list_bookmarks",
	mcp.WithDescription("List bookmarks and highlights, either for one chat or across all chats."),
	mcp.WithString("chat_id",
		mcp.Description("Chat to list; omit to list every chat"),
	),
)

// findBookmarkTool defines the find_bookmark MCP tool.
var findBookmarkTool = mcp.NewTool("find_bookmark",
	mcp.WithDescription("Get the bookmark on a specific message, including its note and highlights."),
	mcp.WithString("chat_id",
		mcp.Required(),
		mcp.Description("Chat the message belongs to"),
	),
	mcp.WithNumber("message_id",
		mcp.Required(),
		mcp.Description("Index of the message within the chat"),
	),
)

// searchAnnotationsTool defines the search_annotations MCP tool.
var searchAnnotationsTool = mcp.NewTool("search_annotations",
	mcp.WithDescription("Search bookmark notes, previews, and highlighted text."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
)
