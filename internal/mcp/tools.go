// ABOUTME: MCP tool definitions and registration for the dongne server
// ABOUTME: Five tools map one-to-one onto chat service operations
package mcp

import (
	"github.com/harper/dongne/internal/chat"
	"github.com/harper/dongne/internal/logger"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// RegisterTools registers all conversation tools with the server
func RegisterTools(server *mcpserver.MCPServer, svc *chat.Service, log *zap.Logger) *Handlers {
	handlers := &Handlers{chat: svc, logger: logger.OrNop(log)}

	sessionIDProp := map[string]interface{}{
		"type":        "string",
		"description": "Conversation id returned by start_conversation",
	}

	// 1. start_conversation
	server.AddTool(mcp.Tool{
		Name:        "start_conversation",
		Description: "Start a restaurant recommendation conversation for a user. Returns the greeting, the cuisine choices and the conversation id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Stable id of the person asking for a recommendation",
				},
			},
			Required: []string{"user_id"},
		},
	}, handlers.StartConversation)

	// 2. choose_cuisine
	server.AddTool(mcp.Tool{
		Name:        "choose_cuisine",
		Description: "Pick one of the offered cuisines. Only valid while the conversation is at ask_cuisine.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"cuisine": map[string]interface{}{
					"type":        "string",
					"description": "Cuisine exactly as listed, e.g. 한식",
				},
			},
			Required: []string{"session_id", "cuisine"},
		},
	}, handlers.ChooseCuisine)

	// 3. send_message
	server.AddTool(mcp.Tool{
		Name:        "send_message",
		Description: "Send the user's free-text reply: a menu or taste, a menu candidate, a mood, or a yes/no to the recommendation.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"text": map[string]interface{}{
					"type":        "string",
					"description": "What the user said",
				},
			},
			Required: []string{"session_id", "text"},
		},
	}, handlers.SendMessage)

	// 4. choose_place
	server.AddTool(mcp.Tool{
		Name:        "choose_place",
		Description: "Commit to one of the recommended places by its 1-based number. Records the choice and ends the conversation.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"number": map[string]interface{}{
					"type":        "number",
					"description": "Place number as shown in the recommendation list, starting at 1",
				},
			},
			Required: []string{"session_id", "number"},
		},
	}, handlers.ChoosePlace)

	// 5. get_conversation
	server.AddTool(mcp.Tool{
		Name:        "get_conversation",
		Description: "Get the current stage, context and transcript of a conversation.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, handlers.GetConversation)

	return handlers
}
