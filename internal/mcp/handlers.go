// ABOUTME: MCP tool handler implementations for the dongne server
// ABOUTME: Argument and dialogue errors come back as tool errors, never protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/harper/dongne/internal/chat"
	"github.com/harper/dongne/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	chat   *chat.Service
	logger *zap.Logger
}

// conversationResult is the JSON text every successful tool returns
type conversationResult struct {
	SessionID   string                       `json:"session_id"`
	Stage       models.Stage                 `json:"stage"`
	Reply       []string                     `json:"reply"`
	Cuisines    []string                     `json:"cuisines,omitempty"`
	MenuOptions []string                     `json:"menu_options,omitempty"`
	Places      []models.PlaceRecommendation `json:"places,omitempty"`
	Choice      *models.ChoiceSummary        `json:"choice,omitempty"`
}

// StartConversation handles the start_conversation tool
func (h *Handlers) StartConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a string"), nil
	}

	sess, err := h.chat.Start(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start conversation: %v", err)), nil
	}
	return h.result(sess, 0)
}

// ChooseCuisine handles the choose_cuisine tool
func (h *Handlers) ChooseCuisine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}
	cuisine, err := request.RequireString("cuisine")
	if err != nil {
		return mcp.NewToolResultError("cuisine argument is required and must be a string"), nil
	}

	return h.turn(ctx, sessionID, func() (*models.Session, error) {
		return h.chat.ChooseCuisine(ctx, sessionID, cuisine)
	})
}

// SendMessage handles the send_message tool
func (h *Handlers) SendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	return h.turn(ctx, sessionID, func() (*models.Session, error) {
		return h.chat.SendMessage(ctx, sessionID, text)
	})
}

// ChoosePlace handles the choose_place tool
func (h *Handlers) ChoosePlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}
	number, err := request.RequireFloat("number")
	if err != nil || number != math.Trunc(number) {
		return mcp.NewToolResultError("number argument is required and must be a whole number"), nil
	}

	return h.turn(ctx, sessionID, func() (*models.Session, error) {
		return h.chat.ChoosePlace(ctx, sessionID, int(number))
	})
}

// GetConversation handles the get_conversation tool
func (h *Handlers) GetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}

	sess, err := h.chat.Get(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load conversation: %v", err)), nil
	}

	responseJSON, err := json.Marshal(map[string]interface{}{
		"session_id": sess.ID,
		"user_id":    sess.UserID,
		"stage":      sess.Stage,
		"context":    sess.Context,
		"transcript": sess.Transcript,
		"choices":    sess.Choices,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// turn runs one dialogue step and reports only the bot lines it produced
func (h *Handlers) turn(ctx context.Context, sessionID string, step func() (*models.Session, error)) (*mcp.CallToolResult, error) {
	before := 0
	if prev, err := h.chat.Get(ctx, sessionID); err == nil {
		before = len(prev.Transcript)
	}

	sess, err := step()
	if err != nil {
		h.logger.Debug("tool turn rejected", zap.String("session_id", sessionID), zap.Error(err))
		msg := err.Error()
		if sess != nil {
			if last := sess.LastBotMessage(); last != "" {
				msg = fmt.Sprintf("%s (bot: %s)", msg, last)
			}
		}
		return mcp.NewToolResultError(msg), nil
	}
	return h.result(sess, before)
}

func (h *Handlers) result(sess *models.Session, from int) (*mcp.CallToolResult, error) {
	res := conversationResult{SessionID: sess.ID, Stage: sess.Stage, Reply: []string{}}
	if from > len(sess.Transcript) {
		from = 0
	}
	for _, entry := range sess.Transcript[from:] {
		if entry.Role == models.RoleBot {
			res.Reply = append(res.Reply, entry.Content)
		}
	}

	switch sess.Stage {
	case models.StageAskCuisine:
		res.Cuisines = h.chat.Cuisines()
	case models.StageChooseMenu:
		for _, c := range sess.Context.MenuCandidates {
			res.MenuOptions = append(res.MenuOptions, c.MenuName)
		}
	case models.StageChoosePlace:
		res.Places = sess.Context.LastRecommended
	case models.StageEnd:
		if n := len(sess.Choices); n > 0 {
			res.Choice = &sess.Choices[n-1]
		}
	}

	responseJSON, err := json.Marshal(res)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
