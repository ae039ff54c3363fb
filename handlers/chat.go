package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"homelead/config"
	"homelead/models"
	"homelead/services/chat"
	"homelead/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler exposes the qualification dialogue over HTTP. It owns no
// conversation state; everything lives in the chat service's session
// store.
type ChatHandler struct {
	svc chat.ChatService
}

func NewChatHandler(svc chat.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// StartSessionResponse is returned from POST /api/chat/session.
type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	Reply     string `json:"reply"`
	Phase     string `json:"phase"`
}

// StartSessionHandler creates a fresh conversation and issues the
// bearer token the client uses for subsequent messages.
func (h *ChatHandler) StartSessionHandler(c *gin.Context) {
	logger := utils.GetLogger()

	resp, err := h.svc.StartSession(c.Request.Context())
	if err != nil {
		logger.Error("failed to start chat session", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Could not start a conversation", "Please try again later.")
		return
	}

	ttl := time.Duration(config.AppConfig.SessionTTLMins) * time.Minute
	token, err := utils.GenerateSessionToken(resp.SessionID, ttl)
	if err != nil {
		logger.Error("failed to issue session token", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Could not start a conversation", "Please try again later.")
		return
	}

	c.JSON(http.StatusOK, StartSessionResponse{
		SessionID: resp.SessionID,
		Token:     token,
		Reply:     resp.Reply,
		Phase:     resp.Phase,
	})
}

// MessageHandler processes one user message for the authenticated
// session.
func (h *ChatHandler) MessageHandler(c *gin.Context) {
	logger := utils.GetLogger()
	sessionID := c.GetString("sessionID")

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid chat request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid chat request", "text must not be empty")
		return
	}

	resp, err := h.svc.ProcessMessage(c.Request.Context(), sessionID, req.Text)
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Session not found", "Start a new conversation.")
			return
		}
		logger.Error("failed to process chat message", zap.String("sessionID", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Could not process message", "Please try again later.")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ResetHandler clears all collected state for the authenticated session.
func (h *ChatHandler) ResetHandler(c *gin.Context) {
	sessionID := c.GetString("sessionID")

	if err := h.svc.ResetSession(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Session not found", "Start a new conversation.")
			return
		}
		utils.GetLogger().Error("failed to reset chat session", zap.String("sessionID", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Could not reset session", "Please try again later.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
