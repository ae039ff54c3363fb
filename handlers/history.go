package handlers

import (
	"encoding/csv"
	"errors"
	"net/http"
	"time"

	"homelead/models"
	"homelead/services/chat"
	"homelead/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HistoryHandler returns the conversation log for the authenticated
// session, as JSON or as a CSV download when ?format=csv is given.
func (h *ChatHandler) HistoryHandler(c *gin.Context) {
	sessionID := c.GetString("sessionID")

	log, err := h.svc.SessionLog(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Session not found", "Start a new conversation.")
			return
		}
		utils.GetLogger().Error("failed to load session log", zap.String("sessionID", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Could not load history", "Please try again later.")
		return
	}

	if c.Query("format") == "csv" {
		writeHistoryCSV(c, log)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "history": log})
}

func writeHistoryCSV(c *gin.Context, log []models.ChatLogEntry) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="conversation_history.csv"`)

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	header := []string{
		"timestamp", "user_message", "assistant_response",
		"intent", "property_type", "name", "phone", "email", "budget", "postcode",
	}
	if err := w.Write(header); err != nil {
		return
	}

	for _, entry := range log {
		budget := ""
		if entry.Slots.Budget != nil {
			budget = models.FormatBudget(*entry.Slots.Budget)
		}
		row := []string{
			entry.Timestamp.Format(time.RFC3339),
			entry.UserMessage,
			entry.AssistantResponse,
			entry.Slots.Intent,
			entry.Slots.PropertyType,
			entry.Slots.Name,
			entry.Slots.Phone,
			entry.Slots.Email,
			budget,
			entry.Slots.Postcode,
		}
		if err := w.Write(row); err != nil {
			return
		}
	}
}
