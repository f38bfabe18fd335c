package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatRequest is the chat endpoint body. SessionID is optional; callers
// that omit it get a fresh session per request.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// ChatResponse carries the assistant's final answer.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// handleChat runs one reasoning turn.
// @Summary Chat with the assistant
// @Description Send a user message and receive the assistant's answer. Tool calls happen server-side.
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body ChatRequest true "User message"
// @Success 200 {object} ChatResponse "Final assistant answer"
// @Failure 400 {object} map[string]string "Empty or malformed query"
// @Failure 500 {object} map[string]string "Reasoning failure"
// @Router /api/chat [post]
func (srv *HTTPServer) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	answer, err := srv.assistant.ProcessQuery(c.Request.Context(), sessionID, req.Query)
	if err != nil {
		srv.l.Errorf(c.Request.Context(), "chat turn failed for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "I could not process that request, please try again."})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Response: answer, SessionID: sessionID})
}
