package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"erpassist/internal/llm"
	"erpassist/internal/logging"
)

type queryRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversationId"`
	Model          string `json:"model"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
		return
	}

	variant, err := llm.ParseVariant(req.Model)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.pipeline.Route(c.Request.Context(), req.Query, req.ConversationID, variant)
	if err != nil {
		logging.APIError("Query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process query"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleClearContext(c *gin.Context) {
	conversationID := c.Param("conversationId")
	cleared := s.pipeline.ClearContext(conversationID)
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
