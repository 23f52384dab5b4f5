// Package api contains the gin handlers. They stay thin: bind, delegate to
// a service, translate errors through the error middleware.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-persona-chat/backend/internal/models"
	"ai-persona-chat/backend/internal/service"
	apperrors "ai-persona-chat/backend/pkg/errors"
)

// ChatHandler exposes the chat turn endpoint.
type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// HandleChat processes POST /chat. A safety-blocked turn is a successful
// response, not an error.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "invalid request body"))
		return
	}

	resp, err := h.chat.HandleTurn(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
