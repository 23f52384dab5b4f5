package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-persona-chat/backend/internal/models"
	"ai-persona-chat/backend/internal/service"
	apperrors "ai-persona-chat/backend/pkg/errors"
)

// PersonaHandler exposes persona management endpoints.
type PersonaHandler struct {
	personas *service.PersonaService
}

func NewPersonaHandler(personas *service.PersonaService) *PersonaHandler {
	return &PersonaHandler{personas: personas}
}

// ListPersonas handles GET /personas, newest first.
func (h *PersonaHandler) ListPersonas(c *gin.Context) {
	personas, err := h.personas.ListPersonas(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, personas)
}

// CreatePersona handles POST /personas.
func (h *PersonaHandler) CreatePersona(c *gin.Context) {
	var req models.CreatePersonaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "invalid request body"))
		return
	}

	persona, err := h.personas.CreatePersona(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, persona)
}

// UpdatePersona handles PUT /personas/:id as a full replace of name+prompt.
func (h *PersonaHandler) UpdatePersona(c *gin.Context) {
	var req models.UpdatePersonaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "invalid request body"))
		return
	}

	persona, err := h.personas.UpdatePersona(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, persona)
}
