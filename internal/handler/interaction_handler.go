package handler

import (
	"errors"
	"net/http"

	"github.com/foliopulse/internal/db"
	"github.com/foliopulse/internal/service"
	"github.com/gin-gonic/gin"
)

type interactionRequest struct {
	Type     string            `json:"type" binding:"required,oneof=LIKE SHARE COMMENT BOOKMARK SUBSCRIBE DOWNLOAD"`
	Value    string            `json:"value" binding:"omitempty,max=255"`
	Metadata map[string]string `json:"metadata"`
}

// RecordInteraction handles POST /api/blog/:slug/interactions.
func (a *API) RecordInteraction(c *gin.Context) {
	var req interactionRequest
	if !a.bindJSON(c, &req) {
		return
	}

	result, err := a.interactions.Record(
		c.Param("slug"),
		db.InteractionType(req.Type),
		req.Value,
		req.Metadata,
		requestContext(c),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			respondError(c, http.StatusNotFound, "post not found")
		case errors.Is(err, service.ErrInvalidInteraction):
			respondError(c, http.StatusBadRequest, "invalid interaction type")
		default:
			a.serverError(c, "record-interaction", err)
		}
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"id":         result.ID,
		"type":       result.Type,
		"createdAt":  result.CreatedAt,
		"postCounts": result.Counts,
	})
}

// GetInteractionCounts handles GET /api/blog/:slug/interactions.
func (a *API) GetInteractionCounts(c *gin.Context) {
	counts, err := a.interactions.Counts(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		a.serverError(c, "get-interactions", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"postCounts": counts})
}
