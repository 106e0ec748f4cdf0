package handler

import (
	"errors"
	"net/http"

	"github.com/foliopulse/internal/service"
	"github.com/gin-gonic/gin"
)

type trackViewRequest struct {
	Type        string `json:"type" binding:"required,oneof=blog project"`
	Slug        string `json:"slug" binding:"required,max=255"`
	ReadingTime int    `json:"readingTime" binding:"omitempty,min=0"`
	ScrollDepth int    `json:"scrollDepth" binding:"omitempty,min=0,max=100"`
	Referrer    string `json:"referrer" binding:"omitempty,max=512"`
}

// TrackView handles POST /api/analytics/views.
func (a *API) TrackView(c *gin.Context) {
	var req trackViewRequest
	if !a.bindJSON(c, &req) {
		return
	}

	result, err := a.views.Track(service.ViewInput{
		Type:        req.Type,
		Slug:        req.Slug,
		ReadingTime: req.ReadingTime,
		ScrollDepth: req.ScrollDepth,
		Referrer:    req.Referrer,
	}, requestContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			respondError(c, http.StatusNotFound, "post not found")
		case errors.Is(err, service.ErrInvalidViewType):
			respondError(c, http.StatusBadRequest, "invalid view type")
		default:
			a.serverError(c, "track-view", err)
		}
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"id":         result.ID,
		"type":       result.Type,
		"slug":       result.Slug,
		"viewedAt":   result.ViewedAt,
		"totalViews": result.TotalViews,
	})
}

// GetViews handles GET /api/analytics/views.
func (a *API) GetViews(c *gin.Context) {
	viewType := c.Query("type")
	if viewType != "" && viewType != service.ViewTypeBlog && viewType != service.ViewTypeProject {
		respondError(c, http.StatusBadRequest, "invalid view type")
		return
	}

	views, err := a.views.Views(viewType, c.Query("slug"))
	if err != nil {
		a.serverError(c, "get-views", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"views": views})
}
