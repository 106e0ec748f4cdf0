package handler

import (
	"net/http"

	"github.com/foliopulse/internal/service"
	"github.com/foliopulse/internal/visitor"
	"github.com/gin-gonic/gin"
)

type contactRequest struct {
	Name    string `json:"name" binding:"required,max=128"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Subject string `json:"subject" binding:"omitempty,max=255"`
	Message string `json:"message" binding:"required,min=10,max=5000"`
}

// SubmitContact handles POST /api/contact.
func (a *API) SubmitContact(c *gin.Context) {
	var req contactRequest
	if !a.bindJSON(c, &req) {
		return
	}

	visitorID := visitor.ID(c.ClientIP(), c.Request.UserAgent())
	message, err := a.contacts.Submit(c.Request.Context(), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}, visitorID)
	if err != nil {
		a.serverError(c, "submit-contact", err)
		return
	}

	respondMessage(c, http.StatusCreated, gin.H{
		"id":        message.ID,
		"createdAt": message.CreatedAt,
	}, "message received")
}
