package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Every response uses the same envelope: {success, data?, error?, message?}.

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{"success": true, "data": data, "message": message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// bindJSON binds and validates the request body. Validator detail stays in
// the logs; the client only ever sees a generic message.
func (a *API) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fmt.Sprintf("%s:%s", fe.Field(), fe.Tag()))
			}
			a.log.Warn().Strs("fields", fields).Str("path", c.Request.URL.Path).
				Msg("request validation failed")
		} else {
			a.log.Warn().Err(err).Str("path", c.Request.URL.Path).
				Msg("request body rejected")
		}
		respondError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// serverError handles the unexpected-failure path: structured log, an
// error_logs row, and a generic 500 envelope.
func (a *API) serverError(c *gin.Context, source string, err error) {
	a.log.Error().Err(err).
		Str("source", source).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	if a.errorLogs != nil {
		detail := fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path)
		if _, logErr := a.errorLogs.Append("error", "api", source, err.Error(), detail); logErr != nil {
			a.log.Error().Err(logErr).Msg("error log append failed")
		}
	}

	respondError(c, http.StatusInternalServerError, "internal server error")
}
