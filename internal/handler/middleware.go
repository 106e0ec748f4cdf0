package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	csrfSessionKey  = "csrf_token"
	csrfHeaderName  = "x-csrf-token"
	signatureHeader = "x-webhook-signature"
	timestampHeader = "x-webhook-timestamp"
)

// CSRFToken issues a fresh token into the session and returns it. Clients
// echo it in the x-csrf-token header on state-changing blog calls.
func (a *API) CSRFToken(c *gin.Context) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		a.serverError(c, "csrf-token", err)
		return
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	session := sessions.Default(c)
	session.Set(csrfSessionKey, token)
	if err := session.Save(); err != nil {
		a.serverError(c, "csrf-token", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"token": token})
}

// CSRFRequired rejects state-changing requests whose header token does not
// match the session token.
func (a *API) CSRFRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		stored, _ := session.Get(csrfSessionKey).(string)
		provided := c.GetHeader(csrfHeaderName)

		if stored == "" || provided == "" ||
			subtle.ConstantTimeCompare([]byte(stored), []byte(provided)) != 1 {
			respondError(c, http.StatusForbidden, "invalid csrf token")
			c.Abort()
			return
		}

		c.Next()
	}
}

// WebhookAuth verifies automation webhooks: both headers must be present,
// the timestamp must be fresh, and the signature must be a valid
// HMAC-SHA256 of the raw body under the shared secret.
func (a *API) WebhookAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		signature := strings.TrimPrefix(c.GetHeader(signatureHeader), "sha256=")
		timestamp := c.GetHeader(timestampHeader)
		if signature == "" || timestamp == "" {
			respondError(c, http.StatusUnauthorized, "missing webhook headers")
			c.Abort()
			return
		}

		if a.cfg.WebhookSecret == "" {
			// No secret configured means the endpoint is locked, not open.
			a.log.Warn().Msg("webhook rejected: no secret configured")
			respondError(c, http.StatusUnauthorized, "webhook authentication failed")
			c.Abort()
			return
		}

		unix, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "webhook authentication failed")
			c.Abort()
			return
		}
		skew := time.Since(time.Unix(unix, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > a.cfg.WebhookMaxSkew {
			respondError(c, http.StatusUnauthorized, "webhook timestamp expired")
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			a.serverError(c, "webhook-auth", err)
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		mac := hmac.New(sha256.New, []byte(a.cfg.WebhookSecret))
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))

		if !hmac.Equal([]byte(expected), []byte(signature)) {
			a.log.Warn().Str("path", c.Request.URL.Path).Msg("webhook signature mismatch")
			respondError(c, http.StatusUnauthorized, "webhook authentication failed")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminRequired guards admin endpoints with a bearer key. A bcrypt hash
// form is honored first so the plaintext key never has to live in the
// environment.
func (a *API) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if token == "" || !a.adminTokenValid(token) {
			respondError(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *API) adminTokenValid(token string) bool {
	if a.cfg.AdminAPIKeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.cfg.AdminAPIKeyHash), []byte(token)) == nil
	}
	if a.cfg.AdminAPIKey != "" {
		return subtle.ConstantTimeCompare([]byte(a.cfg.AdminAPIKey), []byte(token)) == 1
	}
	// Neither form configured: the admin surface stays closed.
	return false
}
