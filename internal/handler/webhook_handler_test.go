package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/foliopulse/internal/db"
	"github.com/gin-gonic/gin"
)

var errBrokerDown = errors.New("broker down")

// webhookEngine wires the middleware the way the router does, since the
// signature check reads the raw body before binding.
func webhookEngine(api *API) *gin.Engine {
	r := gin.New()
	hooks := r.Group("/api/automation/webhooks", api.WebhookAuth())
	hooks.POST("/blog-published", api.BlogPublished)
	hooks.POST("/seo-analysis-complete", api.SEOAnalysisComplete)
	return r
}

func signedRequest(t *testing.T, secret, target string, payload any) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-webhook-signature", hex.EncodeToString(mac.Sum(nil)))
	req.Header.Set("x-webhook-timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	return req
}

func publishedPayload() map[string]any {
	return map[string]any{
		"id":          "p1",
		"title":       "Hello",
		"slug":        "hello",
		"keywords":    []string{"seo"},
		"publishedAt": time.Now().UTC().Format(time.RFC3339),
		"authorId":    "a1",
		"status":      "PUBLISHED",
	}
}

func TestBlogPublishedWebhookFanOut(t *testing.T) {
	api, q, cleanup := setupTestAPI(t)
	defer cleanup()

	r := webhookEngine(api)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest(t, "test-webhook-secret", "/api/automation/webhooks/blog-published", publishedPayload()))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	data := dataField(t, decodeEnvelope(t, w))
	jobs, ok := data["jobs"].([]any)
	if !ok || len(jobs) != 5 {
		t.Fatalf("expected 5 jobs, got %v", data["jobs"])
	}
	for _, raw := range jobs {
		job := raw.(map[string]any)
		if job["id"] == "" || job["type"] == "" {
			t.Fatalf("expected populated job ref, got %v", job)
		}
	}

	post := data["post"].(map[string]any)
	if post["url"] != "https://foliopulse.dev/blog/hello" {
		t.Fatalf("unexpected post url %v", post["url"])
	}

	if len(q.Jobs) != 5 {
		t.Fatalf("expected 5 queued jobs, got %d", len(q.Jobs))
	}
}

func TestBlogPublishedMissingHeaders(t *testing.T) {
	api, q, cleanup := setupTestAPI(t)
	defer cleanup()

	body, _ := json.Marshal(publishedPayload())
	req := httptest.NewRequest(http.MethodPost, "/api/automation/webhooks/blog-published", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	webhookEngine(api).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
	if len(q.Jobs) != 0 {
		t.Fatalf("expected no queued jobs, got %d", len(q.Jobs))
	}
}

func TestBlogPublishedBadSignature(t *testing.T) {
	api, q, cleanup := setupTestAPI(t)
	defer cleanup()

	req := signedRequest(t, "wrong-secret", "/api/automation/webhooks/blog-published", publishedPayload())

	w := httptest.NewRecorder()
	webhookEngine(api).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
	if len(q.Jobs) != 0 {
		t.Fatalf("expected no queued jobs, got %d", len(q.Jobs))
	}
}

func TestBlogPublishedStaleTimestamp(t *testing.T) {
	api, _, cleanup := setupTestAPI(t)
	defer cleanup()

	req := signedRequest(t, "test-webhook-secret", "/api/automation/webhooks/blog-published", publishedPayload())
	req.Header.Set("x-webhook-timestamp", strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10))

	w := httptest.NewRecorder()
	webhookEngine(api).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestBlogPublishedSchemaViolation(t *testing.T) {
	api, q, cleanup := setupTestAPI(t)
	defer cleanup()

	payload := publishedPayload()
	delete(payload, "authorId")
	req := signedRequest(t, "test-webhook-secret", "/api/automation/webhooks/blog-published", payload)

	w := httptest.NewRecorder()
	webhookEngine(api).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if len(q.Jobs) != 0 {
		t.Fatalf("expected no queued jobs, got %d", len(q.Jobs))
	}
}

func TestSEOAnalysisLowScore(t *testing.T) {
	api, _, cleanup := setupTestAPI(t)
	defer cleanup()

	req := signedRequest(t, "test-webhook-secret", "/api/automation/webhooks/seo-analysis-complete", map[string]any{
		"postId":     "p1",
		"seoScore":   map[string]any{"overall": 65},
		"analyzedAt": time.Now().UTC().Format(time.RFC3339),
	})

	w := httptest.NewRecorder()
	webhookEngine(api).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	data := dataField(t, decodeEnvelope(t, w))
	jobs := data["triggeredJobs"].([]any)
	if len(jobs) != 1 || jobs[0].(map[string]any)["type"] != "content-optimization" {
		t.Fatalf("expected content-optimization, got %v", jobs)
	}
	if data["seoScore"].(float64) != 65 {
		t.Fatalf("expected seoScore echoed, got %v", data["seoScore"])
	}
}

func TestSEOAnalysisHighPriorityRecommendation(t *testing.T) {
	api, _, cleanup := setupTestAPI(t)
	defer cleanup()

	req := signedRequest(t, "test-webhook-secret", "/api/automation/webhooks/seo-analysis-complete", map[string]any{
		"postId":   "p1",
		"seoScore": map[string]any{"overall": 75},
		"recommendations": []map[string]any{
			{"priority": "high", "message": "missing meta description"},
		},
		"analyzedAt": time.Now().UTC().Format(time.RFC3339),
	})

	w := httptest.NewRecorder()
	webhookEngine(api).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	jobs := dataField(t, decodeEnvelope(t, w))["triggeredJobs"].([]any)
	if len(jobs) != 1 || jobs[0].(map[string]any)["type"] != "email-notification" {
		t.Fatalf("expected email-notification, got %v", jobs)
	}
}

func TestSEOAnalysisOutOfRangeScore(t *testing.T) {
	api, _, cleanup := setupTestAPI(t)
	defer cleanup()

	req := signedRequest(t, "test-webhook-secret", "/api/automation/webhooks/seo-analysis-complete", map[string]any{
		"postId":     "p1",
		"seoScore":   map[string]any{"overall": 130},
		"analyzedAt": time.Now().UTC().Format(time.RFC3339),
	})

	w := httptest.NewRecorder()
	webhookEngine(api).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestWebhookFailureLogsError(t *testing.T) {
	api, q, cleanup := setupTestAPI(t)
	defer cleanup()

	q.FailWith(func(string) error { return errBrokerDown })

	req := signedRequest(t, "test-webhook-secret", "/api/automation/webhooks/blog-published", publishedPayload())
	w := httptest.NewRecorder()
	webhookEngine(api).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}

	var count int64
	if err := api.DB().Model(&db.ErrorLog{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count error logs: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one error log entry, got %d", count)
	}
}
