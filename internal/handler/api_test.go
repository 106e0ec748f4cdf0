package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foliopulse/internal/config"
	"github.com/foliopulse/internal/db"
	"github.com/foliopulse/internal/queue"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() config.AppConfig {
	return config.AppConfig{
		SessionSecret:  "test-session-secret",
		SiteBaseURL:    "https://foliopulse.dev",
		WebhookSecret:  "test-webhook-secret",
		WebhookMaxSkew: 5 * time.Minute,
		AdminAPIKey:    "test-admin-key",
	}
}

func setupTestAPI(t *testing.T) (*API, *queue.MemoryQueue, func()) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	db.DB = gdb

	// 共享缓存的内存库可能在用例之间存活，先清空。
	for _, table := range []string{"posts", "interaction_events", "view_events", "contact_messages", "error_logs"} {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset table %s: %v", table, err)
		}
	}

	q := queue.NewMemoryQueue()
	api := NewAPI(gdb, q, testConfig(), zerolog.Nop())

	return api, q, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func seedPost(t *testing.T, api *API, slug string) db.Post {
	t.Helper()

	post := db.Post{Slug: slug, Title: "Test post", Content: "# Test\nContent", Status: db.StatusPublished}
	if err := api.DB().Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	return post
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return envelope
}

func dataField(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()

	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in %v", envelope)
	}
	return data
}
