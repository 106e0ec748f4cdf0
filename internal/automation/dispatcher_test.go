package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foliopulse/internal/queue"
	"github.com/rs/zerolog"
)

func publishedEvent() BlogPublishedEvent {
	return BlogPublishedEvent{
		PostID:      "p1",
		Title:       "Hello",
		Slug:        "hello",
		Keywords:    []string{"seo"},
		PublishedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		AuthorID:    "a1",
		Status:      "PUBLISHED",
	}
}

func TestBlogPublishedFanOut(t *testing.T) {
	q := queue.NewMemoryQueue()
	d := NewDispatcher(q, "https://foliopulse.dev", nil, zerolog.Nop())

	result, err := d.BlogPublished(context.Background(), publishedEvent())
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	want := []string{
		JobSEOAnalysis,
		JobContentOptimization,
		JobSocialMediaPosting,
		JobSitemapGeneration,
		JobAnalyticsProcessing,
	}
	if len(result.Jobs) != len(want) {
		t.Fatalf("expected %d jobs, got %d", len(want), len(result.Jobs))
	}
	for i, jobType := range want {
		if result.Jobs[i].Type != jobType {
			t.Fatalf("job %d: expected %s, got %s", i, jobType, result.Jobs[i].Type)
		}
		if result.Jobs[i].ID == "" {
			t.Fatalf("job %s: expected non-empty id", jobType)
		}
	}
	if len(result.Failed) != 0 {
		t.Fatalf("expected no failures, got %v", result.Failed)
	}
}

func TestBlogPublishedNotificationFanOut(t *testing.T) {
	q := queue.NewMemoryQueue()
	d := NewDispatcher(q, "https://foliopulse.dev",
		[]string{"https://chat.example.com/hook", "https://other.example.com/hook"}, zerolog.Nop())

	result, err := d.BlogPublished(context.Background(), publishedEvent())
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	deliveries := 0
	for _, job := range result.Jobs {
		if job.Type == JobWebhookDelivery {
			deliveries++
		}
	}
	if deliveries != 2 {
		t.Fatalf("expected 2 webhook-delivery jobs, got %d", deliveries)
	}

	for _, recorded := range q.Jobs {
		if recorded.Job.Type == JobWebhookDelivery {
			if recorded.Options.MaxRetries != 3 || recorded.Options.BackoffDelay != 30*time.Second {
				t.Fatalf("unexpected retry policy %+v", recorded.Options)
			}
		}
	}
}

func TestBlogPublishedIdempotentRedelivery(t *testing.T) {
	q := queue.NewMemoryQueue()
	d := NewDispatcher(q, "https://foliopulse.dev", nil, zerolog.Nop())

	first, err := d.BlogPublished(context.Background(), publishedEvent())
	if err != nil {
		t.Fatalf("first dispatch failed: %v", err)
	}
	second, err := d.BlogPublished(context.Background(), publishedEvent())
	if err != nil {
		t.Fatalf("second dispatch failed: %v", err)
	}

	// Same trigger, same keys: the queue hands back the original jobs.
	for i := range first.Jobs {
		if first.Jobs[i].ID != second.Jobs[i].ID {
			t.Fatalf("job %s: expected stable id on redelivery", first.Jobs[i].Type)
		}
	}
	if len(q.Jobs) != len(first.Jobs) {
		t.Fatalf("expected %d recorded jobs after redelivery, got %d", len(first.Jobs), len(q.Jobs))
	}
}

func TestBlogPublishedPartialFailure(t *testing.T) {
	q := queue.NewMemoryQueue()
	q.FailWith(func(jobType string) error {
		if jobType == JobSitemapGeneration {
			return errors.New("broker rejected")
		}
		return nil
	})
	d := NewDispatcher(q, "https://foliopulse.dev", nil, zerolog.Nop())

	result, err := d.BlogPublished(context.Background(), publishedEvent())
	if err != nil {
		t.Fatalf("partial failure should not error: %v", err)
	}

	if len(result.Jobs) != 4 {
		t.Fatalf("expected 4 accepted jobs, got %d", len(result.Jobs))
	}
	if len(result.Failed) != 1 || result.Failed[0].Type != JobSitemapGeneration {
		t.Fatalf("expected sitemap-generation failure, got %v", result.Failed)
	}
}

func TestBlogPublishedAllFailed(t *testing.T) {
	q := queue.NewMemoryQueue()
	q.FailWith(func(string) error { return errors.New("broker down") })
	d := NewDispatcher(q, "https://foliopulse.dev", nil, zerolog.Nop())

	_, err := d.BlogPublished(context.Background(), publishedEvent())
	if !errors.Is(err, ErrNoJobsEnqueued) {
		t.Fatalf("expected ErrNoJobsEnqueued, got %v", err)
	}
}

func TestSEOAnalysisLowScoreTriggersOptimization(t *testing.T) {
	q := queue.NewMemoryQueue()
	d := NewDispatcher(q, "https://foliopulse.dev", nil, zerolog.Nop())

	result, err := d.SEOAnalysisComplete(context.Background(), SEOAnalysisEvent{
		PostID:       "p1",
		OverallScore: 65,
		AnalyzedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if len(result.Jobs) != 1 || result.Jobs[0].Type != JobContentOptimization {
		t.Fatalf("expected content-optimization job, got %v", result.Jobs)
	}
}

func TestSEOAnalysisHighScoreTriggersPromotion(t *testing.T) {
	q := queue.NewMemoryQueue()
	d := NewDispatcher(q, "https://foliopulse.dev", nil, zerolog.Nop())

	result, err := d.SEOAnalysisComplete(context.Background(), SEOAnalysisEvent{
		PostID:       "p1",
		OverallScore: 85,
		AnalyzedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if len(result.Jobs) != 1 || result.Jobs[0].Type != JobSocialMediaPosting {
		t.Fatalf("expected social-media-posting job, got %v", result.Jobs)
	}
	if q.Jobs[0].Options.Delay != 30*time.Minute {
		t.Fatalf("expected 30m promotion delay, got %v", q.Jobs[0].Options.Delay)
	}
}

func TestSEOAnalysisHighPriorityRecommendation(t *testing.T) {
	q := queue.NewMemoryQueue()
	d := NewDispatcher(q, "https://foliopulse.dev", nil, zerolog.Nop())

	result, err := d.SEOAnalysisComplete(context.Background(), SEOAnalysisEvent{
		PostID:       "p1",
		OverallScore: 75,
		Recommendations: []SEORecommendation{
			{Priority: "low", Message: "shorten the title"},
			{Priority: "high", Message: "missing meta description"},
		},
		AnalyzedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if len(result.Jobs) != 1 || result.Jobs[0].Type != JobEmailNotification {
		t.Fatalf("expected email-notification job, got %v", result.Jobs)
	}
}

func TestSEOAnalysisMiddleScoreNoJobs(t *testing.T) {
	q := queue.NewMemoryQueue()
	d := NewDispatcher(q, "https://foliopulse.dev", nil, zerolog.Nop())

	result, err := d.SEOAnalysisComplete(context.Background(), SEOAnalysisEvent{
		PostID:       "p1",
		OverallScore: 75,
		AnalyzedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if len(result.Jobs) != 0 {
		t.Fatalf("expected no jobs for middling score, got %v", result.Jobs)
	}
}

func TestBaseKeyDeterministic(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if BaseKey("blog-published", "p1", at) != BaseKey("blog-published", "p1", at) {
		t.Fatal("expected identical keys for identical triggers")
	}
	if BaseKey("blog-published", "p1", at) == BaseKey("blog-published", "p2", at) {
		t.Fatal("expected distinct keys for distinct posts")
	}
}
