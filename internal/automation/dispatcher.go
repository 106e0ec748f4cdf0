// Package automation turns trusted webhook events into job fan-out on the
// external queue. Idempotency keys are derived here; deduplication on
// them is the queue's responsibility.
package automation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/foliopulse/internal/content"
	"github.com/foliopulse/internal/queue"
	"github.com/rs/zerolog"
)

// Job types the dispatcher emits.
const (
	JobSEOAnalysis         = "seo-analysis"
	JobContentOptimization = "content-optimization"
	JobSocialMediaPosting  = "social-media-posting"
	JobSitemapGeneration   = "sitemap-generation"
	JobAnalyticsProcessing = "analytics-processing"
	JobWebhookDelivery     = "webhook-delivery"
	JobEmailNotification   = "email-notification"
)

// SEO score thresholds driving the analysis-complete branching.
const (
	seoReoptimizeBelow = 70
	seoPromoteAbove    = 80
)

var ErrNoJobsEnqueued = errors.New("no jobs could be enqueued")

// BlogPublishedEvent is the validated blog-published webhook payload.
type BlogPublishedEvent struct {
	PostID      string
	Title       string
	Slug        string
	Content     string
	Keywords    []string
	PublishedAt time.Time
	AuthorID    string
	Status      string
}

// SEORecommendation is one actionable finding from the analysis.
type SEORecommendation struct {
	Priority string
	Message  string
}

// SEOAnalysisEvent is the validated seo-analysis-complete payload.
type SEOAnalysisEvent struct {
	PostID          string
	URL             string
	OverallScore    int
	Recommendations []SEORecommendation
	AnalyzedAt      time.Time
}

// JobRef identifies one accepted job in the response.
type JobRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// JobFailure records one job the queue rejected.
type JobFailure struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// DispatchResult reports the fan-out outcome, partial failures included.
type DispatchResult struct {
	Jobs   []JobRef     `json:"jobs"`
	Failed []JobFailure `json:"failed,omitempty"`
}

// Dispatcher enqueues the follow-up work for trusted events.
type Dispatcher struct {
	queue            queue.Queue
	siteBaseURL      string
	notificationURLs []string
	log              zerolog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(q queue.Queue, siteBaseURL string, notificationURLs []string, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		queue:            q,
		siteBaseURL:      siteBaseURL,
		notificationURLs: notificationURLs,
		log:              log,
	}
}

// plannedJob is one entry of an event's fan-out plan.
type plannedJob struct {
	jobType string
	payload any
	opts    queue.Options
}

// BlogPublished fans out the fixed post-publication pipeline plus one
// webhook-delivery job per configured notification URL.
func (d *Dispatcher) BlogPublished(ctx context.Context, event BlogPublishedEvent) (*DispatchResult, error) {
	baseKey := BaseKey("blog-published", event.PostID, event.PublishedAt)
	postURL := d.siteBaseURL + "/blog/" + event.Slug

	postPayload := map[string]any{
		"postId":      event.PostID,
		"title":       event.Title,
		"slug":        event.Slug,
		"url":         postURL,
		"keywords":    event.Keywords,
		"publishedAt": event.PublishedAt,
		"authorId":    event.AuthorID,
	}

	plan := []plannedJob{
		{
			jobType: JobSEOAnalysis,
			payload: postPayload,
			opts:    queue.Options{Priority: queue.PriorityHigh, IdempotencyKey: jobKey(baseKey, JobSEOAnalysis)},
		},
		{
			jobType: JobContentOptimization,
			payload: postPayload,
			opts:    queue.Options{Priority: queue.PriorityNormal, IdempotencyKey: jobKey(baseKey, JobContentOptimization)},
		},
		{
			// Delayed so a human can still pull the post before it goes out.
			jobType: JobSocialMediaPosting,
			payload: postPayload,
			opts: queue.Options{
				Priority:       queue.PriorityNormal,
				Delay:          5 * time.Minute,
				IdempotencyKey: jobKey(baseKey, JobSocialMediaPosting),
			},
		},
		{
			jobType: JobSitemapGeneration,
			payload: map[string]any{"reason": "blog-published", "postId": event.PostID},
			opts:    queue.Options{Priority: queue.PriorityLow, IdempotencyKey: jobKey(baseKey, JobSitemapGeneration)},
		},
		{
			// Delayed an hour so the first traffic has accrued.
			jobType: JobAnalyticsProcessing,
			payload: map[string]any{"postId": event.PostID, "slug": event.Slug},
			opts: queue.Options{
				Priority:       queue.PriorityLow,
				Delay:          time.Hour,
				IdempotencyKey: jobKey(baseKey, JobAnalyticsProcessing),
			},
		},
	}

	excerpt := content.Excerpt(event.Content, 280)
	if excerpt == "" {
		excerpt = event.Title
	}
	for i, target := range d.notificationURLs {
		plan = append(plan, plannedJob{
			jobType: JobWebhookDelivery,
			payload: map[string]any{
				"url":     target,
				"event":   "blog-published",
				"postId":  event.PostID,
				"title":   event.Title,
				"excerpt": excerpt,
				"postUrl": postURL,
			},
			opts: queue.Options{
				Priority:       queue.PriorityNormal,
				IdempotencyKey: jobKey(baseKey, fmt.Sprintf("%s-%d", JobWebhookDelivery, i)),
				MaxRetries:     3,
				BackoffDelay:   30 * time.Second,
				Tags:           []string{"notification"},
			},
		})
	}

	return d.enqueueAll(ctx, "blog-published", plan)
}

// SEOAnalysisComplete branches on the analysis outcome: weak scores
// trigger re-optimization, strong scores trigger delayed promotion, and
// high-priority recommendations page a human.
func (d *Dispatcher) SEOAnalysisComplete(ctx context.Context, event SEOAnalysisEvent) (*DispatchResult, error) {
	baseKey := BaseKey("seo-analysis-complete", event.PostID, event.AnalyzedAt)

	var plan []plannedJob

	if event.OverallScore < seoReoptimizeBelow {
		plan = append(plan, plannedJob{
			jobType: JobContentOptimization,
			payload: map[string]any{"postId": event.PostID, "seoScore": event.OverallScore},
			opts:    queue.Options{Priority: queue.PriorityHigh, IdempotencyKey: jobKey(baseKey, JobContentOptimization)},
		})
	} else if event.OverallScore > seoPromoteAbove {
		plan = append(plan, plannedJob{
			jobType: JobSocialMediaPosting,
			payload: map[string]any{"postId": event.PostID, "url": event.URL, "seoScore": event.OverallScore},
			opts: queue.Options{
				Priority:       queue.PriorityNormal,
				Delay:          30 * time.Minute,
				IdempotencyKey: jobKey(baseKey, JobSocialMediaPosting),
			},
		})
	}

	for _, rec := range event.Recommendations {
		if rec.Priority == "high" {
			plan = append(plan, plannedJob{
				jobType: JobEmailNotification,
				payload: map[string]any{
					"postId":  event.PostID,
					"subject": "High-priority SEO recommendation",
					"body":    rec.Message,
				},
				opts: queue.Options{Priority: queue.PriorityHigh, IdempotencyKey: jobKey(baseKey, JobEmailNotification)},
			})
			break
		}
	}

	if len(plan) == 0 {
		return &DispatchResult{Jobs: []JobRef{}}, nil
	}

	return d.enqueueAll(ctx, "seo-analysis-complete", plan)
}

// enqueueAll runs the plan in order, collecting partial failures. Only a
// fully failed plan is an error.
func (d *Dispatcher) enqueueAll(ctx context.Context, eventName string, plan []plannedJob) (*DispatchResult, error) {
	result := &DispatchResult{Jobs: make([]JobRef, 0, len(plan))}

	for _, planned := range plan {
		job, err := d.queue.Enqueue(ctx, planned.jobType, planned.payload, planned.opts)
		if err != nil {
			d.log.Error().Err(err).
				Str("event", eventName).
				Str("job_type", planned.jobType).
				Msg("job enqueue failed")
			result.Failed = append(result.Failed, JobFailure{Type: planned.jobType, Error: err.Error()})
			continue
		}
		result.Jobs = append(result.Jobs, JobRef{Type: job.Type, ID: job.ID})
	}

	if len(result.Jobs) == 0 {
		return result, ErrNoJobsEnqueued
	}
	return result, nil
}

// BaseKey derives the deterministic idempotency base for one trigger, so
// redelivery of the same upstream webhook maps to the same job keys.
func BaseKey(event, entityID string, triggeredAt time.Time) string {
	composite := fmt.Sprintf("%s|%s|%d", event, entityID, triggeredAt.UTC().Unix())
	sum := sha256.Sum256([]byte(composite))
	return hex.EncodeToString(sum[:])
}

func jobKey(baseKey, jobType string) string {
	return baseKey + ":" + jobType
}
