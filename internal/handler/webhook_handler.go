package handler

import (
	"net/http"
	"time"

	"github.com/foliopulse/internal/automation"
	"github.com/gin-gonic/gin"
)

type blogPublishedRequest struct {
	ID          string    `json:"id" binding:"required,max=64"`
	Title       string    `json:"title" binding:"required,max=255"`
	Slug        string    `json:"slug" binding:"required,max=255"`
	Content     string    `json:"content"`
	Keywords    []string  `json:"keywords" binding:"omitempty,dive,max=64"`
	PublishedAt time.Time `json:"publishedAt" binding:"required"`
	AuthorID    string    `json:"authorId" binding:"required,max=64"`
	Status      string    `json:"status" binding:"required,oneof=PUBLISHED"`
}

// BlogPublished handles POST /api/automation/webhooks/blog-published.
func (a *API) BlogPublished(c *gin.Context) {
	var req blogPublishedRequest
	if !a.bindJSON(c, &req) {
		return
	}

	result, err := a.dispatcher.BlogPublished(c.Request.Context(), automation.BlogPublishedEvent{
		PostID:      req.ID,
		Title:       req.Title,
		Slug:        req.Slug,
		Content:     req.Content,
		Keywords:    req.Keywords,
		PublishedAt: req.PublishedAt,
		AuthorID:    req.AuthorID,
		Status:      req.Status,
	})
	if err != nil {
		a.serverError(c, "blog-published", err)
		return
	}

	data := gin.H{
		"jobs": result.Jobs,
		"post": gin.H{
			"id":    req.ID,
			"title": req.Title,
			"url":   a.cfg.SiteBaseURL + "/blog/" + req.Slug,
		},
	}
	if len(result.Failed) > 0 {
		data["failed"] = result.Failed
	}

	respondMessage(c, http.StatusOK, data, "automation jobs enqueued")
}

type seoRecommendationBody struct {
	Priority string `json:"priority" binding:"required,oneof=low medium high"`
	Message  string `json:"message" binding:"required,max=1024"`
}

type seoScoreBody struct {
	Overall int `json:"overall" binding:"min=0,max=100"`
}

type seoAnalysisRequest struct {
	PostID          string                  `json:"postId" binding:"required,max=64"`
	URL             string                  `json:"url" binding:"omitempty,url"`
	SEOScore        seoScoreBody            `json:"seoScore" binding:"required"`
	Recommendations []seoRecommendationBody `json:"recommendations" binding:"omitempty,dive"`
	AnalyzedAt      time.Time               `json:"analyzedAt" binding:"required"`
}

// SEOAnalysisComplete handles POST /api/automation/webhooks/seo-analysis-complete.
func (a *API) SEOAnalysisComplete(c *gin.Context) {
	var req seoAnalysisRequest
	if !a.bindJSON(c, &req) {
		return
	}

	recommendations := make([]automation.SEORecommendation, 0, len(req.Recommendations))
	for _, rec := range req.Recommendations {
		recommendations = append(recommendations, automation.SEORecommendation{
			Priority: rec.Priority,
			Message:  rec.Message,
		})
	}

	result, err := a.dispatcher.SEOAnalysisComplete(c.Request.Context(), automation.SEOAnalysisEvent{
		PostID:          req.PostID,
		URL:             req.URL,
		OverallScore:    req.SEOScore.Overall,
		Recommendations: recommendations,
		AnalyzedAt:      req.AnalyzedAt,
	})
	if err != nil {
		a.serverError(c, "seo-analysis-complete", err)
		return
	}

	data := gin.H{
		"triggeredJobs":   result.Jobs,
		"seoScore":        req.SEOScore.Overall,
		"recommendations": len(req.Recommendations),
	}
	if len(result.Failed) > 0 {
		data["failed"] = result.Failed
	}

	respondMessage(c, http.StatusOK, data, "analysis processed")
}
