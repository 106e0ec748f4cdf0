package router

import (
	"net/http"

	"github.com/foliopulse/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Setup 配置 Gin 引擎和路由。
func Setup(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("foliopulse_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/csrf-token", api.CSRFToken)

		analytics := apiGroup.Group("/analytics")
		{
			analytics.POST("/views", api.TrackView)
			analytics.GET("/views", api.GetViews)
		}

		blog := apiGroup.Group("/blog")
		{
			blog.POST("/:slug/interactions", api.CSRFRequired(), api.RecordInteraction)
			blog.GET("/:slug/interactions", api.GetInteractionCounts)
		}

		apiGroup.POST("/contact", api.SubmitContact)

		automation := apiGroup.Group("/automation")
		{
			webhooks := automation.Group("/webhooks", api.WebhookAuth())
			{
				webhooks.POST("/blog-published", api.BlogPublished)
				webhooks.POST("/seo-analysis-complete", api.SEOAnalysisComplete)
			}

			errorLog := automation.Group("/errors", api.AdminRequired())
			{
				errorLog.GET("", api.ListErrors)
				errorLog.POST("", api.CreateError)
				errorLog.DELETE("", api.ClearErrors)
			}
		}
	}

	return r
}
