package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"elevator-maintenance-backend/config"
	"elevator-maintenance-backend/internal/auth"
	"elevator-maintenance-backend/internal/model"
	"elevator-maintenance-backend/internal/mw"
	"elevator-maintenance-backend/internal/notification"
	"elevator-maintenance-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, authSvc *auth.Service, notifier *notification.WorkerPool, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = cfg.Uploads.MaxUploadMB << 20

	handler := NewHandler(s, authSvc, cfg.Uploads, notifier, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// Health check
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Uploaded maintenance photos
	r.Static("/uploads", cfg.Uploads.Dir)

	adminOnly := mw.RequireRole(model.RoleAdmin)

	api := r.Group("/api")
	api.Use(rateLimiter)

	api.POST("/auth/login", handler.Login)

	authed := api.Group("")
	authed.Use(mw.Authenticate(authSvc, s))
	{
		authed.POST("/auth/register", adminOnly, handler.Register)

		authed.GET("/elevators", handler.GetElevators)
		authed.GET("/elevators/current", caching, handler.GetCurrentElevators)
		authed.POST("/elevators", adminOnly, handler.CreateElevator)
		authed.PUT("/elevators/:id", adminOnly, handler.UpdateElevator)
		authed.DELETE("/elevators/:id", adminOnly, handler.DeleteElevator)

		authed.POST("/records", handler.CreateRecord)
		authed.GET("/records", handler.GetRecords)
		authed.POST("/records/:id/attachments", handler.UploadAttachments)

		users := authed.Group("/users")
		users.Use(adminOnly)
		{
			users.GET("", handler.GetUsers)
			users.GET("/:id", handler.GetUser)
			users.DELETE("/:id", handler.DeleteUser)
		}

		authed.GET("/subscriptions", handler.GetSubscription)
		authed.PUT("/subscriptions", handler.PutSubscription)
		authed.DELETE("/subscriptions", handler.DeleteSubscription)
		authed.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
