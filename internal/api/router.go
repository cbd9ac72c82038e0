package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"studio-booking-backend/config"
	"studio-booking-backend/internal/admin"
	"studio-booking-backend/internal/email"
	"studio-booking-backend/internal/mw"
	"studio-booking-backend/internal/notification"
	"studio-booking-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, gate *admin.Gate, emitter *notification.Emitter, sender email.Sender, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, gate, emitter, sender, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	identity := mw.Identity(cfg.Server.JWTSecret)
	requireAdmin := mw.RequireAdmin(gate)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter, identity)
	{
		api.GET("/admin/check", handler.CheckAdmin)
		api.GET("/admins", requireAdmin, caching, handler.ListAdmins)
		api.GET("/admins/watch", requireAdmin, handler.WatchAdmins)
		api.POST("/admin/grants", requireAdmin, handler.GrantAdmin)
		api.DELETE("/admin/grants/:email", requireAdmin, handler.RevokeAdmin)

		api.POST("/reservations", handler.CreateReservation)
		api.GET("/reservations/:id", handler.GetReservation)
		api.GET("/reservations/:id/remaining", handler.GetReservationRemaining)
		api.POST("/reservations/:id/cancel", handler.CancelReservation)

		api.POST("/kyc", handler.SubmitKYC)
		api.GET("/kyc/:id", handler.GetKYC)
		api.POST("/kyc/:id/review", requireAdmin, handler.ReviewKYC)

		api.GET("/notifications", handler.ListNotifications)
		api.POST("/notifications/:id/read", handler.MarkNotificationRead)

		api.POST("/email/test", requireAdmin, handler.SendTestEmail)

		api.PUT("/push_subscriptions", requireAdmin, handler.PutSubscription)
		api.GET("/push_subscriptions", requireAdmin, handler.GetSubscriptions)
		api.DELETE("/push_subscriptions", requireAdmin, handler.DeleteSubscription)
		api.GET("/vapid_public_key", requireAdmin, handler.GetVAPIDPublicKey)
	}

	return r
}
