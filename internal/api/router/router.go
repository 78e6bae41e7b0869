package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maxton76/stall-bokning-sub008/config"
	"github.com/maxton76/stall-bokning-sub008/internal/api/handler"
	"github.com/maxton76/stall-bokning-sub008/internal/api/middleware"
	"github.com/maxton76/stall-bokning-sub008/internal/model"
	"github.com/maxton76/stall-bokning-sub008/pkg/jwt"
	"github.com/maxton76/stall-bokning-sub008/pkg/redis"
)

const (
	maxBodyBytes     = 1 << 20 // 1 MiB request bodies
	rateLimitPerMin  = 120
	rateLimitWindow  = time.Minute
)

// Setup builds and returns the Gin engine with all routes wired.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))
	r.Use(middleware.RateLimit(rdb, rateLimitPerMin, rateLimitWindow))

	// ── health check ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// auth (no token required)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// authenticated routes
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// stable module
			stables := authorized.Group("/stables")
			{
				stables.POST("", h.Stable.CreateStable)

				current := stables.Group("/current")
				current.Use(middleware.StableScope())
				{
					current.GET("", h.Stable.GetCurrentStable)
					current.PUT("", middleware.RoleAuth(rdb, model.RoleAdmin), h.Stable.UpdateCurrentStable)
					current.GET("/members", h.Stable.ListMembers)
					current.POST("/invites", middleware.RoleAuth(rdb, model.RoleAdmin), h.Stable.GenerateInvite)
					current.GET("/context", h.Stable.GetContext)
					current.PUT("/toggles/:key", middleware.RoleAuth(rdb, model.RoleAdmin), h.Stable.SetToggle)
				}
			}

			// facility module
			facilities := authorized.Group("/facilities")
			facilities.Use(middleware.StableScope())
			{
				facilities.GET("", h.Facility.ListFacilities)
				facilities.GET("/:id", h.Facility.GetFacility)
				facilities.POST("", middleware.RoleAuth(rdb, model.RoleAdmin), h.Facility.CreateFacility)
				facilities.PUT("/:id", middleware.RoleAuth(rdb, model.RoleAdmin), h.Facility.UpdateFacility)
				facilities.DELETE("/:id", middleware.RoleAuth(rdb, model.RoleAdmin), h.Facility.DeleteFacility)
				facilities.PUT("/:id/availability", middleware.RoleAuth(rdb, model.RoleAdmin), h.Facility.UpdateAvailability)
				facilities.POST("/:id/availability/migrate", middleware.RoleAuth(rdb, model.RoleAdmin), h.Facility.MigrateAvailability)
				facilities.GET("/:id/availability/blocks", h.Facility.GetEffectiveBlocks)
				facilities.GET("/:id/availability/check", h.Facility.CheckRange)
			}

			// routine slot module
			slots := authorized.Group("/routine-slots")
			slots.Use(middleware.StableScope())
			{
				slots.GET("", h.Routine.ListSlots)
				slots.GET("/my", h.Routine.ListMySlots)
				slots.GET("/:id", h.Routine.GetSlot)
				slots.POST("", middleware.RoleAuth(rdb, model.RoleAdmin), h.Routine.CreateSlot)
				slots.PUT("/:id", middleware.RoleAuth(rdb, model.RoleAdmin), h.Routine.UpdateSlot)
				slots.DELETE("/:id", middleware.RoleAuth(rdb, model.RoleAdmin), h.Routine.DeleteSlot)
			}

			// selection process module
			processes := authorized.Group("/selection-processes")
			processes.Use(middleware.StableScope())
			{
				processes.GET("", h.Selection.ListProcesses)
				processes.GET("/:id", h.Selection.GetProcess)
				processes.GET("/:id/available-slots", h.Selection.ListAvailableSlots)
				processes.POST("", middleware.RoleAuth(rdb, model.RoleAdmin), h.Selection.CreateProcess)
				processes.POST("/:id/start", middleware.RoleAuth(rdb, model.RoleAdmin), h.Selection.StartProcess)
				processes.POST("/:id/select", h.Selection.SelectSlot)
				processes.POST("/:id/complete-turn", h.Selection.CompleteTurn)
				processes.PATCH("/:id/dates", middleware.RoleAuth(rdb, model.RoleAdmin), h.Selection.UpdateDates)
				processes.POST("/:id/cancel", middleware.RoleAuth(rdb, model.RoleAdmin), h.Selection.CancelProcess)
				processes.DELETE("/:id", middleware.RoleAuth(rdb, model.RoleAdmin), h.Selection.DeleteProcess)
			}

			// export module
			export := authorized.Group("/export")
			export.Use(middleware.StableScope())
			{
				export.GET("/selection-processes/:id", middleware.RoleAuth(rdb, model.RoleAdmin), h.Export.ExportProcess)
				export.GET("/calendar", h.Export.ExportMyCalendar)
			}
		}
	}

	return r
}
