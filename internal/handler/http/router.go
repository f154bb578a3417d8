package http

import (
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/Parley/internal/handler/http/middleware"
	"github.com/mikiasgoitom/Parley/internal/usecase"
	usecasecontract "github.com/mikiasgoitom/Parley/internal/usecase/contract"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	userHandler *UserHandler
	jwtService  usecase.JWTService
}

func NewRouter(userUsecase usecasecontract.IUserUseCase, jwtService usecase.JWTService) *Router {
	return &Router{
		userHandler: NewUserHandler(userUsecase),
		jwtService:  jwtService,
	}
}

func (r *Router) SetupRoutes(router *gin.Engine) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	// rate limiter configuration
	lmt := tollbooth.NewLimiter(10, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetIPLookups([]string{"RemoteAddr", "X-Forwarded-For", "X-Real-IP"})
	lmt.SetMessage("Too many requests, please try again later.")
	router.Use(middleware.RateLimiter(lmt))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// API v1 routes
	v1 := router.Group("/api/v1")

	// Public routes (no authentication required)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", r.userHandler.Register)
		auth.POST("/login", r.userHandler.Login)
		auth.POST("/refresh-token", r.userHandler.RefreshToken)
	}

	// Public user routes
	users := v1.Group("/users")
	{
		users.GET("/search", r.userHandler.SearchUsers)
		users.GET("/check-username", r.userHandler.CheckUsername)
		users.GET("/online/count", r.userHandler.OnlineCount)
		users.GET("/premium", r.userHandler.PremiumUsers)
		users.POST("/batch", r.userHandler.GetUsersBatch)
		users.GET("/:id", r.userHandler.GetUser)
		users.GET("/:id/observe", r.userHandler.ObserveUser)
	}

	// Protected routes (authentication required)
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleWare(r.jwtService))
	{
		// Current user routes
		protected.GET("/me", r.userHandler.GetCurrentUser)
		protected.PUT("/me/profile", r.userHandler.UpdateProfile)
		protected.PUT("/me/presence", r.userHandler.SetPresence)
		protected.POST("/me/heartbeat", r.userHandler.Heartbeat)
		protected.PUT("/me/typing", r.userHandler.SetTyping)
		protected.PUT("/me/device-token", r.userHandler.RegisterDeviceToken)
		protected.PUT("/me/privacy", r.userHandler.UpdatePrivacy)
		protected.POST("/me/privacy/exceptions/:id", r.userHandler.AddPrivacyException)
		protected.DELETE("/me/privacy/exceptions/:id", r.userHandler.RemovePrivacyException)
		protected.POST("/me/blocked/:id", r.userHandler.BlockUser)
		protected.DELETE("/me/blocked/:id", r.userHandler.UnblockUser)
		protected.POST("/me/muted/:id", r.userHandler.MuteChat)
		protected.DELETE("/me/muted/:id", r.userHandler.UnmuteChat)
		protected.POST("/me/premium", r.userHandler.GrantPremium)
		protected.DELETE("/me/premium", r.userHandler.RevokePremium)
		protected.DELETE("/me/deactivate", r.userHandler.DeactivateAccount)
		protected.DELETE("/me", r.userHandler.DeleteAccount)

		// Presence sync for trusted gateway callers
		protected.PUT("/users/presence/bulk", r.userHandler.SetPresenceBulk)
	}
}
