package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"devconnector/handlers"
	"devconnector/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// AuthRateLimit caps register/login attempts per IP and minute; 0 disables it.
	AuthRateLimit int
	// Ping reports store health for /api/health; nil reports ok.
	Ping func(ctx context.Context) error
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestIDMiddleware())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", "x-auth-token", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(opts.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api")
	api.GET("/health", health(opts.Ping))

	// Public routes (no auth required)
	public := api.Group("")
	if opts.AuthRateLimit > 0 {
		public.Use(middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(opts.AuthRateLimit, time.Minute)))
	}
	public.POST("/users", h.Register)
	public.POST("/auth", h.Login)

	api.GET("/profile", h.GetProfiles)
	api.GET("/profile/user/:user_id", h.GetProfileByUser)
	api.GET("/profile/github/:username", h.GetGithubRepos)

	// Protected routes group
	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware(opts.JWTSecret))

	protected.GET("/auth", h.GetAuthUser)

	// Profile
	protected.GET("/profile/me", h.GetMyProfile)
	protected.POST("/profile", h.UpsertProfile)
	protected.DELETE("/profile", h.DeleteAccount)
	protected.PUT("/profile/experience", h.AddExperience)
	protected.DELETE("/profile/experience/:exp_id", h.DeleteExperience)
	protected.PUT("/profile/education", h.AddEducation)
	protected.DELETE("/profile/education/:edu_id", h.DeleteEducation)

	// Posts
	protected.POST("/posts", h.CreatePost)
	protected.GET("/posts", h.GetPosts)
	protected.GET("/posts/:id", h.GetPost)
	protected.DELETE("/posts/:id", h.DeletePost)
	protected.PUT("/posts/like/:id", h.LikePost)
	protected.PUT("/posts/unlike/:id", h.UnlikePost)
	protected.POST("/posts/comment/:id", h.AddComment)
	protected.DELETE("/posts/comment/:id/:comment_id", h.DeleteComment)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"msg":  "Endpoint not found",
				"path": c.Request.URL.Path,
			})
			return
		}
		c.Status(http.StatusNotFound)
	})

	return router
}

func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "time": time.Now().Unix()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	}
}
