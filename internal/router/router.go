package router

import (
	"cinecore/internal/handlers"
	"cinecore/internal/logging"
	"cinecore/internal/middleware"
	"cinecore/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// New builds the engine with sessions, request logging and every route.
func New(database *gorm.DB, svc *services.Services, sessionSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger())

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 86400 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("cinecore_session", store))

	RegisterRoutes(r, database, svc)
	return r
}

func RegisterRoutes(r *gin.Engine, database *gorm.DB, svc *services.Services) {
	authHandler := handlers.NewAuthHandler(svc)
	reviewHandler := handlers.NewReviewHandler(svc)
	theoryHandler := handlers.NewTheoryHandler(svc)
	pollHandler := handlers.NewPollHandler(svc)
	movieHandler := handlers.NewMovieHandler(svc)

	r.GET("/healthz", handlers.Healthz(database))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.LoadUser(svc.Accounts, svc.Tokens))

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	api.GET("/movies/trending", movieHandler.Trending)
	api.GET("/subjects/:type/:id/reviews", reviewHandler.List)
	api.GET("/subjects/:type/:id/reviews/popular", reviewHandler.Popular)
	api.GET("/subjects/:type/:id/reviews/summary", reviewHandler.Summary)
	api.GET("/subjects/:type/:id/reviews/heatmap", reviewHandler.Heatmap)
	api.GET("/reviews", reviewHandler.ListByUser)
	api.GET("/reviews/:id", reviewHandler.Get)
	api.GET("/movies/:id/theories", theoryHandler.List)
	api.GET("/theories/:id", theoryHandler.Get)
	api.GET("/movies/:id/polls", pollHandler.List)
	api.GET("/polls/:id", pollHandler.Get)

	// Protected routes
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/auth/me", authHandler.Me)

		authorized.POST("/subjects/:type/:id/reviews", reviewHandler.Create)
		authorized.PATCH("/reviews/:id", reviewHandler.Update)
		authorized.DELETE("/reviews/:id", reviewHandler.Delete)
		authorized.POST("/reviews/:id/like", reviewHandler.Like)

		authorized.POST("/movies/:id/theories", theoryHandler.Create)
		authorized.DELETE("/theories/:id", theoryHandler.Delete)
		authorized.POST("/theories/:id/upvote", theoryHandler.Upvote)

		authorized.POST("/movies/:id/polls", pollHandler.Create)
		authorized.PATCH("/polls/:id", pollHandler.Update)
		authorized.POST("/polls/:id/vote", pollHandler.Vote)
	}
}
