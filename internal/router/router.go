package router

import (
	"todos-app/backend/internal/config"
	"todos-app/backend/internal/handlers"
	"todos-app/backend/internal/middleware"
	"todos-app/backend/internal/monitoring"
	"todos-app/backend/internal/repositories"
	"todos-app/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Tokens  *services.TokenService
	Users   repositories.UserRepository
	Auth    *handlers.AuthHandler
	Tasks   *handlers.TaskHandler
	Profile *handlers.ProfileHandler
}

// New builds the route table. The auth guard runs on every route under
// the protected group and nowhere else.
func New(deps Deps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.RateLimit(deps.Config.RateLimit))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", monitoring.HealthHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	auth := r.Group("/auth")
	{
		auth.POST("/signup", deps.Auth.Signup)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/logout", deps.Auth.Logout)
	}

	protected := r.Group("/")
	protected.Use(middleware.Auth(deps.Tokens, deps.Users))
	{
		protected.GET("/profile", deps.Profile.GetProfile)
		protected.PATCH("/profile/update", deps.Profile.UpdateProfile)
		protected.DELETE("/profile/delete", deps.Profile.DeleteProfile)

		protected.POST("/tasks", deps.Tasks.CreateTask)
		protected.GET("/tasks", deps.Tasks.GetTasks)
		protected.GET("/tasks/:id", deps.Tasks.GetTaskByID)
		protected.PATCH("/tasks/:id", deps.Tasks.UpdateTask)
		protected.DELETE("/tasks/:id", deps.Tasks.DeleteTask)
	}

	return r
}
