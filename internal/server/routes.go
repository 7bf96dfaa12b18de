package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"taskboard/internal/access"
	"taskboard/internal/auth"
	"taskboard/internal/handler"
	"taskboard/internal/identity"
	"taskboard/internal/middleware"
	"taskboard/internal/session"
	"taskboard/internal/taskstore"
)

// Deps is everything the routes need.
type Deps struct {
	Tokens     *auth.TokenManager
	Sessions   *session.Manager
	Store      *taskstore.Store
	Roles      access.Roles
	Assignees  []string
	DateLayout string
	Resetter   identity.PasswordResetter // nil when the provider hosts its own reset page
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()

	authHandler := handler.NewAuthHandler(d.Sessions, d.Tokens, d.Roles)
	taskHandler := handler.NewTaskHandler(d.Store, d.Assignees, d.DateLayout)
	adminHandler := handler.NewAdminHandler(d.Store)

	// Public routes
	r.POST("/session", authHandler.OpenSession)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if d.Resetter != nil {
		resetHandler := handler.NewResetHandler(d.Resetter)
		r.GET("/auth/reset", resetHandler.VerifyReset)
		r.POST("/auth/reset", resetHandler.ResetPassword)
	}

	// Session routes - require a session token
	withSession := r.Group("/")
	withSession.Use(middleware.SessionMiddleware(d.Tokens, d.Sessions))
	{
		withSession.GET("/session", authHandler.GetSession)
		withSession.DELETE("/session", authHandler.CloseSession)

		withSession.POST("/auth/login", authHandler.Login)
		withSession.POST("/auth/signup", authHandler.Signup)
		withSession.POST("/auth/logout", authHandler.Logout)
		withSession.POST("/auth/forgot-password", authHandler.ForgotPassword)
	}

	// Home view - any signed-in viewer
	home := withSession.Group("/tasks")
	home.Use(middleware.Guard(nil))
	{
		home.GET("", taskHandler.List)
		home.POST("", taskHandler.Create)
		home.PUT("/:id", taskHandler.Update)
		home.DELETE("/:id", taskHandler.Delete)
	}

	// Admin view - admin role only
	admin := withSession.Group("/admin")
	admin.Use(middleware.Guard(access.RequireRole(d.Roles, access.RoleAdmin)))
	{
		admin.GET("/tasks", adminHandler.List)
		admin.GET("/summary", adminHandler.Summary)
	}

	return r
}
