package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pomodoro/timer/internal/handler"
	"pomodoro/timer/internal/middleware"
	"pomodoro/timer/internal/service"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Timer   *handler.TimerHandler
	Session *handler.SessionHandler
	Task    *handler.TaskHandler
}

func New(authService *service.AuthService, h Handlers, corsOrigins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestLogger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.GET("/status", h.Auth.Status)
	auth.POST("/login", h.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(authService))

	timer := protected.Group("/timer")
	timer.GET("/state", h.Timer.GetState)
	timer.POST("/start", h.Timer.Start)
	timer.POST("/stop", h.Timer.Stop)
	timer.POST("/reset", h.Timer.Reset)
	timer.POST("/mode", h.Timer.SetMode)
	timer.POST("/phase", h.Timer.SetPhase)
	timer.GET("/events", h.Timer.Events)

	sessions := protected.Group("/sessions")
	sessions.GET("", h.Session.History)
	sessions.GET("/groups/:id", h.Session.Group)
	protected.GET("/stats", h.Session.Stats)

	tasks := protected.Group("/tasks")
	tasks.GET("", h.Task.List)
	tasks.POST("", h.Task.Create)
	tasks.PUT("/:id", h.Task.Rename)
	tasks.POST("/:id/advance", h.Task.Advance)
	tasks.DELETE("/:id", h.Task.Delete)

	return engine
}
