package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"elib-backend/internal/shared/middleware"
	"elib-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	// Per-request multipart cap: two files plus form fields.
	router.MaxMultipartMemory = c.Config.Upload.MaxFileSize

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))

		setupUserRoutes(api, c)
		setupBookRoutes(api, c)
	}

	return router
}

func setupUserRoutes(api *gin.RouterGroup, c *container.Container) {
	users := api.Group("/users")
	{
		users.POST("/register", c.UserHandler.Register)
		users.POST("/login", c.UserHandler.Login)
		users.PATCH("/updateDetails", c.UserHandler.UpdateDetails)
	}
}

func setupBookRoutes(api *gin.RouterGroup, c *container.Container) {
	auth := middleware.Auth(c.JWTManager)

	books := api.Group("/books")
	{
		books.POST("", auth, c.BookHandler.Create)
		books.GET("/search", c.BookHandler.Search)
		books.GET("", auth, c.BookHandler.ListMine)
		books.GET("/all", c.BookHandler.ListAll)
		books.GET("/:bookId", c.BookHandler.Get)
		books.PATCH("/:bookId", auth, c.BookHandler.Update)
		books.DELETE("/:bookId", auth, c.BookHandler.Delete)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok", "cache": "ok"}

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			checks["cache"] = err.Error()
		}

		ctx.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	}
}
