package http

import (
	"context"
	"fmt"
	stdhttp "net/http"

	"filedock/internal/auth"
	"filedock/internal/config"
	"filedock/internal/http/handler"
	"filedock/internal/http/middleware"
	"filedock/internal/service"
	"filedock/pkg/metrics"
	"filedock/pkg/profiling"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus = "status"
	statusOK      = "ok"

	// Multipart framing overhead on top of the configured max upload size.
	uploadOverheadMB = 16

	envProduction = "production"
)

type ServerDependencies struct {
	Config         *config.Config
	UserService    *service.UserService
	FolderService  *service.FolderService
	FileService    *service.FileService
	AuthMiddleware *auth.Middleware
	AuditLogger    handler.AuditRecorder
	AuditQuery     handler.AuditQuerier
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID middleware first, so all logs carry a request ID.
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(bodyLimit(deps.Config.App.MaxUploadSize)))

	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())

	requestMetrics := metrics.New()
	e.Use(requestMetrics.Middleware())

	// Strict rate limiting for credential endpoints.
	strictRateLimiter := middleware.NewStrictRateLimiter()

	authHandler := handler.NewAuthHandler(deps.UserService, deps.AuditLogger)
	userHandler := handler.NewUserHandler(deps.UserService, deps.AuditLogger)
	folderHandler := handler.NewFolderHandler(deps.FolderService, deps.AuditLogger)
	fileHandler := handler.NewFileHandler(deps.FileService, deps.AuditLogger)
	publicHandler := handler.NewPublicHandler(deps.FileService, deps.AuditLogger)
	auditHandler := handler.NewAuditHandler(deps.AuditQuery)

	e.POST("/auth/register", authHandler.Register, strictRateLimiter.Middleware())
	e.POST("/auth/login", authHandler.Login, strictRateLimiter.Middleware())
	e.GET("/auth/me", authHandler.Me, deps.AuthMiddleware.RequireJWT())

	// Public slug resolution needs no authentication at all.
	e.GET("/public/:slug", publicHandler.GetBySlug)

	e.GET("/health", healthCheck)
	e.GET("/metrics/requests", requestMetrics.Handler)
	e.GET("/metrics/memory", profiling.MemoryHandler)

	if deps.Config.Server.Environment != envProduction {
		profiling.RegisterPprofRoutes(e)
	}

	api := e.Group("/api")

	// Read routes that can serve public files to anonymous callers.
	optionalAPI := api.Group("", deps.AuthMiddleware.OptionalJWT())
	optionalAPI.GET("/files/:id", fileHandler.GetFile)
	optionalAPI.GET("/files/download/:id", fileHandler.DownloadFile)
	optionalAPI.GET("/files/view/:id", fileHandler.ViewFile)
	optionalAPI.GET("/files/:id/download-url", fileHandler.GetDownloadURL)

	jwtAPI := api.Group("", deps.AuthMiddleware.RequireJWT())

	jwtAPI.POST("/files/upload", fileHandler.Upload)
	jwtAPI.GET("/files", fileHandler.ListFiles)
	jwtAPI.PUT("/files/:id", fileHandler.UpdateFile)
	jwtAPI.PUT("/files/:id/move", fileHandler.MoveFile)
	jwtAPI.DELETE("/files/:id", fileHandler.DeleteFile)

	jwtAPI.POST("/folders", folderHandler.CreateFolder)
	jwtAPI.GET("/folders/tree", folderHandler.GetTree)
	jwtAPI.GET("/folders/contents", folderHandler.GetContents)
	jwtAPI.GET("/folders/:id", folderHandler.GetFolder)
	jwtAPI.GET("/folders/:id/breadcrumbs", folderHandler.GetBreadcrumbs)
	jwtAPI.PUT("/folders/:id", folderHandler.UpdateFolder)
	jwtAPI.DELETE("/folders/:id", folderHandler.DeleteFolder)

	adminAPI := api.Group("/users", deps.AuthMiddleware.RequireJWT(), deps.AuthMiddleware.RequireAdmin())
	adminAPI.GET("", userHandler.ListUsers)
	adminAPI.POST("", userHandler.CreateUser)
	adminAPI.GET("/:id", userHandler.GetUser)
	adminAPI.PUT("/:id", userHandler.UpdateUser)
	adminAPI.DELETE("/:id", userHandler.DeleteUser)

	auditAPI := api.Group("/audit", deps.AuthMiddleware.RequireJWT(), deps.AuthMiddleware.RequireAdmin())
	auditAPI.GET("", auditHandler.ListEvents)

	return &Server{
		echo: e,
		deps: deps,
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{jsonKeyStatus: statusOK})
}

func bodyLimit(maxUploadBytes int64) string {
	return fmt.Sprintf("%dM", maxUploadBytes/(1024*1024)+uploadOverheadMB)
}
