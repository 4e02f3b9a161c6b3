package app

import (
	"context"
	"time"

	"filedock/internal/audit"
	"filedock/internal/auth"
	"filedock/internal/config"
	httpserver "filedock/internal/http"
	"filedock/internal/infra/cache"
	"filedock/internal/repository/postgres"
	"filedock/internal/service"
	"filedock/internal/storage/s3"
	"filedock/pkg/logger"

	"github.com/rs/zerolog"
)

const cacheCleanupInterval = 5 * time.Minute

// Service is the assembled application: configuration, storage, services
// and the HTTP server, ready to start.
type Service struct {
	config   *config.Config
	logger   zerolog.Logger
	db       *postgres.DB
	urlCache *cache.URLCache
	server   *httpserver.Server

	stopCleanup chan struct{}
}

// InitializeService wires up all dependencies and returns a configured Service.
func InitializeService() (*Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errFailedLoadConfig(err)
	}

	log := logger.New(cfg.Server.LogLevel, cfg.Server.Environment)

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, errFailedConnectDatabase(err)
	}

	blobs, err := s3.NewClient(cfg.Storage)
	if err != nil {
		db.Close()
		return nil, errFailedCreateStorageClient(err)
	}

	urlCache := cache.NewURLCache()

	userRepo := postgres.NewUserRepository(db)
	folderRepo := postgres.NewFolderRepository(db)
	fileRepo := postgres.NewFileRepository(db)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)
	authMiddleware := auth.NewMiddleware(jwtService)
	auditLogger := audit.NewLogger(db.Pool)

	listLimits := service.ListLimits{
		DefaultPerPage: cfg.App.DefaultPageSize,
		MaxPerPage:     cfg.App.MaxPageSize,
	}

	folderService := service.NewFolderService(folderRepo, fileRepo, blobs, log)
	fileService := service.NewFileService(fileRepo, folderRepo, blobs, urlCache, service.FileServiceOptions{
		PresignExpiry: cfg.App.DownloadURLExpiry,
		SlugStyle:     cfg.App.SlugStyle,
		Limits:        listLimits,
	}, log)
	userService := service.NewUserService(userRepo, fileRepo, folderRepo, blobs, jwtService, listLimits, log)

	server := httpserver.NewServer(&httpserver.ServerDependencies{
		Config:         cfg,
		UserService:    userService,
		FolderService:  folderService,
		FileService:    fileService,
		AuthMiddleware: authMiddleware,
		AuditLogger:    auditLogger,
		AuditQuery:     auditLogger,
	})

	return &Service{
		config:      cfg,
		logger:      log,
		db:          db,
		urlCache:    urlCache,
		server:      server,
		stopCleanup: make(chan struct{}),
	}, nil
}

// Start runs background tasks and the HTTP server. It blocks until the
// server stops.
func (s *Service) Start() error {
	go s.runCacheCleanup()

	s.logger.Info().
		Str("port", s.config.Server.Port).
		Str("environment", s.config.Server.Environment).
		Msg("starting server")

	return s.server.Start(":" + s.config.Server.Port)
}

// runCacheCleanup purges expired presigned URLs on an interval.
func (s *Service) runCacheCleanup() {
	ticker := time.NewTicker(cacheCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.urlCache.Purge()
		case <-s.stopCleanup:
			return
		}
	}
}

// Shutdown stops the HTTP server gracefully and closes the database pool.
func (s *Service) Shutdown(ctx context.Context) error {
	close(s.stopCleanup)

	err := s.server.Shutdown(ctx)
	s.db.Close()

	return err
}
