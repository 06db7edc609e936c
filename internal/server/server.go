package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"generator/internal/api"
	"generator/internal/config"
	"generator/internal/generator"
	"generator/internal/logging"
	"generator/internal/report"
	"generator/internal/store"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
	logger *zap.Logger
	http   *http.Server
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, logger *zap.Logger) (*Server, error) {
	logger = logging.OrNop(logger)
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	rules, err := cfg.Rules.Apply(nil)
	if err != nil {
		return nil, err
	}
	builder := report.NewBuilder(rules, report.WithVariableSheet(cfg.Report.VariableSheet))

	opts := []generator.Option{generator.WithLogger(logger)}
	var (
		sqliteStore *store.Store
		history     api.History
	)
	if cfg.Report.Diagnostics {
		dataDir, err := config.EnsureDataDir(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		logger.Info("diagnostics enabled", zap.String("dataDir", dataDir))

		sqliteStore, err = store.New(config.DatabasePath(cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		history = sqliteStore
		opts = append(opts, generator.WithRecorder(sqliteStore))
	}

	handler := api.NewHandler(generator.NewCoordinator(builder, opts...), history, api.Options{
		VariableSheet: cfg.Report.VariableSheet,
		MaxUploadMB:   cfg.Report.MaxUploadMB,
		DownloadTTL:   time.Duration(cfg.Report.DownloadTTLMinutes) * time.Minute,
		Logger:        logger,
	})

	s := &Server{
		router: gin.New(),
		store:  sqliteStore,
		api:    handler,
		logger: logger,
	}
	s.router.MaxMultipartMemory = int64(cfg.Report.MaxUploadMB) << 20
	s.setupRoutes()
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), s.requestLogger())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Generation-Id")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.api.RegisterRoutes(api)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// requestLogger 请求日志
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Handler 返回 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，阻塞直到 Shutdown
func (s *Server) Run(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 停止服务并关闭数据库
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if s.store != nil {
		if cerr := s.store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
