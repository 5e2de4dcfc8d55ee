package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/api"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/cache"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/config"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/store"
)

// devFrontendURL 개발 모드 프런트엔드 서버
const devFrontendURL = "http://localhost:5173"

// Server HTTP 서버
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
	logger *zap.Logger
}

// NewServer 서버 생성
func NewServer(cfg *config.AppConfig, st *store.Store, parseCache *cache.ParseCache, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(st, parseCache, logger, api.Options{
		AllowMonthOnlySheets: cfg.Excel.AllowMonthOnlySheets,
		FollowupThreshold:    cfg.Business.FollowupThreshold,
		MaxUploadBytes:       cfg.MaxUploadBytes(),
	})

	router := gin.New()
	// multipart 는 이 크기까지만 메모리에 둔다
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	s := &Server{
		router: router,
		store:  st,
		api:    handler,
		logger: logger,
	}

	s.setupRoutes(devMode)

	return s
}

// setupRoutes 라우트 설정
func (s *Server) setupRoutes(devMode bool) {
	s.router.Use(gin.Recovery(), s.requestLogger())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	if devMode {
		// 개발 모드: 프런트엔드 개발 서버로 넘긴다
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, devFrontendURL+c.Request.URL.Path)
		})
		return
	}
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// requestLogger 요청 한 건당 로그 한 줄
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Handler 테스트용 http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 서버 시작
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// GetStore 저장소
func (s *Server) GetStore() *store.Store {
	return s.store
}
