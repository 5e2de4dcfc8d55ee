package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/cache"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/importer"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/parser"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/store"
)

// Handler API 처리기
type Handler struct {
	store       *store.Store
	parser      *parser.Parser
	coordinator *importer.Coordinator
	cache       *cache.ParseCache
	logger      *zap.Logger
	maxUpload   int64
}

// Options 처리기 설정
type Options struct {
	AllowMonthOnlySheets bool
	FollowupThreshold    int64
	MaxUploadBytes       int64
}

// NewHandler 처리기 생성. parseCache 는 nil 이어도 된다
func NewHandler(st *store.Store, parseCache *cache.ParseCache, logger *zap.Logger, opts Options) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if parseCache == nil {
		parseCache = cache.NewParseCache(nil, 0, logger)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}

	var repo importer.Repository
	if st != nil {
		repo = st
	}

	return &Handler{
		store: st,
		parser: parser.NewParser(parser.Options{
			AllowMonthOnlySheets: opts.AllowMonthOnlySheets,
			Logger:               logger.Named("parser"),
		}),
		coordinator: importer.NewCoordinator(repo, logger.Named("importer"), opts.FollowupThreshold),
		cache:       parseCache,
		logger:      logger,
		maxUpload:   opts.MaxUploadBytes,
	}
}

// RegisterRoutes API 라우트 등록
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 시스템 상태
	router.GET("/status", h.GetStatus)

	// 엑셀 파싱 / 미리보기 / 가져오기
	excel := router.Group("/excel")
	excel.POST("/parse", h.Parse)
	excel.POST("/preview", h.Preview)
	excel.POST("/import", h.Import)

	// 환자 기록 / 리마인더
	router.GET("/patients", h.ListPatients)
	router.GET("/patients/lookup", h.LookupPatients)
	router.GET("/patients/:id", h.GetPatient)
	router.PATCH("/patients/:id", h.UpdatePatient)
	router.DELETE("/patients/:id", h.DeletePatient)
	router.GET("/reminders/due", h.ListDueReminders)
	router.POST("/reminders/:id/complete", h.CompleteReminder)
	router.POST("/reminders/:id/skip", h.SkipReminder)

	// 엑셀 내보내기
	router.GET("/export", h.Export)

	// 병원 설정
	router.GET("/settings", h.GetSettings)
	router.PUT("/settings/:key", h.UpdateSetting)
}
