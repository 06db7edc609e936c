package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"generator/internal/generator"
	"generator/internal/logging"
	"generator/internal/model"
)

// History 生成记录查询（诊断模式）
type History interface {
	ListGenerations(limit int) ([]model.Generation, error)
	GetGeneration(id string) (*model.Generation, error)
	ListSheetLogs(generationID string) ([]model.SheetLog, error)
}

// Options 处理器配置
type Options struct {
	VariableSheet string
	MaxUploadMB   int
	DownloadTTL   time.Duration
	Logger        *zap.Logger
}

// Handler API 处理器
type Handler struct {
	coordinator   *generator.Coordinator
	history       History
	downloads     *downloadStore
	logger        *zap.Logger
	variableSheet string
	maxUpload     int64
	downloadTTL   time.Duration
}

// NewHandler 创建 API 处理器；history 为 nil 时不提供生成记录查询
func NewHandler(coordinator *generator.Coordinator, history History, opts Options) *Handler {
	maxUpload := int64(opts.MaxUploadMB) << 20
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	ttl := opts.DownloadTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Handler{
		coordinator:   coordinator,
		history:       history,
		downloads:     newDownloadStore(),
		logger:        logging.OrNop(opts.Logger),
		variableSheet: opts.VariableSheet,
		maxUpload:     maxUpload,
		downloadTTL:   ttl,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 上下文预览
	router.POST("/context", h.PreviewContext)

	// 报告生成
	router.POST("/reports", h.GenerateReports)
	router.GET("/reports/download/:token", h.DownloadReport)

	// 生成记录
	router.GET("/generations", h.ListGenerations)
	router.GET("/generations/:id", h.GetGeneration)
}

// respondError 阶段错误返回 422，其余按调用方给定状态码
func (h *Handler) respondError(c *gin.Context, status int, err error) {
	var stageErr *model.StageError
	if errors.As(err, &stageErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  stageErr.Error(),
			"stage":  stageErr.Stage.Describe(),
			"target": stageErr.Target,
		})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
