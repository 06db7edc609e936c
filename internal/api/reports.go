package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"generator/internal/generator"
)

// PreviewContext 只解析工作簿，返回报告上下文与诊断信息
// POST /api/context
func (h *Handler) PreviewContext(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+(1<<20))
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}
	book, err := readUpload(header, h.maxUpload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, rep, err := h.coordinator.BuildContext(book.name, book.data)
	if err != nil {
		h.logger.Warn("context preview failed", zap.String("workbook", book.name), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"context": ctx,
		"report":  rep,
	})
}

// ReportTicket 延迟下载的令牌
type ReportTicket struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	FileName  string    `json:"fileName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GenerateReports 生成报告
// POST /api/reports  (multipart: file + templates...)
// 默认直接返回文件；?defer=true 时返回一次性下载令牌
func (h *Handler) GenerateReports(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload*2+(1<<20))
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}
	book, err := readUpload(files[0], h.maxUpload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	headers := form.File["templates"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到模板文件"})
		return
	}
	templates := make([]generator.Template, 0, len(headers))
	for _, th := range headers {
		tpl, err := readUpload(th, h.maxUpload)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		templates = append(templates, generator.Template{Name: tpl.name, Data: tpl.data})
	}

	res, err := h.coordinator.Generate(c.Request.Context(), generator.Request{
		WorkbookName: book.name,
		Workbook:     book.data,
		Templates:    templates,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, generator.ErrNoTemplates) {
			status = http.StatusBadRequest
		}
		h.respondError(c, status, err)
		return
	}

	if c.Query("defer") == "true" {
		token, expiresAt := h.downloads.put(res.FileName, res.ContentType, res.Data, h.downloadTTL)
		c.JSON(http.StatusOK, ReportTicket{
			ID:        res.ID,
			Token:     token,
			FileName:  res.FileName,
			ExpiresAt: expiresAt,
		})
		return
	}

	c.Header("Content-Disposition", contentDisposition(res.FileName))
	c.Header("X-Generation-Id", res.ID)
	c.Data(http.StatusOK, res.ContentType, res.Data)
}

// DownloadReport 下载生成结果（一次性）
// GET /api/reports/download/:token
func (h *Handler) DownloadReport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	item, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}

	c.Header("Content-Disposition", contentDisposition(item.fileName))
	c.Data(http.StatusOK, item.contentType, item.data)
}
