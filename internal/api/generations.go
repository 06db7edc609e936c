package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"generator/internal/store"
)

// ListGenerations 最近的生成记录
// GET /api/generations?limit=20
func (h *Handler) ListGenerations(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "未启用诊断记录"})
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 limit"})
			return
		}
		limit = n
	}

	list, err := h.history.ListGenerations(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

// GetGeneration 单次生成记录及其 sheet 明细
// GET /api/generations/:id
func (h *Handler) GetGeneration(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "未启用诊断记录"})
		return
	}

	id := c.Param("id")
	g, err := h.history.GetGeneration(id)
	if err != nil {
		if errors.Is(err, store.ErrGenerationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sheets, err := h.history.ListSheetLogs(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"generation": g, "sheets": sheets})
}
