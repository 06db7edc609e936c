package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"generator/internal/model"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Ready            bool              `json:"ready"`
	Diagnostics      bool              `json:"diagnostics"`      // 是否记录生成历史
	VariableSheet    string            `json:"variableSheet"`    // 变量页名称
	MaxUploadMB      int64             `json:"maxUploadMB"`      // 上传大小上限
	PendingDownloads int               `json:"pendingDownloads"` // 未取走的下载
	LastGeneration   *model.Generation `json:"lastGeneration,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Ready:            h.coordinator != nil,
		Diagnostics:      h.history != nil,
		VariableSheet:    h.variableSheet,
		MaxUploadMB:      h.maxUpload >> 20,
		PendingDownloads: h.downloads.size(),
	}
	if h.history != nil {
		if list, err := h.history.ListGenerations(1); err == nil && len(list) > 0 {
			resp.LastGeneration = &list[0]
		}
	}
	c.JSON(http.StatusOK, resp)
}
