package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// BatchHandler 班次模块 HTTP 处理器
type BatchHandler struct {
	batchSvc service.BatchService
	logger   *zap.Logger
}

// NewBatchHandler 创建 BatchHandler
func NewBatchHandler(batchSvc service.BatchService, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{batchSvc: batchSvc, logger: logger}
}

// ListBatches GET /api/v1/academy/batches
func (h *BatchHandler) ListBatches(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.BatchListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, meta, err := h.batchSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.OKPage(c, list, meta)
}

// CreateBatch POST /api/v1/academy/batches
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateBatchRequest
	if !bindJSON(c, &req) {
		return
	}

	batch, err := h.batchSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.Created(c, batch)
}

// GetBatch GET /api/v1/academy/batches/:id
func (h *BatchHandler) GetBatch(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	batch, err := h.batchSvc.Get(c.Request.Context(), p, id)
	if err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.OK(c, batch)
}

// UpdateBatch PATCH /api/v1/academy/batches/:id
func (h *BatchHandler) UpdateBatch(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBatchRequest
	if !bindJSON(c, &req) {
		return
	}

	batch, err := h.batchSvc.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.OK(c, batch)
}

// DeleteBatch DELETE /api/v1/academy/batches/:id
func (h *BatchHandler) DeleteBatch(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	res, err := h.batchSvc.Delete(c.Request.Context(), p, id)
	if err != nil {
		h.handleBatchError(c, err)
		return
	}

	writeDeleteResult(c, res, 15001, "班次不存在")
}

func (h *BatchHandler) handleBatchError(c *gin.Context, err error) {
	if writeFieldError(c, 15002, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrBatchNotFound):
		response.NotFound(c, 15001, "班次不存在")
	default:
		handleCommonError(c, h.logger, err)
	}
}
