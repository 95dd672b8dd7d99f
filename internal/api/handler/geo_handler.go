package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// GeoHandler 行政区划 HTTP 处理器
type GeoHandler struct {
	geoSvc service.GeoService
	logger *zap.Logger
}

// NewGeoHandler 创建 GeoHandler
func NewGeoHandler(geoSvc service.GeoService, logger *zap.Logger) *GeoHandler {
	return &GeoHandler{geoSvc: geoSvc, logger: logger}
}

// Divisions GET /api/v1/divisions
func (h *GeoHandler) Divisions(c *gin.Context) {
	items, err := h.geoSvc.Divisions(c.Request.Context())
	if err != nil {
		handleCommonError(c, h.logger, err)
		return
	}
	response.OK(c, items)
}

// Districts GET /api/v1/districts?division=
func (h *GeoHandler) Districts(c *gin.Context) {
	var q dto.DistrictQuery
	if !bindQuery(c, &q) {
		return
	}

	items, err := h.geoSvc.Districts(c.Request.Context(), q.Division)
	if err != nil {
		handleCommonError(c, h.logger, err)
		return
	}
	response.OK(c, items)
}

// Upazilas GET /api/v1/upazilas?district=
func (h *GeoHandler) Upazilas(c *gin.Context) {
	var q dto.UpazilaQuery
	if !bindQuery(c, &q) {
		return
	}

	items, err := h.geoSvc.Upazilas(c.Request.Context(), q.District)
	if err != nil {
		handleCommonError(c, h.logger, err)
		return
	}
	response.OK(c, items)
}
