package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// AlertHandler reportes de stock bajo y vencimientos.
type AlertHandler struct {
	alerts *inventory.AlertUseCase
	log    *logger.Logger
}

// NewAlertHandler construye el handler.
func NewAlertHandler(alerts *inventory.AlertUseCase, log *logger.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, log: log}
}

// LowStock godoc
// @Summary      Productos bajo el mínimo
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda"
// @Success      200  {object}  dto.LowStockResponse
// @Router       /api/admin/alerts/low-stock [get]
func (h *AlertHandler) LowStock(c *fiber.Ctx) error {
	storeID, err := scopedStore(c, c.Query("store_id"))
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	items, err := h.alerts.LowStockReport(c.Context(), storeID)
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.JSON(dto.ToLowStockResponse(items))
}

// Expiry godoc
// @Summary      Lotes vencidos y por vencer
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda"
// @Param        days      query  int     false  "Umbral en días"  default(30)
// @Success      200  {object}  dto.ExpiryAlertsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/alerts/expiry [get]
func (h *AlertHandler) Expiry(c *fiber.Ctx) error {
	storeID, err := scopedStore(c, c.Query("store_id"))
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	days, err := queryInt(c, "days")
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	threshold := 0
	if days != nil {
		threshold = *days
	}
	r, err := h.alerts.ExpiryAlerts(c.Context(), storeID, threshold)
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.JSON(dto.ToExpiryAlertsResponse(r))
}
