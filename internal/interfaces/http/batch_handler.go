package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// BatchHandler alta, listado y trazabilidad de lotes (panel).
type BatchHandler struct {
	ledger *inventory.LedgerUseCase
	log    *logger.Logger
}

// NewBatchHandler construye el handler.
func NewBatchHandler(ledger *inventory.LedgerUseCase, log *logger.Logger) *BatchHandler {
	return &BatchHandler{ledger: ledger, log: log}
}

// Create godoc
// @Summary      Recibir lote
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "Datos del lote"
// @Success      201  {object}  dto.BatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := decodeStrict(c, &in, false); err != nil {
		return adminError(c, h.log, err, "")
	}
	if err := checkStore(c, in.StoreID); err != nil {
		return adminError(c, h.log, err, "")
	}
	b, err := h.ledger.ReceiveBatch(c.Context(), in.ToInput(GetUserID(c)))
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	v, err := h.ledger.GetBatch(c.Context(), b.ID)
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBatchResponse(*v))
}

// List godoc
// @Summary      Listar lotes en orden FIFO
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        product_id        query  string  false  "Producto"
// @Param        store_id          query  string  false  "Tienda"
// @Param        only_active       query  bool    false  "Solo lotes con saldo"
// @Param        expiring_in_days  query  int     false  "Vencen dentro de N días"
// @Success      200  {object}  dto.BatchListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/batches [get]
func (h *BatchHandler) List(c *fiber.Ctx) error {
	storeID, err := scopedStore(c, c.Query("store_id"))
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	days, err := queryInt(c, "expiring_in_days")
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	list, err := h.ledger.ListBatches(c.Context(), inventory.BatchQuery{
		ProductID:      c.Query("product_id"),
		StoreID:        storeID,
		OnlyActive:     c.QueryBool("only_active", false),
		ExpiringInDays: days,
	})
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.JSON(dto.ToBatchList(list))
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/batches/{id} [get]
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	v, err := h.ledger.GetBatch(c.Context(), c.Params("id"))
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	if err := checkStore(c, v.StoreID); err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.JSON(dto.ToBatchResponse(*v))
}

// Trace godoc
// @Summary      Trazabilidad del lote
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchTraceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/batches/{id}/trace [get]
func (h *BatchHandler) Trace(c *fiber.Ctx) error {
	t, err := h.ledger.TraceBatch(c.Context(), c.Params("id"))
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	if err := checkStore(c, t.Batch.StoreID); err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.JSON(dto.ToBatchTraceResponse(t))
}
