package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// AdjustmentHandler ajustes manuales de inventario (panel).
type AdjustmentHandler struct {
	adjustments *inventory.AdjustmentUseCase
	log         *logger.Logger
}

// NewAdjustmentHandler construye el handler.
func NewAdjustmentHandler(adjustments *inventory.AdjustmentUseCase, log *logger.Logger) *AdjustmentHandler {
	return &AdjustmentHandler{adjustments: adjustments, log: log}
}

// Create godoc
// @Summary      Registrar ajuste
// @Description  Ajustes mayores al 10% del stock requieren confirmed=true.
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "quantity con signo, reason, notes"
// @Success      201  {object}  dto.AdjustmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/adjustments [post]
func (h *AdjustmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if err := decodeStrict(c, &in, false); err != nil {
		return adminError(c, h.log, err, "")
	}
	storeID, err := scopedStore(c, in.StoreID)
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	in.StoreID = storeID
	adj, err := h.adjustments.CreateAdjustment(c.Context(), in.ToInput(GetUserID(c)))
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToAdjustmentResponse(adj))
}

// List godoc
// @Summary      Listar ajustes
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        store_id    query  string  false  "Tienda"
// @Param        reason      query  string  false  "Motivo"
// @Param        actor       query  string  false  "Usuario"
// @Param        from        query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to          query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AdjustmentListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/adjustments [get]
func (h *AdjustmentHandler) List(c *fiber.Ctx) error {
	storeID, err := scopedStore(c, c.Query("store_id"))
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	from, err := queryTime(c, "from")
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	to, err := queryUntil(c, "to")
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultLimit), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	list, err := h.adjustments.ListAdjustments(c.Context(), inventory.AdjustmentQuery{
		ProductID: c.Query("product_id"),
		StoreID:   storeID,
		Reason:    c.Query("reason"),
		Actor:     c.Query("actor"),
		From:      from,
		To:        to,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	out := dto.AdjustmentListResponse{
		Items: make([]dto.AdjustmentResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, a := range list {
		out.Items = append(out.Items, dto.ToAdjustmentResponse(a))
	}
	return c.JSON(out)
}
