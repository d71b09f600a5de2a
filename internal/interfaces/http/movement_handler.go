package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// MovementHandler libro de movimientos, ventas de mostrador y traslados (panel).
type MovementHandler struct {
	ledger *inventory.LedgerUseCase
	log    *logger.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(ledger *inventory.LedgerUseCase, log *logger.Logger) *MovementHandler {
	return &MovementHandler{ledger: ledger, log: log}
}

func (h *MovementHandler) query(c *fiber.Ctx) (inventory.MovementQuery, error) {
	storeID, err := scopedStore(c, c.Query("store_id"))
	if err != nil {
		return inventory.MovementQuery{}, err
	}
	from, err := queryTime(c, "from")
	if err != nil {
		return inventory.MovementQuery{}, err
	}
	to, err := queryUntil(c, "to")
	if err != nil {
		return inventory.MovementQuery{}, err
	}
	return inventory.MovementQuery{
		ProductID: c.Query("product_id"),
		StoreID:   storeID,
		Type:      c.Query("type"),
		From:      from,
		To:        to,
		Limit:     c.QueryInt("limit", dto.DefaultLimit),
		Offset:    c.QueryInt("offset", 0),
	}, nil
}

// List godoc
// @Summary      Consultar el libro de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        store_id    query  string  false  "Tienda"
// @Param        type        query  string  false  "entry|exit|adjustment|sale|transfer_in|transfer_out"
// @Param        from        query  string  false  "Desde"
// @Param        to          query  string  false  "Hasta"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	q, err := h.query(c)
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	page, err := h.ledger.ListMovements(c.Context(), q)
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.JSON(dto.MovementListResponse{
		Items: dto.ToMovementList(page.Items),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: page.Total},
	})
}

// Export godoc
// @Summary      Exportar movimientos filtrados (JSON completo)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        store_id    query  string  false  "Tienda"
// @Param        type        query  string  false  "Tipo"
// @Param        from        query  string  false  "Desde"
// @Param        to          query  string  false  "Hasta"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/movements/export [get]
func (h *MovementHandler) Export(c *fiber.Ctx) error {
	q, err := h.query(c)
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	list, err := h.ledger.ExportMovements(c.Context(), q)
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	name := "movimientos"
	if q.StoreID != "" {
		name += "-" + q.StoreID
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.json"`, name))
	return c.JSON(dto.ToMovementList(list))
}

// GetByID godoc
// @Summary      Obtener movimiento con sus asignaciones
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	m, err := h.ledger.GetMovement(c.Context(), c.Params("id"))
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	if err := checkStore(c, m.StoreID); err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.JSON(dto.ToMovementResponse(m))
}

// RegisterSale godoc
// @Summary      Venta de mostrador
// @Description  Si el emisor fiscal falla responde 502 con el movement_id ya confirmado.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleRequest  true  "product_id, store_id, quantity, order_id"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/admin/sales [post]
func (h *MovementHandler) RegisterSale(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if err := decodeStrict(c, &in, false); err != nil {
		return adminError(c, h.log, err, "")
	}
	if err := checkStore(c, in.StoreID); err != nil {
		return adminError(c, h.log, err, "")
	}
	mov, err := h.ledger.RegisterSale(c.Context(), inventory.SaleInput{
		ProductID: in.ProductID,
		StoreID:   in.StoreID,
		Quantity:  in.Quantity,
		OrderID:   in.OrderID,
		Actor:     GetUserID(c),
	})
	if err != nil {
		id := ""
		if mov != nil {
			id = mov.ID
		}
		return adminError(c, h.log, err, id)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(mov))
}

// Transfer godoc
// @Summary      Traslado entre tiendas
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product_id, from_store_id, to_store_id, quantity"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/transfers [post]
func (h *MovementHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := decodeStrict(c, &in, false); err != nil {
		return adminError(c, h.log, err, "")
	}
	if err := checkStore(c, in.FromStoreID); err != nil {
		return adminError(c, h.log, err, "")
	}
	res, err := h.ledger.Transfer(c.Context(), inventory.TransferInput{
		ProductID:   in.ProductID,
		FromStoreID: in.FromStoreID,
		ToStoreID:   in.ToStoreID,
		Quantity:    in.Quantity,
		Notes:       in.Notes,
		Actor:       GetUserID(c),
	})
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		Out: dto.ToMovementResponse(res.Out),
		In:  dto.ToMovementResponse(res.In),
	})
}
