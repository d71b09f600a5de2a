package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// PublicHandler API de reservas para canales externos (clave opaca).
type PublicHandler struct {
	reservations *inventory.ReservationUseCase
	products     *usecase.ProductUseCase
	log          *logger.Logger
}

// NewPublicHandler construye el handler.
func NewPublicHandler(reservations *inventory.ReservationUseCase, products *usecase.ProductUseCase, log *logger.Logger) *PublicHandler {
	return &PublicHandler{reservations: reservations, products: products, log: log}
}

// CheckAvailability godoc
// @Summary      Consultar disponibilidad
// @Tags         public
// @Security     ApiKey
// @Produce      json
// @Param        product_id  path   string  true   "ID del producto"
// @Param        storeId     query  string  false  "Tienda; vacío agrega todas"
// @Param        quantity    query  number  false  "Cantidad deseada"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      429  {object}  dto.ErrorResponse
// @Router       /api/public/v1/availability/{product_id} [get]
func (h *PublicHandler) CheckAvailability(c *fiber.Ctx) error {
	qty, err := queryDecimal(c, "quantity")
	if err != nil {
		return publicError(c, h.log, err)
	}
	a, err := h.reservations.CheckAvailability(c.Context(), c.Params("product_id"), c.Query("storeId"), qty)
	if err != nil {
		return publicError(c, h.log, err)
	}
	return c.JSON(dto.ToAvailabilityResponse(a))
}

// ListProducts godoc
// @Summary      Listar productos con stock por tienda
// @Tags         public
// @Security     ApiKey
// @Produce      json
// @Param        storeId   query  string  false  "Tienda"
// @Param        category  query  string  false  "Categoría (sin distinguir tildes ni mayúsculas)"
// @Param        limit     query  int     false  "Límite"  default(50)
// @Success      200  {object}  dto.ProductListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/public/v1/products [get]
func (h *PublicHandler) ListProducts(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return publicError(c, h.log, err)
	}
	n := 0
	if limit != nil {
		n = *limit
		if n == 0 {
			return publicError(c, h.log, domain.Validation("limit debe estar entre 1 y %d", dto.MaxCatalogLimit))
		}
	}
	items, err := h.products.ListProducts(c.Context(), c.Query("storeId"), c.Query("category"), n)
	if err != nil {
		return publicError(c, h.log, err)
	}
	return c.JSON(dto.ProductListResponse{Items: items, Total: len(items)})
}

// CreateReservation godoc
// @Summary      Crear reserva (15 minutos)
// @Tags         public
// @Security     ApiKey
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "productId, storeId, quantity, externalOrderId"
// @Success      201  {object}  dto.ReservationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/public/v1/reservations [post]
func (h *PublicHandler) CreateReservation(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if err := decodeStrict(c, &in, false); err != nil {
		return publicError(c, h.log, err)
	}
	rv, err := h.reservations.Create(c.Context(), inventory.CreateReservationInput{
		ProductID:       in.ProductID,
		StoreID:         in.StoreID,
		Quantity:        in.Quantity,
		ExternalOrderID: in.ExternalOrderID,
		Channel:         GetChannel(c),
	})
	if err != nil {
		return publicError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReservationResponse{
		ReservationID: rv.ID,
		ExpiresAt:     rv.ExpiresAt,
		ExpiresIn:     int(h.reservations.TTL().Seconds()),
	})
}

// ConfirmSale godoc
// @Summary      Confirmar venta de una reserva
// @Tags         public
// @Security     ApiKey
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true   "ID de la reserva"
// @Param        body  body  dto.ConfirmSaleRequest  false  "orderId"
// @Success      200  {object}  dto.ConfirmSaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/public/v1/reservations/{id}/confirm [post]
func (h *PublicHandler) ConfirmSale(c *fiber.Ctx) error {
	var in dto.ConfirmSaleRequest
	if err := decodeStrict(c, &in, true); err != nil {
		return publicError(c, h.log, err)
	}
	res, err := h.reservations.Confirm(c.Context(), c.Params("id"), in.OrderID, "channel:"+GetChannel(c))
	if err != nil {
		return publicError(c, h.log, err)
	}
	return c.JSON(dto.ConfirmSaleResponse{Success: true, MovementID: res.Movement.ID})
}

// CancelReservation godoc
// @Summary      Cancelar reserva
// @Tags         public
// @Security     ApiKey
// @Produce      json
// @Param        id  path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/public/v1/reservations/{id}/cancel [post]
func (h *PublicHandler) CancelReservation(c *fiber.Ctx) error {
	if _, err := h.reservations.Cancel(c.Context(), c.Params("id")); err != nil {
		return publicError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
