package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// StoreHandler tiendas, su configuración, umbrales de stock y sincronización del catálogo.
type StoreHandler struct {
	stores   *usecase.StoreUseCase
	products *usecase.ProductUseCase
	settings *inventory.SettingsUseCase
	log      *logger.Logger
}

// NewStoreHandler construye el handler.
func NewStoreHandler(stores *usecase.StoreUseCase, products *usecase.ProductUseCase, settings *inventory.SettingsUseCase, log *logger.Logger) *StoreHandler {
	return &StoreHandler{stores: stores, products: products, settings: settings, log: log}
}

// List godoc
// @Summary      Listar tiendas
// @Tags         stores
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StoreListResponse
// @Router       /api/admin/stores [get]
func (h *StoreHandler) List(c *fiber.Ctx) error {
	out, err := h.stores.List(c.Context())
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.JSON(out)
}

// Upsert godoc
// @Summary      Crear o reemplazar tienda
// @Tags         stores
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la tienda"
// @Param        body  body  dto.UpsertStoreRequest  true  "Datos de la tienda"
// @Success      200  {object}  dto.StoreResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/stores/{id} [put]
func (h *StoreHandler) Upsert(c *fiber.Ctx) error {
	var in dto.UpsertStoreRequest
	if err := decodeBody(c, &in, false); err != nil {
		return adminError(c, h.log, err, "")
	}
	in.ID = c.Params("id")
	out, err := h.stores.Upsert(c.Context(), in)
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.JSON(out)
}

// UpdateSettings godoc
// @Summary      Cambiar método de valoración y régimen tributario
// @Description  Solo afecta movimientos futuros. Al pasar a average_cost se siembra el promedio con los lotes vigentes.
// @Tags         stores
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "ID de la tienda"
// @Param        body  body  dto.UpdateStoreSettingsRequest  true  "valuation_method, tax_regime"
// @Success      200  {object}  dto.StoreResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/stores/{id}/settings [put]
func (h *StoreHandler) UpdateSettings(c *fiber.Ctx) error {
	var in dto.UpdateStoreSettingsRequest
	if err := decodeStrict(c, &in, false); err != nil {
		return adminError(c, h.log, err, "")
	}
	store, err := h.settings.UpdateStoreSettings(c.Context(), c.Params("id"), inventory.StoreSettingsInput{
		ValuationMethod: in.ValuationMethod,
		TaxRegime:       in.TaxRegime,
	})
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.JSON(dto.ToStoreResponse(store))
}

// SetThresholds godoc
// @Summary      Configurar mínimo y máximo de stock
// @Tags         stores
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path  string                    true  "Producto"
// @Param        store_id    path  string                    true  "Tienda"
// @Param        body        body  dto.SetThresholdsRequest  true  "min_stock, max_stock"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/stock/{product_id}/{store_id}/thresholds [put]
func (h *StoreHandler) SetThresholds(c *fiber.Ctx) error {
	var in dto.SetThresholdsRequest
	if err := decodeStrict(c, &in, false); err != nil {
		return adminError(c, h.log, err, "")
	}
	storeID := c.Params("store_id")
	if err := checkStore(c, storeID); err != nil {
		return adminError(c, h.log, err, "")
	}
	stock, err := h.settings.SetThresholds(c.Context(), c.Params("product_id"), storeID, in.MinStock, in.MaxStock)
	if err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.JSON(dto.ToStockResponse(stock))
}

// UpsertProduct godoc
// @Summary      Sincronizar producto del catálogo
// @Tags         stores
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.UpsertProductRequest  true  "Datos del producto"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/products/{id} [put]
func (h *StoreHandler) UpsertProduct(c *fiber.Ctx) error {
	var in dto.UpsertProductRequest
	if err := decodeBody(c, &in, false); err != nil {
		return adminError(c, h.log, err, "")
	}
	in.ID = c.Params("id")
	if err := h.products.Upsert(c.Context(), in); err != nil {
		return adminError(c, h.log, err, "")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
