package dto

import (
	"strings"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateBatchRequest body para POST /api/admin/batches.
type CreateBatchRequest struct {
	ProductID   string          `json:"product_id"`
	StoreID     string          `json:"store_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	EntryDate   *time.Time      `json:"entry_date,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	BatchNumber string          `json:"batch_number"`
	Supplier    string          `json:"supplier,omitempty"`
}

// Validate valida la entrada.
func (r CreateBatchRequest) Validate() error {
	if err := required("product_id", r.ProductID); err != nil {
		return err
	}
	if err := required("store_id", r.StoreID); err != nil {
		return err
	}
	if !r.Quantity.GreaterThan(decimal.Zero) {
		return validation("quantity debe ser mayor que cero")
	}
	if r.UnitCost.IsNegative() {
		return validation("unit_cost no puede ser negativo")
	}
	if strings.TrimSpace(r.BatchNumber) == "" {
		return validation("batch_number es obligatorio")
	}
	return nil
}

// ToInput convierte a la entrada del caso de uso.
func (r CreateBatchRequest) ToInput(actor string) inventory.ReceiveBatchInput {
	in := inventory.ReceiveBatchInput{
		ProductID:   r.ProductID,
		StoreID:     r.StoreID,
		Quantity:    r.Quantity,
		UnitCost:    r.UnitCost,
		ExpiryDate:  r.ExpiryDate,
		BatchNumber: r.BatchNumber,
		Supplier:    r.Supplier,
		Actor:       actor,
	}
	if r.EntryDate != nil {
		in.EntryDate = *r.EntryDate
	}
	return in
}

// BatchResponse lote con estado derivado.
type BatchResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	StoreID         string          `json:"store_id"`
	BatchNumber     string          `json:"batch_number"`
	Quantity        decimal.Decimal `json:"quantity"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	EntryDate       time.Time       `json:"entry_date"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	Supplier        string          `json:"supplier,omitempty"`
	MovementID      string          `json:"movement_id"`
	Status          string          `json:"status"`
	ExpiryStatus    string          `json:"expiry_status"`
	DaysToExpiry    *int            `json:"days_to_expiry,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToBatchResponse mapea la vista del lote.
func ToBatchResponse(v inventory.BatchView) BatchResponse {
	return BatchResponse{
		ID:              v.ID,
		ProductID:       v.ProductID,
		StoreID:         v.StoreID,
		BatchNumber:     v.BatchNumber,
		Quantity:        v.Quantity,
		InitialQuantity: v.InitialQuantity,
		UnitCost:        v.UnitCost,
		EntryDate:       v.EntryDate,
		ExpiryDate:      v.ExpiryDate,
		Supplier:        v.Supplier,
		MovementID:      v.MovementID,
		Status:          v.Status,
		ExpiryStatus:    v.ExpiryStatus,
		DaysToExpiry:    v.DaysToExpiry,
		CreatedAt:       v.CreatedAt,
	}
}

// BatchListResponse lista de lotes en orden FIFO.
type BatchListResponse struct {
	Items []BatchResponse `json:"items"`
	Total int             `json:"total"`
}

// ToBatchList mapea una lista de vistas.
func ToBatchList(list []inventory.BatchView) BatchListResponse {
	out := BatchListResponse{Items: make([]BatchResponse, 0, len(list)), Total: len(list)}
	for _, v := range list {
		out.Items = append(out.Items, ToBatchResponse(v))
	}
	return out
}

// AllocationTraceResponse consumo de un lote por un movimiento.
type AllocationTraceResponse struct {
	MovementID   string          `json:"movement_id"`
	MovementType string          `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Reference    string          `json:"reference,omitempty"`
	Actor        string          `json:"actor,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// BatchTraceResponse trazabilidad del lote.
type BatchTraceResponse struct {
	Batch       BatchResponse             `json:"batch"`
	Allocations []AllocationTraceResponse `json:"allocations"`
	TotalIn     decimal.Decimal           `json:"total_in"`
	TotalOut    decimal.Decimal           `json:"total_out"`
	Utilization decimal.Decimal           `json:"utilization_pct"`
}

// ToBatchTraceResponse mapea la trazabilidad.
func ToBatchTraceResponse(t *inventory.BatchTrace) BatchTraceResponse {
	out := BatchTraceResponse{
		Batch:       ToBatchResponse(t.Batch),
		Allocations: make([]AllocationTraceResponse, 0, len(t.Allocations)),
		TotalIn:     t.TotalIn,
		TotalOut:    t.TotalOut,
		Utilization: t.Utilization,
	}
	for _, a := range t.Allocations {
		out.Allocations = append(out.Allocations, AllocationTraceResponse{
			MovementID:   a.MovementID,
			MovementType: a.MovementType,
			Quantity:     a.Quantity,
			UnitCost:     a.UnitCost,
			Reference:    a.Reference,
			Actor:        a.Actor,
			CreatedAt:    a.CreatedAt,
		})
	}
	return out
}

// CreateAdjustmentRequest body para POST /api/admin/adjustments. quantity con signo.
type CreateAdjustmentRequest struct {
	ProductID string           `json:"product_id"`
	StoreID   string           `json:"store_id,omitempty"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Reason    string           `json:"reason"`
	Notes     string           `json:"notes"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Confirmed bool             `json:"confirmed"`
}

// Validate valida forma y enumerado; la longitud de notes la decide el motor.
func (r CreateAdjustmentRequest) Validate() error {
	if err := required("product_id", r.ProductID); err != nil {
		return err
	}
	if r.Quantity.IsZero() {
		return validation("quantity no puede ser cero")
	}
	if !entity.ValidAdjustmentReason(r.Reason) {
		return validation("reason desconocido %q", r.Reason)
	}
	if strings.TrimSpace(r.Notes) == "" {
		return validation("notes es obligatorio")
	}
	return nil
}

// ToInput convierte a la entrada del caso de uso.
func (r CreateAdjustmentRequest) ToInput(actor string) inventory.AdjustmentInput {
	return inventory.AdjustmentInput{
		ProductID: r.ProductID,
		StoreID:   r.StoreID,
		Quantity:  r.Quantity,
		Reason:    r.Reason,
		Notes:     r.Notes,
		UnitCost:  r.UnitCost,
		Confirmed: r.Confirmed,
		Actor:     actor,
	}
}

// AdjustmentResponse ajuste registrado.
type AdjustmentResponse struct {
	ID            string           `json:"id"`
	MovementID    string           `json:"movement_id"`
	ProductID     string           `json:"product_id"`
	StoreID       string           `json:"store_id"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Reason        string           `json:"reason"`
	Notes         string           `json:"notes"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	PreviousStock decimal.Decimal  `json:"previous_stock"`
	Percentage    decimal.Decimal  `json:"percentage"`
	IsLarge       bool             `json:"is_large"`
	Confirmed     bool             `json:"confirmed"`
	Actor         string           `json:"actor,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ToAdjustmentResponse mapea la entidad.
func ToAdjustmentResponse(a *entity.Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:            a.ID,
		MovementID:    a.MovementID,
		ProductID:     a.ProductID,
		StoreID:       a.StoreID,
		Quantity:      a.Quantity,
		Reason:        a.Reason,
		Notes:         a.Notes,
		UnitCost:      a.UnitCost,
		PreviousStock: a.PreviousStock,
		Percentage:    a.Percentage,
		IsLarge:       a.IsLarge,
		Confirmed:     a.Confirmed,
		Actor:         a.Actor,
		CreatedAt:     a.CreatedAt,
	}
}

// AdjustmentListResponse lista de ajustes.
type AdjustmentListResponse struct {
	Items []AdjustmentResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// AllocationResponse lo que una salida tomó de un lote.
type AllocationResponse struct {
	BatchID  string          `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// MovementResponse entrada del libro.
type MovementResponse struct {
	ID              string               `json:"id"`
	ProductID       string               `json:"product_id"`
	StoreID         string               `json:"store_id"`
	Type            string               `json:"type"`
	Quantity        decimal.Decimal      `json:"quantity"`
	UnitCost        *decimal.Decimal     `json:"unit_cost,omitempty"`
	TotalCost       decimal.Decimal      `json:"total_cost"`
	ValuationMethod string               `json:"valuation_method"`
	Reason          string               `json:"reason,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	Actor           string               `json:"actor,omitempty"`
	Reference       string               `json:"reference,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	Allocations     []AllocationResponse `json:"allocations,omitempty"`
}

// ToMovementResponse mapea la entidad.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	out := MovementResponse{
		ID:              m.ID,
		ProductID:       m.ProductID,
		StoreID:         m.StoreID,
		Type:            m.Type,
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		TotalCost:       m.TotalCost,
		ValuationMethod: m.ValuationMethod,
		Reason:          m.Reason,
		Notes:           m.Notes,
		Actor:           m.Actor,
		Reference:       m.Reference,
		CreatedAt:       m.CreatedAt,
	}
	for _, a := range m.Allocations {
		out.Allocations = append(out.Allocations, AllocationResponse{BatchID: a.BatchID, Quantity: a.Quantity, UnitCost: a.UnitCost})
	}
	return out
}

// ToMovementList mapea una lista de movimientos.
func ToMovementList(list []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

// MovementListResponse página del libro.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// SaleRequest body para POST /api/admin/sales (venta de mostrador).
type SaleRequest struct {
	ProductID string          `json:"product_id"`
	StoreID   string          `json:"store_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	OrderID   string          `json:"order_id,omitempty"`
}

// Validate valida la entrada.
func (r SaleRequest) Validate() error {
	if err := required("product_id", r.ProductID); err != nil {
		return err
	}
	if err := required("store_id", r.StoreID); err != nil {
		return err
	}
	if !r.Quantity.GreaterThan(decimal.Zero) {
		return validation("quantity debe ser mayor que cero")
	}
	return nil
}

// TransferRequest body para POST /api/admin/transfers.
type TransferRequest struct {
	ProductID   string          `json:"product_id"`
	FromStoreID string          `json:"from_store_id"`
	ToStoreID   string          `json:"to_store_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Notes       string          `json:"notes,omitempty"`
}

// Validate valida la entrada.
func (r TransferRequest) Validate() error {
	if err := required("product_id", r.ProductID); err != nil {
		return err
	}
	if err := required("from_store_id", r.FromStoreID); err != nil {
		return err
	}
	if err := required("to_store_id", r.ToStoreID); err != nil {
		return err
	}
	if r.FromStoreID == r.ToStoreID {
		return validation("from_store_id y to_store_id deben ser distintos")
	}
	if !r.Quantity.GreaterThan(decimal.Zero) {
		return validation("quantity debe ser mayor que cero")
	}
	return nil
}

// TransferResponse par de movimientos del traslado.
type TransferResponse struct {
	Out MovementResponse `json:"out"`
	In  MovementResponse `json:"in"`
}

// SetThresholdsRequest body para PUT /api/admin/stock/:product_id/:store_id/thresholds.
type SetThresholdsRequest struct {
	MinStock decimal.Decimal `json:"min_stock"`
	MaxStock decimal.Decimal `json:"max_stock"`
}

// Validate valida la entrada.
func (r SetThresholdsRequest) Validate() error {
	if r.MinStock.IsNegative() || r.MaxStock.IsNegative() {
		return validation("min_stock y max_stock no pueden ser negativos")
	}
	if !r.MaxStock.IsZero() && r.MaxStock.LessThan(r.MinStock) {
		return validation("max_stock menor que min_stock")
	}
	return nil
}

// StockResponse saldo de un par producto+tienda.
type StockResponse struct {
	ProductID   string          `json:"product_id"`
	StoreID     string          `json:"store_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reserved    decimal.Decimal `json:"reserved"`
	AverageCost decimal.Decimal `json:"average_cost"`
	MinStock    decimal.Decimal `json:"min_stock"`
	MaxStock    decimal.Decimal `json:"max_stock"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToStockResponse mapea la entidad.
func ToStockResponse(s *entity.Stock) StockResponse {
	return StockResponse{
		ProductID:   s.ProductID,
		StoreID:     s.StoreID,
		Quantity:    s.Quantity,
		Reserved:    s.Reserved,
		AverageCost: s.AverageCost,
		MinStock:    s.MinStock,
		MaxStock:    s.MaxStock,
		UpdatedAt:   s.UpdatedAt,
	}
}

// LowStockItemResponse producto bajo el mínimo.
type LowStockItemResponse struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	StoreID      string          `json:"store_id"`
	StoreName    string          `json:"store_name"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	MaxStock     decimal.Decimal `json:"max_stock"`
	Deficit      decimal.Decimal `json:"deficit"`
	SuggestedQty decimal.Decimal `json:"suggested_qty"`
}

// LowStockResponse reporte de stock bajo.
type LowStockResponse struct {
	Total int                    `json:"total"`
	Items []LowStockItemResponse `json:"items"`
}

// ToLowStockResponse mapea el reporte.
func ToLowStockResponse(items []inventory.LowStockItem) LowStockResponse {
	out := LowStockResponse{Total: len(items), Items: make([]LowStockItemResponse, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, LowStockItemResponse{
			ProductID:    it.Product.ID,
			ProductName:  it.Product.Name,
			StoreID:      it.Store.ID,
			StoreName:    it.Store.Name,
			CurrentStock: it.CurrentStock,
			MinStock:     it.MinStock,
			MaxStock:     it.MaxStock,
			Deficit:      it.Deficit,
			SuggestedQty: it.SuggestedQty,
		})
	}
	return out
}

// ExpiryAlertResponse lote vencido o por vencer.
type ExpiryAlertResponse struct {
	BatchID      string          `json:"batch_id"`
	BatchNumber  string          `json:"batch_number"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	StoreID      string          `json:"store_id"`
	StoreName    string          `json:"store_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
	DaysToExpiry int             `json:"days_to_expiry"`
	Severity     string          `json:"severity"`
}

// ExpiryAlertsResponse alertas agrupadas por urgencia.
type ExpiryAlertsResponse struct {
	Total         int                   `json:"total"`
	Expired       []ExpiryAlertResponse `json:"expired"`
	ExpiringSoon  []ExpiryAlertResponse `json:"expiring_soon"`
	ExpiringLater []ExpiryAlertResponse `json:"expiring_later"`
}

// ToExpiryAlertsResponse mapea el reporte.
func ToExpiryAlertsResponse(r *inventory.ExpiryReport) ExpiryAlertsResponse {
	return ExpiryAlertsResponse{
		Total:         r.Total(),
		Expired:       toExpiryAlerts(r.Expired),
		ExpiringSoon:  toExpiryAlerts(r.ExpiringSoon),
		ExpiringLater: toExpiryAlerts(r.ExpiringLater),
	}
}

func toExpiryAlerts(list []inventory.ExpiryAlert) []ExpiryAlertResponse {
	out := make([]ExpiryAlertResponse, 0, len(list))
	for _, a := range list {
		out = append(out, ExpiryAlertResponse{
			BatchID:      a.Batch.ID,
			BatchNumber:  a.Batch.BatchNumber,
			ProductID:    a.Batch.ProductID,
			ProductName:  a.ProductName,
			StoreID:      a.Batch.StoreID,
			StoreName:    a.StoreName,
			Quantity:     a.Batch.Quantity,
			ExpiryDate:   a.Batch.ExpiryDate,
			DaysToExpiry: a.DaysToExpiry,
			Severity:     a.Severity,
		})
	}
	return out
}
