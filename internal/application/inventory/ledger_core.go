package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// pair producto+tienda bloqueado dentro de una tx.
type pair struct {
	product *entity.Product
	store   *entity.Store
	stock   *entity.Stock
}

// lockPair valida producto y tienda y bloquea la fila de saldo (SELECT FOR UPDATE).
// Toda mutación de un par pasa por aquí antes de tocar lotes o reservas.
// Orden de bloqueo: tienda (compartido), saldo, reserva.
func lockPair(ctx context.Context, r Repos, productID, storeID string) (*pair, error) {
	product, err := r.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	store, err := r.Stores.GetForShare(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("tienda %s: %w", storeID, domain.ErrNotFound)
	}
	stock, err := r.Stocks.GetForUpdate(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}
	return &pair{product: product, store: store, stock: stock}, nil
}

// lot un lote a crear dentro de una entrada.
type lot struct {
	quantity    decimal.Decimal
	unitCost    decimal.Decimal
	entryDate   time.Time
	expiryDate  *time.Time
	batchNumber string
	supplier    string
}

// inflow entrada de stock que crea uno o más lotes bajo un único movimiento.
type inflow struct {
	movementType string
	lots         []lot
	reason       string
	notes        string
	actor        string
	reference    string
}

// applyInflow crea los lotes, recalcula el promedio según la política de la tienda,
// suma al saldo y registra exactamente un movimiento.
func applyInflow(ctx context.Context, r Repos, p *pair, in inflow, now time.Time) ([]*entity.Batch, *entity.StockMovement, error) {
	qty, total := decimal.Zero, decimal.Zero
	for _, l := range in.lots {
		qty = qty.Add(l.quantity)
		total = total.Add(l.quantity.Mul(l.unitCost))
	}
	if !qty.GreaterThan(decimal.Zero) {
		return nil, nil, domain.Validation("entrada sin cantidad")
	}
	unitCost := total.Div(qty).Round(inventory.CostScale)

	policy := inventory.PolicyFor(p.store.ValuationMethod)
	p.stock.AverageCost = policy.OnReceipt(p.stock.Quantity, p.stock.AverageCost, qty, unitCost)
	p.stock.Quantity = p.stock.Quantity.Add(qty)
	p.stock.UpdatedAt = now

	mov := &entity.StockMovement{
		ID:              uuid.New().String(),
		ProductID:       p.product.ID,
		StoreID:         p.store.ID,
		Type:            in.movementType,
		Quantity:        qty,
		UnitCost:        &unitCost,
		TotalCost:       total,
		ValuationMethod: policy.Method(),
		Reason:          in.reason,
		Notes:           in.notes,
		Actor:           in.actor,
		Reference:       in.reference,
		CreatedAt:       now,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, nil, err
	}

	batches := make([]*entity.Batch, 0, len(in.lots))
	for _, l := range in.lots {
		entry := l.entryDate
		if entry.IsZero() {
			entry = now
		}
		b := &entity.Batch{
			ID:              uuid.New().String(),
			ProductID:       p.product.ID,
			StoreID:         p.store.ID,
			BatchNumber:     l.batchNumber,
			Quantity:        l.quantity,
			InitialQuantity: l.quantity,
			UnitCost:        l.unitCost,
			EntryDate:       entry,
			ExpiryDate:      l.expiryDate,
			Supplier:        l.supplier,
			MovementID:      mov.ID,
			CreatedAt:       now,
		}
		if err := r.Batches.Create(ctx, b); err != nil {
			return nil, nil, err
		}
		batches = append(batches, b)
	}
	if err := r.Stocks.Upsert(ctx, p.stock); err != nil {
		return nil, nil, err
	}
	return batches, mov, nil
}

// outflow salida de stock consumida en orden FIFO.
type outflow struct {
	movementType    string
	quantity        decimal.Decimal // positivo; el movimiento se guarda con signo negativo
	respectReserved bool            // exige quantity <= disponible
	reason          string
	notes           string
	actor           string
	reference       string
}

// applyOutflow asigna lotes FIFO, costea según la política, descuenta el saldo
// y registra exactamente un movimiento con sus asignaciones.
func applyOutflow(ctx context.Context, r Repos, p *pair, out outflow, now time.Time) (*entity.StockMovement, error) {
	if out.respectReserved && p.stock.Available().LessThan(out.quantity) {
		return nil, fmt.Errorf("disponible %s, solicitado %s: %w", p.stock.Available(), out.quantity, domain.ErrInsufficientStock)
	}
	if p.stock.Quantity.LessThan(out.quantity) {
		return nil, fmt.Errorf("stock %s, solicitado %s: %w", p.stock.Quantity, out.quantity, domain.ErrInsufficientStock)
	}
	batches, err := r.Batches.ListAvailableForUpdate(ctx, p.product.ID, p.store.ID)
	if err != nil {
		return nil, err
	}
	allocs, err := inventory.AllocateFIFO(batches, out.quantity)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Batch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}
	for _, a := range allocs {
		if err := r.Batches.UpdateQuantity(ctx, a.BatchID, byID[a.BatchID].Quantity); err != nil {
			return nil, err
		}
	}

	policy := inventory.PolicyFor(p.store.ValuationMethod)
	unit, total := policy.RealizedCost(allocs, out.quantity, p.stock.AverageCost)

	p.stock.Quantity = p.stock.Quantity.Sub(out.quantity)
	p.stock.UpdatedAt = now
	if err := r.Stocks.Upsert(ctx, p.stock); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:              uuid.New().String(),
		ProductID:       p.product.ID,
		StoreID:         p.store.ID,
		Type:            out.movementType,
		Quantity:        out.quantity.Neg(),
		UnitCost:        &unit,
		TotalCost:       total,
		ValuationMethod: policy.Method(),
		Reason:          out.reason,
		Notes:           out.notes,
		Actor:           out.actor,
		Reference:       out.reference,
		CreatedAt:       now,
		Allocations:     allocs,
	}
	for i := range mov.Allocations {
		mov.Allocations[i].MovementID = mov.ID
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// expireReservation pasa una reserva activa a expired y libera su retención. Requiere el saldo bloqueado.
func expireReservation(ctx context.Context, r Repos, stock *entity.Stock, rv *entity.Reservation, now time.Time, box *outbox) error {
	stock.Reserved = stock.Reserved.Sub(rv.Quantity)
	if stock.Reserved.IsNegative() {
		stock.Reserved = decimal.Zero
	}
	stock.UpdatedAt = now
	if err := r.Stocks.Upsert(ctx, stock); err != nil {
		return err
	}
	rv.State = entity.ReservationExpired
	rv.ResolvedAt = &now
	if err := r.Reservations.UpdateState(ctx, rv); err != nil {
		return err
	}
	box.add(reservationEvent(EventReservationExpired, rv, now))
	return nil
}

// releaseOverdue vence las reservas atrasadas del par bloqueado, así el disponible
// del saldo coincide con lo que ven las lecturas.
func releaseOverdue(ctx context.Context, r Repos, p *pair, now time.Time, box *outbox) error {
	overdue, err := r.Reservations.ListOverdue(ctx, now, p.product.ID, p.store.ID, 0)
	if err != nil {
		return err
	}
	for _, rv := range overdue {
		if err := expireReservation(ctx, r, p.stock, rv, now, box); err != nil {
			return err
		}
	}
	return nil
}

// movementEvents eventos de un movimiento ya aplicado: siempre movement.recorded y,
// si la salida dejó el saldo bajo el mínimo, stock.low.
func movementEvents(mov *entity.StockMovement, stock *entity.Stock) []Event {
	events := []Event{{
		Type:       EventMovementRecorded,
		ProductID:  mov.ProductID,
		StoreID:    mov.StoreID,
		MovementID: mov.ID,
		Quantity:   mov.Quantity,
		OccurredAt: mov.CreatedAt,
	}}
	if mov.Quantity.IsNegative() && stock.IsLow() {
		events = append(events, Event{
			Type:       EventStockLow,
			ProductID:  mov.ProductID,
			StoreID:    mov.StoreID,
			MovementID: mov.ID,
			Quantity:   stock.Quantity,
			OccurredAt: mov.CreatedAt,
		})
	}
	return events
}

func requirePositive(name string, q decimal.Decimal) error {
	if !q.GreaterThan(decimal.Zero) {
		return domain.Validation("%s debe ser mayor que cero", name)
	}
	return nil
}

func requireID(name, v string) error {
	if v == "" {
		return domain.Validation("%s es obligatorio", name)
	}
	return nil
}
