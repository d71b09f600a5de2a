package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Motivos que el motor asigna a los movimientos que genera.
const (
	ReasonPurchase             = "purchase"
	ReasonPOSSale              = "pos_sale"
	ReasonReservationConfirmed = "reservation_confirmed"
	ReasonStoreTransfer        = "store_transfer"
)

// LedgerUseCase registra entradas, ventas y traslados de forma transaccional y consulta el libro.
type LedgerUseCase struct {
	d Deps
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(d Deps) *LedgerUseCase {
	return &LedgerUseCase{d: d.withDefaults()}
}

// ReceiveBatchInput entrada para recibir un lote.
type ReceiveBatchInput struct {
	ProductID   string
	StoreID     string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	EntryDate   time.Time // cero = ahora
	ExpiryDate  *time.Time
	BatchNumber string
	Supplier    string
	Actor       string
}

func (in ReceiveBatchInput) validate() error {
	if err := requireID("productId", in.ProductID); err != nil {
		return err
	}
	if err := requireID("storeId", in.StoreID); err != nil {
		return err
	}
	if err := requirePositive("quantity", in.Quantity); err != nil {
		return err
	}
	if in.UnitCost.IsNegative() {
		return domain.Validation("unitCost no puede ser negativo")
	}
	if strings.TrimSpace(in.BatchNumber) == "" {
		return domain.Validation("batchNumber es obligatorio")
	}
	if in.ExpiryDate != nil && !in.EntryDate.IsZero() && in.ExpiryDate.Before(in.EntryDate) {
		return domain.Validation("expiryDate anterior a entryDate")
	}
	return nil
}

// ReceiveBatch crea un lote activo, suma al saldo y registra la entrada en una sola tx.
// En tiendas average_cost recalcula el promedio con el costo del lote.
func (uc *LedgerUseCase) ReceiveBatch(ctx context.Context, in ReceiveBatchInput) (*entity.Batch, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := uc.d.Now()
	var (
		batch *entity.Batch
		box   outbox
	)
	err := uc.d.Tx.Run(ctx, func(r Repos) error {
		box.reset()
		p, err := lockPair(ctx, r, in.ProductID, in.StoreID)
		if err != nil {
			return err
		}
		exists, err := r.Batches.ExistsNumber(ctx, in.ProductID, in.StoreID, in.BatchNumber)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("lote %s: %w", in.BatchNumber, domain.ErrDuplicate)
		}
		created, mov, err := applyInflow(ctx, r, p, inflow{
			movementType: entity.MovementEntry,
			lots: []lot{{
				quantity:    in.Quantity,
				unitCost:    in.UnitCost,
				entryDate:   in.EntryDate,
				expiryDate:  in.ExpiryDate,
				batchNumber: strings.TrimSpace(in.BatchNumber),
				supplier:    in.Supplier,
			}},
			reason:    ReasonPurchase,
			actor:     in.Actor,
			reference: in.BatchNumber,
		}, now)
		if err != nil {
			return err
		}
		batch = created[0]
		for _, e := range movementEvents(mov, p.stock) {
			box.add(e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.d.Events)
	return batch, nil
}

// SaleInput venta directa de mostrador.
type SaleInput struct {
	ProductID string
	StoreID   string
	Quantity  decimal.Decimal
	OrderID   string
	Actor     string
}

// RegisterSale descuenta por FIFO respetando lo reservado y registra la venta.
// Tras el commit avisa al emisor fiscal; si falla devuelve el movimiento junto con
// ErrExternalDependency y el inventario queda confirmado.
func (uc *LedgerUseCase) RegisterSale(ctx context.Context, in SaleInput) (*entity.StockMovement, error) {
	if err := requireID("productId", in.ProductID); err != nil {
		return nil, err
	}
	if err := requireID("storeId", in.StoreID); err != nil {
		return nil, err
	}
	if err := requirePositive("quantity", in.Quantity); err != nil {
		return nil, err
	}
	now := uc.d.Now()
	var (
		mov *entity.StockMovement
		box outbox
	)
	err := uc.d.Tx.Run(ctx, func(r Repos) error {
		box.reset()
		p, err := lockPair(ctx, r, in.ProductID, in.StoreID)
		if err != nil {
			return err
		}
		if err := releaseOverdue(ctx, r, p, now, &box); err != nil {
			return err
		}
		m, err := applyOutflow(ctx, r, p, outflow{
			movementType:    entity.MovementSale,
			quantity:        in.Quantity,
			respectReserved: true,
			reason:          ReasonPOSSale,
			actor:           in.Actor,
			reference:       in.OrderID,
		}, now)
		if err != nil {
			return err
		}
		mov = m
		for _, e := range movementEvents(m, p.stock) {
			box.add(e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.d.Events)

	if uc.d.Fiscal != nil {
		notice := SaleNotice{
			MovementID: mov.ID,
			ProductID:  mov.ProductID,
			StoreID:    mov.StoreID,
			OrderID:    in.OrderID,
			Quantity:   in.Quantity,
			TotalCost:  mov.TotalCost,
		}
		if err := uc.d.Fiscal.NotifySale(ctx, notice); err != nil {
			return mov, fmt.Errorf("%w: %v", domain.ErrExternalDependency, err)
		}
	}
	return mov, nil
}

// TransferInput traslado entre tiendas.
type TransferInput struct {
	ProductID   string
	FromStoreID string
	ToStoreID   string
	Quantity    decimal.Decimal
	Notes       string
	Actor       string
}

// TransferResult par de movimientos generados por un traslado.
type TransferResult struct {
	Out *entity.StockMovement
	In  *entity.StockMovement
}

// Transfer saca por FIFO en origen y crea en destino lotes con el mismo número,
// vencimiento y costo. Las dos filas de saldo se bloquean en orden de ID de tienda.
func (uc *LedgerUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if err := requireID("productId", in.ProductID); err != nil {
		return nil, err
	}
	if err := requireID("fromStoreId", in.FromStoreID); err != nil {
		return nil, err
	}
	if err := requireID("toStoreId", in.ToStoreID); err != nil {
		return nil, err
	}
	if in.FromStoreID == in.ToStoreID {
		return nil, domain.Validation("origen y destino deben ser distintos")
	}
	if err := requirePositive("quantity", in.Quantity); err != nil {
		return nil, err
	}
	now := uc.d.Now()
	var (
		res *TransferResult
		box outbox
	)
	err := uc.d.Tx.Run(ctx, func(r Repos) error {
		box.reset()
		ids := []string{in.FromStoreID, in.ToStoreID}
		sort.Strings(ids)
		locked := make(map[string]*pair, 2)
		for _, id := range ids {
			p, err := lockPair(ctx, r, in.ProductID, id)
			if err != nil {
				return err
			}
			locked[id] = p
		}
		from, to := locked[in.FromStoreID], locked[in.ToStoreID]
		if err := releaseOverdue(ctx, r, from, now, &box); err != nil {
			return err
		}

		origin, err := r.Batches.ListAvailableForUpdate(ctx, in.ProductID, in.FromStoreID)
		if err != nil {
			return err
		}
		byID := make(map[string]*entity.Batch, len(origin))
		for _, b := range origin {
			byID[b.ID] = b
		}

		outMov, err := applyOutflow(ctx, r, from, outflow{
			movementType:    entity.MovementTransferOut,
			quantity:        in.Quantity,
			respectReserved: true,
			reason:          ReasonStoreTransfer,
			notes:           in.Notes,
			actor:           in.Actor,
			reference:       in.ToStoreID,
		}, now)
		if err != nil {
			return err
		}

		// En origen average_cost el valor que sale es qty·promedio; se traslada ese costo.
		carryAverage := from.store.ValuationMethod == entity.ValuationAverageCost
		lots := make([]lot, 0, len(outMov.Allocations))
		for _, a := range outMov.Allocations {
			l := lot{quantity: a.Quantity, unitCost: a.UnitCost, batchNumber: a.BatchID}
			if carryAverage {
				l.unitCost = *outMov.UnitCost
			}
			if src := byID[a.BatchID]; src != nil {
				l.entryDate, l.expiryDate = src.EntryDate, src.ExpiryDate
				l.batchNumber, l.supplier = src.BatchNumber, src.Supplier
			}
			lots = append(lots, l)
		}
		_, inMov, err := applyInflow(ctx, r, to, inflow{
			movementType: entity.MovementTransferIn,
			lots:         lots,
			reason:       ReasonStoreTransfer,
			notes:        in.Notes,
			actor:        in.Actor,
			reference:    outMov.ID,
		}, now)
		if err != nil {
			return err
		}
		res = &TransferResult{Out: outMov, In: inMov}
		for _, e := range movementEvents(outMov, from.stock) {
			box.add(e)
		}
		for _, e := range movementEvents(inMov, to.stock) {
			box.add(e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.d.Events)
	return res, nil
}

