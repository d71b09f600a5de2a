package inventory

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// AdjustmentUseCase registra ajustes manuales con motivo, justificación y control de ajustes grandes.
type AdjustmentUseCase struct {
	d Deps
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(d Deps) *AdjustmentUseCase {
	return &AdjustmentUseCase{d: d.withDefaults()}
}

// AdjustmentInput entrada de un ajuste. Quantity con signo; StoreID vacío usa la tienda por defecto.
type AdjustmentInput struct {
	ProductID string
	StoreID   string
	Quantity  decimal.Decimal
	Reason    string
	Notes     string
	UnitCost  *decimal.Decimal
	Confirmed bool // confirmación explícita para ajustes > 10%
	Actor     string
}

func (uc *AdjustmentUseCase) validate(in *AdjustmentInput) error {
	if err := requireID("productId", in.ProductID); err != nil {
		return err
	}
	if in.StoreID == "" {
		in.StoreID = uc.d.Settings.DefaultStoreID
	}
	if in.StoreID == "" {
		return domain.Validation("storeId es obligatorio")
	}
	if in.Quantity.IsZero() {
		return domain.Validation("quantity no puede ser cero")
	}
	if !entity.ValidAdjustmentReason(in.Reason) {
		return domain.Validation("motivo de ajuste desconocido %q", in.Reason)
	}
	in.Notes = strings.TrimSpace(in.Notes)
	if utf8.RuneCountInString(in.Notes) < uc.d.Settings.MinNotesLength {
		return domain.Validation("notes requiere al menos %d caracteres", uc.d.Settings.MinNotesLength)
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return domain.Validation("unitCost no puede ser negativo")
	}
	if in.UnitCost != nil && in.Quantity.IsNegative() {
		return domain.Validation("unitCost solo aplica a ajustes positivos")
	}
	return nil
}

// CreateAdjustment aplica el ajuste y registra un movimiento de tipo adjustment.
// El porcentaje sobre el stock se guarda siempre; si supera el umbral sin confirmación
// devuelve ErrConfirmationRequired y no escribe nada.
func (uc *AdjustmentUseCase) CreateAdjustment(ctx context.Context, in AdjustmentInput) (*entity.Adjustment, error) {
	if err := uc.validate(&in); err != nil {
		return nil, err
	}
	now := uc.d.Now()
	var (
		adj *entity.Adjustment
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
		previous := p.stock.Quantity
		magnitude := in.Quantity.Abs()
		if in.Quantity.IsNegative() && magnitude.GreaterThan(previous) {
			return fmt.Errorf("ajuste %s sobre stock %s: %w", in.Quantity, previous, domain.ErrInsufficientStock)
		}
		pct := inventory.AdjustmentPercentage(in.Quantity, previous)
		large := inventory.IsLargeAdjustment(pct)
		if large && !in.Confirmed {
			return fmt.Errorf("ajuste de %s%%: %w", pct.StringFixed(2), domain.ErrConfirmationRequired)
		}

		var mov *entity.StockMovement
		adjID := uuid.New().String()
		if in.Quantity.IsNegative() {
			mov, err = applyOutflow(ctx, r, p, outflow{
				movementType:    entity.MovementAdjustment,
				quantity:        magnitude,
				respectReserved: true,
				reason:          in.Reason,
				notes:           in.Notes,
				actor:           in.Actor,
				reference:       adjID,
			}, now)
		} else {
			var cost decimal.Decimal
			cost, err = uc.entryCost(ctx, r, p, in.UnitCost)
			if err != nil {
				return err
			}
			_, mov, err = applyInflow(ctx, r, p, inflow{
				movementType: entity.MovementAdjustment,
				lots: []lot{{
					quantity:    magnitude,
					unitCost:    cost,
					batchNumber: "ADJ-" + adjID[:8],
				}},
				reason:    in.Reason,
				notes:     in.Notes,
				actor:     in.Actor,
				reference: adjID,
			}, now)
		}
		if err != nil {
			return err
		}

		adj = &entity.Adjustment{
			ID:            adjID,
			MovementID:    mov.ID,
			ProductID:     in.ProductID,
			StoreID:       in.StoreID,
			Quantity:      in.Quantity,
			Reason:        in.Reason,
			Notes:         in.Notes,
			UnitCost:      in.UnitCost,
			PreviousStock: previous,
			Percentage:    pct,
			IsLarge:       large,
			Confirmed:     in.Confirmed,
			Actor:         in.Actor,
			CreatedAt:     now,
		}
		if err := r.Adjustments.Create(ctx, adj); err != nil {
			return err
		}
		for _, e := range movementEvents(mov, p.stock) {
			box.add(e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.d.Events)
	return adj, nil
}

// entryCost costo de un ajuste positivo: el informado o, si falta, el costo base vigente
// (promedio en average_cost, costo medio de los lotes en FIFO).
func (uc *AdjustmentUseCase) entryCost(ctx context.Context, r Repos, p *pair, unitCost *decimal.Decimal) (decimal.Decimal, error) {
	if unitCost != nil {
		return *unitCost, nil
	}
	if p.store.ValuationMethod == entity.ValuationAverageCost {
		return p.stock.AverageCost, nil
	}
	batches, err := r.Batches.ListAvailableForUpdate(ctx, p.product.ID, p.store.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return inventory.AverageOfBatches(batches), nil
}

// AdjustmentQuery filtros del listado de ajustes.
type AdjustmentQuery = repository.AdjustmentFilter

// ListAdjustments lista ajustes, más reciente primero.
func (uc *AdjustmentUseCase) ListAdjustments(ctx context.Context, q AdjustmentQuery) ([]*entity.Adjustment, error) {
	if q.Reason != "" && !entity.ValidAdjustmentReason(q.Reason) {
		return nil, domain.Validation("motivo de ajuste desconocido %q", q.Reason)
	}
	if q.Limit <= 0 || q.Limit > MaxPageSize {
		q.Limit = DefaultPageSize
	}
	return uc.d.Repos.Adjustments.List(ctx, q)
}
