package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Repos agrupa los repositorios del motor. Dentro de TxRunner.Run todos están atados a la misma tx.
type Repos struct {
	Stores       repository.StoreRepository
	Products     repository.ProductRepository
	Stocks       repository.StockRepository
	Batches      repository.BatchRepository
	Movements    repository.MovementRepository
	Reservations repository.ReservationRepository
	Adjustments  repository.AdjustmentRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que el libro y los saldos se escriben juntos o no se escriben.
// fn puede ejecutarse más de una vez si la implementación reintenta conflictos.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Tipos de evento publicados después del commit.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationExpired   = "reservation.expired"
	EventMovementRecorded     = "movement.recorded"
	EventStockLow             = "stock.low"
)

// Event notificación de un cambio ya confirmado en el inventario.
type Event struct {
	Type          string          `json:"type"`
	ProductID     string          `json:"productId"`
	StoreID       string          `json:"storeId"`
	ReservationID string          `json:"reservationId,omitempty"`
	MovementID    string          `json:"movementId,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// EventPublisher entrega eventos a otros servicios. Es best effort: no puede fallar la operación.
type EventPublisher interface {
	Publish(ctx context.Context, e Event)
}

// SaleNotice datos de una venta de mostrador para el emisor de documentos fiscales.
type SaleNotice struct {
	MovementID string
	ProductID  string
	StoreID    string
	OrderID    string
	Quantity   decimal.Decimal
	TotalCost  decimal.Decimal
}

// FiscalNotifier comunica la baja de stock al emisor fiscal externo.
type FiscalNotifier interface {
	NotifySale(ctx context.Context, n SaleNotice) error
}

// Settings reglas configurables del motor.
type Settings struct {
	ReservationTTL time.Duration
	MinNotesLength int
	DefaultStoreID string
}

// DefaultReservationTTL duración fija de una reserva.
const DefaultReservationTTL = 15 * time.Minute

// Deps dependencias compartidas por los casos de uso de inventario.
type Deps struct {
	Tx       TxRunner
	Repos    Repos // lecturas fuera de transacción
	Events   EventPublisher
	Fiscal   FiscalNotifier
	Now      func() time.Time
	Settings Settings
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Events == nil {
		d.Events = NopPublisher{}
	}
	if d.Settings.ReservationTTL <= 0 {
		d.Settings.ReservationTTL = DefaultReservationTTL
	}
	if d.Settings.MinNotesLength <= 0 {
		d.Settings.MinNotesLength = 10
	}
	return d
}

// NopPublisher descarta los eventos.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

// outbox acumula eventos durante la tx; se publican solo si hubo commit.
type outbox struct {
	events []Event
}

func (o *outbox) reset() { o.events = o.events[:0] }

func (o *outbox) add(e Event) { o.events = append(o.events, e) }

func (o *outbox) flush(ctx context.Context, p EventPublisher) {
	for _, e := range o.events {
		p.Publish(ctx, e)
	}
	o.events = nil
}
