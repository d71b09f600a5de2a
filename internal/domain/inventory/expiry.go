package inventory

import (
	"math"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// Ventanas de alerta de vencimiento en días.
const (
	ExpiringWindowDays = 30
	UrgentWindowDays   = 7
)

// Estados de vencimiento de un lote.
const (
	ExpiryActive   = "active"
	ExpiryExpiring = "expiring"
	ExpiryExpired  = "expired"
)

// ExpiryStatus resultado de clasificar un lote por fecha de vencimiento.
type ExpiryStatus struct {
	Status   string
	DaysLeft *int // nil si el lote no vence
	Urgent   bool
}

// DaysToExpiry redondea hacia arriba los días que faltan; negativo si ya venció.
func DaysToExpiry(expiry, now time.Time) int {
	d := expiry.Sub(now).Hours() / 24
	return int(math.Ceil(d))
}

// ClassifyExpiry aplica las ventanas: vencido si días < 0, por vencer si días <= 30
// (urgente si <= 7), activo en otro caso. El día 0 cuenta como por vencer.
func ClassifyExpiry(b *entity.Batch, now time.Time) ExpiryStatus {
	if b.ExpiryDate == nil {
		return ExpiryStatus{Status: ExpiryActive}
	}
	days := DaysToExpiry(*b.ExpiryDate, now)
	st := ExpiryStatus{DaysLeft: &days}
	switch {
	case days < 0:
		st.Status = ExpiryExpired
	case days <= ExpiringWindowDays:
		st.Status = ExpiryExpiring
		st.Urgent = days <= UrgentWindowDays
	default:
		st.Status = ExpiryActive
	}
	return st
}

// BatchStatus estado derivado del lote: agotado manda sobre vencido.
func BatchStatus(b *entity.Batch, now time.Time) string {
	if !b.HasStock() {
		return entity.BatchStatusDepleted
	}
	if ClassifyExpiry(b, now).Status == ExpiryExpired {
		return entity.BatchStatusExpired
	}
	return entity.BatchStatusActive
}
