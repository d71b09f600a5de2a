package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// StoreRepository define el puerto de persistencia para tiendas.
// GetByID devuelve (nil, nil) si no existe.
type StoreRepository interface {
	Upsert(ctx context.Context, store *entity.Store) error
	GetByID(ctx context.Context, id string) (*entity.Store, error)
	// GetForShare lee la tienda con bloqueo compartido: toda escritura de saldos lo toma
	// antes de bloquear el saldo.
	GetForShare(ctx context.Context, id string) (*entity.Store, error)
	// GetForUpdate lee la tienda con bloqueo exclusivo; excluye escrituras de saldos en ella.
	GetForUpdate(ctx context.Context, id string) (*entity.Store, error)
	List(ctx context.Context) ([]*entity.Store, error)
	// UpdateSettings cambia método de valoración y régimen tributario.
	UpdateSettings(ctx context.Context, id, valuationMethod, taxRegime string) error
}
