package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// ProductFilter criterios de listado del catálogo.
type ProductFilter struct {
	Category   string
	OnlyActive bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de lectura/alta de productos (DIP).
// GetByID devuelve (nil, nil) si no existe.
type ProductRepository interface {
	Upsert(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, error)
}
