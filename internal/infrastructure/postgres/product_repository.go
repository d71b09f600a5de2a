package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, brand, category, unit, price, active, barcode, created_at, updated_at`

// Upsert sincroniza un producto del catálogo.
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, brand = EXCLUDED.brand, category = EXCLUDED.category, unit = EXCLUDED.unit,
			price = EXCLUDED.price, active = EXCLUDED.active, barcode = EXCLUDED.barcode, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Brand, p.Category, p.Unit, p.Price, p.Active, p.Barcode, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto; (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List lista productos por nombre.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var w where
	if f.Category != "" {
		w.add("category = $%d", f.Category)
	}
	if f.OnlyActive {
		w.add("active = $%d", true)
	}
	query := `SELECT ` + productColumns + ` FROM products` + w.String() + ` ORDER BY name, id`
	query += w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Unit, &p.Price, &p.Active, &p.Barcode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
