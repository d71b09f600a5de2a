package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementación de StoreRepository sobre PostgreSQL.
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador de tiendas. Pasar pool o tx (Querier).
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

const storeColumns = `id, name, tax_id, state_registration, valuation_method, tax_regime, created_at, updated_at`

// Upsert crea la tienda o reemplaza sus datos conservando created_at.
func (r *StoreRepo) Upsert(ctx context.Context, s *entity.Store) error {
	query := `
		INSERT INTO stores (` + storeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, tax_id = EXCLUDED.tax_id, state_registration = EXCLUDED.state_registration,
			valuation_method = EXCLUDED.valuation_method, tax_regime = EXCLUDED.tax_regime, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, s.ID, s.Name, s.TaxID, s.StateRegistration, s.ValuationMethod, s.TaxRegime, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert store: %w", err)
	}
	return nil
}

// GetByID obtiene una tienda; (nil, nil) si no existe.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	return r.get(ctx, id, "")
}

// GetForShare como GetByID con SELECT FOR SHARE hasta el fin de la tx.
func (r *StoreRepo) GetForShare(ctx context.Context, id string) (*entity.Store, error) {
	return r.get(ctx, id, " FOR SHARE")
}

// GetForUpdate como GetByID con SELECT FOR UPDATE hasta el fin de la tx.
func (r *StoreRepo) GetForUpdate(ctx context.Context, id string) (*entity.Store, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *StoreRepo) get(ctx context.Context, id, lock string) (*entity.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1` + lock
	s, err := scanStore(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return s, nil
}

// List devuelve todas las tiendas ordenadas por ID.
func (r *StoreRepo) List(ctx context.Context) ([]*entity.Store, error) {
	rows, err := r.q.Query(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()
	var out []*entity.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateSettings cambia método de valoración y régimen tributario.
func (r *StoreRepo) UpdateSettings(ctx context.Context, id, valuationMethod, taxRegime string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stores SET valuation_method = $2, tax_regime = $3, updated_at = now()
		WHERE id = $1`, id, valuationMethod, taxRegime)
	if err != nil {
		return fmt.Errorf("update store settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tienda %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanStore(row pgx.Row) (*entity.Store, error) {
	var s entity.Store
	err := row.Scan(&s.ID, &s.Name, &s.TaxID, &s.StateRegistration, &s.ValuationMethod, &s.TaxRegime, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
