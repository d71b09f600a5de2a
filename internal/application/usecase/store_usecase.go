package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// StoreUseCase alta y lectura de tiendas. La configuración de valoración se cambia
// por el motor de inventario porque toca los saldos.
type StoreUseCase struct {
	repo repository.StoreRepository
	now  func() time.Time
}

// NewStoreUseCase construye el caso de uso.
func NewStoreUseCase(repo repository.StoreRepository) *StoreUseCase {
	return &StoreUseCase{repo: repo, now: time.Now}
}

// Upsert crea o reemplaza una tienda; sin método usa fifo y sin régimen simples.
func (uc *StoreUseCase) Upsert(ctx context.Context, in dto.UpsertStoreRequest) (*dto.StoreResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.ValuationMethod == "" {
		in.ValuationMethod = entity.ValuationFIFO
	}
	if in.TaxRegime == "" {
		in.TaxRegime = entity.TaxRegimeSimples
	}
	now := uc.now()
	store := &entity.Store{
		ID:                in.ID,
		Name:              in.Name,
		TaxID:             in.TaxID,
		StateRegistration: in.StateRegistration,
		ValuationMethod:   in.ValuationMethod,
		TaxRegime:         in.TaxRegime,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Upsert(ctx, store); err != nil {
		return nil, err
	}
	return dto.ToStoreResponse(store), nil
}

// GetByID obtiene una tienda por ID; (nil, nil) si no existe.
func (uc *StoreUseCase) GetByID(ctx context.Context, id string) (*dto.StoreResponse, error) {
	store, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToStoreResponse(store), nil
}

// List lista todas las tiendas.
func (uc *StoreUseCase) List(ctx context.Context) (*dto.StoreListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StoreResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *dto.ToStoreResponse(s))
	}
	return &dto.StoreListResponse{Items: items}, nil
}
