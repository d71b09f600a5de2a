// seed carga tiendas, productos, umbrales y lotes de apertura desde un archivo JSON
// usando los mismos casos de uso que la API, así cada lote queda en el libro.
//
// Uso: go run ./cmd/seed [-latin1] [ruta/seed.json]
// Por defecto busca seed.json en el directorio actual (ver seed.example.json). -latin1 lee exportaciones ISO-8859-1.
// Los lotes cuyo número ya existe se omiten, de modo que se puede ejecutar varias veces.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type seedFile struct {
	Stores     []dto.UpsertStoreRequest   `json:"stores"`
	Products   []dto.UpsertProductRequest `json:"products"`
	Thresholds []threshold                `json:"thresholds"`
	Batches    []dto.CreateBatchRequest   `json:"batches"`
}

type threshold struct {
	ProductID string          `json:"product_id"`
	StoreID   string          `json:"store_id"`
	MinStock  decimal.Decimal `json:"min_stock"`
	MaxStock  decimal.Decimal `json:"max_stock"`
}

func main() {
	latin1 := flag.Bool("latin1", false, "el archivo está en ISO-8859-1")
	flag.Parse()
	path := "seed.json"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir seed: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var r io.Reader = f
	if *latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	var data seedFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar seed: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración del esquema")
	}

	repos := postgres.NewRepos(pool)
	deps := inventory.Deps{Tx: postgres.NewTxRunner(pool, log), Repos: repos}
	stores := usecase.NewStoreUseCase(repos.Stores)
	products := usecase.NewProductUseCase(repos.Products, repos.Stores, repos.Stocks, repos.Reservations, nil)
	settings := inventory.NewSettingsUseCase(deps)
	ledger := inventory.NewLedgerUseCase(deps)

	for _, s := range data.Stores {
		if _, err := stores.Upsert(ctx, s); err != nil {
			log.Fatal().Err(err).Str("store_id", s.ID).Msg("tienda")
		}
	}
	for _, p := range data.Products {
		if err := products.Upsert(ctx, p); err != nil {
			log.Fatal().Err(err).Str("product_id", p.ID).Msg("producto")
		}
	}
	for _, t := range data.Thresholds {
		if _, err := settings.SetThresholds(ctx, t.ProductID, t.StoreID, t.MinStock, t.MaxStock); err != nil {
			log.Fatal().Err(err).Str("product_id", t.ProductID).Str("store_id", t.StoreID).Msg("umbrales")
		}
	}

	var loaded, skipped int
	for _, b := range data.Batches {
		if err := b.Validate(); err != nil {
			log.Fatal().Err(err).Str("batch_number", b.BatchNumber).Msg("lote inválido")
		}
		_, err := ledger.ReceiveBatch(ctx, b.ToInput("seed"))
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
		case err != nil:
			log.Fatal().Err(err).Str("batch_number", b.BatchNumber).Msg("lote")
		default:
			loaded++
		}
	}

	log.Info().
		Int("stores", len(data.Stores)).
		Int("products", len(data.Products)).
		Int("thresholds", len(data.Thresholds)).
		Int("batches", loaded).
		Int("batches_skipped", skipped).
		Msg("seed aplicado")
}
