package fiscal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notice() inventory.SaleNotice {
	return inventory.SaleNotice{
		MovementID: "mov-1",
		ProductID:  "P",
		StoreID:    "S",
		OrderID:    "POS-9",
		Quantity:   decimal.NewFromInt(2),
		TotalCost:  decimal.NewFromInt(14),
	}
}

func TestNotifySale_Aceptada(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sales", r.URL.Path)
		assert.Equal(t, "mov-1", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "Bearer secreto", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"accepted":true}`))
	}))
	defer srv.Close()

	n := NewHTTPNotifier(config.FiscalConfig{URL: srv.URL + "/", Token: "secreto", TimeoutSec: 2})
	require.NoError(t, n.NotifySale(context.Background(), notice()))
	assert.Equal(t, "2", got["quantity"])
	assert.Equal(t, "14", got["totalCost"])
	assert.Equal(t, "POS-9", got["orderId"])
}

func TestNotifySale_CuerpoVacioEsExito(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(config.FiscalConfig{URL: srv.URL})
	assert.NoError(t, n.NotifySale(context.Background(), notice()))
}

func TestNotifySale_Fallos(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"estado 503", http.StatusServiceUnavailable, "caído", "estado 503"},
		{"rechazo", http.StatusOK, `{"accepted":false,"errors":["NIT inválido","sin resolución"]}`, "NIT inválido; sin resolución"},
		{"json roto", http.StatusOK, `<html>`, "respuesta inesperada"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			err := NewHTTPNotifier(config.FiscalConfig{URL: srv.URL}).NotifySale(context.Background(), notice())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestNotifySale_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := NewHTTPNotifier(config.FiscalConfig{URL: srv.URL}).NotifySale(ctx, notice())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout o cancelación")
}
