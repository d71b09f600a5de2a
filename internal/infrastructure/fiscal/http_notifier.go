package fiscal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/shopspring/decimal"
)

const (
	notifyPath      = "/sales"
	defaultTimeout  = 15 * time.Second
	maxResponseBody = 1 << 20 // 1 MB
)

// saleRequest cuerpo enviado al emisor fiscal por cada venta de mostrador.
type saleRequest struct {
	MovementID string          `json:"movementId"`
	ProductID  string          `json:"productId"`
	StoreID    string          `json:"storeId"`
	OrderID    string          `json:"orderId,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	TotalCost  decimal.Decimal `json:"totalCost"`
}

// saleResponse respuesta del emisor. accepted=false con errors es un rechazo de negocio.
type saleResponse struct {
	Accepted bool     `json:"accepted"`
	Errors   []string `json:"errors"`
}

// HTTPNotifier implementa inventory.FiscalNotifier contra el API REST del emisor.
type HTTPNotifier struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

var _ inventory.FiscalNotifier = (*HTTPNotifier)(nil)

// NewHTTPNotifier construye el cliente. Sin timeout configurado usa 15 s.
func NewHTTPNotifier(cfg config.FiscalConfig) *HTTPNotifier {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPNotifier{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
	}
}

// NotifySale informa la baja de stock. Cualquier error de red, estado no 2xx o rechazo
// se devuelve para que el caso de uso lo marque como dependencia externa.
func (n *HTTPNotifier) NotifySale(ctx context.Context, s inventory.SaleNotice) error {
	payload, err := json.Marshal(saleRequest{
		MovementID: s.MovementID,
		ProductID:  s.ProductID,
		StoreID:    s.StoreID,
		OrderID:    s.OrderID,
		Quantity:   s.Quantity,
		TotalCost:  s.TotalCost,
	})
	if err != nil {
		return fmt.Errorf("fiscal: serializar venta: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+notifyPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("fiscal: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Idempotencia del lado del emisor: reintentos con el mismo movimiento no duplican documentos.
	req.Header.Set("Idempotency-Key", s.MovementID)
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("fiscal: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("fiscal: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("fiscal: leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fiscal: estado %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var out saleResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("fiscal: respuesta inesperada: %s", string(raw))
	}
	if !out.Accepted {
		return fmt.Errorf("fiscal: venta rechazada: %s", strings.Join(out.Errors, "; "))
	}
	return nil
}
