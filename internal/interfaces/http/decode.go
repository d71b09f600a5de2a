package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// validatable lo cumplen los DTO de entrada.
type validatable interface {
	Validate() error
}

// decodeStrict decodifica el body rechazando campos desconocidos y datos sobrantes,
// y valida el DTO. Un body vacío se acepta si allowEmpty.
func decodeStrict(c *fiber.Ctx, v validatable, allowEmpty bool) error {
	if err := decodeBody(c, v, allowEmpty); err != nil {
		return err
	}
	return v.Validate()
}

// decodeBody solo decodifica; para DTO que completan campos desde la ruta antes de validar.
func decodeBody(c *fiber.Ctx, v any, allowEmpty bool) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		if !allowEmpty {
			return fmt.Errorf("%w: body vacío", errInvalidBody)
		}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: datos después del objeto JSON", errInvalidBody)
	}
	return nil
}

func queryDecimal(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.Validation("%s no es un número", name)
	}
	return &d, nil
}

func queryInt(c *fiber.Ctx, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.Validation("%s no es un entero", name)
	}
	return &n, nil
}

// queryTime acepta RFC3339 o fecha YYYY-MM-DD (inicio del día en UTC).
func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	t, _, err := parseQueryTime(c, name)
	return t, err
}

// queryUntil como queryTime, pero una fecha YYYY-MM-DD cubre el día completo.
func queryUntil(c *fiber.Ctx, name string) (*time.Time, error) {
	t, dateOnly, err := parseQueryTime(c, name)
	if err != nil || t == nil || !dateOnly {
		return t, err
	}
	end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return &end, nil
}

func parseQueryTime(c *fiber.Ctx, name string) (*time.Time, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, false, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, false, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return &t, true, nil
	}
	return nil, false, domain.Validation("%s no es una fecha válida", name)
}
