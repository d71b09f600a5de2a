package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestPublisher_Subject(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "inventory", logger.Nop())

	p.Publish(context.Background(), inventory.Event{
		Type:          inventory.EventReservationCreated,
		ProductID:     "P",
		StoreID:       "S",
		ReservationID: "R1",
		Quantity:      decimal.NewFromInt(3),
		OccurredAt:    time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
	})

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "inventory.reservation.created", conn.subjects[0])
	var body map[string]any
	require.NoError(t, json.Unmarshal(conn.payloads[0], &body))
	assert.Equal(t, "R1", body["reservationId"])
	assert.Equal(t, "3", body["quantity"])
}

func TestPublisher_SinPrefijo(t *testing.T) {
	p := NewPublisher(&fakeConn{}, "", logger.Nop())
	assert.Equal(t, "stock.low", p.Subject(inventory.EventStockLow))
}

func TestPublisher_ErrorNoPropaga(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	p := NewPublisher(conn, "inventory", logger.Nop())
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), inventory.Event{Type: inventory.EventMovementRecorded})
	})
}
