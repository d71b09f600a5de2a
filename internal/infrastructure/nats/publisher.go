// Package nats publica los eventos de inventario en NATS.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
	natsgo "github.com/nats-io/nats.go"
)

var _ inventory.EventPublisher = (*Publisher)(nil)

// Conn lo que el publicador necesita de una conexión NATS.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher envía cada evento a <prefijo>.<tipo>. Los errores se registran y no se propagan.
type Publisher struct {
	conn   Conn
	prefix string
	log    *logger.Logger
}

// NewPublisher construye el publicador.
func NewPublisher(conn Conn, prefix string, log *logger.Logger) *Publisher {
	return &Publisher{conn: conn, prefix: prefix, log: log.Component("events")}
}

// Connect abre la conexión con reconexión automática.
func Connect(cfg config.NATSConfig, log *logger.Logger) (*natsgo.Conn, error) {
	nc, err := natsgo.Connect(cfg.URL,
		natsgo.Name("inventory-ledger"),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats desconectado")
			}
		}),
		natsgo.ReconnectHandler(func(c *natsgo.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconectado")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

// Subject devuelve el asunto de un tipo de evento.
func (p *Publisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

// Publish serializa y publica el evento.
func (p *Publisher) Publish(_ context.Context, e inventory.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		p.log.Warn().Err(err).Str("type", e.Type).Msg("evento no serializable")
		return
	}
	if err := p.conn.Publish(p.Subject(e.Type), data); err != nil {
		p.log.Warn().Err(err).Str("type", e.Type).Str("product_id", e.ProductID).Msg("no se pudo publicar el evento")
	}
}
