package http

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	infraredis "github.com/jhoicas/inventory-ledger/internal/infrastructure/redis"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// APIKeyHeader cabecera con la clave opaca del canal.
const APIKeyHeader = "X-API-Key"

// LocalChannel identificador del canal autenticado (huella de su clave).
const LocalChannel = "channel"

// RateLimiter limitador por clave; *redis.RateLimiter lo cumple.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (infraredis.Decision, error)
}

// APIKeyMiddleware valida X-API-Key contra las claves configuradas en tiempo constante.
func APIKeyMiddleware(keys []string, log *logger.Logger) fiber.Handler {
	valid := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			valid = append(valid, []byte(k))
		}
	}
	return func(c *fiber.Ctx) error {
		given := []byte(c.Get(APIKeyHeader))
		if len(given) == 0 {
			return publicError(c, log, domain.ErrUnauthorized)
		}
		ok := 0
		for _, k := range valid {
			ok |= subtle.ConstantTimeCompare(given, k)
		}
		if ok != 1 {
			return publicError(c, log, domain.ErrUnauthorized)
		}
		c.Locals(LocalChannel, ChannelID(string(given)))
		return c.Next()
	}
}

// ChannelID huella de la clave: 8 dígitos hex de su SHA-256. Nunca se guarda la clave.
func ChannelID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}

// GetChannel devuelve el canal de la petición pública.
func GetChannel(c *fiber.Ctx) string { return localString(c, LocalChannel) }

// RateLimitMiddleware aplica el límite por canal. Si Redis falla deja pasar y lo registra.
func RateLimitMiddleware(l RateLimiter, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l == nil {
			return c.Next()
		}
		d, err := l.Allow(c.Context(), GetChannel(c))
		if err != nil {
			log.Warn().Err(err).Str("channel", GetChannel(c)).Msg("limitador no disponible")
			return c.Next()
		}
		if d.Remaining >= 0 {
			c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		}
		if !d.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(d.ResetIn.Seconds())+1))
			return publicError(c, log, domain.ErrRateLimited)
		}
		return c.Next()
	}
}
