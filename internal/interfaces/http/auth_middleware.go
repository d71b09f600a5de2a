package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/pkg/jwt"
)

// Locals keys del operador autenticado en Fiber.
const (
	LocalUserID  = "user_id"
	LocalStoreID = "store_id"
	LocalRole    = "role"
)

// Roles del panel.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID, StoreID y Role a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		id, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalStoreID, id.StoreID)
		c.Locals(LocalRole, id.Role)
		return c.Next()
	}
}

// RequireRole deja pasar solo a los roles indicados. Usar después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no trae rol"})
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetStoreID devuelve la tienda del operador; vacío = todas.
func GetStoreID(c *fiber.Ctx) string { return localString(c, LocalStoreID) }

// GetRole devuelve el rol del operador.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

// checkStore rechaza operar sobre una tienda ajena cuando el token está atado a una.
func checkStore(c *fiber.Ctx, storeIDs ...string) error {
	own := GetStoreID(c)
	if own == "" {
		return nil
	}
	for _, id := range storeIDs {
		if id != "" && id != own {
			return errForbidden
		}
	}
	return nil
}

// scopedStore devuelve la tienda pedida o, si viene vacía, la del token.
func scopedStore(c *fiber.Ctx, requested string) (string, error) {
	if requested == "" {
		return GetStoreID(c), nil
	}
	return requested, checkStore(c, requested)
}
