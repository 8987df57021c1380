package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/timbrado-api/internal/application/dto"
	"github.com/jhoicas/timbrado-api/pkg/jwt"
)

// Locals keys de la identidad en Fiber.
const (
	LocalUserID    = "user_id"
	LocalCompanyID = "company_id"
	LocalTenant    = "tenant"
	LocalRole      = "role"
)

// AuthMiddleware valida el Bearer Token JWT y deja la identidad en c.Locals.
// Un token sin tenant no sirve: el tenant selecciona la base de datos.
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
		if strings.TrimSpace(id.Tenant) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TENANT", Message: "el token no indica la empresa (tenant)"})
		}
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalCompanyID, id.CompanyID)
		c.Locals(LocalTenant, id.Tenant)
		c.Locals(LocalRole, id.Role)
		return c.Next()
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetCompanyID devuelve el CompanyID del contexto.
func GetCompanyID(c *fiber.Ctx) string { return localString(c, LocalCompanyID) }

// GetTenant devuelve el nombre de la base de datos de la empresa.
func GetTenant(c *fiber.Ctx) string { return localString(c, LocalTenant) }

// GetRole devuelve el rol del token (puede ser vacío).
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }
