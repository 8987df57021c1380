package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/timbrado-api/internal/application/billing"
	"github.com/jhoicas/timbrado-api/internal/application/dto"
	"github.com/jhoicas/timbrado-api/internal/domain"
)

// Stamper es lo que el handler necesita del orquestador de timbrado.
type Stamper interface {
	Stamp(ctx context.Context, tenant, rawID string, overrides dto.StampOverrides) (*dto.StampResult, error)
	Status(ctx context.Context, tenant, rawID string) (*dto.StampResult, error)
}

// StampHandler expone el timbrado de facturas.
type StampHandler struct {
	stamper Stamper
}

// NewStampHandler construye el handler.
func NewStampHandler(stamper Stamper) *StampHandler {
	return &StampHandler{stamper: stamper}
}

// Stamp godoc
// @Summary      Timbrar factura ante la autoridad tributaria
// @Description  Envía la factura y registra ACEPTADA (con CUFE) o RECHAZADA (con motivo). Un rechazo responde 200 con success=false.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true   "ID de la factura"
// @Param        body  body  dto.StampOverrides   false  "Valores que reemplazan los de la factura solo para este envío"
// @Success      200   {object}  dto.StampResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/stamp [post]
func (h *StampHandler) Stamp(c *fiber.Ctx) error {
	tenant := GetTenant(c)
	if tenant == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if _, err := billing.ParseInvoiceID(c.Params("id")); err != nil {
		return writeStampError(c, err)
	}
	overrides, err := decodeOverrides(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido: " + err.Error()})
	}
	res, err := h.stamper.Stamp(c.Context(), tenant, c.Params("id"), overrides)
	if err != nil {
		return writeStampError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// Status godoc
// @Summary      Estado de timbrado de una factura
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.StampResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/stamp [get]
func (h *StampHandler) Status(c *fiber.Ctx) error {
	tenant := GetTenant(c)
	if tenant == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	res, err := h.stamper.Status(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return writeStampError(c, err)
	}
	return c.JSON(res)
}

// decodeOverrides acepta cuerpo vacío. Los números JSON llegan como
// json.Number para no perder precisión antes de normalizarlos.
func decodeOverrides(body []byte) (dto.StampOverrides, error) {
	var in dto.StampOverrides
	if len(bytes.TrimSpace(body)) == 0 {
		return in, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return dto.StampOverrides{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return dto.StampOverrides{}, errors.New("contenido adicional después del objeto JSON")
	}
	return in, nil
}

func writeStampError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id de factura inválido"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "FACTURA_NOT_FOUND", Message: "factura no encontrada"})
	case errors.Is(err, domain.ErrStampInProgress):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STAMP_IN_PROGRESS", Message: "la factura ya se está timbrando, intente más tarde"})
	case errors.Is(err, domain.ErrAlreadyStamped):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_STAMPED", Message: "la factura ya fue aceptada"})
	case errors.Is(err, domain.ErrPersistence):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "UPDATE_FAILED", Message: "no se pudo registrar el resultado del timbrado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
