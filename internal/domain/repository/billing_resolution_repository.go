package repository

import (
	"context"
	"time"

	"github.com/jhoicas/timbrado-api/internal/domain/entity"
)

// BillingResolutionRepository define el puerto de lectura de resoluciones DIAN.
type BillingResolutionRepository interface {
	// ListActive devuelve las resoluciones activas y vigentes en la fecha dada.
	// Lo esperado es exactamente una; el llamador decide qué hacer con 0 o más de 1.
	ListActive(ctx context.Context, on time.Time) ([]*entity.BillingResolution, error)
}
