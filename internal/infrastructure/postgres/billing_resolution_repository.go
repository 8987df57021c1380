package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/timbrado-api/internal/domain/entity"
	"github.com/jhoicas/timbrado-api/internal/domain/repository"
)

var _ repository.BillingResolutionRepository = (*BillingResolutionRepo)(nil)

// BillingResolutionRepo implementa BillingResolutionRepository sobre PostgreSQL.
type BillingResolutionRepo struct {
	q Querier
}

// NewBillingResolutionRepository construye el repositorio.
func NewBillingResolutionRepository(q Querier) *BillingResolutionRepo {
	return &BillingResolutionRepo{q: q}
}

// ListActive es la consulta crítica del timbrado: resoluciones activas cuya
// vigencia incluye el día dado.
func (r *BillingResolutionRepo) ListActive(ctx context.Context, on time.Time) ([]*entity.BillingResolution, error) {
	const q = `
		SELECT id, numero, prefijo, desde, hasta, clave_tecnica, fecha_desde, fecha_hasta, activa
		FROM resoluciones
		WHERE activa = true
		  AND fecha_desde <= $1
		  AND fecha_hasta >= $1
		ORDER BY fecha_desde DESC`
	day := time.Date(on.Year(), on.Month(), on.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := r.q.Query(ctx, q, day)
	if err != nil {
		return nil, fmt.Errorf("list resoluciones: %w", err)
	}
	defer rows.Close()
	var list []*entity.BillingResolution
	for rows.Next() {
		res, err := scanResolution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resolucion: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

func scanResolution(row pgxScanner) (*entity.BillingResolution, error) {
	var res entity.BillingResolution
	var technicalKey *string
	err := row.Scan(
		&res.ID, &res.ResolutionNumber, &res.Prefix,
		&res.RangeFrom, &res.RangeTo, &technicalKey,
		&res.DateFrom, &res.DateTo, &res.IsActive,
	)
	if err != nil {
		return nil, err
	}
	res.TechnicalKey = derefString(technicalKey)
	return &res, nil
}
