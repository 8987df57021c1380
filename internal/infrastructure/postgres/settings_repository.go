package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/timbrado-api/internal/domain/repository"
)

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo lee configuracion_facturacion (clave/valor).
type SettingsRepo struct {
	q Querier
}

// NewSettingsRepository construye el repositorio.
func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

// GetBillingSettings devuelve todas las claves; los valores NULL quedan vacíos.
func (r *SettingsRepo) GetBillingSettings(ctx context.Context) (map[string]string, error) {
	rows, err := r.q.Query(ctx, `SELECT clave, valor FROM configuracion_facturacion`)
	if err != nil {
		return nil, fmt.Errorf("list configuracion_facturacion: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var key string
		var value *string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan configuracion_facturacion: %w", err)
		}
		out[key] = derefString(value)
	}
	return out, rows.Err()
}
