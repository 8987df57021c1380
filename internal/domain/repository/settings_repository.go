package repository

import "context"

// SettingsRepository lee la configuración clave/valor de facturación electrónica.
type SettingsRepository interface {
	GetBillingSettings(ctx context.Context) (map[string]string, error)
}
