package billing

import (
	"context"

	"github.com/jhoicas/timbrado-api/internal/domain/repository"
)

// StampingRepos repositorios atados a la transacción de un intento de timbrado.
type StampingRepos struct {
	Invoices    repository.InvoiceRepository
	Resolutions repository.BillingResolutionRepository
	Settings    repository.SettingsRepository
}

// StampingTxRunner ejecuta fn dentro de una transacción sobre la base del tenant.
// Si fn retorna error (o el commit falla) se hace rollback. Un fallo de commit
// se devuelve envolviendo domain.ErrPersistence.
type StampingTxRunner interface {
	RunStamping(ctx context.Context, tenant string, fn func(repos StampingRepos) error) error
}

// InvoiceLocker bloqueo por factura entre instancias del servicio.
// Acquire no espera: ok=false si otro proceso tiene el bloqueo.
type InvoiceLocker interface {
	Acquire(ctx context.Context, key string) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}
