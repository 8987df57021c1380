package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/timbrado-api/internal/application/billing"
	"github.com/jhoicas/timbrado-api/internal/domain"
)

var _ billing.StampingTxRunner = (*TxRunner)(nil)

// PoolProvider resuelve el pool de un tenant (TenantPools en producción).
type PoolProvider interface {
	Pool(ctx context.Context, tenant string) (TxBeginner, error)
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL del tenant.
type TxRunner struct {
	pools PoolProvider
}

// NewTxRunner construye el runner.
func NewTxRunner(pools PoolProvider) *TxRunner {
	return &TxRunner{pools: pools}
}

// RunStamping inicia la transacción, ejecuta fn con repos atados a ella y hace
// Commit o Rollback. Un fallo al abrir es ErrInternal; un fallo de commit es
// ErrPersistence.
func (r *TxRunner) RunStamping(ctx context.Context, tenant string, fn func(repos billing.StampingRepos) error) error {
	pool, err := r.pools.Pool(ctx, tenant)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", domain.ErrInternal, err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	repos := billing.StampingRepos{
		Invoices:    NewInvoiceRepository(tx),
		Resolutions: NewBillingResolutionRepository(tx),
		Settings:    NewSettingsRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit transaction: %v", domain.ErrPersistence, err)
	}
	return nil
}
