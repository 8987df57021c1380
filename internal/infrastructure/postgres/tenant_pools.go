package postgres

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/timbrado-api/internal/domain"
)

// tenantName nombre de base de datos aceptado como tenant.
var tenantName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// OpenFunc abre el pool de un tenant.
type OpenFunc func(ctx context.Context, tenant string) (*pgxpool.Pool, error)

// TenantPools mantiene un pool por tenant (una base de datos por empresa),
// abierto en el primer uso.
type TenantPools struct {
	mu      sync.Mutex
	pools   map[string]*pgxpool.Pool
	open    OpenFunc
	allowed map[string]bool // vacío = cualquier nombre válido
}

// NewTenantPools construye el registro. allowed restringe los tenants aceptados.
func NewTenantPools(open OpenFunc, allowed []string) *TenantPools {
	tp := &TenantPools{pools: make(map[string]*pgxpool.Pool), open: open}
	if len(allowed) > 0 {
		tp.allowed = make(map[string]bool, len(allowed))
		for _, a := range allowed {
			tp.allowed[a] = true
		}
	}
	return tp
}

// Pool devuelve el pool del tenant, abriéndolo si hace falta.
func (t *TenantPools) Pool(ctx context.Context, tenant string) (TxBeginner, error) {
	if err := t.validate(tenant); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.pools[tenant]; ok {
		return p, nil
	}
	p, err := t.open(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("abrir base del tenant %s: %w", tenant, err)
	}
	t.pools[tenant] = p
	return p, nil
}

func (t *TenantPools) validate(tenant string) error {
	if !tenantName.MatchString(tenant) {
		return fmt.Errorf("%w: tenant %q", domain.ErrUnauthorized, tenant)
	}
	if t.allowed != nil && !t.allowed[tenant] {
		return fmt.Errorf("%w: tenant %q no habilitado", domain.ErrUnauthorized, tenant)
	}
	return nil
}

// Close cierra todos los pools abiertos.
func (t *TenantPools) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, p := range t.pools {
		p.Close()
		delete(t.pools, name)
	}
}
