package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/timbrado-api/internal/domain"
	"github.com/jhoicas/timbrado-api/internal/domain/entity"
	"github.com/jhoicas/timbrado-api/internal/domain/repository"
	"github.com/jhoicas/timbrado-api/internal/infrastructure/taxauthority"
)

// SubmissionClient arma y envía el documento a la autoridad tributaria.
// Sólo lee del almacén (repos de la transacción del intento); nunca escribe.
type SubmissionClient struct {
	invoices       repository.InvoiceReader
	resolutions    repository.BillingResolutionRepository
	settings       repository.SettingsRepository
	submitter      taxauthority.Submitter
	defaultBaseURL string

	now    func() time.Time
	newRef func() string
}

// NewSubmissionClient construye el cliente. defaultBaseURL se usa cuando la
// tabla de configuración del tenant no define url_base.
func NewSubmissionClient(
	invoices repository.InvoiceReader,
	resolutions repository.BillingResolutionRepository,
	settings repository.SettingsRepository,
	submitter taxauthority.Submitter,
	defaultBaseURL string,
) *SubmissionClient {
	return &SubmissionClient{
		invoices:       invoices,
		resolutions:    resolutions,
		settings:       settings,
		submitter:      submitter,
		defaultBaseURL: defaultBaseURL,
		now:            time.Now,
		newRef:         func() string { return uuid.NewString() },
	}
}

// GetActiveResolution devuelve la única resolución activa y vigente hoy.
func (c *SubmissionClient) GetActiveResolution(ctx context.Context) (*entity.BillingResolution, error) {
	list, err := c.resolutions.ListActive(ctx, c.now())
	if err != nil {
		return nil, fmt.Errorf("consultar resolución activa: %w", err)
	}
	switch len(list) {
	case 0:
		return nil, domain.ErrNoActiveResolution
	case 1:
		return list[0], nil
	default:
		return nil, fmt.Errorf("%w: hay %d resoluciones activas y vigentes", domain.ErrNoActiveResolution, len(list))
	}
}

// GetSubmissionParameters lee configuracion_facturacion y valida las claves requeridas.
func (c *SubmissionClient) GetSubmissionParameters(ctx context.Context) (*entity.SubmissionParameters, error) {
	kv, err := c.settings.GetBillingSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("consultar configuración de facturación: %w", err)
	}
	get := func(key string) string { return strings.TrimSpace(kv[key]) }

	p := &entity.SubmissionParameters{
		BaseURL:     get(entity.ParamBaseURL),
		TestSetID:   get(entity.ParamTestSetID),
		APIToken:    get(entity.ParamAPIToken),
		SoftwareID:  get(entity.ParamSoftwareID),
		IssuerNIT:   get(entity.ParamIssuerNIT),
		IssuerName:  get(entity.ParamIssuerName),
		Environment: get(entity.ParamEnvironment),
	}
	if p.BaseURL == "" {
		p.BaseURL = strings.TrimSpace(c.defaultBaseURL)
	}
	if p.Environment == "" {
		p.Environment = entity.EnvironmentTest
	}
	if p.Environment != entity.EnvironmentProduction && p.Environment != entity.EnvironmentTest {
		return nil, fmt.Errorf("%w: %s=%q (use 1 o 2)", domain.ErrConfigurationMissing, entity.ParamEnvironment, p.Environment)
	}

	var missing []string
	for _, f := range []struct {
		key, val string
	}{
		{entity.ParamBaseURL, p.BaseURL},
		{entity.ParamAPIToken, p.APIToken},
		{entity.ParamSoftwareID, p.SoftwareID},
		{entity.ParamIssuerNIT, p.IssuerNIT},
		{entity.ParamIssuerName, p.IssuerName},
	} {
		if f.val == "" {
			missing = append(missing, f.key)
		}
	}
	if p.IsTest() && p.TestSetID == "" {
		missing = append(missing, entity.ParamTestSetID)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigurationMissing, strings.Join(missing, ", "))
	}
	return p, nil
}

// GetFullInvoice carga cabecera, líneas y comprador (con su municipio).
func (c *SubmissionClient) GetFullInvoice(ctx context.Context, id int64) (*entity.InvoiceAggregate, error) {
	inv, err := c.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("consultar factura %d: %w", id, err)
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	lines, err := c.invoices.GetLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("consultar líneas de la factura %d: %w", id, err)
	}
	buyer, err := c.invoices.GetBuyer(ctx, inv.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("consultar cliente %d: %w", inv.CustomerID, err)
	}
	if buyer == nil {
		return nil, fmt.Errorf("%w: cliente %d de la factura %d", domain.ErrNotFound, inv.CustomerID, id)
	}
	return &entity.InvoiceAggregate{Invoice: inv, Lines: lines, Buyer: buyer}, nil
}

// Submit hace el único intento de envío.
func (c *SubmissionClient) Submit(ctx context.Context, payload *taxauthority.Payload, testSetID, baseURL string) (*taxauthority.Result, error) {
	return c.submitter.Submit(ctx, payload, testSetID, baseURL)
}
