package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/timbrado-api/internal/application/dto"
	"github.com/jhoicas/timbrado-api/internal/domain"
	"github.com/jhoicas/timbrado-api/internal/domain/entity"
	"github.com/jhoicas/timbrado-api/internal/domain/status"
	"github.com/jhoicas/timbrado-api/internal/infrastructure/taxauthority"
	"github.com/jhoicas/timbrado-api/pkg/logger"
)

const defaultSubmitTimeout = 30 * time.Second

// StampConfig parámetros del orquestador.
type StampConfig struct {
	Timeout        time.Duration // tope del intercambio con la autoridad (default 30 s)
	DefaultBaseURL string        // url_base cuando el tenant no la configura
}

// StampOrchestrator lleva una factura de su estado previo a APROBADA o RECHAZADA:
//
//	bloqueo → FOR UPDATE → resolución → parámetros → factura → documento → envío → update → commit
//
// Todo el intento corre en una transacción. No se escribe ningún estado intermedio:
// si el intento falla a nivel de sistema la factura queda como estaba.
type StampOrchestrator struct {
	tx        StampingTxRunner
	locker    InvoiceLocker
	submitter taxauthority.Submitter
	cfg       StampConfig
	log       *logger.Logger

	now func() time.Time
}

// NewStampOrchestrator construye el orquestador.
func NewStampOrchestrator(
	tx StampingTxRunner,
	locker InvoiceLocker,
	submitter taxauthority.Submitter,
	cfg StampConfig,
	log *logger.Logger,
) *StampOrchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSubmitTimeout
	}
	return &StampOrchestrator{
		tx:        tx,
		locker:    locker,
		submitter: submitter,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// ParseInvoiceID valida el identificador de ruta: entero positivo.
func ParseInvoiceID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidIdentifier, raw)
	}
	return id, nil
}

// Stamp ejecuta un intento de timbrado y devuelve la vista final de la factura.
// Un rechazo de la autoridad no es error: viaja en el resultado con Success=false.
func (o *StampOrchestrator) Stamp(ctx context.Context, tenant, rawID string, overrides dto.StampOverrides) (*dto.StampResult, error) {
	id, err := ParseInvoiceID(rawID)
	if err != nil {
		return nil, err
	}
	if err := ValidateOverrides(overrides); err != nil {
		return nil, err
	}
	log := o.log.With().Str("tenant", tenant).Int64("invoice_id", id).Logger()

	key := lockKey(tenant, id)
	token, ok, err := o.locker.Acquire(ctx, key)
	if err != nil {
		log.Error().Err(err).Str("step", "lock").Msg("no se pudo adquirir el bloqueo")
		return nil, fmt.Errorf("%w: bloqueo de factura: %v", domain.ErrInternal, err)
	}
	if !ok {
		log.Warn().Str("step", "lock").Msg("timbrado en curso para la factura")
		return nil, domain.ErrStampInProgress
	}

	// El intento termina aunque el llamador se vaya.
	work := context.WithoutCancel(ctx)
	defer func() {
		if err := o.locker.Release(work, key, token); err != nil {
			log.Warn().Err(err).Str("step", "unlock").Msg("no se pudo liberar el bloqueo")
		}
	}()

	var view *entity.Invoice
	err = o.tx.RunStamping(work, tenant, func(repos StampingRepos) (txErr error) {
		defer func() {
			if r := recover(); r != nil {
				txErr = fmt.Errorf("%w: panic: %v", domain.ErrInternal, r)
			}
		}()

		// ═══ 1. Bloquear la fila ═══
		inv, err := repos.Invoices.GetByIDForUpdate(work, id)
		if err != nil {
			return fmt.Errorf("%w: cargar factura: %v", domain.ErrInternal, err)
		}
		if inv == nil {
			return domain.ErrInvoiceNotFound
		}
		if inv.IsStamped() {
			return domain.ErrAlreadyStamped
		}

		// ═══ 2. Envío a la autoridad ═══
		outcome, err := o.submit(work, log, repos, id, overrides)
		if err != nil {
			return err
		}

		// ═══ 3. Estado final en la misma transacción ═══
		outcome.Apply(inv, o.now())
		if err := repos.Invoices.UpdateStampOutcome(work, inv); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		fresh, err := repos.Invoices.GetByID(work, id)
		if err != nil {
			return fmt.Errorf("%w: releer factura: %v", domain.ErrPersistence, err)
		}
		if fresh == nil {
			return fmt.Errorf("%w: la factura %d desapareció tras actualizarla", domain.ErrPersistence, id)
		}
		view = fresh
		return nil
	})
	if err != nil {
		err = classify(err)
		if errors.Is(err, domain.ErrInternal) || errors.Is(err, domain.ErrPersistence) {
			log.Error().Err(err).Str("step", "commit").Msg("intento de timbrado abortado")
		} else {
			log.Info().Err(err).Str("step", "load").Msg("timbrado no ejecutado")
		}
		return nil, err
	}

	res := toStampResult(view)
	log.Info().Str("step", "done").Str("estado", res.Data.Estado).Msg("timbrado finalizado")
	return res, nil
}

// submit corre el pipeline del cliente de envío. Cualquier fallo del pipeline es
// un rechazo; el error sólo se usa para fallas de sistema (panics).
func (o *StampOrchestrator) submit(
	ctx context.Context,
	log zerolog.Logger,
	repos StampingRepos,
	id int64,
	overrides dto.StampOverrides,
) (out SubmissionOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic en envío: %v", domain.ErrInternal, r)
		}
	}()

	client := NewSubmissionClient(repos.Invoices, repos.Resolutions, repos.Settings, o.submitter, o.cfg.DefaultBaseURL)
	client.now = o.now

	reject := func(step string, err error) (SubmissionOutcome, error) {
		log.Warn().Err(err).Str("step", step).Msg("factura rechazada")
		return Rejected(err.Error()), nil
	}

	resolution, err := client.GetActiveResolution(ctx)
	if err != nil {
		return reject("resolution", err)
	}
	params, err := client.GetSubmissionParameters(ctx)
	if err != nil {
		return reject("parameters", err)
	}
	agg, err := client.GetFullInvoice(ctx, id)
	if err != nil {
		return reject("invoice", err)
	}
	payload, err := client.Transform(agg, resolution, params, overrides)
	if err != nil {
		return reject("transform", err)
	}

	netCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()
	log.Debug().Str("step", "submit").Str("ref", payload.CodigoReferencia).Msg("enviando a la autoridad tributaria")
	result, err := client.Submit(netCtx, payload, params.TestSetID, params.BaseURL)
	if err != nil {
		return reject("submit", err)
	}

	out = OutcomeFromResult(result)
	if out.IsAccepted() {
		log.Info().Str("step", "submit").Str("cufe", out.CUFE).Msg("factura aceptada")
	} else {
		log.Warn().Str("step", "submit").Str("motivo", out.Reason).Int("status_code", result.StatusCode).Msg("factura rechazada")
	}
	return out, nil
}

// Status devuelve la vista de timbrado sin modificar la factura.
func (o *StampOrchestrator) Status(ctx context.Context, tenant, rawID string) (*dto.StampResult, error) {
	id, err := ParseInvoiceID(rawID)
	if err != nil {
		return nil, err
	}
	var view *entity.Invoice
	err = o.tx.RunStamping(ctx, tenant, func(repos StampingRepos) error {
		inv, err := repos.Invoices.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("%w: cargar factura: %v", domain.ErrInternal, err)
		}
		if inv == nil {
			return domain.ErrInvoiceNotFound
		}
		view = inv
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return toStampResult(view), nil
}

// classify deja pasar los errores conocidos y envuelve el resto en ErrInternal.
func classify(err error) error {
	for _, known := range []error{
		domain.ErrInvoiceNotFound,
		domain.ErrAlreadyStamped,
		domain.ErrPersistence,
		domain.ErrInternal,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrInternal, err)
}

func lockKey(tenant string, id int64) string {
	return "timbrado:" + tenant + ":" + strconv.FormatInt(id, 10)
}

func toStampResult(inv *entity.Invoice) *dto.StampResult {
	data := dto.StampDataView{
		ID:            strconv.FormatInt(inv.ID, 10),
		NumeroFactura: inv.Number(),
		Estado:        status.FromCode(inv.StatusCode),
	}
	if inv.CUFE != "" {
		cufe := inv.CUFE
		data.CUFE = &cufe
	}
	if inv.StampedAt != nil {
		ts := inv.StampedAt.Format(time.RFC3339)
		data.FechaTimbrado = &ts
	}
	if inv.RejectionReason != "" {
		reason := inv.RejectionReason
		data.MotivoRechazo = &reason
	}

	res := &dto.StampResult{Data: data}
	state, _ := inv.State()
	switch state {
	case status.Approved:
		res.Success = true
		res.Status = status.Accepted.String()
		res.Message = "Factura " + data.NumeroFactura + " aceptada por la autoridad tributaria"
	case status.Rejected:
		res.Status = status.Rejected.String()
		res.Message = "Factura " + data.NumeroFactura + " rechazada: " + inv.RejectionReason
	default:
		res.Status = "PENDIENTE"
		res.Message = "Factura " + data.NumeroFactura + " sin timbrar"
	}
	return res
}
