package billing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/timbrado-api/internal/application/dto"
	"github.com/jhoicas/timbrado-api/internal/domain"
	"github.com/jhoicas/timbrado-api/internal/domain/entity"
	"github.com/jhoicas/timbrado-api/internal/infrastructure/taxauthority"
	"github.com/jhoicas/timbrado-api/pkg/amount"
	pkgdian "github.com/jhoicas/timbrado-api/pkg/dian"
)

const dateLayout = "2006-01-02"

// Transform arma el documento de la autoridad a partir de la factura, la
// resolución y los parámetros. Los overrides se aplican sobre copias: la
// factura cargada no cambia. Todos los montos pasan por pkg/amount.
func (c *SubmissionClient) Transform(
	agg *entity.InvoiceAggregate,
	res *entity.BillingResolution,
	params *entity.SubmissionParameters,
	overrides dto.StampOverrides,
) (*taxauthority.Payload, error) {
	if agg == nil || agg.Invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	if res == nil {
		return nil, domain.ErrNoActiveResolution
	}
	if params == nil {
		return nil, domain.ErrConfigurationMissing
	}
	inv := *agg.Invoice
	var buyer entity.Customer
	if agg.Buyer != nil {
		buyer = *agg.Buyer
	}

	if err := applyOverrides(&inv, &buyer, overrides); err != nil {
		return nil, err
	}

	totals, err := normalizeTotals(&inv)
	if err != nil {
		return nil, err
	}

	if len(agg.Lines) == 0 {
		return nil, fmt.Errorf("%w: la factura %d no tiene líneas", domain.ErrInvalidInput, inv.ID)
	}
	items := make([]taxauthority.Item, 0, len(agg.Lines))
	for i, l := range agg.Lines {
		item, err := toItem(i+1, l)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	// Numeración autorizada.
	prefix := strings.TrimSpace(inv.Prefix)
	if prefix == "" {
		prefix = res.Prefix
	}
	if !strings.EqualFold(prefix, res.Prefix) {
		return nil, fmt.Errorf("%w: prefijo %q no corresponde a la resolución %s (%q)", domain.ErrInvalidInput, prefix, res.ResolutionNumber, res.Prefix)
	}
	if !res.Covers(inv.Consecutive) {
		return nil, fmt.Errorf("%w: número %d fuera del rango autorizado %d-%d", domain.ErrInvalidInput, inv.Consecutive, res.RangeFrom, res.RangeTo)
	}
	if !res.ValidOn(inv.IssueDate) {
		return nil, fmt.Errorf("%w: fecha de emisión %s fuera de la vigencia de la resolución (%s a %s)", domain.ErrInvalidInput,
			inv.IssueDate.Format(dateLayout), res.DateFrom.Format(dateLayout), res.DateTo.Format(dateLayout))
	}

	issuer, err := issuerParty(params)
	if err != nil {
		return nil, err
	}
	client, err := buyerParty(&buyer)
	if err != nil {
		return nil, err
	}

	paymentForm := inv.PaymentForm
	if paymentForm == "" {
		paymentForm = pkgdian.PaymentFormContado
	}
	paymentMethod := inv.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = pkgdian.PaymentMethodInstrumentoNoDefinido
	}

	p := &taxauthority.Payload{
		CodigoReferencia: c.newRef(),
		TipoDocumento:    pkgdian.DocumentTypeFacturaVenta,
		Ambiente:         params.Environment,
		SoftwareID:       params.SoftwareID,
		Prefijo:          prefix,
		Numero:           inv.Consecutive,
		FechaEmision:     inv.IssueDate.Format(dateLayout),
		FormaPago:        paymentForm,
		MedioPago:        paymentMethod,
		Observaciones:    strings.TrimSpace(inv.Notes),
		Resolucion: taxauthority.Resolucion{
			Numero:       res.ResolutionNumber,
			Prefijo:      res.Prefix,
			Desde:        res.RangeFrom,
			Hasta:        res.RangeTo,
			FechaDesde:   res.DateFrom.Format(dateLayout),
			FechaHasta:   res.DateTo.Format(dateLayout),
			ClaveTecnica: res.TechnicalKey,
		},
		Emisor:  issuer,
		Cliente: client,
		Items:   items,
		Totales: totals,
		Token:   params.APIToken,
	}
	if inv.DueDate != nil {
		p.FechaVencimiento = inv.DueDate.Format(dateLayout)
	}
	return p, nil
}

// ValidateOverrides revisa el formato de los overrides sin cargar la factura.
func ValidateOverrides(o dto.StampOverrides) error {
	return applyOverrides(&entity.Invoice{}, &entity.Customer{}, o)
}

func applyOverrides(inv *entity.Invoice, buyer *entity.Customer, o dto.StampOverrides) error {
	if o.FechaEmision != nil {
		t, err := parseDate("fechaEmision", *o.FechaEmision)
		if err != nil {
			return err
		}
		inv.IssueDate = t
	}
	if o.FechaVencimiento != nil {
		t, err := parseDate("fechaVencimiento", *o.FechaVencimiento)
		if err != nil {
			return err
		}
		inv.DueDate = &t
	}
	if o.FormaPago != nil {
		v := strings.TrimSpace(*o.FormaPago)
		if !pkgdian.ValidPaymentForms[v] {
			return fmt.Errorf("%w: formaPago %q no válida", domain.ErrInvalidInput, v)
		}
		inv.PaymentForm = v
	}
	if o.MedioPago != nil {
		v := strings.ToUpper(strings.TrimSpace(*o.MedioPago))
		if !pkgdian.ValidPaymentMethods[v] {
			return fmt.Errorf("%w: medioPago %q no válido", domain.ErrInvalidInput, v)
		}
		inv.PaymentMethod = v
	}
	if o.Observaciones != nil {
		inv.Notes = *o.Observaciones
	}
	if o.CorreoCliente != nil {
		buyer.Email = strings.TrimSpace(*o.CorreoCliente)
	}

	for _, m := range []struct {
		field string
		value any
		dst   *decimal.Decimal
	}{
		{"subtotal", o.Subtotal, &inv.Subtotal},
		{"impuesto", o.Impuesto, &inv.TaxTotal},
		{"descuento", o.Descuento, &inv.DiscountTotal},
		{"total", o.Total, &inv.GrandTotal},
	} {
		if m.value == nil {
			continue
		}
		d, err := amount.NormalizeAmount(m.value, m.field)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		*m.dst = d
	}
	return nil
}

func normalizeTotals(inv *entity.Invoice) (taxauthority.Totales, error) {
	var t taxauthority.Totales
	for _, m := range []struct {
		field string
		src   decimal.Decimal
		dst   *decimal.Decimal
	}{
		{"subtotal", inv.Subtotal, &t.Subtotal},
		{"impuesto", inv.TaxTotal, &t.Impuestos},
		{"descuento", inv.DiscountTotal, &t.Descuento},
		{"total", inv.GrandTotal, &t.Total},
	} {
		d, err := amount.NormalizeAmount(m.src, m.field)
		if err != nil {
			return t, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		*m.dst = d
	}
	if t.Total.IsNegative() {
		return t, fmt.Errorf("%w: total negativo %s", domain.ErrInvalidInput, t.Total.StringFixed(2))
	}
	return t, nil
}

func toItem(n int, l *entity.InvoiceLine) (taxauthority.Item, error) {
	var it taxauthority.Item
	if l == nil {
		return it, fmt.Errorf("%w: línea %d vacía", domain.ErrInvalidInput, n)
	}
	wrap := func(err error) error {
		return fmt.Errorf("%w: línea %d: %v", domain.ErrInvalidInput, n, err)
	}

	var err error
	if it.Cantidad, err = amount.NormalizeAmount(l.Quantity, "cantidad"); err != nil {
		return it, wrap(err)
	}
	if !it.Cantidad.IsPositive() {
		return it, wrap(errors.New("cantidad debe ser mayor a cero"))
	}
	if it.PrecioUnitario, err = amount.NormalizeAmount(l.UnitPrice, "precio_unitario"); err != nil {
		return it, wrap(err)
	}
	if it.PorcentajeDescuento, err = amount.NormalizePercentage(l.DiscountRate, "porcentaje_descuento", true); err != nil {
		return it, wrap(err)
	}
	if it.PorcentajeImpuesto, err = amount.NormalizePercentage(l.TaxRate, "porcentaje_impuesto", true); err != nil {
		return it, wrap(err)
	}
	if it.Subtotal, err = amount.NormalizeAmount(l.Subtotal, "subtotal"); err != nil {
		return it, wrap(err)
	}

	unit := strings.ToUpper(strings.TrimSpace(l.UnitCode))
	if unit == "" {
		unit = pkgdian.UnitUnit
	}
	if !pkgdian.ValidMeasurementUnitCodes[unit] {
		return it, wrap(fmt.Errorf("unidad de medida %q no válida", unit))
	}

	it.Codigo = strings.TrimSpace(l.ProductCode)
	it.Descripcion = strings.TrimSpace(l.Description)
	if it.Descripcion == "" {
		it.Descripcion = it.Codigo
	}
	it.UnidadMedida = unit
	it.CodigoImpuesto = pkgdian.TaxCodeIVA
	return it, nil
}

func issuerParty(p *entity.SubmissionParameters) (taxauthority.Parte, error) {
	base, dv, err := pkgdian.SplitNIT(p.IssuerNIT)
	if err != nil {
		return taxauthority.Parte{}, fmt.Errorf("%w: %s: %v", domain.ErrConfigurationMissing, entity.ParamIssuerNIT, err)
	}
	return taxauthority.Parte{
		TipoIdentificacion: pkgdian.IdentificationTypeNIT,
		Identificacion:     base,
		DV:                 dv,
		Nombre:             p.IssuerName,
	}, nil
}

func buyerParty(b *entity.Customer) (taxauthority.Parte, error) {
	idType := strings.TrimSpace(b.IdentificationType)
	if idType == "" {
		idType = identificationTypeFor(b.TaxID)
	}
	if !pkgdian.ValidIdentificationTypes[idType] {
		return taxauthority.Parte{}, fmt.Errorf("%w: tipo de identificación %q del cliente no válido", domain.ErrInvalidInput, idType)
	}
	p := taxauthority.Parte{
		TipoIdentificacion: idType,
		Identificacion:     strings.TrimSpace(b.TaxID),
		Nombre:             strings.TrimSpace(b.Name),
		Email:              b.Email,
		Telefono:           b.Phone,
		Direccion:          b.Address,
		MunicipioCodigo:    b.MunicipalityCode,
		Municipio:          b.MunicipalityName,
	}
	if p.Nombre == "" {
		return p, fmt.Errorf("%w: el cliente no tiene nombre o razón social", domain.ErrInvalidInput)
	}
	if idType == pkgdian.IdentificationTypeNIT {
		base, dv, err := pkgdian.SplitNIT(b.TaxID)
		if err != nil {
			return p, fmt.Errorf("%w: NIT del cliente: %v", domain.ErrInvalidInput, err)
		}
		p.Identificacion, p.DV = base, dv
	} else if idType == pkgdian.IdentificationTypeCC {
		p.Identificacion = pkgdian.OnlyDigits(b.TaxID)
	}
	if p.Identificacion == "" {
		return p, fmt.Errorf("%w: el cliente no tiene identificación", domain.ErrInvalidInput)
	}
	return p, nil
}

// identificationTypeFor deduce el tipo cuando el cliente no lo tiene: 9 o más
// dígitos se toma como NIT, lo demás como cédula.
func identificationTypeFor(taxID string) string {
	if len(pkgdian.OnlyDigits(taxID)) >= 9 {
		return pkgdian.IdentificationTypeNIT
	}
	return pkgdian.IdentificationTypeCC
}

func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %s %q no es una fecha YYYY-MM-DD", domain.ErrInvalidInput, field, raw)
}
