package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/timbrado-api/internal/domain/entity"
	"github.com/jhoicas/timbrado-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, cliente_id, prefijo, consecutivo, fecha_emision, fecha_vencimiento, estado,
	subtotal, impuesto, descuento, total, forma_pago, medio_pago, observaciones,
	cufe, uuid_autoridad, fecha_timbrado, motivo_rechazo, url_pdf, url_xml, qr_data,
	created_at, updated_at`

// GetByID obtiene la cabecera sin bloquearla.
func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM facturas WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get factura: %w", err)
	}
	return inv, nil
}

// GetByIDForUpdate obtiene la cabecera con SELECT ... FOR UPDATE: la fila queda
// bloqueada hasta el commit o rollback de la transacción.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM facturas WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get factura for update: %w", err)
	}
	return inv, nil
}

// GetLines obtiene las líneas en orden de captura.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID int64) ([]*entity.InvoiceLine, error) {
	const query = `
		SELECT id, factura_id, codigo_producto, descripcion, unidad_medida,
		       cantidad, precio_unitario, porcentaje_descuento, porcentaje_iva, subtotal
		FROM factura_items WHERE factura_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list factura_items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ProductCode, &l.Description, &l.UnitCode,
			&l.Quantity, &l.UnitPrice, &l.DiscountRate, &l.TaxRate, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan factura_item: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetBuyer obtiene el cliente con el nombre de su municipio.
func (r *InvoiceRepo) GetBuyer(ctx context.Context, customerID int64) (*entity.Customer, error) {
	const query = `
		SELECT c.id, c.tipo_identificacion, c.identificacion, c.nombre,
		       c.email, c.telefono, c.direccion, c.municipio_codigo, m.nombre
		FROM clientes c
		LEFT JOIN municipios m ON m.codigo = c.municipio_codigo
		WHERE c.id = $1`
	var c entity.Customer
	var email, phone, address, munCode, munName *string
	err := r.q.QueryRow(ctx, query, customerID).Scan(
		&c.ID, &c.IdentificationType, &c.TaxID, &c.Name,
		&email, &phone, &address, &munCode, &munName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	c.Email = derefString(email)
	c.Phone = derefString(phone)
	c.Address = derefString(address)
	c.MunicipalityCode = derefString(munCode)
	c.MunicipalityName = derefString(munName)
	return &c, nil
}

// UpdateStampOutcome escribe el resultado del timbrado. Los campos vacíos se
// guardan como NULL: así un rechazo limpia el CUFE y una aceptación el motivo.
func (r *InvoiceRepo) UpdateStampOutcome(ctx context.Context, inv *entity.Invoice) error {
	const query = `
		UPDATE facturas
		SET estado         = $2,
		    cufe           = $3,
		    uuid_autoridad = $4,
		    fecha_timbrado = $5,
		    motivo_rechazo = $6,
		    url_pdf        = $7,
		    url_xml        = $8,
		    qr_data        = $9,
		    updated_at     = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		inv.ID,
		inv.StatusCode,
		nullIfEmpty(inv.CUFE),
		nullIfEmpty(inv.AuthorityUUID),
		nullTime(inv.StampedAt),
		nullIfEmpty(inv.RejectionReason),
		nullIfEmpty(inv.PDFURL),
		nullIfEmpty(inv.XMLURL),
		nullIfEmpty(inv.QRData),
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update factura: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("update factura %d: %d filas afectadas", inv.ID, tag.RowsAffected())
	}
	return nil
}

func scanInvoice(row pgxScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var paymentForm, paymentMethod, notes *string
	var cufe, authUUID, reason, pdfURL, xmlURL, qrData *string
	err := row.Scan(
		&inv.ID, &inv.CustomerID, &inv.Prefix, &inv.Consecutive, &inv.IssueDate, &inv.DueDate, &inv.StatusCode,
		&inv.Subtotal, &inv.TaxTotal, &inv.DiscountTotal, &inv.GrandTotal, &paymentForm, &paymentMethod, &notes,
		&cufe, &authUUID, &inv.StampedAt, &reason, &pdfURL, &xmlURL, &qrData,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.PaymentForm = derefString(paymentForm)
	inv.PaymentMethod = derefString(paymentMethod)
	inv.Notes = derefString(notes)
	inv.CUFE = derefString(cufe)
	inv.AuthorityUUID = derefString(authUUID)
	inv.RejectionReason = derefString(reason)
	inv.PDFURL = derefString(pdfURL)
	inv.XMLURL = derefString(xmlURL)
	inv.QRData = derefString(qrData)
	return &inv, nil
}
