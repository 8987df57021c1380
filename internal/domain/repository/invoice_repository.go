package repository

import (
	"context"

	"github.com/jhoicas/timbrado-api/internal/domain/entity"
)

// InvoiceReader lectura de facturas, líneas y comprador. Es lo único que ve el
// cliente de envío a la autoridad: no puede escribir en el almacén.
type InvoiceReader interface {
	// GetByID devuelve nil, nil si la factura no existe.
	GetByID(ctx context.Context, id int64) (*entity.Invoice, error)
	GetLines(ctx context.Context, invoiceID int64) ([]*entity.InvoiceLine, error)
	// GetBuyer devuelve nil, nil si el cliente no existe.
	GetBuyer(ctx context.Context, customerID int64) (*entity.Customer, error)
}

// InvoiceRepository define el puerto de persistencia de facturas para el timbrado.
// Las implementaciones se atan a una transacción (ver TxRunner).
type InvoiceRepository interface {
	InvoiceReader
	// GetByIDForUpdate bloquea la fila hasta el fin de la transacción.
	// Devuelve nil, nil si la factura no existe.
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.Invoice, error)
	// UpdateStampOutcome persiste estado, updated_at y los campos de timbrado
	// (cufe, motivo_rechazo, fecha_timbrado, uuid, urls, qr).
	UpdateStampOutcome(ctx context.Context, inv *entity.Invoice) error
}
