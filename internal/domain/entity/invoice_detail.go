package entity

import "github.com/shopspring/decimal"

// InvoiceLine representa una línea de detalle de una factura (tabla factura_items).
type InvoiceLine struct {
	ID           int64
	InvoiceID    int64
	ProductCode  string
	Description  string
	UnitCode     string // Código unidad medida DIAN (94, KGM, etc.)
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	DiscountRate decimal.Decimal // porcentaje 0-100
	TaxRate      decimal.Decimal // porcentaje 0-100 (IVA)
	Subtotal     decimal.Decimal
}

// InvoiceAggregate factura con sus líneas y el comprador, lista para transformar.
type InvoiceAggregate struct {
	Invoice *Invoice
	Lines   []*InvoiceLine
	Buyer   *Customer
}
