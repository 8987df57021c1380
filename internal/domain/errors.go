package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")

	// Timbrado.
	ErrInvalidIdentifier    = errors.New("identificador de factura inválido")
	ErrInvoiceNotFound      = errors.New("factura no encontrada")
	ErrAlreadyStamped       = errors.New("la factura ya fue aceptada por la autoridad tributaria")
	ErrStampInProgress      = errors.New("la factura ya se está timbrando")
	ErrNoActiveResolution   = errors.New("no hay una resolución de facturación activa")
	ErrConfigurationMissing = errors.New("faltan parámetros de facturación electrónica")
	ErrPersistence          = errors.New("no se pudo registrar el resultado del timbrado")
	ErrInternal             = errors.New("error interno")
)
