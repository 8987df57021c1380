// Package dian contiene catálogos y validaciones alineados al Anexo Técnico
// de Factura Electrónica de Venta DIAN (Colombia) v1.9.
package dian

// =============================================================================
// Tabla 6 - Unidades de Medida (Anexo 1.9 - 13.3.6 Unidades de Cantidad @unitCode)
// =============================================================================

const (
	UnitUnit        = "94"  // Unidad
	UnitKilogram    = "KGM" // Kilogramo
	UnitGram        = "GRM" // Gramo
	UnitLitre       = "LTR" // Litro
	UnitMetre       = "MTR" // Metro
	UnitSquareMetre = "MTK" // Metro cuadrado
	UnitCubicMetre  = "MTQ" // Metro cúbico
	UnitDozen       = "DZN" // Docena
	UnitHour        = "HUR" // Hora
	UnitDay         = "DAY" // Día
)

// ValidMeasurementUnitCodes códigos de unidad de medida válidos (uso común en facturación).
var ValidMeasurementUnitCodes = map[string]bool{
	UnitUnit: true, UnitKilogram: true, UnitGram: true, UnitLitre: true,
	UnitMetre: true, UnitSquareMetre: true, UnitCubicMetre: true,
	UnitDozen: true, UnitHour: true, UnitDay: true,
}

// =============================================================================
// Tabla 14 - Forma de Pago (Anexo 1.9 - 13.3.4.1)
// =============================================================================

const (
	PaymentFormContado = "1"
	PaymentFormCredito = "2"
)

// ValidPaymentForms formas de pago aceptadas.
var ValidPaymentForms = map[string]bool{PaymentFormContado: true, PaymentFormCredito: true}

// =============================================================================
// Tabla 13 - Medios de Pago (Anexo 1.9 - 13.3.4.2) - códigos de uso frecuente
// =============================================================================

const (
	PaymentMethodEfectivo              = "10" // Efectivo
	PaymentMethodConsignacion          = "42" // Consignación bancaria
	PaymentMethodTransferencia         = "47" // Transferencia Débito Bancaria
	PaymentMethodTarjetaCredito        = "48" // Tarjeta Crédito
	PaymentMethodTarjetaDebito         = "49" // Tarjeta Débito
	PaymentMethodInstrumentoNoDefinido = "ZZZ"
)

// ValidPaymentMethods medios de pago aceptados.
var ValidPaymentMethods = map[string]bool{
	PaymentMethodEfectivo: true, PaymentMethodConsignacion: true, PaymentMethodTransferencia: true,
	PaymentMethodTarjetaCredito: true, PaymentMethodTarjetaDebito: true, PaymentMethodInstrumentoNoDefinido: true,
}

// =============================================================================
// Tabla 11 - Tipos de Impuesto (Anexo 1.9 - 13.2.2)
// =============================================================================

const (
	TaxCodeIVA = "01" // IVA
	TaxCodeINC = "04" // Impuesto Nacional al Consumo
)

// =============================================================================
// Tabla 3 - Tipos de identificación (Anexo 1.9 - 13.2.1)
// =============================================================================

const (
	IdentificationTypeCC        = "13" // Cédula de ciudadanía
	IdentificationTypeCE        = "22" // Cédula de extranjería
	IdentificationTypeNIT       = "31" // NIT - requiere dígito de verificación
	IdentificationTypePasaporte = "41" // Pasaporte
)

// ValidIdentificationTypes tipos de identificación aceptados para el adquiriente.
var ValidIdentificationTypes = map[string]bool{
	IdentificationTypeCC: true, IdentificationTypeCE: true,
	IdentificationTypeNIT: true, IdentificationTypePasaporte: true,
}

// Tipo de documento electrónico (Tabla 1).
const DocumentTypeFacturaVenta = "01"
