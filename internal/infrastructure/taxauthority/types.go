// Package taxauthority implementa el transporte HTTP/JSON hacia el servicio de
// validación de la autoridad tributaria (DIAN vía proveedor tecnológico).
package taxauthority

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payload documento en el esquema del servicio de validación. Se construye en
// cada intento y no se persiste.
type Payload struct {
	CodigoReferencia string     `json:"codigo_referencia"`
	TipoDocumento    string     `json:"tipo_documento"`
	Ambiente         string     `json:"ambiente"`
	SoftwareID       string     `json:"software_id"`
	Prefijo          string     `json:"prefijo"`
	Numero           int64      `json:"numero"`
	FechaEmision     string     `json:"fecha_emision"`
	FechaVencimiento string     `json:"fecha_vencimiento,omitempty"`
	FormaPago        string     `json:"forma_pago"`
	MedioPago        string     `json:"medio_pago"`
	Observaciones    string     `json:"observaciones,omitempty"`
	Resolucion       Resolucion `json:"resolucion"`
	Emisor           Parte      `json:"emisor"`
	Cliente          Parte      `json:"cliente"`
	Items            []Item     `json:"items"`
	Totales          Totales    `json:"totales"`

	// Token de acceso al servicio; viaja en la cabecera Authorization.
	Token string `json:"-"`
}

// Resolucion numeración autorizada.
type Resolucion struct {
	Numero       string `json:"numero"`
	Prefijo      string `json:"prefijo"`
	Desde        int64  `json:"desde"`
	Hasta        int64  `json:"hasta"`
	FechaDesde   string `json:"fecha_desde"`
	FechaHasta   string `json:"fecha_hasta"`
	ClaveTecnica string `json:"clave_tecnica"`
}

// Parte emisor o adquiriente.
type Parte struct {
	TipoIdentificacion string `json:"tipo_identificacion"`
	Identificacion     string `json:"identificacion"`
	DV                 string `json:"dv,omitempty"`
	Nombre             string `json:"nombre"`
	Email              string `json:"email,omitempty"`
	Telefono           string `json:"telefono,omitempty"`
	Direccion          string `json:"direccion,omitempty"`
	MunicipioCodigo    string `json:"municipio_codigo,omitempty"`
	Municipio          string `json:"municipio,omitempty"`
}

// Item línea del documento.
type Item struct {
	Codigo              string          `json:"codigo"`
	Descripcion         string          `json:"descripcion"`
	UnidadMedida        string          `json:"unidad_medida"`
	Cantidad            decimal.Decimal `json:"cantidad"`
	PrecioUnitario      decimal.Decimal `json:"precio_unitario"`
	PorcentajeDescuento decimal.Decimal `json:"porcentaje_descuento"`
	CodigoImpuesto      string          `json:"codigo_impuesto"`
	PorcentajeImpuesto  decimal.Decimal `json:"porcentaje_impuesto"`
	Subtotal            decimal.Decimal `json:"subtotal"`
}

// Totales del documento.
type Totales struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Impuestos decimal.Decimal `json:"impuestos"`
	Descuento decimal.Decimal `json:"descuento"`
	Total     decimal.Decimal `json:"total"`
}

// Result respuesta normalizada de un intercambio con la autoridad.
// Es la única entrada de la decisión de estado final.
type Result struct {
	Success    bool
	Status     string
	StatusCode int
	CUFE       string
	UUID       string
	AcceptedAt *time.Time
	Message    string
	Errors     []string
	PDFURL     string
	XMLURL     string
	QRData     string
}

// wireResult cuerpo JSON tal como lo envía el servicio.
type wireResult struct {
	Success         *bool    `json:"success"`
	Status          string   `json:"status"`
	StatusCode      int      `json:"status_code"`
	CUFE            string   `json:"cufe"`
	UUID            string   `json:"uuid"`
	FechaValidacion string   `json:"fecha_validacion"`
	Message         string   `json:"message"`
	Errors          []string `json:"errors"`
	URLs            struct {
		PDF string `json:"pdf"`
		XML string `json:"xml"`
	} `json:"urls"`
	QR string `json:"qr"`
}
