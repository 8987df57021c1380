package dto

// StampOverrides body opcional de POST /api/invoices/:id/stamp.
// Los valores se aplican sobre una copia de la factura al armar el documento;
// nunca se guardan en la factura.
type StampOverrides struct {
	FechaEmision     *string `json:"fechaEmision,omitempty"`     // YYYY-MM-DD
	FechaVencimiento *string `json:"fechaVencimiento,omitempty"` // YYYY-MM-DD
	FormaPago        *string `json:"formaPago,omitempty"`        // 1=Contado, 2=Crédito
	MedioPago        *string `json:"medioPago,omitempty"`        // 10, 42, 47, 48, 49, ZZZ
	Observaciones    *string `json:"observaciones,omitempty"`
	CorreoCliente    *string `json:"correoCliente,omitempty"`

	// Montos: número JSON o texto ("1.234,56"). Pasan por pkg/amount.
	Subtotal  any `json:"subtotal,omitempty" swaggertype:"string"`
	Impuesto  any `json:"impuesto,omitempty" swaggertype:"string"`
	Descuento any `json:"descuento,omitempty" swaggertype:"string"`
	Total     any `json:"total,omitempty" swaggertype:"string"`
}

// StampResult respuesta del timbrado y de la consulta de estado.
type StampResult struct {
	Success bool          `json:"success"`
	Status  string        `json:"status"` // ACEPTADA | RECHAZADA | PENDIENTE
	Data    StampDataView `json:"data"`
	Message string        `json:"message"`
}

// StampDataView vista de la factura tras el intento.
type StampDataView struct {
	ID            string  `json:"id"`
	NumeroFactura string  `json:"numeroFactura"`
	Estado        string  `json:"estado"` // etiqueta legible: APROBADA, RECHAZADA...
	CUFE          *string `json:"cufe"`
	FechaTimbrado *string `json:"fechaTimbrado"`
	MotivoRechazo *string `json:"motivoRechazo"`
}
