package entity

import "time"

// BillingResolution representa la resolución de facturación autorizada por la DIAN.
// Sólo una puede estar activa y vigente al momento de timbrar.
type BillingResolution struct {
	ID               int64
	ResolutionNumber string    // Número de resolución (ej: "18764000000001")
	Prefix           string    // Prefijo autorizado (ej: "SETP", "FE")
	RangeFrom        int64     // Número inicial del rango autorizado
	RangeTo          int64     // Número final del rango autorizado
	TechnicalKey     string    // Clave técnica (insumo del CUFE en la autoridad)
	DateFrom         time.Time // Fecha de inicio de vigencia
	DateTo           time.Time // Fecha de vencimiento
	IsActive         bool
}

// Covers indica si el consecutivo está dentro del rango autorizado.
func (r *BillingResolution) Covers(consecutive int64) bool {
	return consecutive >= r.RangeFrom && consecutive <= r.RangeTo
}

// ValidOn indica si la fecha cae dentro de la vigencia (por día calendario).
func (r *BillingResolution) ValidOn(t time.Time) bool {
	day := t.Format("2006-01-02")
	return day >= r.DateFrom.Format("2006-01-02") && day <= r.DateTo.Format("2006-01-02")
}
