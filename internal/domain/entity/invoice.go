package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/timbrado-api/internal/domain/status"
)

// Invoice representa la cabecera de una factura (tabla facturas).
//
// Invariante: CUFE != "" sólo si el estado es APROBADA y RejectionReason != ""
// sólo si el estado es RECHAZADA. MarkAccepted y MarkRejected la mantienen.
type Invoice struct {
	ID            int64
	CustomerID    int64
	Prefix        string
	Consecutive   int64
	IssueDate     time.Time
	DueDate       *time.Time
	StatusCode    string // un carácter, ver internal/domain/status
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	GrandTotal    decimal.Decimal
	PaymentForm   string // 1=Contado, 2=Crédito
	PaymentMethod string // 10=Efectivo, 47=Transferencia...
	Notes         string

	CUFE            string
	AuthorityUUID   string
	StampedAt       *time.Time
	RejectionReason string
	PDFURL          string
	XMLURL          string
	QRData          string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Number devuelve el número de factura completo (prefijo + consecutivo).
func (i *Invoice) Number() string {
	return strings.TrimSpace(i.Prefix) + strconv.FormatInt(i.Consecutive, 10)
}

// State resuelve el código persistido. ok=false si el código no es conocido.
func (i *Invoice) State() (status.State, bool) {
	if len(i.StatusCode) != 1 {
		return 0, false
	}
	return status.FromByte(i.StatusCode[0])
}

// IsStamped indica si la factura ya fue aceptada por la autoridad.
func (i *Invoice) IsStamped() bool {
	s, ok := i.State()
	return ok && s == status.Approved
}

// StampArtifacts datos devueltos por la autoridad al aceptar un documento.
type StampArtifacts struct {
	UUID      string
	StampedAt time.Time
	PDFURL    string
	XMLURL    string
	QRData    string
}

// MarkAccepted deja la factura en APROBADA con su CUFE y limpia el motivo de rechazo.
func (i *Invoice) MarkAccepted(cufe string, art StampArtifacts, now time.Time) {
	stampedAt := art.StampedAt
	if stampedAt.IsZero() {
		stampedAt = now
	}
	i.StatusCode = status.Approved.CodeString()
	i.CUFE = cufe
	i.AuthorityUUID = art.UUID
	i.StampedAt = &stampedAt
	i.PDFURL = art.PDFURL
	i.XMLURL = art.XMLURL
	i.QRData = art.QRData
	i.RejectionReason = ""
	i.UpdatedAt = now
}

// MarkRejected deja la factura en RECHAZADA con el motivo y limpia todo dato de timbrado.
func (i *Invoice) MarkRejected(reason string, now time.Time) {
	i.StatusCode = status.Rejected.CodeString()
	i.RejectionReason = reason
	i.CUFE = ""
	i.AuthorityUUID = ""
	i.StampedAt = nil
	i.PDFURL = ""
	i.XMLURL = ""
	i.QRData = ""
	i.UpdatedAt = now
}
