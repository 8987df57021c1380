// Package status es el vocabulario de estados compartido por la cadena documental
// (cotización → pedido → remisión → factura). Cada estado tiene un código de un
// carácter que es el que se persiste en la columna estado.
package status

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// State es el conjunto cerrado de estados del ciclo de vida documental.
type State uint8

const (
	Draft State = iota + 1
	Submitted
	Approved
	Rejected
	Expired
	Confirmed
	InProcess
	PartiallyFulfilled
	Fulfilled
	Cancelled
	InTransit
	Delivered
	Accepted
	Voided
)

// Códigos persistidos. Uno por significado: FromByte hace switch sobre estas
// constantes, por lo que un código repetido no compila.
const (
	CodeDraft              byte = 'B'
	CodeSubmitted          byte = 'E'
	CodeApproved           byte = 'A'
	CodeRejected           byte = 'R'
	CodeExpired            byte = 'V'
	CodeConfirmed          byte = 'C'
	CodeInProcess          byte = 'P'
	CodePartiallyFulfilled byte = 'L'
	CodeFulfilled          byte = 'F'
	CodeCancelled          byte = 'X'
	CodeInTransit          byte = 'T'
	CodeDelivered          byte = 'D'
	CodeAccepted           byte = 'K'
	CodeVoided             byte = 'N'
)

// All lista los estados en orden de declaración.
var All = []State{
	Draft, Submitted, Approved, Rejected, Expired, Confirmed, InProcess,
	PartiallyFulfilled, Fulfilled, Cancelled, InTransit, Delivered, Accepted, Voided,
}

// Code devuelve el código persistido del estado. Devuelve 0 para un State fuera del enum.
func (s State) Code() byte {
	switch s {
	case Draft:
		return CodeDraft
	case Submitted:
		return CodeSubmitted
	case Approved:
		return CodeApproved
	case Rejected:
		return CodeRejected
	case Expired:
		return CodeExpired
	case Confirmed:
		return CodeConfirmed
	case InProcess:
		return CodeInProcess
	case PartiallyFulfilled:
		return CodePartiallyFulfilled
	case Fulfilled:
		return CodeFulfilled
	case Cancelled:
		return CodeCancelled
	case InTransit:
		return CodeInTransit
	case Delivered:
		return CodeDelivered
	case Accepted:
		return CodeAccepted
	case Voided:
		return CodeVoided
	}
	return 0
}

// String devuelve la etiqueta legible (la que ve el usuario y la API).
func (s State) String() string {
	switch s {
	case Draft:
		return "BORRADOR"
	case Submitted:
		return "ENVIADA"
	case Approved:
		return "APROBADA"
	case Rejected:
		return "RECHAZADA"
	case Expired:
		return "VENCIDA"
	case Confirmed:
		return "CONFIRMADA"
	case InProcess:
		return "EN_PROCESO"
	case PartiallyFulfilled:
		return "PARCIAL"
	case Fulfilled:
		return "COMPLETADA"
	case Cancelled:
		return "CANCELADA"
	case InTransit:
		return "EN_TRANSITO"
	case Delivered:
		return "ENTREGADA"
	case Accepted:
		return "ACEPTADA"
	case Voided:
		return "ANULADA"
	}
	return ""
}

// CodeString es Code como string de un carácter, listo para la columna estado.
func (s State) CodeString() string {
	c := s.Code()
	if c == 0 {
		return ""
	}
	return string(rune(c))
}

// FromByte resuelve un código persistido.
func FromByte(c byte) (State, bool) {
	switch c {
	case CodeDraft:
		return Draft, true
	case CodeSubmitted:
		return Submitted, true
	case CodeApproved:
		return Approved, true
	case CodeRejected:
		return Rejected, true
	case CodeExpired:
		return Expired, true
	case CodeConfirmed:
		return Confirmed, true
	case CodeInProcess:
		return InProcess, true
	case CodePartiallyFulfilled:
		return PartiallyFulfilled, true
	case CodeFulfilled:
		return Fulfilled, true
	case CodeCancelled:
		return Cancelled, true
	case CodeInTransit:
		return InTransit, true
	case CodeDelivered:
		return Delivered, true
	case CodeAccepted:
		return Accepted, true
	case CodeVoided:
		return Voided, true
	}
	return 0, false
}

// aliases acepta la etiqueta en español (con o sin tilde/espacios) y el nombre en inglés.
var aliases = map[string]State{
	"BORRADOR": Draft, "DRAFT": Draft,
	"ENVIADA": Submitted, "ENVIADO": Submitted, "SUBMITTED": Submitted,
	"APROBADA": Approved, "APROBADO": Approved, "APPROVED": Approved,
	"RECHAZADA": Rejected, "RECHAZADO": Rejected, "REJECTED": Rejected,
	"VENCIDA": Expired, "VENCIDO": Expired, "EXPIRED": Expired,
	"CONFIRMADA": Confirmed, "CONFIRMADO": Confirmed, "CONFIRMED": Confirmed,
	"EN_PROCESO": InProcess, "IN_PROCESS": InProcess,
	"PARCIAL": PartiallyFulfilled, "PARTIALLY_FULFILLED": PartiallyFulfilled,
	"COMPLETADA": Fulfilled, "COMPLETADO": Fulfilled, "FULFILLED": Fulfilled,
	"CANCELADA": Cancelled, "CANCELADO": Cancelled, "CANCELLED": Cancelled,
	"EN_TRANSITO": InTransit, "EN_TRÁNSITO": InTransit, "IN_TRANSIT": InTransit,
	"ENTREGADA": Delivered, "ENTREGADO": Delivered, "DELIVERED": Delivered,
	"ACEPTADA": Accepted, "ACEPTADO": Accepted, "ACCEPTED": Accepted,
	"ANULADA": Voided, "ANULADO": Voided, "VOIDED": Voided,
}

// Parse resuelve una etiqueta legible a su State.
func Parse(human string) (State, bool) {
	key := strings.ToUpper(strings.TrimSpace(human))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	s, ok := aliases[key]
	return s, ok
}

// ToCode devuelve el código persistido para una etiqueta legible.
//
// Si la etiqueta no es conocida devuelve su primer carácter en mayúscula. Es
// una red de seguridad para datos heredados, no un mapeo: no agregar estados
// nuevos apoyándose en ella.
func ToCode(human string) string {
	if s, ok := Parse(human); ok {
		return s.CodeString()
	}
	trimmed := strings.TrimSpace(human)
	r, _ := utf8.DecodeRuneInString(trimmed)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// FromCode devuelve la etiqueta legible de un código. Un código desconocido se
// devuelve tal cual: el llamador debe mostrarlo literal.
func FromCode(code string) string {
	if len(code) != 1 {
		return code
	}
	if s, ok := FromByte(code[0]); ok {
		return s.String()
	}
	return code
}

// DocumentType identifica el tipo de documento de la cadena comercial.
type DocumentType uint8

const (
	Quote DocumentType = iota + 1
	Order
	DeliveryNote
	Invoice
)

// allowed es el subconjunto de estados que usa cada tipo de documento.
var allowed = map[DocumentType][]State{
	Quote:        {Draft, Submitted, Accepted, Rejected, Expired, Cancelled},
	Order:        {Draft, Confirmed, InProcess, PartiallyFulfilled, Fulfilled, Cancelled},
	DeliveryNote: {Draft, InTransit, Delivered, Cancelled},
	Invoice:      {Draft, Submitted, Approved, Rejected, Voided},
}

// Allows indica si el tipo de documento usa el estado.
func Allows(doc DocumentType, s State) bool {
	for _, candidate := range allowed[doc] {
		if candidate == s {
			return true
		}
	}
	return false
}

// StatesOf devuelve los estados que usa un tipo de documento.
func StatesOf(doc DocumentType) []State {
	out := make([]State, len(allowed[doc]))
	copy(out, allowed[doc])
	return out
}
