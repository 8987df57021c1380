package billing

import (
	"strings"
	"time"

	"github.com/jhoicas/timbrado-api/internal/domain/entity"
	"github.com/jhoicas/timbrado-api/internal/infrastructure/taxauthority"
)

// GenericRejection motivo cuando la autoridad no dio mensaje ni errores.
const GenericRejection = "error en el envío a la autoridad tributaria"

// OutcomeKind veredicto de un intento.
type OutcomeKind uint8

const (
	OutcomeAccepted OutcomeKind = iota + 1
	OutcomeRejected
)

// SubmissionOutcome resultado de negocio del envío. Un rechazo no es un error.
type SubmissionOutcome struct {
	Kind      OutcomeKind
	CUFE      string
	Artifacts entity.StampArtifacts
	Reason    string
}

// Accepted construye un veredicto de aceptación.
func Accepted(cufe string, art entity.StampArtifacts) SubmissionOutcome {
	return SubmissionOutcome{Kind: OutcomeAccepted, CUFE: cufe, Artifacts: art}
}

// Rejected construye un rechazo; un motivo vacío usa GenericRejection.
// El motivo se guarda en una columna de texto: se limpia UTF-8 inválido y NUL.
func Rejected(reason string) SubmissionOutcome {
	reason = strings.ReplaceAll(strings.ToValidUTF8(reason, "\uFFFD"), "\x00", "")
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = GenericRejection
	}
	return SubmissionOutcome{Kind: OutcomeRejected, Reason: reason}
}

func (o SubmissionOutcome) IsAccepted() bool { return o.Kind == OutcomeAccepted }

// OutcomeFromResult aplica la regla de aceptación: success y CUFE no vacío.
func OutcomeFromResult(res *taxauthority.Result) SubmissionOutcome {
	if res == nil {
		return Rejected("")
	}
	if res.Success && strings.TrimSpace(res.CUFE) != "" {
		art := entity.StampArtifacts{
			UUID:   res.UUID,
			PDFURL: res.PDFURL,
			XMLURL: res.XMLURL,
			QRData: res.QRData,
		}
		if res.AcceptedAt != nil {
			art.StampedAt = *res.AcceptedAt
		}
		return Accepted(strings.TrimSpace(res.CUFE), art)
	}
	if res.Message != "" {
		return Rejected(res.Message)
	}
	if len(res.Errors) > 0 {
		return Rejected(strings.Join(res.Errors, "; "))
	}
	return Rejected("")
}

// Apply escribe el veredicto en la factura.
func (o SubmissionOutcome) Apply(inv *entity.Invoice, now time.Time) {
	if o.IsAccepted() {
		inv.MarkAccepted(o.CUFE, o.Artifacts, now)
		return
	}
	inv.MarkRejected(o.Reason, now)
}
