package taxauthority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	validatePath     = "/v1/facturas/validar"
	maxResponseBytes = 1 << 20 // 1 MB
	defaultTimeout   = 30 * time.Second
)

// Errores de transporte. Nunca acompañan un Result.
var (
	ErrTransport         = errors.New("autoridad tributaria: fallo de transporte")
	ErrTimeout           = errors.New("autoridad tributaria: tiempo de espera agotado")
	ErrMalformedResponse = errors.New("autoridad tributaria: respuesta inválida")
	ErrAmbiguousResponse = errors.New("autoridad tributaria: respuesta ambigua")
)

// bogota zona horaria de las fechas sin offset que devuelve el servicio.
var bogota = time.FixedZone("COT", -5*60*60)

// Submitter define el puerto de salida para la entrega de documentos a la autoridad.
// La implementación concreta usa HTTP/JSON; para tests se puede inyectar un fake.
type Submitter interface {
	// Submit hace un único intento, sin reintentos. Un error significa que no hay
	// veredicto de la autoridad; un Result siempre es un veredicto.
	Submit(ctx context.Context, payload *Payload, testSetID, baseURL string) (*Result, error)
}

var _ Submitter = (*HTTPClient)(nil)

// HTTPClient implementa Submitter sobre net/http.
type HTTPClient struct {
	httpClient *http.Client
}

// NewHTTPClient construye el cliente. timeout <= 0 usa 30 s.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{httpClient: &http.Client{Timeout: timeout}}
}

// Submit envía el documento a {baseURL}/v1/facturas/validar.
func (c *HTTPClient) Submit(ctx context.Context, payload *Payload, testSetID, baseURL string) (*Result, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: payload vacío", ErrTransport)
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: url base no configurada", ErrTransport)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: serializar documento: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+validatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: crear request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if payload.Token != "" {
		req.Header.Set("Authorization", "Bearer "+payload.Token)
	}
	if testSetID != "" {
		req.Header.Set("X-Test-Set-Id", testSetID)
	}
	if payload.CodigoReferencia != "" {
		req.Header.Set("X-Reference-Code", payload.CodigoReferencia)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: llamada HTTP fallida: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("%w: leer respuesta: %v", ErrTransport, err)
	}
	if len(raw) > maxResponseBytes {
		return nil, fmt.Errorf("%w: respuesta supera %d bytes", ErrMalformedResponse, maxResponseBytes)
	}
	return parseResponse(resp.StatusCode, raw)
}

// parseResponse normaliza el cuerpo. Sólo un HTTP 2xx con success=true cuenta como éxito;
// cualquier cuerpo que no permita decidir se devuelve como error, nunca como Result.
func parseResponse(httpStatus int, raw []byte) (*Result, error) {
	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: HTTP %d con cuerpo no JSON: %s", ErrMalformedResponse, httpStatus, snippet(raw))
	}
	if w.Success == nil {
		return nil, fmt.Errorf("%w: HTTP %d sin campo success", ErrMalformedResponse, httpStatus)
	}
	is2xx := httpStatus >= 200 && httpStatus < 300
	if *w.Success && !is2xx {
		return nil, fmt.Errorf("%w: success=true con HTTP %d", ErrAmbiguousResponse, httpStatus)
	}

	res := &Result{
		Success:    *w.Success,
		Status:     strings.TrimSpace(w.Status),
		StatusCode: w.StatusCode,
		CUFE:       strings.TrimSpace(w.CUFE),
		UUID:       strings.TrimSpace(w.UUID),
		Message:    strings.TrimSpace(w.Message),
		PDFURL:     w.URLs.PDF,
		XMLURL:     w.URLs.XML,
		QRData:     w.QR,
	}
	if res.StatusCode == 0 {
		res.StatusCode = httpStatus
	}
	for _, e := range w.Errors {
		if e = strings.TrimSpace(e); e != "" {
			res.Errors = append(res.Errors, e)
		}
	}
	if t, ok := parseTimestamp(w.FechaValidacion); ok {
		res.AcceptedAt = &t
	}
	return res, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, bogota); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func snippet(raw []byte) string {
	const max = 200
	s := strings.ToValidUTF8(strings.TrimSpace(string(raw)), "\uFFFD")
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
