package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/timbrado-api/internal/application/dto"
	"github.com/jhoicas/timbrado-api/internal/domain"
	apphttp "github.com/jhoicas/timbrado-api/internal/interfaces/http"
	"github.com/jhoicas/timbrado-api/pkg/amount"
)

type mockStamper struct {
	mock.Mock
}

func (m *mockStamper) Stamp(ctx context.Context, tenant, rawID string, o dto.StampOverrides) (*dto.StampResult, error) {
	args := m.Called(ctx, tenant, rawID, o)
	res, _ := args.Get(0).(*dto.StampResult)
	return res, args.Error(1)
}

func (m *mockStamper) Status(ctx context.Context, tenant, rawID string) (*dto.StampResult, error) {
	args := m.Called(ctx, tenant, rawID)
	res, _ := args.Get(0).(*dto.StampResult)
	return res, args.Error(1)
}

func newApp(s apphttp.Stamper) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{AppName: "timbrado-test", Stamper: s, JWTSecret: testJWTSecret})
	return app
}

func postStamp(t *testing.T, app *fiber.App, id, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/"+id+"/stamp", strings.NewReader(body))
	req.Header.Set("Authorization", validToken(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func strp(s string) *string { return &s }

func TestStampHandler_Aceptada(t *testing.T) {
	s := &mockStamper{}
	s.On("Stamp", mock.Anything, testTenant, "501", dto.StampOverrides{}).Return(&dto.StampResult{
		Success: true,
		Status:  "ACEPTADA",
		Data: dto.StampDataView{
			ID: "501", NumeroFactura: "SETP990000501", Estado: "APROBADA",
			CUFE: strp("CUFE-ABC123"), FechaTimbrado: strp("2026-10-19T15:30:00Z"),
		},
		Message: "Factura SETP990000501 aceptada",
	}, nil).Once()

	resp, body := postStamp(t, newApp(s), "501", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ACEPTADA", body["status"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "501", data["id"])
	assert.Equal(t, "CUFE-ABC123", data["cufe"])
	assert.Equal(t, "APROBADA", data["estado"])
	assert.Nil(t, data["motivoRechazo"])
	s.AssertExpectations(t)
}

func TestStampHandler_RechazoEs200(t *testing.T) {
	s := &mockStamper{}
	s.On("Stamp", mock.Anything, testTenant, "501", mock.Anything).Return(&dto.StampResult{
		Success: false,
		Status:  "RECHAZADA",
		Data:    dto.StampDataView{ID: "501", Estado: "RECHAZADA", MotivoRechazo: strp("tiempo de espera agotado")},
		Message: "Factura SETP990000501 rechazada: tiempo de espera agotado",
	}, nil)

	resp, body := postStamp(t, newApp(s), "501", "{}")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "RECHAZADA", body["status"])
	assert.Equal(t, "tiempo de espera agotado", body["data"].(map[string]any)["motivoRechazo"])
}

func TestStampHandler_OverridesConservanPrecision(t *testing.T) {
	s := &mockStamper{}
	var got dto.StampOverrides
	s.On("Stamp", mock.Anything, testTenant, "501", mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(3).(dto.StampOverrides) }).
		Return(&dto.StampResult{Success: true, Status: "ACEPTADA"}, nil)

	resp, _ := postStamp(t, newApp(s), "501", `{"total": 1234.565, "subtotal": "1.000,50", "formaPago": "2"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, json.Number("1234.565"), got.Total)
	require.NotNil(t, got.FormaPago)
	assert.Equal(t, "2", *got.FormaPago)
	sub, err := amount.NormalizeAmount(got.Subtotal, "subtotal")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1000.50").Equal(sub))
}

func TestStampHandler_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: \"abc\"", domain.ErrInvalidIdentifier), http.StatusBadRequest, "INVALID_ID"},
		{fmt.Errorf("%w: fechaEmision", domain.ErrInvalidInput), http.StatusBadRequest, "INVALID_BODY"},
		{domain.ErrInvoiceNotFound, http.StatusNotFound, "FACTURA_NOT_FOUND"},
		{domain.ErrStampInProgress, http.StatusConflict, "STAMP_IN_PROGRESS"},
		{domain.ErrAlreadyStamped, http.StatusConflict, "ALREADY_STAMPED"},
		{fmt.Errorf("%w: commit", domain.ErrPersistence), http.StatusInternalServerError, "UPDATE_FAILED"},
		{errors.New("pool agotado"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			s := &mockStamper{}
			s.On("Stamp", mock.Anything, testTenant, "9999", mock.Anything).Return(nil, tc.err)
			resp, body := postStamp(t, newApp(s), "9999", "")
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestStampHandler_InternoIncluyeMensaje(t *testing.T) {
	s := &mockStamper{}
	s.On("Stamp", mock.Anything, testTenant, "501", mock.Anything).Return(nil, errors.New("pool agotado"))
	_, body := postStamp(t, newApp(s), "501", "")
	assert.Equal(t, "pool agotado", body["message"])
}

func TestStampHandler_CuerpoInvalido(t *testing.T) {
	for _, body := range []string{`{"total":`, `[1,2]`, `{"formaPago": 2}`, `{} {}`} {
		s := &mockStamper{}
		resp, out := postStamp(t, newApp(s), "501", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "cuerpo %s", body)
		assert.Equal(t, "INVALID_BODY", out["code"])
		s.AssertNotCalled(t, "Stamp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestStampHandler_IDInvalidoAntesQueCuerpo(t *testing.T) {
	s := &mockStamper{}
	resp, out := postStamp(t, newApp(s), "abc", `{"total":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", out["code"])
	s.AssertNotCalled(t, "Stamp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStampHandler_MontoExponencial(t *testing.T) {
	s := &mockStamper{}
	var got dto.StampOverrides
	s.On("Stamp", mock.Anything, testTenant, "501", mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(3).(dto.StampOverrides) }).
		Return(&dto.StampResult{Success: true, Status: "ACEPTADA"}, nil)

	resp, _ := postStamp(t, newApp(s), "501", `{"subtotal": 1e3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sub, err := amount.NormalizeAmount(got.Subtotal, "subtotal")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1000").Equal(sub))
}

func TestStampHandler_SinToken(t *testing.T) {
	s := &mockStamper{}
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/501/stamp", nil)
	resp, err := newApp(s).Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	s.AssertNotCalled(t, "Stamp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStampHandler_Estado(t *testing.T) {
	s := &mockStamper{}
	s.On("Status", mock.Anything, testTenant, "501").Return(&dto.StampResult{
		Status: "PENDIENTE",
		Data:   dto.StampDataView{ID: "501", Estado: "BORRADOR"},
	}, nil)

	resp := doGet(t, newApp(s), "/api/invoices/501/stamp", validToken(t))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.StampResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "PENDIENTE", out.Status)
	assert.Equal(t, "BORRADOR", out.Data.Estado)

	s.On("Status", mock.Anything, testTenant, "9999").Return(nil, domain.ErrInvoiceNotFound)
	resp = doGet(t, newApp(s), "/api/invoices/9999/stamp", validToken(t))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	resp := doGet(t, newApp(&mockStamper{}), "/health", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
