package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/timbrado-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/timbrado-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testTenant    = "empresa_a"
	testIssuer    = "timbrado-test"
	testExpMin    = 60
)

func bearer(t *testing.T, id pkgjwt.Identity) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, id, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func validToken(t *testing.T) string {
	return bearer(t, pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID, Tenant: testTenant, Role: "admin"})
}

func buildMeApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    apphttp.GetUserID(c),
			"company_id": apphttp.GetCompanyID(c),
			"tenant":     apphttp.GetTenant(c),
			"role":       apphttp.GetRole(c),
		})
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	resp := doGet(t, buildMeApp(), "/me", validToken(t))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, testTenant, body["tenant"])
	assert.Equal(t, "admin", body["role"])
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: testUserID, Tenant: testTenant}, testIssuer, -1)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"formato", "Token abc", "INVALID_TOKEN"},
		{"bearer sin token", "Bearer", "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"sin tenant", bearer(t, pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID}), "MISSING_TENANT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doGet(t, buildMeApp(), "/me", tc.header)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tc.code)
		})
	}
}
