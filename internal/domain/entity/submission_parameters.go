package entity

// Claves de la tabla configuracion_facturacion.
const (
	ParamBaseURL     = "url_base"
	ParamTestSetID   = "test_set_id"
	ParamAPIToken    = "token_api"
	ParamSoftwareID  = "software_id"
	ParamIssuerNIT   = "nit_emisor"
	ParamIssuerName  = "razon_social_emisor"
	ParamEnvironment = "ambiente"
)

// Ambientes DIAN.
const (
	EnvironmentProduction = "1"
	EnvironmentTest       = "2"
)

// SubmissionParameters configuración de envío a la autoridad tributaria.
// Se lee en cada timbrado; no se cachea.
type SubmissionParameters struct {
	BaseURL     string
	TestSetID   string // requerido en ambiente de pruebas
	APIToken    string
	SoftwareID  string
	IssuerNIT   string
	IssuerName  string
	Environment string // "1" producción, "2" pruebas
}

// IsTest indica si el envío va al ambiente de habilitación.
func (p *SubmissionParameters) IsTest() bool {
	return p.Environment != EnvironmentProduction
}
