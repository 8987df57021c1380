package entity

// Customer representa al comprador de la factura (tabla clientes).
type Customer struct {
	ID                 int64
	IdentificationType string // 13=CC, 31=NIT (pkg/dian)
	TaxID              string // NIT o Cédula, con o sin dígito de verificación
	Name               string
	Email              string
	Phone              string
	Address            string
	MunicipalityCode   string // código DANE
	MunicipalityName   string
}
