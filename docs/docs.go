// Package docs registra la documentación OpenAPI del servicio en swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/invoices/{id}/stamp": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Estado de timbrado de una factura",
                "parameters": [
                    {"type": "string", "description": "ID de la factura", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StampResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"Bearer": []}],
                "description": "Envía la factura y registra ACEPTADA (con CUFE) o RECHAZADA (con motivo). Un rechazo responde 200 con success=false.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Timbrar factura ante la autoridad tributaria",
                "parameters": [
                    {"type": "string", "description": "ID de la factura", "name": "id", "in": "path", "required": true},
                    {"description": "Valores que reemplazan los de la factura solo para este envío", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/dto.StampOverrides"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StampResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.StampDataView": {
            "type": "object",
            "properties": {
                "cufe": {"type": "string"},
                "estado": {"type": "string"},
                "fechaTimbrado": {"type": "string"},
                "id": {"type": "string"},
                "motivoRechazo": {"type": "string"},
                "numeroFactura": {"type": "string"}
            }
        },
        "dto.StampOverrides": {
            "type": "object",
            "properties": {
                "correoCliente": {"type": "string"},
                "descuento": {"type": "string"},
                "fechaEmision": {"type": "string"},
                "fechaVencimiento": {"type": "string"},
                "formaPago": {"type": "string"},
                "impuesto": {"type": "string"},
                "medioPago": {"type": "string"},
                "observaciones": {"type": "string"},
                "subtotal": {"type": "string"},
                "total": {"type": "string"}
            }
        },
        "dto.StampResult": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/dto.StampDataView"},
                "message": {"type": "string"},
                "status": {"type": "string"},
                "success": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo información de la API exportada para que main la ajuste.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Timbrado API",
	Description:      "Timbrado de facturas electrónicas ante la autoridad tributaria.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
