// Package docs registra la especificación OpenAPI de la API en swag.
// swagger.json se regenera con: swag init -g cmd/api/main.go --outputTypes json
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var swaggerJSON string

// SwaggerInfo metadatos de la especificación.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "NotaScan API",
	Description:      "Revisión y edición de notas fiscales NF-e/NFC-e extraídas por IA antes de guardarlas.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  swaggerJSON,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
