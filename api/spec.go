// Package api embeds the OpenAPI description of the HTTP interface.
package api

import (
	_ "embed"
)

// Spec is api/openapi.yaml. Requests are validated against it at runtime.
//
//go:embed openapi.yaml
var Spec []byte
