// Package api carries the embedded OpenAPI description of the HTTP surface.
package api

import _ "embed"

// Spec is the raw OpenAPI 3.0 document served at /openapi.yaml.
//
//go:embed openapi.yaml
var Spec []byte
