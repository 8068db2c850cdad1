// Package api holds the OpenAPI contract served at /api/docs.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
