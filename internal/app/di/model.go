// Package di provides dependency injection factories for creating application components.
package di

import (
	"crop_yield/internal/platform/externalapi/modelserver"
	infrahttp "crop_yield/internal/platform/http"
)

// NewModel creates a fully configured ModelServer client with its HTTP client.
func NewModel(cfg modelserver.Config) *modelserver.ModelServer {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return modelserver.NewModelServer(cfg, httpClient)
}
