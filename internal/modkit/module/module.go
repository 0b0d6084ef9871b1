// Package module holds the module contract and the process wide port
// registry modules use to find each other after mounting
package module

import (
	phttp "showroom/internal/platform/net/http"
)

// Module is what api.Mount needs from a feature module
type Module interface {
	MountRoutes(r phttp.Router)
	// Ports is the module's exported port set, nil when it has none
	Ports() any
	Name() string
}
