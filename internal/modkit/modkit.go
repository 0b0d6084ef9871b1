// Package modkit wires API modules: the shared deps they receive, the
// options they are built from and the contract api.Mount composes
package modkit

import "showroom/internal/modkit/module"

// Module is the surface every API module exposes
type Module = module.Module
