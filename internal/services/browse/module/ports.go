package module

import (
	"showroom/internal/services/browse/domain"
)

// Ports exported by the browse module
type Ports struct {
	Browse domain.ServicePort
	// Sessions reports live session counts for health output
	Sessions interface{ Len() int }
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
