package http

import "showroom/internal/platform/metrics"

// MountMetrics exposes the prometheus registry at path when enabled
func MountMetrics(r Router, path string, enabled bool) {
	if !enabled {
		return
	}
	r.Handle(path, metrics.Handler())
}
