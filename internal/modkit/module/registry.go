package module

import "sync"

var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register publishes ports under a module name, replacing earlier entries
func Register(name string, ports any) {
	mu.Lock()
	defer mu.Unlock()
	reg[name] = ports
}

// PortsAs looks up the ports registered for name as a T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	out, ok2 := v.(T)
	return out, ok && ok2
}

// Reset empties the registry
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	reg = map[string]any{}
}
