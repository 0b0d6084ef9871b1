package module

import (
	"sync"
	"testing"

	phttp "showroom/internal/platform/net/http"
)

type sessionPorts struct{ live int }

func (p sessionPorts) Len() int { return p.live }

type stub struct{ ports any }

func (stub) MountRoutes(phttp.Router) {}
func (s stub) Ports() any             { return s.ports }
func (stub) Name() string             { return "browse" }

var _ Module = stub{}

func TestRegistry_Lookup(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	m := stub{ports: sessionPorts{live: 3}}
	Register(m.Name(), m.Ports())

	got, ok := PortsAs[sessionPorts]("browse")
	if !ok || got.Len() != 3 {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
	if l, ok := PortsAs[interface{ Len() int }]("browse"); !ok || l.Len() != 3 {
		t.Fatal("interface lookup failed")
	}
	if _, ok := PortsAs[int]("browse"); ok {
		t.Fatal("type mismatch reported ok")
	}
	if _, ok := PortsAs[sessionPorts]("meta"); ok {
		t.Fatal("missing name reported ok")
	}
}

func TestRegistry_ReplaceAndReset(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("browse", sessionPorts{live: 1})
	Register("browse", sessionPorts{live: 2})
	if got, _ := PortsAs[sessionPorts]("browse"); got.live != 2 {
		t.Fatalf("live = %d", got.live)
	}
	Reset()
	if _, ok := PortsAs[sessionPorts]("browse"); ok {
		t.Fatal("reset kept entries")
	}
}

func TestRegistry_NilPorts(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("meta", stub{}.Ports())
	if _, ok := PortsAs[sessionPorts]("meta"); ok {
		t.Fatal("nil ports reported ok")
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(2)
		go func() { defer wg.Done(); Register("browse", sessionPorts{live: i}) }()
		go func() { defer wg.Done(); _, _ = PortsAs[sessionPorts]("browse") }()
	}
	wg.Wait()
	if _, ok := PortsAs[sessionPorts]("browse"); !ok {
		t.Fatal("lost registration")
	}
}
