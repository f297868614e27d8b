package engine

import (
	"fmt"
	"sort"
	"sync"
)

// The registry follows the database/sql driver pattern: engine packages call
// Register from init, the CLI looks one up by name at startup.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]Engine)
)

// Register makes an engine available under its Name. It panics when the name
// is empty, already taken, or the engine is nil, since all of those are
// programmer errors at link time.
func Register(e Engine) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if e == nil {
		panic("engine: Register called with nil engine")
	}
	name := e.Name()
	if name == "" {
		panic("engine: Register called with empty name")
	}
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("engine: Register called twice for %q", name))
	}
	registry[name] = e
}

// Open returns the engine registered under name. The empty name selects the
// sole registered engine, which is the common single-language build.
func Open(name string) (Engine, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if name == "" {
		switch len(registry) {
		case 0:
			return nil, fmt.Errorf("engine: no engine linked into this binary")
		case 1:
			for _, e := range registry {
				return e, nil
			}
		}
		return nil, fmt.Errorf("engine: several engines available %v, pick one explicitly", names())
	}
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("engine: unknown engine %q (available: %v)", name, names())
	}
	return e, nil
}

// Names lists the registered engines in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return names()
}

func names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// unregister removes an engine; tests use it to keep the process-wide
// registry clean between cases.
func unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}
