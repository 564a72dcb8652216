// Package keylock serializa trabajo por clave de agregado (usuario, par, conversación)
// dentro de un solo proceso.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker entrega un mutex por clave. Las entradas se liberan cuando
// nadie las retiene, así el mapa no crece con claves históricas.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

// Lock bloquea key y devuelve la función de unlock.
func (l *Locker) Lock(key string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, key)
		}
		l.mu.Unlock()
	}
}

// Len es el número de claves retenidas (tests).
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
