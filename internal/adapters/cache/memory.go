package cache

// memory.go — cache de queries en memoria.
//
// Cada key guarda el último valor conocido de una query (lista de vendors,
// detalle de un vendor, participantes de una subasta...). Además de
// get/set/delete, la cache lleva el registro de refetches en vuelo: un
// context cancelable por key que permite descartar la respuesta de un
// refetch que quedó obsoleto por una escritura optimista posterior.

import (
	"context"
	"sync"
)

// refetchEntry identifica un refetch en vuelo. El campo gen distingue
// refetches sucesivos sobre la misma key.
type refetchEntry struct {
	cancel context.CancelFunc
	gen    uint64
}

// Store implementa ports.Cache. Seguro para uso concurrente.
type Store struct {
	mu        sync.Mutex
	values    map[string]any
	refetches map[string]refetchEntry
	gen       uint64
}

// NewStore crea una cache vacía.
func NewStore() *Store {
	return &Store{
		values:    make(map[string]any),
		refetches: make(map[string]refetchEntry),
	}
}

// Get devuelve el valor cacheado y si la key estaba poblada.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set escribe el valor de una key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete invalida una key. La siguiente lectura verá la cache fría y
// tendrá que ir al servidor.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// BeginRefetch registra un refetch en vuelo para la key y devuelve su
// context. Si había otro refetch pendiente sobre la misma key, lo cancela:
// solo el más reciente puede escribir su resultado. El CancelFunc devuelto
// limpia el registro; llamarlo siempre, también en el camino feliz.
func (s *Store) BeginRefetch(ctx context.Context, key string) (context.Context, context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.refetches[key]; ok {
		prev.cancel()
	}
	rctx, cancel := context.WithCancel(ctx)
	s.gen++
	gen := s.gen
	s.refetches[key] = refetchEntry{cancel: cancel, gen: gen}

	return rctx, func() {
		cancel()
		s.mu.Lock()
		defer s.mu.Unlock()
		if cur, ok := s.refetches[key]; ok && cur.gen == gen {
			delete(s.refetches, key)
		}
	}
}

// CancelRefetch cancela el refetch en vuelo de la key, si existe. Se llama
// antes de aplicar una escritura optimista para que una respuesta vieja no
// pise el estado recién escrito.
func (s *Store) CancelRefetch(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.refetches[key]; ok {
		entry.cancel()
		delete(s.refetches, key)
	}
}
