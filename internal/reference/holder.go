package reference

import (
	"sync"
	"sync/atomic"
)

// Holder publishes the current index. Readers take a snapshot with Current
// and keep using it for the whole classification; Reload builds a fresh
// index and swaps it in without touching the old one.
type Holder struct {
	build func() *Index

	mu      sync.Mutex
	current atomic.Pointer[Index]
}

// NewHolder builds the first index immediately. A nil build func yields an
// empty index.
func NewHolder(build func() *Index) *Holder {
	if build == nil {
		build = Empty
	}
	h := &Holder{build: build}
	h.current.Store(build())
	return h
}

// Current returns the published index.
func (h *Holder) Current() *Index {
	return h.current.Load()
}

// Reload rebuilds the index and publishes it. Concurrent reloads are
// serialized; readers are never blocked.
func (h *Holder) Reload() *Index {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := h.build()
	h.current.Store(idx)
	return idx
}
