package client

import (
	"context"
	"sync"
)

// cancelRegistry tracks one cancel function per logical key. It is owned by a
// Client instance, there is no package-level state.
type cancelRegistry struct {
	mu       sync.Mutex
	seq      uint64
	inflight map[string]registryEntry
}

type registryEntry struct {
	cancel context.CancelFunc
	seq    uint64
}

func newCancelRegistry() *cancelRegistry {
	return &cancelRegistry{
		inflight: make(map[string]registryEntry),
	}
}

// register derives a cancellable context under key, cancelling whatever call
// currently holds the key. The returned release must be called when the call
// finishes. It only removes the entry if it still belongs to this call.
func (r *cancelRegistry) register(ctx context.Context, key string) (context.Context, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.inflight[key]; ok {
		prev.cancel()
	}
	cctx, cancel := context.WithCancel(ctx)
	r.seq++
	seq := r.seq
	r.inflight[key] = registryEntry{cancel: cancel, seq: seq}

	release := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.inflight[key]; ok && cur.seq == seq {
			delete(r.inflight, key)
		}
		cancel()
	}

	return cctx, release
}
