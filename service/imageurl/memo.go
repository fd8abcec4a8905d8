package imageurl

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Memo de-duplicates rewrites of identical values within one ingestion run,
// so a short link shared by several rows is resolved once. It is not meant
// to outlive the run.
type Memo struct {
	chain *Chain
	mu    sync.Mutex
	done  map[string]string
	group singleflight.Group
}

// Memo returns a fresh per-run memo over c.
func (c *Chain) Memo() *Memo {
	return &Memo{chain: c, done: make(map[string]string)}
}

func (m *Memo) Normalize(ctx context.Context, raw string) string {
	m.mu.Lock()
	out, ok := m.done[raw]
	m.mu.Unlock()
	if ok {
		return out
	}
	v, _, _ := m.group.Do(raw, func() (interface{}, error) {
		m.mu.Lock()
		out, ok := m.done[raw]
		m.mu.Unlock()
		if ok {
			return out, nil
		}
		out = m.chain.Normalize(ctx, raw)
		m.mu.Lock()
		m.done[raw] = out
		m.mu.Unlock()
		return out, nil
	})
	return v.(string)
}
